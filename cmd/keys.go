package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

var keysOutput string

var keysCmd = &cobra.Command{
	Use:   "keys [mode]",
	Short: "Print the effective key bindings",
	Long: `Prints the key bindings after ui.keymap overrides are applied.

Modes are named as in the config file: normal, filter, event_filter, query,
column_selector, picker:<service|region|profile|session|tab>, error, help,
calendar and menu.`,
	Example: `  cloudx keys
  cloudx keys picker:region -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeys,
}

func init() { //nolint:gochecknoinits
	keysCmd.Flags().StringVarP(&keysOutput, "output", "o", "table", "output format: table|yaml|json")
}

func runKeys(cmd *cobra.Command, args []string) error {
	if err := validOutput(keysOutput, "table", "yaml", "json"); err != nil {
		return err
	}
	modes := keymap.AllModes()
	if len(args) == 1 {
		m, err := keymap.ParseMode(args[0])
		if err != nil {
			return usageError{err: err}
		}
		modes = []keymap.Mode{m}
	}
	d, err := appConfig.Dispatcher()
	if err != nil {
		return err
	}

	var rows [][]string
	for _, m := range modes {
		for _, b := range d.Bindings(m) {
			rows = append(rows, []string{m.String(), b.Key.String(), string(b.Action), b.Action.Description()})
		}
	}
	header := []string{"mode", "key", "action", "description"}
	return writeRows(cmd.OutOrStdout(), header, rows, keysOutput, settings.FromContextOrDefault(cmd.Context()))
}
