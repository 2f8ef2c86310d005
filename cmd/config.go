package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/cloudx/internal/config"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

var (
	configOutput   string
	configDefaults bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration",
	Long: `Prints the embedded defaults merged with the user config file.

With --defaults the embedded default file is printed verbatim, which is a
good starting point for a user config.`,
	Example: `  cloudx config
  cloudx config --defaults > "$(cloudx config path)"`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := appConfig.Source
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

func init() { //nolint:gochecknoinits
	f := configCmd.Flags()
	f.StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json")
	f.BoolVar(&configDefaults, "defaults", false, "print the embedded default config")
	configCmd.AddCommand(configPathCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	if err := validOutput(configOutput, "yaml", "json"); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if configDefaults {
		_, err := out.Write(config.DefaultYAML())
		return err
	}

	color := colorOutput(settings.FromContextOrDefault(cmd.Context()))
	if configOutput == "yaml" {
		return writeStructured(out, appConfig, "yaml", color)
	}
	// Round-trip through yaml so json keys and durations match the file.
	data, err := appConfig.Marshal()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return writeStructured(out, doc, "json", color)
}
