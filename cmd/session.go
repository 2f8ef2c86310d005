package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cloudx/internal/session"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

var sessionOutput string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved browser sessions",
	Long: `Lists, shows and deletes the sessions saved from the browser. A saved
session is reopened with "cloudx --session <name>".`,
	Example: `  cloudx session list
  cloudx session show work -o yaml
  cloudx session delete work`,
	Args: cobra.NoArgs,
	RunE: runSessionList,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the tabs of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionClosedCmd = &cobra.Command{
	Use:   "closed",
	Short: "List recently closed tabs, most recent last",
	Args:  cobra.NoArgs,
	RunE:  runSessionClosed,
}

func init() { //nolint:gochecknoinits
	sessionCmd.PersistentFlags().StringVarP(&sessionOutput, "output", "o", "table", "output format: table|yaml|json")
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionDeleteCmd, sessionClosedCmd)
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if err := validOutput(sessionOutput, "table", "yaml", "json"); err != nil {
		return err
	}
	store, err := openSessions(appConfig)
	if err != nil {
		return err
	}
	sessions, err := store.List()
	if err != nil {
		return err
	}
	run := settings.FromContextOrDefault(cmd.Context())
	if sessionOutput != "table" {
		if sessions == nil {
			sessions = []session.Session{}
		}
		return writeStructured(cmd.OutOrStdout(), sessions, sessionOutput, colorOutput(run))
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{s.Name, strconv.Itoa(len(s.Tabs)), s.Saved.Format(time.RFC3339)})
	}
	return writeRows(cmd.OutOrStdout(), []string{"name", "tabs", "saved"}, rows, "table", run)
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if err := validOutput(sessionOutput, "table", "yaml", "json"); err != nil {
		return err
	}
	store, err := openSessions(appConfig)
	if err != nil {
		return err
	}
	sess, err := store.Get(args[0])
	if err != nil {
		return err
	}
	run := settings.FromContextOrDefault(cmd.Context())
	if sessionOutput != "table" {
		return writeStructured(cmd.OutOrStdout(), sess, sessionOutput, colorOutput(run))
	}
	return writeTabs(cmd, sess.Tabs, run)
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	store, err := openSessions(appConfig)
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted session %q\n", args[0])
	return err
}

func runSessionClosed(cmd *cobra.Command, _ []string) error {
	if err := validOutput(sessionOutput, "table", "yaml", "json"); err != nil {
		return err
	}
	store, err := openSessions(appConfig)
	if err != nil {
		return err
	}
	tabs, err := store.Closed()
	if err != nil {
		return err
	}
	run := settings.FromContextOrDefault(cmd.Context())
	if sessionOutput != "table" {
		if tabs == nil {
			tabs = []session.Tab{}
		}
		return writeStructured(cmd.OutOrStdout(), tabs, sessionOutput, colorOutput(run))
	}
	return writeTabs(cmd, tabs, run)
}

func writeTabs(cmd *cobra.Command, tabs []session.Tab, run *settings.Run) error {
	rows := make([][]string, 0, len(tabs))
	for _, t := range tabs {
		rows = append(rows, []string{
			t.Service,
			strings.Join(t.Breadcrumb, " › "),
			deref(t.Filter),
			deref(t.SelectedItem),
			t.Region,
			t.Profile,
		})
	}
	header := []string{"service", "path", "filter", "selected", "region", "profile"}
	return writeRows(cmd.OutOrStdout(), header, rows, "table", run)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
