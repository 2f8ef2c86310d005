// Package cmd implements the cloudx command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cloudx/internal/config"
	"github.com/oakwood-commons/cloudx/pkg/logger"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

// usageError marks invalid flag combinations; they exit with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func flagError(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		return 2
	default:
		return 1
	}
}

var (
	configFile  string
	logFile     string
	debug       bool
	noColor     bool
	region      string
	profile     string
	fixturePath string

	// appConfig is the merged configuration loaded before every command.
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [service]",
	Short: "Browse cloud resource listings in the terminal",
	Long: `cloudx lists cloud resources per service, region and profile.

Without a subcommand it opens the interactive browser on the given service,
or the first service of the catalog. Listings are filtered as you type;
filters starting with "?" are CEL expressions over the item, e.g.
?item.state == "running".`,
	Example: `  cloudx
  cloudx stacks --region eu-west-1
  cloudx list instances -o yaml --limit 5
  cloudx browse logs --snapshot --press "/app<CR>"`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBrowse,
}

// setup loads the configuration and attaches the run settings and logger
// to the command context.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	run := settings.NewCliParams()
	run.ConfigFile = cfg.Source
	run.LogFile = logFile
	run.Region = region
	run.Profile = profile
	run.NoColor = noColor || cfg.UI.NoColor || os.Getenv("NO_COLOR") != ""
	run.Interactive = isBrowse(cmd)
	if debug {
		run.MinLogLevel = -1
	}

	if err := configureLogOutput(run); err != nil {
		return err
	}
	lgr := logger.Get(run.MinLogLevel)
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	cmd.SetContext(settings.IntoContext(ctx, run))
	return nil
}

func isBrowse(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == browseCmd
}

// configureLogOutput sends logs to --log-file, or discards them while the
// browser owns the terminal.
func configureLogOutput(run *settings.Run) error {
	switch {
	case run.LogFile != "":
		f, err := os.OpenFile(run.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
	case run.Interactive:
		logger.SetOutput(io.Discard)
	default:
		logger.SetOutput(os.Stderr)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print cloudx version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return err
	},
}

// cliVersionString builds the version line for the version command and
// --version.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func init() { //nolint:gochecknoinits
	// Assigned here rather than in the literal: setup refers back to rootCmd
	// through isBrowse, which would be an initialization cycle.
	rootCmd.PersistentPreRunE = setup

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file (default $XDG_CONFIG_HOME/cloudx/config.yaml)")
	pf.StringVar(&logFile, "log-file", "", "write JSON logs to this file")
	pf.BoolVar(&debug, "debug", false, "enable verbose logging")
	pf.BoolVar(&noColor, "no-color", false, "disable color output")
	pf.StringVarP(&region, "region", "r", "", "region to list (default: all, or the fastest with probe.auto_select)")
	pf.StringVarP(&profile, "profile", "p", "", "account profile")
	pf.StringVar(&fixturePath, "fixture", "", "YAML fixture served instead of fetch.fixture or the demo data")

	addBrowseFlags(rootCmd.Flags())

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})
	rootCmd.AddCommand(versionCmd, browseCmd, listCmd, treeCmd, keysCmd, probeCmd, configCmd, sessionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func validOutput(value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return flagError("invalid --output %q (expected %s)", value, strings.Join(allowed, "|"))
}
