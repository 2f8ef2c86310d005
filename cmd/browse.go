package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/cloudx/internal/controller"
	"github.com/oakwood-commons/cloudx/internal/ui"
	"github.com/oakwood-commons/cloudx/pkg/logger"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

var (
	startKeys      []string
	renderSnapshot bool
	snapshotWidth  int
	snapshotHeight int
	restoreSession string
)

var browseCmd = &cobra.Command{
	Use:   "browse [service]",
	Short: "Open the interactive browser (default command)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func addBrowseFlags(fs *pflag.FlagSet) {
	fs.StringArrayVar(&startKeys, "press", nil, `simulate keys on startup, e.g. --press "/web<CR>" or --press "<C-r>eu<CR>"`)
	fs.BoolVar(&renderSnapshot, "snapshot", false, "render a single frame after --press and exit; honors --width/--height")
	fs.IntVar(&snapshotWidth, "width", 0, "snapshot width in columns (default: terminal width)")
	fs.IntVar(&snapshotHeight, "height", 0, "snapshot height in rows (default: terminal height)")
	fs.StringVar(&restoreSession, "session", "", "restore a saved session instead of opening a service")
}

func init() { //nolint:gochecknoinits
	addBrowseFlags(browseCmd.Flags())
}

// resolveSnapshotSize fills unset snapshot dimensions from the terminal.
func resolveSnapshotSize(width, height int) (int, int) {
	if width > 0 && height > 0 {
		return width, height
	}
	w, h := detectTerminalSize()
	if width <= 0 {
		width = w
	}
	if height <= 0 {
		height = h
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	run := settings.FromContextOrDefault(ctx)
	cfg := appConfig

	src, path, err := openBackend(cfg)
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	dispatcher, err := cfg.Dispatcher()
	if err != nil {
		return err
	}
	store, err := openSessions(cfg)
	if err != nil {
		return err
	}
	service := ""
	if len(args) > 0 {
		svc, err := lookupService(catalog, args[0])
		if err != nil {
			return err
		}
		service = svc.Name
	}
	restore := restoreSession
	if restore == "" {
		restore = cfg.Session.Restore
	}

	ctrl := controller.New(controller.Options{
		Catalog:      catalog,
		Backend:      src,
		Sessions:     store,
		Dispatcher:   dispatcher,
		Service:      service,
		Region:       resolveRegion(ctx, cfg, src.Regions()),
		Profile:      profile,
		Restore:      restore,
		PageSize:     cfg.UI.PageSize,
		FilterMode:   cfg.UI.FilterMode,
		PollInterval: cfg.Fetch.PollInterval,
		FetchTimeout: cfg.Fetch.Timeout,
		Logger:       logger.FromContext(ctx),
	})
	opts := ui.Options{AppName: cfg.App.Name, NoColor: run.NoColor}

	if renderSnapshot {
		opts.Width, opts.Height = resolveSnapshotSize(snapshotWidth, snapshotHeight)
		out, err := ui.RenderSnapshot(ctrl, ui.SnapshotConfig{Options: opts, StartKeys: startKeys})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	}
	if !stdoutIsTerminal() {
		return errors.New("the interactive browser needs a terminal; use --snapshot or 'cloudx list'")
	}

	runOpts := ui.RunOptions{StartKeys: startKeys}
	if path != "" && cfg.Fetch.WatchFixture {
		runOpts.Watch = []string{path}
		runOpts.Reload = src.Reload
	}
	return ui.Run(ctx, ui.New(ctrl, opts), runOpts)
}
