package ui

import (
	"context"
	"fmt"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/cloudx/internal/controller"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

// RunOptions configures Run.
type RunOptions struct {
	StartKeys []string
	// Watch lists data files; when one changes Reload is called with its
	// path and every tab reloads.
	Watch  []string
	Reload func(path string) error

	ProgramOptions []tea.ProgramOption
}

// Run starts the interactive browser and blocks until it quits or ctx is
// done.
func Run(ctx context.Context, m *Model, opts RunOptions) error {
	log := logger.Named(logger.FromContext(ctx), "ui")

	if len(opts.StartKeys) > 0 {
		m.Settle(m.ctrl.Init())
		m.started = true
		if err := m.ApplyStartupKeys(opts.StartKeys); err != nil {
			return err
		}
		if m.ctrl.Quitting() {
			return nil
		}
	}

	programOpts := append([]tea.ProgramOption{tea.WithContext(ctx)}, opts.ProgramOptions...)
	prog := tea.NewProgram(m, programOpts...)

	if len(opts.Watch) > 0 && opts.Reload != nil {
		stop, err := watch(ctx, *log, opts.Watch, func(path string) {
			if err := opts.Reload(path); err != nil {
				log.Error(err, "reload failed", "path", path)
				return
			}
			prog.Send(controller.ReloadMsg{})
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	_, err := prog.Run()
	return err
}

// watch calls onChange when one of paths is written or replaced. It watches
// the parent directories since editors often swap files on save.
func watch(ctx context.Context, log logr.Logger, paths []string, onChange func(path string)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	wanted := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || !wanted[abs] {
					continue
				}
				log.V(1).Info("data file changed", "path", abs)
				onChange(abs)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Error(err, "watcher error")
			}
		}
	}()

	return func() {
		_ = w.Close()
		<-done
	}, nil
}
