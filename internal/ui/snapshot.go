package ui

import "github.com/oakwood-commons/cloudx/internal/controller"

// SnapshotConfig configures RenderSnapshot.
type SnapshotConfig struct {
	Options
	StartKeys []string
}

// RenderSnapshot loads the first tab, replays the start keys and returns one
// rendered frame, for non-interactive output and tests.
func RenderSnapshot(ctrl *controller.Controller, cfg SnapshotConfig) (string, error) {
	m := New(ctrl, cfg.Options)
	m.Settle(ctrl.Init())
	if err := m.ApplyStartupKeys(cfg.StartKeys); err != nil {
		return "", err
	}
	return m.Render(), nil
}
