package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cloudx/internal/controller"
	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/source/fixture"
)

const testFixture = `
regions: [us-east-1, eu-west-1]
profiles: [default]
generate:
  - service: instances
    count: 30
    id: i-%03d
    name: web-%02d
    attributes:
      state: [running, stopped]
services:
  stacks:
    - {id: network}
children:
  network:
    - {id: vpc-main, name: VPC}
    - {id: subnet-a, name: PublicSubnetA, parent: vpc-main}
`

func newController(t *testing.T, service string) (*controller.Controller, *fixture.Source) {
	t.Helper()
	src, err := fixture.Parse([]byte(testFixture))
	require.NoError(t, err)
	return controller.New(controller.Options{
		Backend:   src,
		Service:   service,
		Clipboard: func(string) error { return nil },
		Now:       func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) },
	}), src
}

func snapshot(t *testing.T, service string, keys ...string) string {
	t.Helper()
	ctrl, _ := newController(t, service)
	out, err := RenderSnapshot(ctrl, SnapshotConfig{
		Options:   Options{NoColor: true, Width: 100, Height: 20},
		StartKeys: keys,
	})
	require.NoError(t, err)
	return ansi.Strip(out)
}

func TestRenderSnapshotList(t *testing.T) {
	out := snapshot(t, "instances")
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 20)
	assert.Contains(t, lines[0], "cloudx │ Compute instances")
	assert.Contains(t, lines[0], "region all")
	assert.Contains(t, lines[1], "1 Compute instances")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "▸ web-01")
	assert.Contains(t, out, "30 Compute instances")
	for _, line := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(line), 100)
	}
}

func TestStartKeysFilter(t *testing.T) {
	out := snapshot(t, "instances", "/web-2")

	assert.Contains(t, out, "/web-2█")
	assert.Contains(t, out, "web-20")
	assert.NotContains(t, out, "web-01")
}

func TestStartKeysSort(t *testing.T) {
	out := snapshot(t, "instances", "sS")
	assert.Contains(t, out, "NAME ▼")
	assert.Contains(t, out, "▸ web-30")
}

func TestFilterBarPageSelector(t *testing.T) {
	out := snapshot(t, "instances", "/")
	lines := strings.Split(out, "\n")
	var bar string
	for _, line := range lines {
		if strings.Contains(line, "/█") {
			bar = line
		}
	}
	require.NotEmpty(t, bar)
	assert.Contains(t, bar, "[1] 2")
}

func TestPageSelector(t *testing.T) {
	tests := []struct {
		current, total int
		want           string
	}{
		{current: 1, total: 1, want: "[1]"},
		{current: 2, total: 3, want: "1 [2] 3"},
		{current: 12, total: 30, want: "… 8 9 10 11 [12] 13 14 15 16 …"},
		{current: 1, total: 30, want: "[1] 2 3 4 5 6 7 8 9 …"},
		{current: 30, total: 30, want: "… 22 23 24 25 26 27 28 29 [30]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pageSelector(tt.current, tt.total))
	}
}

func TestTreePane(t *testing.T) {
	out := snapshot(t, "stacks", "<CR>l")

	assert.Contains(t, out, "Deployment stacks › network")
	assert.Contains(t, out, "▾ VPC")
	assert.Contains(t, out, "PublicSubnetA")
}

func TestFilterHintFollowsOverrides(t *testing.T) {
	d, err := keymap.New(keymap.Overrides{"normal": {"?": keymap.Unbind, "ctrl+g": "open_help"}})
	require.NoError(t, err)
	src, err := fixture.Parse([]byte(testFixture))
	require.NoError(t, err)
	ctrl := controller.New(controller.Options{Backend: src, Service: "instances", Dispatcher: d})

	out, err := RenderSnapshot(ctrl, SnapshotConfig{Options: Options{NoColor: true, Width: 100, Height: 20}})
	require.NoError(t, err)
	out = ansi.Strip(out)

	assert.Contains(t, out, "/ filter · : services · ctrl+g help")
	assert.NotContains(t, out, "? help")
}

func TestHelpOverlay(t *testing.T) {
	out := snapshot(t, "instances", "?")
	assert.Contains(t, out, "keys")
	assert.Contains(t, out, "back")
	assert.Contains(t, out, "bottom")
}

func TestServicePickerOverlay(t *testing.T) {
	out := snapshot(t, "instances", ":stack")
	assert.Contains(t, out, "select service")
	assert.Contains(t, out, "> stack█")
	assert.Contains(t, out, "Deployment stacks")
}

func TestErrorModal(t *testing.T) {
	ctrl, src := newController(t, "instances")
	src.FailNext(1)
	m := New(ctrl, Options{NoColor: true, Width: 100, Height: 20})
	m.Settle(ctrl.Init())

	require.Equal(t, keymap.ErrorModal, ctrl.Mode())
	out := ansi.Strip(m.Render())
	assert.Contains(t, out, "injected fixture failure")
	assert.Contains(t, out, "R retry · esc close")

	require.NoError(t, m.ApplyStartupKeys([]string{"R"}))
	out = ansi.Strip(m.Render())
	assert.NotContains(t, out, "injected fixture failure")
	assert.Contains(t, out, "web-01")
}

func TestStartKeysQuitStops(t *testing.T) {
	ctrl, _ := newController(t, "instances")
	m := New(ctrl, Options{NoColor: true})
	m.Settle(ctrl.Init())

	require.NoError(t, m.ApplyStartupKeys([]string{"q", "j"}))
	assert.True(t, ctrl.Quitting())
	assert.Zero(t, ctrl.ActiveTab().List.SelectedIndex())
}

func TestStartKeysBadSequence(t *testing.T) {
	ctrl, _ := newController(t, "instances")
	m := New(ctrl, Options{})
	assert.Error(t, m.ApplyStartupKeys([]string{"<X-a>"}))
}

func TestCalendarBox(t *testing.T) {
	ctrl, _ := newController(t, "instances")
	m := New(ctrl, Options{NoColor: true})
	out := ansi.Strip(m.calendarBox(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))

	assert.Contains(t, out, "October 2026")
	assert.Contains(t, out, "Mo Tu We Th Fr Sa Su")
	// October 1st 2026 is a Thursday.
	assert.Contains(t, out, "          1  2  3  4")
	assert.Contains(t, out, "query window ends 2026-10-19")
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name                  string
		selected, total, size int
		wantStart, wantEnd    int
	}{
		{name: "fits", selected: 2, total: 4, size: 10, wantStart: 0, wantEnd: 4},
		{name: "top", selected: 0, total: 20, size: 5, wantStart: 0, wantEnd: 5},
		{name: "middle", selected: 10, total: 20, size: 5, wantStart: 8, wantEnd: 13},
		{name: "bottom", selected: 19, total: 20, size: 5, wantStart: 15, wantEnd: 20},
		{name: "no room", selected: 3, total: 20, size: 0, wantStart: 0, wantEnd: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := window(tt.selected, tt.total, tt.size)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestHighlight(t *testing.T) {
	ctrl, _ := newController(t, "instances")
	m := New(ctrl, Options{NoColor: true})
	assert.Equal(t, "plain", m.highlight("plain", nil))
	assert.Equal(t, "stacks", ansi.Strip(m.highlight("stacks", []int{0, 2})))
}

func TestWatchNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regions: []\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var changed []string
	stop, err := watch(ctx, logr.Discard(), []string{path}, func(p string) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, p)
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("regions: [us-east-1]\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	for _, p := range changed {
		assert.Equal(t, abs, p)
	}
}
