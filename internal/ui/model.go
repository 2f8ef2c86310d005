// Package ui renders the browser state held by the controller and feeds
// terminal events back into it.
package ui

import (
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/cloudx/internal/controller"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// chromeRows is every line that is not list body: title, tabs, filter
	// bar, column header, status and footer.
	chromeRows = 6
)

// Options configures a Model.
type Options struct {
	AppName string
	NoColor bool
	Theme   *Theme
	// Width and Height seed the size before the first WindowSizeMsg.
	Width  int
	Height int
}

// Model is the tea.Model of the browser.
type Model struct {
	ctrl    *controller.Controller
	appName string
	noColor bool
	styles  styles
	width   int
	height  int
	spinner spinner.Model
	help    help.Model
	// started is set once the first load ran synchronously.
	started bool
}

// New wraps ctrl for rendering.
func New(ctrl *controller.Controller, opts Options) *Model {
	th := DefaultTheme()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctrl:    ctrl,
		appName: opts.AppName,
		noColor: opts.NoColor,
		styles:  newStyles(th, opts.NoColor),
		spinner: s,
		help:    help.New(),
	}
	if m.appName == "" {
		m.appName = "cloudx"
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	m.resize(w, h)
	return m
}

// Controller returns the wrapped controller.
func (m *Model) Controller() *controller.Controller { return m.ctrl }

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ctrl.Resize(max(height-chromeRows, 1))
}

// Init starts the first load and the spinner.
func (m *Model) Init() tea.Cmd {
	if m.started {
		return m.spinner.Tick
	}
	m.started = true
	return tea.Batch(m.ctrl.Init(), m.spinner.Tick)
}

// Update routes terminal events to the controller.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, m.ctrl.Handle(msg)
}

// View renders the full screen.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}

// Render returns the screen as text, clipped to the model's size.
func (m *Model) Render() string {
	body := max(m.height-chromeRows, 1)
	lines := []string{m.titleBar(), m.tabBar(), m.filterBar()}
	main, ok := m.overlay(body + 1)
	if !ok {
		main = m.pane(body + 1)
	}
	lines = append(lines, fit(main, body+1)...)
	lines = append(lines, m.statusLine(), m.footer())

	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "…")
	}
	return strings.Join(lines, "\n")
}

// fit pads or cuts lines to exactly n entries.
func fit(lines []string, n int) []string {
	if len(lines) >= n {
		return lines[:n]
	}
	return append(lines, make([]string, n-len(lines))...)
}
