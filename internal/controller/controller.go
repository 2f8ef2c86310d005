// Package controller owns the browser state machine. It turns dispatched
// actions into mutations of the active mode, tabs, view models and focus
// rings, and issues fetches as tea commands whose results come back
// through Handle.
package controller

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/cloudx/internal/completion"
	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/session"
	"github.com/oakwood-commons/cloudx/internal/source"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

// Backend lists resources. Implementations must be safe for concurrent use;
// every call runs inside a tea command.
type Backend interface {
	Regions() []string
	Profiles() []string
	Resources(service, region, profile string) source.Fetcher[resource.Item]
	Children(service, id string) source.Fetcher[resource.Item]
	Events(id string) source.Fetcher[resource.Event]
	Queries(service string) source.QueryClient[resource.Item]
}

// SessionStore persists tabs.
type SessionStore interface {
	Save(name string, tabs []session.Tab) error
	Get(name string) (session.Session, error)
	Delete(name string) error
	List() ([]session.Session, error)
	RecordClosed(tab session.Tab) error
}

// Options configures a Controller.
type Options struct {
	Catalog    *resource.Catalog
	Backend    Backend
	Sessions   SessionStore
	Dispatcher *keymap.Dispatcher

	// Service opens in the first tab; defaults to the first catalog entry.
	Service string
	Region  string
	Profile string
	// Restore names a session loaded at start-up instead of Service.
	Restore string

	PageSize     int
	FilterMode   string
	PollInterval time.Duration
	FetchTimeout time.Duration

	Clipboard func(string) error
	Now       func() time.Time
	Logger    *logr.Logger
}

const (
	defaultPollInterval = time.Second
	defaultFetchTimeout = 30 * time.Second
)

// Controller is the browser state. It is not safe for concurrent use; the
// tea program calls it from its update loop only.
type Controller struct {
	opts Options
	log  logr.Logger

	mode    keymap.Mode
	tabs    []*Tab
	active  int
	region  string
	profile string

	nextTabID uint64
	gen       uint64

	picker   *Picker
	menu     *Menu
	columns  *ColumnSelector
	calendar time.Time
	help     int
	failure  *Failure
	status   string
	quitting bool

	completer *completion.Engine
}

// Failure is the error shown by the error modal.
type Failure struct {
	Err     error
	Context string
	retry   func() tea.Cmd
}

// New returns a controller with one tab, or the restored session's tabs.
// Call Init to start loading.
func New(opts Options) *Controller {
	if opts.Catalog == nil {
		opts.Catalog = resource.DefaultCatalog()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = keymap.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetNoopLogger()
	}

	c := &Controller{
		opts:    opts,
		log:     *logger.Named(opts.Logger, "controller"),
		mode:    keymap.Normal,
		region:  opts.Region,
		profile: opts.Profile,
	}
	c.calendar = truncateDay(opts.Now())

	name := opts.Service
	if _, ok := opts.Catalog.Get(name); !ok {
		name = opts.Catalog.Services()[0].Name
	}
	c.addTab(name)
	return c
}

// Init loads the first tab, or restores the configured session.
func (c *Controller) Init() tea.Cmd {
	if c.opts.Restore != "" && c.opts.Sessions != nil {
		return c.restoreSession(c.opts.Restore)
	}
	return c.loadTab(c.ActiveTab())
}

// Dispatcher returns the key dispatcher.
func (c *Controller) Dispatcher() *keymap.Dispatcher { return c.opts.Dispatcher }

// Catalog returns the service catalog.
func (c *Controller) Catalog() *resource.Catalog { return c.opts.Catalog }

// Mode returns the active mode.
func (c *Controller) Mode() keymap.Mode { return c.mode }

// Tabs returns the open tabs.
func (c *Controller) Tabs() []*Tab { return c.tabs }

// ActiveIndex returns the index of the active tab.
func (c *Controller) ActiveIndex() int { return c.active }

// ActiveTab returns the active tab.
func (c *Controller) ActiveTab() *Tab { return c.tabs[c.active] }

// Region returns the selected region.
func (c *Controller) Region() string { return c.region }

// Profile returns the selected profile.
func (c *Controller) Profile() string { return c.profile }

// Status returns the status line message.
func (c *Controller) Status() string { return c.status }

// Failure returns the error shown in the error modal.
func (c *Controller) Failure() *Failure { return c.failure }

// Picker returns the open item picker.
func (c *Controller) Picker() *Picker { return c.picker }

// Menu returns the overlay menu.
func (c *Controller) Menu() *Menu { return c.menu }

// Columns returns the open column selector.
func (c *Controller) Columns() *ColumnSelector { return c.columns }

// CalendarDate returns the day highlighted by the calendar picker.
func (c *Controller) CalendarDate() time.Time { return c.calendar }

// HelpScroll returns the first visible line of the help modal.
func (c *Controller) HelpScroll() int { return c.help }

// Quitting reports whether Quit was requested.
func (c *Controller) Quitting() bool { return c.quitting }

// SetRegion switches the region and reloads the active tab.
func (c *Controller) SetRegion(region string) tea.Cmd {
	c.region = region
	return c.contextChanged()
}

// Resize sets how many rows each listing shows.
func (c *Controller) Resize(rows int) {
	if rows <= 0 {
		return
	}
	c.opts.PageSize = rows
	for _, t := range c.tabs {
		t.resize(rows)
	}
}

func (c *Controller) setMode(m keymap.Mode) {
	if m == c.mode {
		return
	}
	c.log.V(1).Info("mode change", "from", c.mode.String(), "to", m.String())
	c.mode = m
}

func (c *Controller) nextGen() uint64 {
	c.gen++
	return c.gen
}

func (c *Controller) fetchContext() (context.Context, context.CancelFunc) {
	ctx := logger.WithLogger(context.Background(), &c.log)
	return context.WithTimeout(ctx, c.opts.FetchTimeout)
}

// Handle applies a message: key presses are dispatched in the active mode,
// everything else is a fetch or command result.
func (c *Controller) Handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return c.HandleKey(keymap.KeyFromMsg(msg))
	case listLoadedMsg:
		return c.onListLoaded(msg)
	case childrenLoadedMsg:
		return c.onChildrenLoaded(msg)
	case eventsLoadedMsg:
		return c.onEventsLoaded(msg)
	case queryStartedMsg:
		return c.onQueryStarted(msg)
	case queryTickMsg:
		return c.onQueryTick(msg)
	case queryPolledMsg:
		return c.onQueryPolled(msg)
	case sessionsListedMsg:
		return c.onSessionsListed(msg)
	case sessionLoadedMsg:
		return c.onSessionLoaded(msg)
	case sessionSavedMsg:
		return c.onSessionSaved(msg)
	case sessionDeletedMsg:
		return c.onSessionDeleted(msg)
	case tabRecordedMsg:
		if msg.err != nil {
			c.log.Error(msg.err, "record closed tab")
		}
	case clipboardMsg:
		return c.onClipboard(msg)
	case ReloadMsg:
		c.status = "data changed, reloading"
		return c.contextChanged()
	}
	return nil
}

// HandleKey dispatches k in the active mode. Unbound keys are ignored.
func (c *Controller) HandleKey(k keymap.Key) tea.Cmd {
	action, ok := c.opts.Dispatcher.Dispatch(k, c.mode)
	if !ok {
		return nil
	}
	return c.Apply(action)
}

// Apply executes an action in the active mode.
func (c *Controller) Apply(a keymap.Action) tea.Cmd {
	if a.Is(keymap.ActionQuit) {
		c.quitting = true
		return tea.Quit
	}
	switch c.mode.Kind {
	case keymap.ModeNormal:
		return c.applyNormal(a)
	case keymap.ModeFilterInput, keymap.ModeEventFilterInput:
		return c.applyFilter(a)
	case keymap.ModeQueryInput:
		return c.applyQueryInput(a)
	case keymap.ModeColumnSelector:
		return c.applyColumnSelector(a)
	case keymap.ModeItemPicker:
		return c.applyPicker(a)
	case keymap.ModeErrorModal:
		return c.applyErrorModal(a)
	case keymap.ModeHelpModal:
		return c.applyHelp(a)
	case keymap.ModeCalendarPicker:
		return c.applyCalendar(a)
	case keymap.ModeOverlayMenu:
		return c.applyMenu(a)
	}
	return nil
}

func (c *Controller) applyNormal(a keymap.Action) tea.Cmd {
	t := c.ActiveTab()
	switch a.Kind {
	case keymap.ActionNextItem, keymap.ActionPrevItem, keymap.ActionPageDown,
		keymap.ActionPageUp, keymap.ActionTop, keymap.ActionBottom:
		t.navigate(a.Kind)
	case keymap.ActionExpandRow:
		t.expand()
	case keymap.ActionCollapseRow:
		t.collapse()
	case keymap.ActionToggleExpand:
		t.toggle()
	case keymap.ActionSelect:
		return c.selectItem()
	case keymap.ActionGoBack:
		c.goBack()
	case keymap.ActionRefresh:
		return c.refresh()
	case keymap.ActionRetry:
		return c.retry()
	case keymap.ActionNextPage:
		return c.nextPage()
	case keymap.ActionPrevPage:
		return c.prevPage()
	case keymap.ActionSortByColumn:
		t.cycleSort()
	case keymap.ActionToggleSortDirection:
		t.toggleSortDirection()
	case keymap.ActionOpenServicePicker:
		c.openPicker(keymap.PickerService)
	case keymap.ActionOpenRegionPicker:
		c.openPicker(keymap.PickerRegion)
	case keymap.ActionOpenProfilePicker:
		c.openPicker(keymap.PickerProfile)
	case keymap.ActionOpenTabPicker:
		c.openPicker(keymap.PickerTab)
	case keymap.ActionOpenSessionPicker:
		return c.openSessionPicker()
	case keymap.ActionNewTab:
		return c.newTab()
	case keymap.ActionCloseTab:
		return c.closeTab(c.active)
	case keymap.ActionNextTab:
		return c.activate((c.active + 1) % len(c.tabs))
	case keymap.ActionPrevTab:
		return c.activate((c.active - 1 + len(c.tabs)) % len(c.tabs))
	case keymap.ActionOpenFilter:
		c.openFilter()
	case keymap.ActionOpenEventFilter:
		return c.openEvents()
	case keymap.ActionOpenQuery:
		c.openQuery()
	case keymap.ActionOpenCalendar:
		c.openCalendar()
	case keymap.ActionOpenColumnSelector:
		c.openColumnSelector()
	case keymap.ActionOpenHelp:
		c.help = 0
		c.setMode(keymap.HelpModal)
	case keymap.ActionOpenMenu:
		c.openMenu()
	}
	return nil
}

func (c *Controller) applyErrorModal(a keymap.Action) tea.Cmd {
	switch a.Kind {
	case keymap.ActionCloseMenu:
		c.failure = nil
		c.setMode(keymap.Normal)
	case keymap.ActionRetry:
		return c.retry()
	}
	return nil
}

// fail records err, keeps the data already shown and opens the error
// modal. retry re-issues the failed request.
func (c *Controller) fail(context string, err error, retry func() tea.Cmd) {
	c.log.Error(err, "request failed", "context", context)
	c.failure = &Failure{Err: err, Context: context, retry: retry}
	c.picker, c.menu, c.columns = nil, nil, nil
	c.setMode(keymap.ErrorModal)
}

func (c *Controller) retry() tea.Cmd {
	f := c.failure
	c.failure = nil
	c.setMode(keymap.Normal)
	if f != nil && f.retry != nil {
		return f.retry()
	}
	t := c.ActiveTab()
	if t.last != nil {
		return t.last()
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
