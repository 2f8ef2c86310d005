package controller

import (
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/cloudx/internal/cel"
	"github.com/oakwood-commons/cloudx/internal/focus"
	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/session"
	"github.com/oakwood-commons/cloudx/internal/source"
	"github.com/oakwood-commons/cloudx/internal/view"
)

// Filter modes for list matching.
const (
	FilterSubstring = "substring"
	FilterFuzzy     = "fuzzy"
	FilterGlob      = "glob"
)

// Control names with built-in behaviour.
const (
	ControlExact    = "exact"
	ControlArchived = "archived"
	ControlRange    = "range"
)

// Pane is what a tab shows.
type Pane int

const (
	PaneList Pane = iota
	PaneTree
	PaneEvents
	PaneQuery
)

// Tab is one open listing with its own view state.
type Tab struct {
	ID         uint64
	Service    resource.Service
	Breadcrumb []string

	List     *view.Model[resource.Item]
	Focus    *focus.Ring
	Controls map[string]string
	Columns  []string

	Pane   Pane
	Tree   *TreePane
	Events *EventsPane
	Query  *QueryPane

	// Loading is set while a list fetch is in flight.
	Loading bool
	// Err is the last failed fetch; the items shown are stale when set.
	Err error
	// Truncated is set when the listing stopped at the service's item cap.
	Truncated bool
	// Pager tracks remote pages for services that page with peeking.
	Pager *source.Pager

	QueryDraft string
	QueryEnd   time.Time

	filterMode    string
	filterBackup  string
	expr          *cel.Filter
	pageDigits    string
	sortIndex     int
	gen           uint64
	last          func() tea.Cmd
	pendingSelect string
	pendingTree   bool
	stale         bool
}

func newTab(id uint64, svc resource.Service, pageSize int, filterMode string) *Tab {
	t := &Tab{
		ID:         id,
		Service:    svc,
		Breadcrumb: []string{svc.DisplayTitle()},
		Focus:      focus.NewRing(svc.FocusControls()...),
		Controls:   make(map[string]string),
		Columns:    append([]string(nil), svc.Columns...),
		filterMode: filterMode,
	}
	if len(t.Columns) == 0 {
		t.Columns = []string{resource.ColumnName, resource.ColumnID}
	}
	for _, ctl := range svc.Controls {
		switch ctl.Kind {
		case focus.KindCheckbox:
			t.Controls[ctl.Name] = "false"
		case focus.KindDropdown:
			t.Controls[ctl.Name] = ctl.Options[0]
		}
	}
	if svc.PeekPages {
		t.Pager = source.NewPager()
	}
	t.List = view.New(pageSize,
		view.WithMatcher(t.listMatcher()),
		view.WithCompare(view.Compare[resource.Item](resource.CompareField)),
	)
	t.applyPredicate()
	return t
}

// Title is the tab label.
func (t *Tab) Title() string {
	return strings.Join(t.Breadcrumb, " › ")
}

// Checked reports whether the named checkbox is on.
func (t *Tab) Checked(name string) bool {
	return t.Controls[name] == "true"
}

func itemText(it resource.Item) string { return it.FilterText() }

func (t *Tab) listMatcher() view.Matcher[resource.Item] {
	var base view.Matcher[resource.Item]
	switch t.filterMode {
	case FilterFuzzy:
		base = view.FuzzyMatcher(itemText)
	case FilterGlob:
		base = view.GlobMatcher(itemText)
	default:
		base = view.SubstringMatcher(itemText)
	}
	return func(it resource.Item, filter string) bool {
		if cel.IsExpression(filter) {
			return true
		}
		if t.Checked(ControlExact) {
			return strings.EqualFold(it.Title(), filter) || strings.EqualFold(it.ID, filter)
		}
		return base(it, filter)
	}
}

// applyPredicate installs the checkbox and expression predicates.
func (t *Tab) applyPredicate() {
	var preds []func(resource.Item) bool
	if _, ok := t.Service.Control(ControlArchived); ok && !t.Checked(ControlArchived) {
		preds = append(preds, func(it resource.Item) bool { return it.Attributes[ControlArchived] != "true" })
	}
	if t.expr != nil {
		match := t.expr.Predicate()
		preds = append(preds, func(it resource.Item) bool { return match(it.Vars()) })
	}
	if len(preds) == 0 {
		t.List.SetPredicate(nil)
		return
	}
	t.List.SetPredicate(func(it resource.Item) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}
		return true
	})
}

// QueryRange returns the duration selected in the range dropdown.
func (t *Tab) QueryRange() time.Duration {
	return parseRange(t.Controls[ControlRange])
}

func parseRange(s string) time.Duration {
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// cursor is the navigation surface shared by every pane's view model.
type cursor interface {
	NextItem(count int)
	PrevItem()
	PageDown(count int)
	PageUp()
	Top()
	Bottom(count int)
	Len() int
	GotoPage(page, total int)
	CurrentPage() int
	PageCount() int
	ToggleExpand()
	Expand()
	Collapse()
}

func (t *Tab) cursor() cursor {
	switch {
	case t.Pane == PaneTree && t.Tree != nil:
		return t.Tree.Rows
	case t.Pane == PaneEvents && t.Events != nil:
		return t.Events.List
	case t.Pane == PaneQuery && t.Query != nil:
		return t.Query.Results
	}
	return t.List
}

func navigate(m cursor, kind keymap.ActionKind) {
	switch kind {
	case keymap.ActionNextItem:
		m.NextItem(m.Len())
	case keymap.ActionPrevItem:
		m.PrevItem()
	case keymap.ActionPageDown:
		m.PageDown(m.Len())
	case keymap.ActionPageUp:
		m.PageUp()
	case keymap.ActionTop:
		m.Top()
	case keymap.ActionBottom:
		m.Bottom(m.Len())
	}
}

func (t *Tab) navigate(kind keymap.ActionKind) {
	navigate(t.cursor(), kind)
}

func (t *Tab) expand() {
	if t.Pane == PaneTree && t.Tree != nil {
		t.Tree.Open()
		return
	}
	t.cursor().Expand()
}

func (t *Tab) collapse() {
	if t.Pane == PaneTree && t.Tree != nil {
		t.Tree.Close()
		return
	}
	t.cursor().Collapse()
}

func (t *Tab) toggle() {
	if t.Pane == PaneTree && t.Tree != nil {
		t.Tree.Toggle()
		return
	}
	t.cursor().ToggleExpand()
}

// gotoPage jumps the active pane to page, clamped to the last page.
func (t *Tab) gotoPage(page int) {
	m := t.cursor()
	page = min(max(page, 1), m.PageCount())
	m.GotoPage(page, m.Len())
}

func (t *Tab) sortable() *view.Model[resource.Item] {
	if t.Pane == PaneQuery && t.Query != nil {
		return t.Query.Results
	}
	if t.Pane == PaneList {
		return t.List
	}
	return nil
}

func (t *Tab) sortColumns() []string {
	if t.Pane == PaneQuery && t.Query != nil {
		return t.Query.Columns
	}
	return t.Columns
}

// cycleSort steps through the visible columns and back to source order.
func (t *Tab) cycleSort() {
	m := t.sortable()
	if m == nil {
		return
	}
	cols := t.sortColumns()
	t.sortIndex = (t.sortIndex + 1) % (len(cols) + 1)
	if t.sortIndex == 0 {
		m.SetSort("", false)
		return
	}
	m.SetSort(cols[t.sortIndex-1], false)
}

func (t *Tab) toggleSortDirection() {
	if m := t.sortable(); m != nil {
		if col, _ := m.SortColumn(); col != "" {
			m.ToggleSortDirection()
		}
	}
}

func (t *Tab) resize(rows int) {
	t.List.SetPageSize(rows)
	if t.Tree != nil {
		t.Tree.Rows.SetPageSize(rows)
	}
	if t.Events != nil {
		t.Events.List.SetPageSize(rows)
	}
	if t.Query != nil {
		t.Query.Results.SetPageSize(rows)
	}
}

// session captures the tab for persistence.
func (t *Tab) session(region, profile string) session.Tab {
	st := session.Tab{
		Service:    t.Service.Name,
		Title:      t.Title(),
		Breadcrumb: append([]string(nil), t.Breadcrumb...),
		Region:     region,
		Profile:    profile,
	}
	if f := t.List.Filter(); f != "" {
		st.Filter = &f
	}
	if it, ok := t.List.Selected(); ok {
		id := it.ID
		st.SelectedItem = &id
	}
	return st
}

// restore applies a persisted tab's filter and remembers which item to
// select once the listing arrives. A breadcrumb one level deep records an
// open tree pane, which is reopened on that item.
func (t *Tab) restore(st session.Tab) {
	if st.Filter != nil {
		t.List.SetFilter(*st.Filter)
		if cel.IsExpression(*st.Filter) {
			if f, err := cel.Compile(*st.Filter); err == nil {
				t.expr = f
				t.applyPredicate()
			}
		}
	}
	if st.SelectedItem != nil {
		t.pendingSelect = *st.SelectedItem
		t.pendingTree = len(st.Breadcrumb) == 2 && t.Service.Hierarchy != resource.HierarchyNone
	}
}
