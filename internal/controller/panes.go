package controller

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/cloudx/internal/hierarchy"
	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/source"
	"github.com/oakwood-commons/cloudx/internal/view"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

// TreePane shows the sub-resources of one item as a tree.
type TreePane struct {
	Parent  resource.Item
	Result  hierarchy.Result
	Rows    *view.Model[hierarchy.Row]
	Loading bool

	full   hierarchy.Result
	open   map[string]bool
	filter string
	gen    uint64
}

func newTreePane(parent resource.Item, pageSize int) *TreePane {
	return &TreePane{
		Parent: parent,
		Rows:   view.New[hierarchy.Row](pageSize),
		open:   make(map[string]bool),
	}
}

// IsOpen reports whether node id shows its children.
func (p *TreePane) IsOpen(id string) bool {
	return p.filter != "" || p.open[id]
}

func (p *TreePane) setResult(r hierarchy.Result) {
	p.full = r
	p.applyFilter()
	p.rebuild()
}

func (p *TreePane) applyFilter() {
	if p.filter == "" {
		p.Result = p.full
	} else {
		p.Result = hierarchy.Filter(p.full, hierarchy.LabelContains(p.filter))
	}
}

// rebuild re-flattens the tree, keeping the selected node selected.
func (p *TreePane) rebuild() {
	selected, hadSelection := p.Rows.Selected()
	p.Rows.SetItems(hierarchy.Flatten(p.Result, p.IsOpen))
	if hadSelection {
		p.Rows.SelectWhere(func(r hierarchy.Row) bool { return r.ID == selected.ID })
	}
}

// Open expands the selected node.
func (p *TreePane) Open() {
	row, ok := p.Rows.Selected()
	if !ok || !row.HasChildren || p.IsOpen(row.ID) {
		return
	}
	p.open[row.ID] = true
	p.rebuild()
}

// Close collapses the selected node, or moves to its parent when it is
// already closed.
func (p *TreePane) Close() {
	row, ok := p.Rows.Selected()
	if !ok {
		return
	}
	if row.HasChildren && p.open[row.ID] {
		delete(p.open, row.ID)
		p.rebuild()
		return
	}
	rows := p.Rows.Filtered()
	for i := p.Rows.SelectedIndex() - 1; i >= 0; i-- {
		if rows[i].Depth < row.Depth {
			p.Rows.Select(i)
			return
		}
	}
}

// Toggle flips the selected node.
func (p *TreePane) Toggle() {
	row, ok := p.Rows.Selected()
	if !ok || !row.HasChildren {
		return
	}
	if p.open[row.ID] {
		delete(p.open, row.ID)
	} else {
		p.open[row.ID] = true
	}
	p.rebuild()
}

// Filter returns the label filter.
func (p *TreePane) Filter() string { return p.filter }

// SetFilter keeps nodes whose label, or a descendant's, contains filter.
// Every kept node is shown open and the first row is selected.
func (p *TreePane) SetFilter(filter string) {
	p.filter = filter
	p.applyFilter()
	p.Rows.SetItems(hierarchy.Flatten(p.Result, p.IsOpen))
	p.Rows.Top()
	p.Rows.Collapse()
}

func (p *TreePane) FilterPush(r rune) { p.SetFilter(p.filter + string(r)) }

func (p *TreePane) FilterPop() {
	_, size := utf8.DecodeLastRuneInString(p.filter)
	p.SetFilter(p.filter[:len(p.filter)-size])
}

func (p *TreePane) FilterClear() { p.SetFilter("") }

// EventsPane lists the events of one item.
type EventsPane struct {
	Resource resource.Item
	List     *view.Model[resource.Event]
	Loading  bool
	gen      uint64
}

// QueryPane shows the draft's last run.
type QueryPane struct {
	Query   *source.Query[resource.Item]
	Results *view.Model[resource.Item]
	Columns []string
	gen     uint64
}

// Running reports whether a query is in flight.
func (p *QueryPane) Running() bool {
	return p.Query != nil && !p.Query.Done()
}

type childrenLoadedMsg struct {
	tab    uint64
	gen    uint64
	parent string
	items  []resource.Item
	err    error
}

type eventsLoadedMsg struct {
	tab    uint64
	gen    uint64
	events []resource.Event
	err    error
}

type queryStartedMsg struct {
	tab   uint64
	gen   uint64
	query *source.Query[resource.Item]
	err   error
}

type queryTickMsg struct {
	tab uint64
	gen uint64
}

type queryPolledMsg struct {
	tab    uint64
	gen    uint64
	result source.QueryResult[resource.Item]
	err    error
}

// selectItem drills into the selected item: a tree of sub-resources for
// hierarchical services, the detail row otherwise.
func (c *Controller) selectItem() tea.Cmd {
	t := c.ActiveTab()
	switch t.Pane {
	case PaneTree:
		t.Tree.Toggle()
		return nil
	case PaneList:
		it, ok := t.List.Selected()
		if !ok {
			return nil
		}
		if t.Service.Hierarchy == resource.HierarchyNone {
			t.List.ToggleExpand()
			return nil
		}
		return c.openTree(t, it)
	}
	t.cursor().ToggleExpand()
	return nil
}

// openTree pushes the tree pane of it and loads its sub-resources.
func (c *Controller) openTree(t *Tab, it resource.Item) tea.Cmd {
	t.Pane = PaneTree
	t.Tree = newTreePane(it, c.opts.PageSize)
	t.Breadcrumb = append(t.Breadcrumb[:1], it.Title())
	return c.loadChildren(t, it)
}

// goBack leaves a sub-pane, or clears the list filter on the list itself.
func (c *Controller) goBack() {
	t := c.ActiveTab()
	if t.Pane != PaneList {
		t.Pane = PaneList
		t.Tree, t.Events = nil, nil
		t.Breadcrumb = t.Breadcrumb[:1]
		return
	}
	if t.List.Filter() != "" || t.expr != nil {
		t.expr = nil
		t.applyPredicate()
		t.List.FilterClear()
	}
}

func (c *Controller) loadChildren(t *Tab, parent resource.Item) tea.Cmd {
	p := t.Tree
	p.gen = c.nextGen()
	p.Loading = true
	p.Rows.SetLoading(true)
	gen, id, service := p.gen, t.ID, t.Service
	fetcher := c.opts.Backend.Children(service.Name, parent.ID)
	return func() tea.Msg {
		ctx, cancel := c.fetchContext()
		defer cancel()
		got, err := source.Follow(ctx, fetcher, source.FollowOptions{PageSize: service.PageSize})
		return childrenLoadedMsg{tab: id, gen: gen, parent: parent.ID, items: got.Items, err: err}
	}
}

func (c *Controller) onChildrenLoaded(msg childrenLoadedMsg) tea.Cmd {
	t := c.tabByID(msg.tab)
	if t == nil || t.Tree == nil || t.Tree.gen != msg.gen {
		return nil
	}
	p := t.Tree
	p.Loading = false
	p.Rows.SetLoading(false)
	if msg.err != nil {
		p.Rows.SetErr(msg.err)
		parent := p.Parent
		c.fail("load children of "+parent.Title(), msg.err, func() tea.Cmd { return c.loadChildren(t, parent) })
		return nil
	}
	p.Rows.SetErr(nil)
	r := BuildTree(t.Service.Hierarchy, msg.items)
	for _, issue := range r.Issues {
		c.log.V(1).Info("tree issue", "parent", msg.parent, "issue", issue.Error())
	}
	p.setResult(r)
	c.status = fmt.Sprintf("%d nodes under %s", r.Len(), p.Parent.Title())
	return nil
}

// BuildTree arranges items with the builder for kind: key paths for
// HierarchyPath, parent ids otherwise.
func BuildTree(kind resource.HierarchyKind, items []resource.Item) hierarchy.Result {
	if kind == resource.HierarchyPath {
		return hierarchy.BuildPaths(items, resource.Item.HierarchyKey)
	}
	entries := make([]hierarchy.ParentEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, hierarchy.ParentEntry{
			ID:       it.ID,
			ParentID: it.ParentID,
			Label:    it.Title(),
			SubItems: it.SubItems,
			ARN:      it.ARN,
			Metadata: it,
		})
	}
	return hierarchy.BuildParents(entries)
}

// openEvents shows the selected item's events and focuses their filter.
func (c *Controller) openEvents() tea.Cmd {
	t := c.ActiveTab()
	if t.Pane == PaneEvents && t.Events != nil {
		c.setMode(keymap.EventFilterInput)
		return nil
	}
	if !t.Service.Events {
		c.status = t.Service.DisplayTitle() + " has no events"
		return nil
	}
	it, ok := t.List.Selected()
	if !ok {
		return nil
	}
	t.Pane = PaneEvents
	t.Tree = nil
	t.Events = &EventsPane{
		Resource: it,
		List: view.New(c.opts.PageSize,
			view.WithMatcher(view.SubstringMatcher(resource.Event.FilterText))),
	}
	t.Breadcrumb = append(t.Breadcrumb[:1], it.Title(), "events")
	c.setMode(keymap.EventFilterInput)
	return c.loadEvents(t, it)
}

func (c *Controller) loadEvents(t *Tab, it resource.Item) tea.Cmd {
	p := t.Events
	p.gen = c.nextGen()
	p.Loading = true
	p.List.SetLoading(true)
	gen, id := p.gen, t.ID
	fetcher := c.opts.Backend.Events(it.ID)
	return func() tea.Msg {
		ctx, cancel := c.fetchContext()
		defer cancel()
		got, err := source.Follow(ctx, fetcher, source.FollowOptions{})
		return eventsLoadedMsg{tab: id, gen: gen, events: got.Items, err: err}
	}
}

func (c *Controller) onEventsLoaded(msg eventsLoadedMsg) tea.Cmd {
	t := c.tabByID(msg.tab)
	if t == nil || t.Events == nil || t.Events.gen != msg.gen {
		return nil
	}
	p := t.Events
	p.Loading = false
	p.List.SetLoading(false)
	if msg.err != nil {
		p.List.SetErr(msg.err)
		it := p.Resource
		c.fail("load events of "+it.Title(), msg.err, func() tea.Cmd { return c.loadEvents(t, it) })
		return nil
	}
	p.List.SetErr(nil)
	p.List.SetItems(msg.events)
	c.status = fmt.Sprintf("%d events", len(msg.events))
	return nil
}

// openQuery focuses the query editor of a queryable service.
func (c *Controller) openQuery() {
	t := c.ActiveTab()
	if !t.Service.Queryable {
		c.status = t.Service.DisplayTitle() + " is not queryable"
		return
	}
	if t.Query == nil {
		t.Query = &QueryPane{
			Results: view.New(c.opts.PageSize,
				view.WithMatcher(view.SubstringMatcher(itemText)),
				view.WithCompare(view.Compare[resource.Item](resource.CompareField))),
		}
	}
	t.Pane = PaneQuery
	t.Tree, t.Events = nil, nil
	t.Breadcrumb = append(t.Breadcrumb[:1], "query")
	c.setMode(keymap.QueryInput)
}

func (c *Controller) applyQueryInput(a keymap.Action) tea.Cmd {
	t := c.ActiveTab()
	switch a.Kind {
	case keymap.ActionQueryChar:
		t.QueryDraft += string(a.Char)
	case keymap.ActionQueryBackspace:
		_, size := utf8.DecodeLastRuneInString(t.QueryDraft)
		t.QueryDraft = t.QueryDraft[:len(t.QueryDraft)-size]
	case keymap.ActionExecuteQuery:
		return c.executeQuery(t)
	case keymap.ActionCloseMenu:
		c.setMode(keymap.Normal)
	}
	return nil
}

// executeQuery submits the draft. The end of the window is the calendar
// date when one was picked, now otherwise.
func (c *Controller) executeQuery(t *Tab) tea.Cmd {
	if t.QueryDraft == "" || t.Query == nil {
		return nil
	}
	end := t.QueryEnd
	if end.IsZero() {
		end = c.opts.Now()
	}
	req := source.QueryRequest{
		Service: t.Service.Name,
		Text:    t.QueryDraft,
		End:     end,
		Range:   t.QueryRange(),
	}
	p := t.Query
	p.gen = c.nextGen()
	p.Query = nil
	p.Results.SetLoading(true)
	c.setMode(keymap.Normal)
	c.status = "query running"
	t.last = func() tea.Cmd { return c.executeQuery(t) }

	gen, id := p.gen, t.ID
	client := c.opts.Backend.Queries(t.Service.Name)
	return func() tea.Msg {
		ctx, cancel := c.fetchContext()
		defer cancel()
		q, err := source.StartQuery(ctx, client, req)
		return queryStartedMsg{tab: id, gen: gen, query: q, err: err}
	}
}

func (c *Controller) queryPane(tab, gen uint64) (*Tab, *QueryPane) {
	t := c.tabByID(tab)
	if t == nil || t.Query == nil || t.Query.gen != gen {
		return nil, nil
	}
	return t, t.Query
}

func (c *Controller) onQueryStarted(msg queryStartedMsg) tea.Cmd {
	t, p := c.queryPane(msg.tab, msg.gen)
	if p == nil {
		return nil
	}
	if msg.err != nil {
		p.Results.SetLoading(false)
		c.fail("query", msg.err, func() tea.Cmd { return c.executeQuery(t) })
		return nil
	}
	p.Query = msg.query
	c.log.V(1).Info("query started", "id", msg.query.ID, logger.ServiceKey, t.Service.Name)
	return c.pollAfter(msg.tab, msg.gen)
}

func (c *Controller) pollAfter(tab, gen uint64) tea.Cmd {
	return tea.Tick(c.opts.PollInterval, func(time.Time) tea.Msg {
		return queryTickMsg{tab: tab, gen: gen}
	})
}

func (c *Controller) onQueryTick(msg queryTickMsg) tea.Cmd {
	t, p := c.queryPane(msg.tab, msg.gen)
	if p == nil || !p.Running() {
		return nil
	}
	client := c.opts.Backend.Queries(t.Service.Name)
	id := p.Query.ID
	return func() tea.Msg {
		ctx, cancel := c.fetchContext()
		defer cancel()
		res, err := client.PollQuery(ctx, id)
		return queryPolledMsg{tab: msg.tab, gen: msg.gen, result: res, err: err}
	}
}

func (c *Controller) onQueryPolled(msg queryPolledMsg) tea.Cmd {
	t, p := c.queryPane(msg.tab, msg.gen)
	if p == nil || !p.Running() {
		return nil
	}
	if msg.err != nil {
		p.Results.SetLoading(false)
		c.fail("poll query "+p.Query.ID, msg.err, func() tea.Cmd {
			p.Results.SetLoading(true)
			return c.pollAfter(msg.tab, msg.gen)
		})
		return nil
	}
	p.Query.Apply(msg.result)
	if !p.Query.Done() {
		c.status = fmt.Sprintf("query running (%d polls)", p.Query.Polls)
		return c.pollAfter(msg.tab, msg.gen)
	}
	p.Results.SetLoading(false)
	if p.Query.State == source.QueryFailed {
		c.fail("query", p.Query.Err, func() tea.Cmd { return c.executeQuery(t) })
		return nil
	}
	p.Columns = resultColumns(p.Query.Rows)
	p.Results.SetItems(p.Query.Rows)
	c.status = fmt.Sprintf("%d rows", len(p.Query.Rows))
	return nil
}

// resultColumns is the id column followed by every attribute seen in rows.
func resultColumns(rows []resource.Item) []string {
	seen := make(map[string]bool)
	var attrs []string
	for _, r := range rows {
		for _, name := range r.AttributeNames() {
			if !seen[name] {
				seen[name] = true
				attrs = append(attrs, name)
			}
		}
	}
	sort.Strings(attrs)
	return append([]string{resource.ColumnID}, attrs...)
}
