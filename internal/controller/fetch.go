package controller

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/source"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

// listLoadedMsg carries a finished list fetch. gen ties it to the request
// that produced it; results of superseded requests are dropped.
type listLoadedMsg struct {
	tab       uint64
	gen       uint64
	items     []resource.Item
	truncated bool

	paged   bool
	target  int
	next    *string
	hasNext bool

	err error
}

// ReloadMsg reloads the active tab and marks the others stale, as after
// the backing data changed.
type ReloadMsg struct{}

func (c *Controller) tabByID(id uint64) *Tab {
	for _, t := range c.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (c *Controller) isActive(t *Tab) bool {
	return c.ActiveTab() == t
}

// loadTab reloads t from the start: the first remote page for peeking
// services, everything up to the item cap for the rest.
func (c *Controller) loadTab(t *Tab) tea.Cmd {
	if t.Pager != nil {
		t.Pager.Reset()
		return c.loadPage(t, 0, nil)
	}
	return c.loadAll(t)
}

func (c *Controller) beginLoad(t *Tab, again func() tea.Cmd) (uint64, source.Fetcher[resource.Item]) {
	t.gen = c.nextGen()
	t.Loading = true
	t.List.SetLoading(true)
	t.stale = false
	t.last = again
	c.log.V(1).Info("loading", logger.ServiceKey, t.Service.Name, "region", c.region, "profile", c.profile, "gen", t.gen)
	return t.gen, c.opts.Backend.Resources(t.Service.Name, c.region, c.profile)
}

func (c *Controller) loadAll(t *Tab) tea.Cmd {
	gen, fetcher := c.beginLoad(t, func() tea.Cmd { return c.loadAll(t) })
	id := t.ID
	opts := source.FollowOptions{MaxItems: t.Service.MaxItems, PageSize: t.Service.PageSize}
	return func() tea.Msg {
		ctx, cancel := c.fetchContext()
		defer cancel()
		got, err := source.Follow(ctx, fetcher, opts)
		return listLoadedMsg{tab: id, gen: gen, items: got.Items, truncated: got.Truncated, err: err}
	}
}

func (c *Controller) loadPage(t *Tab, target int, cursor *string) tea.Cmd {
	gen, fetcher := c.beginLoad(t, func() tea.Cmd { return c.loadPage(t, target, cursor) })
	id := t.ID
	size := t.Service.PageSize
	return func() tea.Msg {
		ctx, cancel := c.fetchContext()
		defer cancel()
		got, err := source.FetchPage(ctx, fetcher, cursor, size, true)
		return listLoadedMsg{
			tab: id, gen: gen, items: got.Page.Items,
			paged: true, target: target, next: got.Page.Next, hasNext: got.HasNext,
			err: err,
		}
	}
}

func (c *Controller) onListLoaded(msg listLoadedMsg) tea.Cmd {
	t := c.tabByID(msg.tab)
	if t == nil || msg.gen != t.gen {
		c.log.V(1).Info("dropping stale listing", "tab", msg.tab, "gen", msg.gen)
		return nil
	}
	t.Loading = false
	t.List.SetLoading(false)
	if msg.err != nil {
		t.Err = msg.err
		t.List.SetErr(msg.err)
		if c.isActive(t) {
			c.fail("list "+t.Service.DisplayTitle(), msg.err, t.last)
		}
		return nil
	}
	t.Err = nil
	t.List.SetErr(nil)
	if msg.paged {
		t.Pager.Commit(msg.target, msg.next, msg.hasNext)
	}
	t.Truncated = msg.truncated
	t.List.SetItems(msg.items)
	if c.isActive(t) {
		c.status = listStatus(t, len(msg.items))
	}
	if t.pendingSelect != "" {
		id := t.pendingSelect
		found := t.List.SelectWhere(func(it resource.Item) bool { return it.ID == id })
		openTree := found && t.pendingTree
		t.pendingSelect, t.pendingTree = "", false
		if openTree {
			it, _ := t.List.Selected()
			return c.openTree(t, it)
		}
	}
	return nil
}

func listStatus(t *Tab, n int) string {
	s := fmt.Sprintf("%d %s", n, t.Service.DisplayTitle())
	if t.Truncated {
		s += fmt.Sprintf(" (first %d)", t.Service.MaxItems)
	}
	if t.Pager != nil {
		s += fmt.Sprintf(", page %d", t.Pager.Page()+1)
	}
	return s
}

// refresh reloads what the active pane shows.
func (c *Controller) refresh() tea.Cmd {
	t := c.ActiveTab()
	switch t.Pane {
	case PaneTree:
		if t.Tree != nil {
			return c.loadChildren(t, t.Tree.Parent)
		}
	case PaneEvents:
		if t.Events != nil {
			return c.loadEvents(t, t.Events.Resource)
		}
	case PaneQuery:
		return nil
	}
	if t.Pager != nil {
		target, cursor := t.Pager.Current()
		return c.loadPage(t, target, cursor)
	}
	return c.loadAll(t)
}

// nextPage moves to the following page: a remote fetch for peeking
// services, a local jump otherwise.
func (c *Controller) nextPage() tea.Cmd {
	t := c.ActiveTab()
	if t.Pane == PaneList && t.Pager != nil {
		if t.Loading {
			return nil
		}
		target, cursor, ok := t.Pager.Next()
		if !ok {
			return nil
		}
		return c.loadPage(t, target, cursor)
	}
	t.gotoPage(t.cursor().CurrentPage() + 1)
	return nil
}

func (c *Controller) prevPage() tea.Cmd {
	t := c.ActiveTab()
	if t.Pane == PaneList && t.Pager != nil {
		if t.Loading {
			return nil
		}
		target, cursor, ok := t.Pager.Prev()
		if !ok {
			return nil
		}
		return c.loadPage(t, target, cursor)
	}
	t.gotoPage(t.cursor().CurrentPage() - 1)
	return nil
}

// contextChanged reloads the active tab after a region or profile switch
// and marks the others stale so they reload when activated.
func (c *Controller) contextChanged() tea.Cmd {
	for _, t := range c.tabs {
		t.stale = true
		t.Pane = PaneList
		t.Tree, t.Events, t.Query = nil, nil, nil
		t.Breadcrumb = t.Breadcrumb[:1]
	}
	return c.loadTab(c.ActiveTab())
}
