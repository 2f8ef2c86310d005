package controller

import (
	"sort"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/cloudx/internal/hierarchy"
	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/resource"
)

// MenuItem is one entry of the overlay menu.
type MenuItem struct {
	Label string
	run   func() tea.Cmd
}

// Menu is the overlay menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func (c *Controller) openMenu() {
	c.menu = &Menu{Items: []MenuItem{
		{Label: "Refresh", run: c.refresh},
		{Label: "Copy ARN", run: c.copyARN},
		{Label: "Save session", run: c.saveSession},
		{Label: "Help", run: func() tea.Cmd {
			c.help = 0
			c.setMode(keymap.HelpModal)
			return nil
		}},
		{Label: "Quit", run: func() tea.Cmd {
			c.quitting = true
			return tea.Quit
		}},
	}}
	c.setMode(keymap.OverlayMenu)
}

func (c *Controller) applyMenu(a keymap.Action) tea.Cmd {
	m := c.menu
	if m == nil {
		c.setMode(keymap.Normal)
		return nil
	}
	switch a.Kind {
	case keymap.ActionNextItem:
		m.Selected = min(m.Selected+1, len(m.Items)-1)
	case keymap.ActionPrevItem:
		m.Selected = max(m.Selected-1, 0)
	case keymap.ActionCloseMenu:
		c.menu = nil
		c.setMode(keymap.Normal)
	case keymap.ActionSelect:
		item := m.Items[m.Selected]
		c.menu = nil
		c.setMode(keymap.Normal)
		return item.run()
	}
	return nil
}

type clipboardMsg struct {
	text string
	err  error
}

// selectedARN returns the ARN of the row under the cursor in the active
// pane.
func (c *Controller) selectedARN() string {
	t := c.ActiveTab()
	switch t.Pane {
	case PaneTree:
		if row, ok := t.Tree.Rows.Selected(); ok {
			return nodeARN(row)
		}
	case PaneQuery:
		if it, ok := t.Query.Results.Selected(); ok {
			return it.ARN
		}
	case PaneEvents:
		return t.Events.Resource.ARN
	default:
		if it, ok := t.List.Selected(); ok {
			return it.ARN
		}
	}
	return ""
}

func nodeARN(row hierarchy.Row) string {
	if row.ARN != "" {
		return row.ARN
	}
	if it, ok := row.Metadata.(resource.Item); ok {
		return it.ARN
	}
	return ""
}

// copyARN puts the selected ARN on the system clipboard.
func (c *Controller) copyARN() tea.Cmd {
	arn := c.selectedARN()
	if arn == "" {
		c.status = "nothing to copy"
		return nil
	}
	write := c.opts.Clipboard
	return func() tea.Msg {
		return clipboardMsg{text: arn, err: write(arn)}
	}
}

// onClipboard falls back to the terminal's clipboard escape sequence when
// the system clipboard is unavailable.
func (c *Controller) onClipboard(msg clipboardMsg) tea.Cmd {
	if msg.err != nil {
		c.log.V(1).Info("system clipboard unavailable", "err", msg.err.Error())
		c.status = "copied via terminal: " + msg.text
		return tea.SetClipboard(msg.text)
	}
	c.status = "copied " + msg.text
	return nil
}

// ColumnSelector toggles which columns the list shows.
type ColumnSelector struct {
	Options  []string
	Visible  map[string]bool
	Selected int
}

func (c *Controller) openColumnSelector() {
	t := c.ActiveTab()
	if t.Pane != PaneList {
		return
	}
	seen := make(map[string]bool)
	var options []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			options = append(options, name)
		}
	}
	for _, col := range t.Service.Columns {
		add(col)
	}
	for _, col := range []string{resource.ColumnName, resource.ColumnID, resource.ColumnARN, resource.ColumnRegion, resource.ColumnParent} {
		add(col)
	}
	var attrs []string
	for _, it := range t.List.Items() {
		for _, name := range it.AttributeNames() {
			if !seen[name] {
				seen[name] = true
				attrs = append(attrs, name)
			}
		}
	}
	sort.Strings(attrs)
	options = append(options, attrs...)

	visible := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		visible[col] = true
	}
	c.columns = &ColumnSelector{Options: options, Visible: visible}
	c.setMode(keymap.ColumnSelector)
}

func (c *Controller) applyColumnSelector(a keymap.Action) tea.Cmd {
	s := c.columns
	if s == nil {
		c.setMode(keymap.Normal)
		return nil
	}
	switch a.Kind {
	case keymap.ActionNextItem:
		s.Selected = min(s.Selected+1, len(s.Options)-1)
	case keymap.ActionPrevItem:
		s.Selected = max(s.Selected-1, 0)
	case keymap.ActionToggleColumn:
		col := s.Options[s.Selected]
		if s.Visible[col] && len(c.ActiveTab().Columns) == 1 {
			c.status = "at least one column stays visible"
			return nil
		}
		s.Visible[col] = !s.Visible[col]
		c.ActiveTab().setColumns(s)
	case keymap.ActionCloseMenu:
		c.columns = nil
		c.setMode(keymap.Normal)
	}
	return nil
}

// setColumns keeps the visible columns in selector order and drops a sort
// on a hidden column.
func (t *Tab) setColumns(s *ColumnSelector) {
	t.Columns = t.Columns[:0]
	for _, col := range s.Options {
		if s.Visible[col] {
			t.Columns = append(t.Columns, col)
		}
	}
	if col, _ := t.List.SortColumn(); col != "" && !s.Visible[col] {
		t.List.SetSort("", false)
		t.sortIndex = 0
	}
}

func (c *Controller) applyHelp(a keymap.Action) tea.Cmd {
	switch a.Kind {
	case keymap.ActionNextItem:
		last := len(c.opts.Dispatcher.HelpBindings(keymap.Normal)) - 1
		c.help = min(c.help+1, max(last, 0))
	case keymap.ActionPrevItem:
		c.help = max(c.help-1, 0)
	case keymap.ActionCloseMenu:
		c.setMode(keymap.Normal)
	}
	return nil
}

// openCalendar picks the end date of the query window.
func (c *Controller) openCalendar() {
	t := c.ActiveTab()
	if !t.Service.Queryable {
		c.status = t.Service.DisplayTitle() + " is not queryable"
		return
	}
	if t.QueryEnd.IsZero() {
		c.calendar = truncateDay(c.opts.Now())
	} else {
		c.calendar = truncateDay(t.QueryEnd)
	}
	c.setMode(keymap.CalendarPicker)
}

func (c *Controller) applyCalendar(a keymap.Action) tea.Cmd {
	switch a.Kind {
	case keymap.ActionPrevDay:
		c.calendar = c.calendar.AddDate(0, 0, -1)
	case keymap.ActionNextDay:
		c.calendar = c.calendar.AddDate(0, 0, 1)
	case keymap.ActionPrevWeek:
		c.calendar = c.calendar.AddDate(0, 0, -7)
	case keymap.ActionNextWeek:
		c.calendar = c.calendar.AddDate(0, 0, 7)
	case keymap.ActionSelect:
		t := c.ActiveTab()
		t.QueryEnd = c.calendar.AddDate(0, 0, 1).Add(-time.Second)
		c.status = "query window ends " + t.QueryEnd.Format(time.DateTime)
		c.setMode(keymap.Normal)
	case keymap.ActionCloseMenu:
		c.setMode(keymap.Normal)
	}
	return nil
}
