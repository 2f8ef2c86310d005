package ui

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/cloudx/internal/controller"
	"github.com/oakwood-commons/cloudx/internal/formatter"
	"github.com/oakwood-commons/cloudx/internal/hierarchy"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/view"
)

const cursorMark = "▸ "

// pane renders n lines of the active tab's pane, header included.
func (m *Model) pane(n int) []string {
	t := m.ctrl.ActiveTab()
	switch t.Pane {
	case controller.PaneTree:
		return m.treePane(t.Tree)
	case controller.PaneEvents:
		return m.eventsPane(t.Events)
	case controller.PaneQuery:
		return m.queryPane(t.Query)
	}
	return m.listPane(t, n)
}

func (m *Model) header(cols []string, widths []int, sortCol string, desc bool) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		label := strings.ToUpper(col)
		if col == sortCol {
			if desc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		cells[i] = formatter.Cell(label, widths[i])
	}
	return m.styles.header.Render("  " + strings.Join(cells, formatter.ColumnGap))
}

func (m *Model) itemRows(list *view.Model[resource.Item], cols []string, detail bool) []string {
	widths := formatter.ColumnWidths(list.Filtered(), cols, m.width-len(cursorMark))
	sortCol, desc := list.SortColumn()
	lines := []string{m.header(cols, widths, sortCol, desc)}
	for _, row := range list.Visible() {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = formatter.Cell(row.Item.Field(col), widths[i])
		}
		line := strings.Join(cells, formatter.ColumnGap)
		if row.Selected {
			lines = append(lines, m.styles.selected.Render(cursorMark+line))
		} else {
			lines = append(lines, "  "+line)
		}
		if detail && row.Expanded {
			lines = append(lines, m.details(row.Item)...)
		}
	}
	return lines
}

// details lists an expanded item's sub-items, then its attributes.
func (m *Model) details(it resource.Item) []string {
	var lines []string
	for _, sub := range it.SubItems {
		lines = append(lines, m.styles.muted.Render("    • "+sub))
	}
	for _, name := range it.AttributeNames() {
		lines = append(lines, m.styles.muted.Render(fmt.Sprintf("    %s: %s", name, it.Attributes[name])))
	}
	if it.ARN != "" {
		lines = append(lines, m.styles.muted.Render("    arn: "+it.ARN))
	}
	return lines
}

func (m *Model) listPane(t *controller.Tab, n int) []string {
	lines := m.itemRows(t.List, t.Columns, true)
	if t.List.Len() > 0 {
		return lines
	}
	switch {
	case t.Loading:
		lines = append(lines, m.styles.muted.Render("  loading…"))
	case t.List.Total() > 0:
		lines = append(lines, m.styles.muted.Render("  no matches"))
	case t.Err == nil:
		lines = append(lines, m.styles.muted.Render("  no items"))
	}
	return fit(lines, n)
}

func (m *Model) treePane(p *controller.TreePane) []string {
	lines := []string{m.styles.header.Render("  " + p.Parent.Title())}
	if p.Loading && p.Rows.Len() == 0 {
		return append(lines, m.styles.muted.Render("  loading…"))
	}
	if p.Rows.Len() == 0 {
		return append(lines, m.styles.muted.Render("  no children"))
	}
	for _, row := range p.Rows.Visible() {
		line := treeLine(row.Item)
		if row.Selected {
			lines = append(lines, m.styles.selected.Render(cursorMark+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return lines
}

func treeLine(r hierarchy.Row) string {
	marker := "  "
	if r.HasChildren {
		marker = "▸ "
		if r.Open {
			marker = "▾ "
		}
	}
	label := r.Label
	if r.Virtual {
		label += " (missing)"
	}
	return strings.Repeat("  ", r.Depth) + marker + label
}

func (m *Model) eventsPane(p *controller.EventsPane) []string {
	lines := []string{m.styles.header.Render("  EVENTS " + p.Resource.Title())}
	if p.Loading && p.List.Len() == 0 {
		return append(lines, m.styles.muted.Render("  loading…"))
	}
	if p.List.Len() == 0 {
		return append(lines, m.styles.muted.Render("  no events"))
	}
	for _, row := range p.List.Visible() {
		e := row.Item
		line := strings.Join([]string{
			formatter.Cell(e.Time, 20),
			formatter.Cell(e.Resource, 18),
			formatter.Cell(e.Status, 18),
			e.Reason,
		}, formatter.ColumnGap)
		if row.Selected {
			lines = append(lines, m.styles.selected.Render(cursorMark+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return lines
}

func (m *Model) queryPane(p *controller.QueryPane) []string {
	if p.Query == nil {
		return []string{m.styles.muted.Render("  type a query and press enter")}
	}
	if p.Running() {
		return []string{m.styles.muted.Render("  running… " + m.spinner.View())}
	}
	if p.Results.Total() == 0 {
		return []string{m.styles.muted.Render("  no rows")}
	}
	return m.itemRows(p.Results, p.Columns, false)
}
