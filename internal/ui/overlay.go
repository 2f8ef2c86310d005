package ui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/cloudx/internal/controller"
	"github.com/oakwood-commons/cloudx/internal/keymap"
)

// overlay renders the modal for the current mode centered in n lines. It
// returns false when no overlay is open.
func (m *Model) overlay(n int) ([]string, bool) {
	var box string
	switch mode := m.ctrl.Mode(); mode.Kind {
	case keymap.ModeItemPicker:
		box = m.pickerBox(m.ctrl.Picker(), n)
	case keymap.ModeOverlayMenu:
		box = m.menuBox(m.ctrl.Menu())
	case keymap.ModeColumnSelector:
		box = m.columnsBox(m.ctrl.Columns(), n)
	case keymap.ModeHelpModal:
		box = m.helpBox(n)
	case keymap.ModeErrorModal:
		box = m.errorBox(m.ctrl.Failure())
	case keymap.ModeCalendarPicker:
		box = m.calendarBox(m.ctrl.CalendarDate())
	default:
		return nil, false
	}
	if box == "" {
		return nil, false
	}
	placed := lipgloss.Place(m.width, n, lipgloss.Center, lipgloss.Center, box)
	return strings.Split(placed, "\n"), true
}

func (m *Model) cursorLine(selected bool, s string) string {
	if selected {
		return m.styles.selected.Render(cursorMark + s)
	}
	return "  " + s
}

// window returns the range of at most size entries of total that keeps
// selected in view.
func window(selected, total, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := min(max(selected-size/2, 0), total-size)
	return start, start + size
}

func (m *Model) highlight(label string, offsets []int) string {
	if len(offsets) == 0 {
		return label
	}
	hit := make(map[int]bool, len(offsets))
	for _, o := range offsets {
		hit[o] = true
	}
	var b strings.Builder
	for i, r := range label {
		if hit[i] {
			b.WriteString(m.styles.match.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m *Model) pickerBox(p *controller.Picker, n int) string {
	if p == nil {
		return ""
	}
	lines := []string{
		m.styles.header.Render("select " + string(p.Kind)),
		"> " + p.Filter() + "█",
	}
	matches := p.Matches()
	if len(matches) == 0 {
		lines = append(lines, m.styles.muted.Render("  no matches"))
	}
	start, end := window(p.SelectedIndex(), len(matches), n-6)
	for i := start; i < end; i++ {
		match := matches[i]
		line := m.highlight(match.Label, match.Highlight)
		if match.Detail != "" {
			line += "  " + m.styles.muted.Render(match.Detail)
		}
		lines = append(lines, m.cursorLine(i == p.SelectedIndex(), line))
	}
	return m.styles.box.Render(strings.Join(lines, "\n"))
}

func (m *Model) menuBox(menu *controller.Menu) string {
	if menu == nil {
		return ""
	}
	lines := []string{m.styles.header.Render("menu")}
	for i, item := range menu.Items {
		lines = append(lines, m.cursorLine(i == menu.Selected, item.Label))
	}
	return m.styles.box.Render(strings.Join(lines, "\n"))
}

func (m *Model) columnsBox(s *controller.ColumnSelector, n int) string {
	if s == nil {
		return ""
	}
	lines := []string{m.styles.header.Render("columns")}
	start, end := window(s.Selected, len(s.Options), n-3)
	for i := start; i < end; i++ {
		col := s.Options[i]
		box := "[ ] "
		if s.Visible[col] {
			box = "[x] "
		}
		lines = append(lines, m.cursorLine(i == s.Selected, box+col))
	}
	return m.styles.box.Render(strings.Join(lines, "\n"))
}

func (m *Model) helpBox(n int) string {
	bindings := m.ctrl.Dispatcher().HelpBindings(keymap.Normal)
	width := 0
	for _, b := range bindings {
		width = max(width, len(b.Help().Key))
	}
	lines := []string{m.styles.header.Render("keys")}
	end := min(m.ctrl.HelpScroll()+max(n-3, 1), len(bindings))
	for _, b := range bindings[min(m.ctrl.HelpScroll(), end):end] {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, h.Key, h.Desc))
	}
	return m.styles.box.Render(strings.Join(lines, "\n"))
}

func (m *Model) errorBox(f *controller.Failure) string {
	if f == nil {
		return ""
	}
	lines := []string{m.styles.errText.Render("error")}
	if f.Context != "" {
		lines = append(lines, f.Context)
	}
	lines = append(lines, f.Err.Error(), "", m.styles.muted.Render("R retry · esc close"))
	return m.styles.box.Render(strings.Join(lines, "\n"))
}

// calendarBox draws the month of day with weeks starting on Monday.
func (m *Model) calendarBox(day time.Time) string {
	lines := []string{
		m.styles.header.Render(day.Format("January 2006")),
		"Mo Tu We Th Fr Sa Su",
	}
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	offset := (int(first.Weekday()) + 6) % 7
	var week strings.Builder
	week.WriteString(strings.Repeat("   ", offset))
	for d := first; d.Month() == day.Month(); d = d.AddDate(0, 0, 1) {
		cell := fmt.Sprintf("%2d", d.Day())
		if d.Day() == day.Day() {
			cell = m.styles.focused.Render(cell)
		}
		week.WriteString(cell)
		if d.Weekday() == time.Sunday {
			lines = append(lines, strings.TrimRight(week.String(), " "))
			week.Reset()
		} else {
			week.WriteByte(' ')
		}
	}
	if week.Len() > 0 {
		lines = append(lines, strings.TrimRight(week.String(), " "))
	}
	lines = append(lines, "", m.styles.muted.Render("query window ends "+day.Format(time.DateOnly)))
	return m.styles.box.Render(strings.Join(lines, "\n"))
}
