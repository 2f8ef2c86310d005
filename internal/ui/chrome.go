package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/cloudx/internal/controller"
	"github.com/oakwood-commons/cloudx/internal/focus"
	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/view"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (m *Model) busy(t *controller.Tab) bool {
	switch {
	case t.Loading:
		return true
	case t.Tree != nil && t.Tree.Loading:
		return true
	case t.Events != nil && t.Events.Loading:
		return true
	case t.Query != nil && t.Query.Running():
		return true
	}
	return false
}

func (m *Model) titleBar() string {
	t := m.ctrl.ActiveTab()
	left := " " + m.appName + " │ " + t.Title()
	if m.busy(t) {
		left += " " + m.spinner.View()
	}
	right := fmt.Sprintf("region %s · profile %s ", orDefault(m.ctrl.Region(), "all"), orDefault(m.ctrl.Profile(), "default"))
	gap := max(m.width-ansi.StringWidth(left)-ansi.StringWidth(right), 1)
	return m.styles.title.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) tabBar() string {
	var b strings.Builder
	for i, t := range m.ctrl.Tabs() {
		label := fmt.Sprintf(" %d %s ", i+1, t.Service.DisplayTitle())
		if i == m.ctrl.ActiveIndex() {
			b.WriteString(m.styles.tabOn.Render(label))
		} else {
			b.WriteString(m.styles.tab.Render(label))
		}
	}
	return b.String()
}

func (m *Model) filterText(t *controller.Tab, mode keymap.Mode) string {
	switch {
	case mode.Kind == keymap.ModeEventFilterInput && t.Events != nil:
		return t.Events.List.Filter()
	case t.Pane == controller.PaneEvents && t.Events != nil:
		return t.Events.List.Filter()
	case t.Pane == controller.PaneTree && t.Tree != nil:
		return t.Tree.Filter()
	}
	return t.List.Filter()
}

// filterBar shows the filter input and, while editing the main listing,
// the service controls and the page selector.
func (m *Model) filterBar() string {
	t := m.ctrl.ActiveTab()
	mode := m.ctrl.Mode()
	if t.Pane == controller.PaneQuery {
		line := "query> " + t.QueryDraft
		if mode.Kind == keymap.ModeQueryInput {
			line += "█"
		}
		return line
	}

	editing := mode.Kind == keymap.ModeFilterInput || mode.Kind == keymap.ModeEventFilterInput
	text := m.filterText(t, mode)
	if !editing && text == "" {
		return m.styles.muted.Render(m.hints(keymap.ActionOpenFilter, keymap.ActionOpenServicePicker, keymap.ActionOpenHelp))
	}
	input := "/" + text
	if editing {
		input += "█"
	}
	withControls := mode.Kind == keymap.ModeFilterInput && t.Pane == controller.PaneList
	mark := func(target focus.Target, s string) string {
		if withControls && t.Focus.Is(target) {
			return m.styles.focused.Render(s)
		}
		return s
	}

	parts := []string{mark(focus.Input, input)}
	if withControls {
		for _, ctl := range t.Service.Controls {
			label := orDefault(ctl.Label, ctl.Name)
			switch ctl.Kind {
			case focus.KindCheckbox:
				box := "[ ]"
				if t.Checked(ctl.Name) {
					box = "[x]"
				}
				parts = append(parts, mark(ctl.Target(), box+" "+label))
			case focus.KindDropdown:
				parts = append(parts, mark(ctl.Target(), label+": ‹"+t.Controls[ctl.Name]+"›"))
			}
		}
		parts = append(parts, mark(focus.Pagination, m.pageControl(t)))
	}
	return strings.Join(parts, "  ")
}

// pageControl lists the reachable page numbers of a local listing with the
// current one bracketed. Remote paging only knows the next page.
func (m *Model) pageControl(t *controller.Tab) string {
	if t.Pager != nil {
		return m.pageLabel(t)
	}
	return pageSelector(t.List.CurrentPage(), t.List.PageCount())
}

func pageSelector(current, total int) string {
	pages := view.PageWindow(current, total)
	if len(pages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pages)+2)
	if pages[0] > 1 {
		parts = append(parts, "…")
	}
	for _, p := range pages {
		if p == current {
			parts = append(parts, fmt.Sprintf("[%d]", p))
		} else {
			parts = append(parts, strconv.Itoa(p))
		}
	}
	if pages[len(pages)-1] < total {
		parts = append(parts, "…")
	}
	return strings.Join(parts, " ")
}

func (m *Model) pageLabel(t *controller.Tab) string {
	if t.Pager != nil {
		label := fmt.Sprintf("page %d", t.Pager.Page()+1)
		if t.Pager.HasNext() {
			label += "+"
		}
		return label
	}
	return fmt.Sprintf("page %d/%d", t.List.CurrentPage(), max(t.List.PageCount(), 1))
}

func (m *Model) statusLine() string {
	t := m.ctrl.ActiveTab()
	if t.Err != nil {
		line := "stale: " + t.Err.Error()
		if key := m.keyFor(keymap.ActionRetry); key != "" {
			line += " (" + key + " to retry)"
		}
		return m.styles.errText.Render(line)
	}
	status := m.styles.status.Render(m.ctrl.Status())
	if t.Pane == controller.PaneList {
		status += m.styles.muted.Render(" · " + m.pageLabel(t))
	}
	return status
}

// keyFor names the first normal-mode key bound to action, honoring overrides.
func (m *Model) keyFor(action keymap.ActionKind) string {
	keys := m.ctrl.Dispatcher().KeysFor(keymap.Normal, action)
	if len(keys) == 0 {
		return ""
	}
	return keys[0].String()
}

func (m *Model) hints(actions ...keymap.ActionKind) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		if key := m.keyFor(a); key != "" {
			parts = append(parts, key+" "+a.Description())
		}
	}
	return strings.Join(parts, " · ")
}

func (m *Model) footer() string {
	bindings := m.ctrl.Dispatcher().HelpBindings(m.ctrl.Mode())
	line := m.help.ShortHelpView(bindings)
	if m.noColor {
		line = ansi.Strip(line)
	}
	return m.styles.footer.Render(line)
}
