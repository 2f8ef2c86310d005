package controller

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/cloudx/internal/cel"
	"github.com/oakwood-commons/cloudx/internal/completion"
	"github.com/oakwood-commons/cloudx/internal/focus"
	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/resource"
)

// filterTarget is whatever the filter bar edits.
type filterTarget interface {
	Filter() string
	SetFilter(filter string)
	FilterPush(r rune)
	FilterPop()
	FilterClear()
}

func (c *Controller) filterTarget(t *Tab) filterTarget {
	switch {
	case c.mode.Kind == keymap.ModeEventFilterInput && t.Events != nil:
		return t.Events.List
	case t.Pane == PaneTree && t.Tree != nil:
		return t.Tree
	}
	return t.List
}

// usesControls reports whether the filter bar shows the service controls,
// which only apply to the main listing.
func (c *Controller) usesControls(t *Tab) bool {
	return c.mode.Kind == keymap.ModeFilterInput && t.Pane == PaneList
}

func (c *Controller) openFilter() {
	t := c.ActiveTab()
	if t.Pane == PaneEvents {
		c.setMode(keymap.EventFilterInput)
	} else {
		c.setMode(keymap.FilterInput)
	}
	t.filterBackup = c.filterTarget(t).Filter()
	t.Focus.Reset()
	t.pageDigits = ""
}

func (c *Controller) applyFilter(a keymap.Action) tea.Cmd {
	t := c.ActiveTab()
	target := c.filterTarget(t)
	current := focus.Input
	if c.usesControls(t) {
		current = t.Focus.Current()
	}

	switch a.Kind {
	case keymap.ActionFilterChar:
		c.typeInto(t, target, current, a.Char)
	case keymap.ActionFilterBackspace:
		if current.Kind == focus.KindPagination {
			if n := len(t.pageDigits); n > 0 {
				t.pageDigits = t.pageDigits[:n-1]
			}
			return nil
		}
		target.FilterPop()
	case keymap.ActionFilterClear:
		target.FilterClear()
		if target == filterTarget(t.List) && t.expr != nil {
			t.expr = nil
			t.applyPredicate()
		}
	case keymap.ActionNextFilterFocus:
		if c.usesControls(t) {
			t.Focus.Next()
			t.pageDigits = ""
		}
	case keymap.ActionPrevFilterFocus:
		if c.usesControls(t) {
			t.Focus.Prev()
			t.pageDigits = ""
		}
	case keymap.ActionCompleteFilter:
		if current.Kind == focus.KindInput {
			c.completeFilter(t, target)
		}
	case keymap.ActionNextPage:
		return c.nextPage()
	case keymap.ActionPrevPage:
		return c.prevPage()
	case keymap.ActionApplyFilter:
		return c.commitFilter(t, target)
	case keymap.ActionCancelFilter:
		target.SetFilter(t.filterBackup)
		c.setMode(keymap.Normal)
	}
	return nil
}

// maxCompletionHints bounds the candidates listed in the status line.
const maxCompletionHints = 6

// completeFilter extends an expression filter with the candidates for its
// trailing token, listing them in the status line when several remain.
func (c *Controller) completeFilter(t *Tab, target filterTarget) {
	text := target.Filter()
	if target != filterTarget(t.List) || !cel.IsExpression(text) {
		c.status = "completion needs a " + cel.Prefix + " expression"
		return
	}
	if c.completer == nil {
		e, err := completion.NewEngine()
		if err != nil {
			c.log.Error(err, "expression completion unavailable")
			c.status = "completion unavailable"
			return
		}
		c.completer = e
	}
	expanded, matches := c.completer.Expand(text, itemFields(t.List.Items()))
	target.SetFilter(expanded)
	switch len(matches) {
	case 0:
		c.status = "no completions"
	case 1:
		c.status = ""
	default:
		hints := make([]string, 0, maxCompletionHints)
		for _, m := range matches[:min(len(matches), maxCompletionHints)] {
			hints = append(hints, m.Display)
		}
		more := ""
		if len(matches) > maxCompletionHints {
			more = fmt.Sprintf(" +%d", len(matches)-maxCompletionHints)
		}
		c.status = strings.Join(hints, " ") + more
	}
}

// itemFields returns the field names expressions can read from items.
func itemFields(items []resource.Item) []string {
	seen := make(map[string]bool)
	for _, it := range items {
		for k := range it.Vars() {
			seen[k] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// typeInto routes a typed character to the focused control.
func (c *Controller) typeInto(t *Tab, target filterTarget, current focus.Target, r rune) {
	switch current.Kind {
	case focus.KindInput:
		target.FilterPush(r)
	case focus.KindCheckbox:
		if r != ' ' {
			return
		}
		if t.Checked(current.Name) {
			t.Controls[current.Name] = "false"
		} else {
			t.Controls[current.Name] = "true"
		}
		t.List.SetMatcher(t.listMatcher())
		t.applyPredicate()
	case focus.KindDropdown:
		if r != ' ' {
			return
		}
		ctl, ok := t.Service.Control(current.Name)
		if !ok || len(ctl.Options) == 0 {
			return
		}
		next := 0
		for i, opt := range ctl.Options {
			if opt == t.Controls[current.Name] {
				next = (i + 1) % len(ctl.Options)
			}
		}
		t.Controls[current.Name] = ctl.Options[next]
	case focus.KindPagination:
		if r < '0' || r > '9' {
			return
		}
		t.pageDigits += string(r)
		page, err := strconv.Atoi(t.pageDigits)
		if err != nil {
			t.pageDigits = ""
			return
		}
		t.gotoPage(page)
	}
}

// commitFilter leaves the filter bar. Text starting with "?" is compiled
// as an expression over the item's fields; a bad expression keeps the
// previous one and opens the error modal.
func (c *Controller) commitFilter(t *Tab, target filterTarget) tea.Cmd {
	c.setMode(keymap.Normal)
	if target != filterTarget(t.List) {
		return nil
	}
	text := t.List.Filter()
	if !cel.IsExpression(text) {
		if t.expr != nil {
			t.expr = nil
			t.applyPredicate()
		}
		return nil
	}
	f, err := cel.Compile(text)
	if err != nil {
		c.fail("filter "+text, err, nil)
		return nil
	}
	t.expr = f
	t.applyPredicate()
	c.log.V(1).Info("expression filter", "expr", f.String(), "fields", f.Fields())
	return nil
}
