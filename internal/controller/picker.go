package controller

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"github.com/sahilm/fuzzy"

	"github.com/oakwood-commons/cloudx/internal/keymap"
)

// PickerOption is one choice of an item picker.
type PickerOption struct {
	Value  string
	Label  string
	Detail string
}

// PickerMatch is an option that survived the picker filter. Highlight
// holds the byte offsets of the matched label characters.
type PickerMatch struct {
	PickerOption
	Highlight []int
}

// Picker is a fuzzy-filtered list of choices.
type Picker struct {
	Kind    keymap.PickerKind
	Options []PickerOption

	filter   string
	matches  []PickerMatch
	selected int
}

func newPicker(kind keymap.PickerKind, options []PickerOption, current string) *Picker {
	p := &Picker{Kind: kind, Options: options}
	p.rank()
	for i, m := range p.matches {
		if m.Value == current {
			p.selected = i
		}
	}
	return p
}

// Filter returns the typed filter.
func (p *Picker) Filter() string { return p.filter }

// Matches returns the options matching the filter, best first.
func (p *Picker) Matches() []PickerMatch { return p.matches }

// SelectedIndex returns the highlighted match.
func (p *Picker) SelectedIndex() int { return p.selected }

// Selected returns the highlighted option.
func (p *Picker) Selected() (PickerOption, bool) {
	if p.selected < 0 || p.selected >= len(p.matches) {
		return PickerOption{}, false
	}
	return p.matches[p.selected].PickerOption, true
}

func (p *Picker) setFilter(filter string) {
	p.filter = filter
	p.selected = 0
	p.rank()
}

func (p *Picker) rank() {
	p.matches = p.matches[:0]
	if p.filter == "" {
		for _, o := range p.Options {
			p.matches = append(p.matches, PickerMatch{PickerOption: o})
		}
		return
	}
	labels := make([]string, len(p.Options))
	for i, o := range p.Options {
		labels[i] = o.Label
	}
	for _, m := range fuzzy.Find(p.filter, labels) {
		p.matches = append(p.matches, PickerMatch{PickerOption: p.Options[m.Index], Highlight: m.MatchedIndexes})
	}
}

func (p *Picker) move(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.selected = min(max(p.selected+delta, 0), len(p.matches)-1)
}

// remove drops the option with value and keeps the filter.
func (p *Picker) remove(value string) {
	kept := p.Options[:0]
	for _, o := range p.Options {
		if o.Value != value {
			kept = append(kept, o)
		}
	}
	p.Options = kept
	p.rank()
	p.move(0)
}

func (c *Controller) pickerOptions(kind keymap.PickerKind) ([]PickerOption, string) {
	var opts []PickerOption
	switch kind {
	case keymap.PickerService:
		for _, s := range c.opts.Catalog.Services() {
			opts = append(opts, PickerOption{Value: s.Name, Label: s.DisplayTitle(), Detail: s.Name})
		}
		return opts, c.ActiveTab().Service.Name
	case keymap.PickerRegion:
		for _, r := range c.opts.Backend.Regions() {
			opts = append(opts, PickerOption{Value: r, Label: r})
		}
		return opts, c.region
	case keymap.PickerProfile:
		for _, p := range c.opts.Backend.Profiles() {
			opts = append(opts, PickerOption{Value: p, Label: p})
		}
		return opts, c.profile
	case keymap.PickerTab:
		for i, t := range c.tabs {
			opts = append(opts, PickerOption{
				Value:  strconv.FormatUint(t.ID, 10),
				Label:  t.Title(),
				Detail: strconv.Itoa(i + 1),
			})
		}
		return opts, strconv.FormatUint(c.ActiveTab().ID, 10)
	}
	return nil, ""
}

func (c *Controller) openPicker(kind keymap.PickerKind) {
	opts, current := c.pickerOptions(kind)
	c.picker = newPicker(kind, opts, current)
	c.setMode(keymap.ItemPicker(kind))
}

func (c *Controller) closePicker() {
	c.picker = nil
	c.setMode(keymap.Normal)
}

func (c *Controller) applyPicker(a keymap.Action) tea.Cmd {
	p := c.picker
	if p == nil {
		c.setMode(keymap.Normal)
		return nil
	}
	switch a.Kind {
	case keymap.ActionFilterChar:
		p.setFilter(p.filter + string(a.Char))
	case keymap.ActionFilterBackspace:
		_, size := utf8.DecodeLastRuneInString(p.filter)
		p.setFilter(p.filter[:len(p.filter)-size])
	case keymap.ActionNextItem:
		p.move(1)
	case keymap.ActionPrevItem:
		p.move(-1)
	case keymap.ActionCloseMenu:
		c.closePicker()
	case keymap.ActionSelect:
		opt, ok := p.Selected()
		c.closePicker()
		if !ok {
			return nil
		}
		return c.choose(p.Kind, opt.Value)
	case keymap.ActionCloseTab:
		opt, ok := p.Selected()
		if !ok {
			return nil
		}
		return c.closeTabFromPicker(opt.Value)
	case keymap.ActionDeleteSession:
		opt, ok := p.Selected()
		if !ok || c.opts.Sessions == nil {
			return nil
		}
		return c.deleteSession(opt.Value)
	}
	return nil
}

func (c *Controller) choose(kind keymap.PickerKind, value string) tea.Cmd {
	switch kind {
	case keymap.PickerService:
		return c.switchService(value)
	case keymap.PickerRegion:
		if value == c.region {
			return nil
		}
		return c.SetRegion(value)
	case keymap.PickerProfile:
		if value == c.profile {
			return nil
		}
		c.profile = value
		return c.contextChanged()
	case keymap.PickerTab:
		for i, t := range c.tabs {
			if strconv.FormatUint(t.ID, 10) == value {
				return c.activate(i)
			}
		}
	case keymap.PickerSession:
		return c.restoreSession(value)
	}
	return nil
}

// switchService replaces the active tab with a fresh listing of service.
func (c *Controller) switchService(name string) tea.Cmd {
	if name == c.ActiveTab().Service.Name {
		return nil
	}
	svc, ok := c.opts.Catalog.Get(name)
	if !ok {
		c.status = fmt.Sprintf("unknown service %q", name)
		return nil
	}
	c.nextTabID++
	t := newTab(c.nextTabID, svc, c.opts.PageSize, c.opts.FilterMode)
	c.tabs[c.active] = t
	return c.loadTab(t)
}

func (c *Controller) closeTabFromPicker(value string) tea.Cmd {
	for i, t := range c.tabs {
		if strconv.FormatUint(t.ID, 10) != value {
			continue
		}
		if len(c.tabs) == 1 {
			c.status = "cannot close the last tab"
			return nil
		}
		cmd := c.closeTab(i)
		c.picker.remove(value)
		return cmd
	}
	return nil
}
