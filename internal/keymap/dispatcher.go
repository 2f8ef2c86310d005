// Package keymap turns key presses into semantic actions. Every mode owns an
// independent table built once at start-up; dispatch is a pure lookup.
package keymap

import (
	"fmt"
	"sort"
)

// Overrides rebinds keys per mode. The outer key is a mode name
// ("normal", "filter", "picker" for every picker, "picker:tab" for one),
// the inner map binds a key to an action name or "none" to unbind it.
type Overrides map[string]map[string]string

// Unbind is the override value that removes a binding.
const Unbind = "none"

// Dispatcher maps (mode, key) pairs to actions.
type Dispatcher struct {
	tables map[Mode]map[Key]ActionKind
}

// Default returns a dispatcher holding only the built-in bindings.
func Default() *Dispatcher {
	d, err := New(nil)
	if err != nil {
		panic(fmt.Sprintf("keymap: invalid built-in bindings: %v", err))
	}
	return d
}

// New builds the dispatch tables from the built-in bindings and applies
// overrides on top.
func New(overrides Overrides) (*Dispatcher, error) {
	d := &Dispatcher{tables: make(map[Mode]map[Key]ActionKind)}
	for _, m := range AllModes() {
		table := make(map[Key]ActionKind)
		for ks, action := range defaultBindings(m) {
			k, err := ParseKey(ks)
			if err != nil {
				return nil, fmt.Errorf("mode %s: %w", m, err)
			}
			table[k] = action
		}
		d.tables[m] = table
	}

	// Apply the "picker" group before individual pickers so the more
	// specific override wins.
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		modes, err := overrideTargets(name)
		if err != nil {
			return nil, err
		}
		for _, m := range modes {
			if err := d.apply(m, overrides[name]); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func overrideTargets(name string) ([]Mode, error) {
	if name == string(ModeItemPicker) {
		modes := make([]Mode, 0, len(ValidPickers))
		for _, p := range ValidPickers {
			modes = append(modes, ItemPicker(p))
		}
		return modes, nil
	}
	m, err := ParseMode(name)
	if err != nil {
		return nil, err
	}
	return []Mode{m}, nil
}

func (d *Dispatcher) apply(m Mode, bindings map[string]string) error {
	table := d.tables[m]
	for ks, name := range bindings {
		k, err := ParseKey(ks)
		if err != nil {
			return fmt.Errorf("mode %s: %w", m, err)
		}
		if name == Unbind {
			delete(table, k)
			continue
		}
		action, err := ParseActionKind(name)
		if err != nil {
			return fmt.Errorf("mode %s, key %s: %w", m, k, err)
		}
		if action.CarriesChar() {
			return fmt.Errorf("mode %s, key %s: %w", m, k, ErrPayloadRequired)
		}
		table[k] = action
	}
	return nil
}

// Dispatch returns the action bound to k in mode m. In text-entry modes an
// unbound printable key types its character. Any other unbound key, or an
// unknown mode, yields false.
func (d *Dispatcher) Dispatch(k Key, m Mode) (Action, bool) {
	table, ok := d.tables[m]
	if !ok {
		return Action{}, false
	}
	if action, ok := table[k]; ok {
		return Action{Kind: action}, true
	}
	if !m.IsTextInput() {
		return Action{}, false
	}
	r, ok := k.Rune()
	if !ok {
		return Action{}, false
	}
	return Action{Kind: textAction(m), Char: r}, true
}

// Binding is one row of a mode's table.
type Binding struct {
	Key    Key
	Action ActionKind
}

// Bindings returns the table for m sorted by action then key.
func (d *Dispatcher) Bindings(m Mode) []Binding {
	table := d.tables[m]
	out := make([]Binding, 0, len(table))
	for k, a := range table {
		out = append(out, Binding{Key: k, Action: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

// KeysFor returns every key bound to action in m, sorted.
func (d *Dispatcher) KeysFor(m Mode, action ActionKind) []Key {
	var keys []Key
	for _, b := range d.Bindings(m) {
		if b.Action == action {
			keys = append(keys, b.Key)
		}
	}
	return keys
}
