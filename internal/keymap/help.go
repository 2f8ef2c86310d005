package keymap

import (
	"sort"
	"strings"

	"charm.land/bubbles/v2/key"
)

// HelpBindings returns one key.Binding per action bound in m, for rendering
// with the bubbles help component.
func (d *Dispatcher) HelpBindings(m Mode) []key.Binding {
	grouped := make(map[ActionKind][]string)
	var order []ActionKind
	for _, b := range d.Bindings(m) {
		if _, seen := grouped[b.Action]; !seen {
			order = append(order, b.Action)
		}
		grouped[b.Action] = append(grouped[b.Action], b.Key.String())
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Description() < order[j].Description()
	})

	out := make([]key.Binding, 0, len(order))
	for _, action := range order {
		keys := grouped[action]
		out = append(out, key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), action.Description()),
		))
	}
	if textAction(m) != ActionNone {
		out = append(out, key.NewBinding(
			key.WithKeys("text"),
			key.WithHelp("text", textAction(m).Description()),
		))
	}
	return out
}

// HelpColumns splits the help bindings for m into columns of at most rows
// entries, the shape help.Model.FullHelpView expects.
func (d *Dispatcher) HelpColumns(m Mode, rows int) [][]key.Binding {
	all := d.HelpBindings(m)
	if rows <= 0 {
		return [][]key.Binding{all}
	}
	var cols [][]key.Binding
	for start := 0; start < len(all); start += rows {
		cols = append(cols, all[start:min(start+rows, len(all))])
	}
	return cols
}
