package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/cloudx/internal/keymap"
)

// maxSettleSteps bounds how many messages a synchronous settle processes.
const maxSettleSteps = 500

// Settle runs cmd and every command its messages produce until nothing is
// left. Spinner ticks are dropped so the loop ends once the data is in.
func (m *Model) Settle(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < maxSettleSteps; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, m.ctrl.Handle(msg))
		}
	}
}

// ApplyStartupKeys types each key sequence into the browser and waits for
// the resulting loads. Sequences use the keymap.ParseSequence syntax, e.g.
// "/web<CR>" or "<C-r>eu<CR>".
func (m *Model) ApplyStartupKeys(sequences []string) error {
	for _, seq := range sequences {
		seq = strings.TrimSpace(seq)
		if seq == "" {
			continue
		}
		keys, err := keymap.ParseSequence(seq)
		if err != nil {
			return fmt.Errorf("startup keys %q: %w", seq, err)
		}
		for _, k := range keys {
			m.Settle(m.ctrl.HandleKey(k))
			if m.ctrl.Quitting() {
				return nil
			}
		}
	}
	return nil
}
