// Package formatter renders resource listings and hierarchies for
// non-interactive output.
package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/cloudx/internal/resource"
)

var (
	defaultHeaderFG  = lipgloss.Color("12")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultValueFG   = lipgloss.Color("248")
	defaultSeparator = lipgloss.Color("240")
)

// TableColors controls the rendered colors for tables. Nil fields fall back
// to ANSI 256 defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

type tableStyles struct {
	header    lipgloss.Style
	value     lipgloss.Style
	separator lipgloss.Style
}

func newTableStyles(tc TableColors) tableStyles {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	return tableStyles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(pick(tc.HeaderFG, defaultHeaderFG)).Background(pick(tc.HeaderBG, defaultHeaderBG)),
		value:     lipgloss.NewStyle().Foreground(pick(tc.ValueColor, defaultValueFG)),
		separator: lipgloss.NewStyle().Foreground(pick(tc.SeparatorColor, defaultSeparator)),
	}
}

// TableOptions configures FormatTable.
type TableOptions struct {
	Columns []string
	// Width bounds the whole table; 0 means unbounded.
	Width int
	// Plain disables styling.
	Plain  bool
	Colors TableColors
}

// ColumnGap separates table columns.
const ColumnGap = "  "

// FormatTable renders items as aligned columns with a header row. Columns
// default to name and id. Cells too wide for Width are truncated with an
// ellipsis, widest column first.
func FormatTable(items []resource.Item, opts TableOptions) string {
	cols := opts.Columns
	if len(cols) == 0 {
		cols = []string{resource.ColumnName, resource.ColumnID}
	}
	cells := make([][]string, len(items))
	for r, it := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = it.Field(c)
		}
		cells[r] = row
	}
	return FormatRows(cols, cells, opts)
}

// FormatRows renders a header and string rows the way FormatTable does.
// opts.Columns is ignored.
func FormatRows(header []string, rows [][]string, opts TableOptions) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(strings.ToUpper(h))
	}
	for _, row := range rows {
		for i := range header {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(sanitizeCell(row[i])))
			}
		}
	}
	if opts.Width > 0 {
		fitWidths(widths, opts.Width-len(ColumnGap)*(len(header)-1))
	}

	styles := newTableStyles(opts.Colors)
	render := func(s lipgloss.Style, text string) string {
		if opts.Plain {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	head := make([]string, len(header))
	for i, h := range header {
		head[i] = pad(strings.ToUpper(h), widths[i])
	}
	b.WriteString(strings.TrimRight(render(styles.header, strings.Join(head, ColumnGap)), " "))
	b.WriteByte('\n')
	for _, row := range rows {
		out := make([]string, len(header))
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			out[i] = render(styles.value, Cell(cell, widths[i]))
		}
		b.WriteString(strings.TrimRight(strings.Join(out, render(styles.separator, ColumnGap)), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// ColumnWidths sizes each column to its widest cell or header. A positive
// width bounds the total including the gaps between columns.
func ColumnWidths(items []resource.Item, cols []string, width int) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(strings.ToUpper(c))
	}
	for _, it := range items {
		for i, c := range cols {
			widths[i] = max(widths[i], runewidth.StringWidth(sanitizeCell(it.Field(c))))
		}
	}
	if width > 0 {
		fitWidths(widths, width-len(ColumnGap)*(len(cols)-1))
	}
	return widths
}

// Cell pads or truncates s to exactly width cells.
func Cell(s string, width int) string {
	return pad(sanitizeCell(s), width)
}

// fitWidths shrinks the widest columns until the sum fits budget. Columns
// never drop below 3 cells.
func fitWidths(widths []int, budget int) {
	const minCol = 3
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > budget {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minCol {
			return
		}
		widths[widest]--
		total--
	}
}

func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\t", " ")
}

// TerminalWidth returns the width of stdout when it is a terminal.
func TerminalWidth() (int, bool) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
