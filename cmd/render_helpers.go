package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/oakwood-commons/cloudx/internal/formatter"
	"github.com/oakwood-commons/cloudx/pkg/settings"
)

// colorOutput reports whether structured output is syntax highlighted.
func colorOutput(run *settings.Run) bool {
	return !run.NoColor && stdoutIsTerminal()
}

// tableWidth bounds tables to the terminal; piped output is unbounded.
func tableWidth() int {
	if !stdoutIsTerminal() {
		return 0
	}
	w, _ := detectTerminalSize()
	return w
}

// writeStructured renders v as yaml or json, highlighted when color is on.
func writeStructured(w io.Writer, v any, format string, color bool) error {
	var (
		text string
		err  error
	)
	switch format {
	case "yaml":
		text, err = formatter.FormatYAML(v, formatter.YAMLFormatOptions{Indent: 2, LiteralBlockStrings: true})
	case "json":
		text, err = formatter.FormatJSON(v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if color {
		return formatter.Highlight(w, text, format, "")
	}
	_, err = io.WriteString(w, text)
	return err
}

// writeRows renders a table, or the rows as a list of header-keyed maps for
// yaml and json.
func writeRows(w io.Writer, header []string, rows [][]string, format string, run *settings.Run) error {
	if format == "table" {
		_, err := io.WriteString(w, formatter.FormatRows(header, rows, formatter.TableOptions{
			Width: tableWidth(),
			Plain: !colorOutput(run),
		}))
		return err
	}
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return writeStructured(w, records, format, colorOutput(run))
}
