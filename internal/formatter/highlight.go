package formatter

import (
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultStyle is the chroma style used for terminal output.
const DefaultStyle = "monokai"

// Highlight writes src colored for a 256-color terminal. lang is a chroma
// lexer name such as "yaml" or "json". When highlighting fails the plain
// source is written.
func Highlight(w io.Writer, src, lang, style string) error {
	if style == "" {
		style = DefaultStyle
	}
	if err := quick.Highlight(w, src, lang, "terminal256", style); err != nil {
		_, werr := io.WriteString(w, src)
		return werr
	}
	return nil
}
