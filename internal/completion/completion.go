// Package completion suggests continuations for expression filters. The
// token before the cursor is completed: "item." followed by a field prefix
// completes field names, a member call such as "item.name.st" completes
// function names, and a bare identifier completes both.
package completion

import (
	"sort"
	"strings"

	"github.com/oakwood-commons/cloudx/internal/cel"
)

// Kind tells what a completion inserts.
type Kind int

const (
	KindField Kind = iota
	KindVariable
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindVariable:
		return "variable"
	default:
		return "function"
	}
}

// Completion is one candidate for the trailing token.
type Completion struct {
	// Text replaces the trailing token.
	Text string
	// Display is the short label shown to the user.
	Display string
	Kind    Kind
}

// Engine completes filter expressions against a fixed function list.
type Engine struct {
	functions []string
}

// NewEngine discovers the functions available to filters.
func NewEngine() (*Engine, error) {
	fns, err := cel.Functions()
	if err != nil {
		return nil, err
	}
	return &Engine{functions: fns}, nil
}

// NewEngineWith returns an engine over the given function names.
func NewEngineWith(functions []string) *Engine {
	fns := append([]string(nil), functions...)
	sort.Strings(fns)
	return &Engine{functions: fns}
}

// Functions returns the known function names, sorted.
func (e *Engine) Functions() []string { return append([]string(nil), e.functions...) }

// trailingToken splits input before its last identifier or selector chain.
func trailingToken(input string) (head, token string) {
	i := len(input)
	for i > 0 && isTokenByte(input[i-1]) {
		i--
	}
	return input[:i], input[i:]
}

func isTokenByte(b byte) bool {
	return b == '.' || b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// Complete returns the candidates for the token at the end of input,
// sorted by kind then text. fields are the item's field names.
func (e *Engine) Complete(input string, fields []string) []Completion {
	_, token := trailingToken(strings.TrimPrefix(input, cel.Prefix))
	if strings.HasPrefix(token, ".") {
		return nil
	}

	var out []Completion
	base, prefix, dotted := cutLast(token)
	switch {
	case dotted && base == cel.Variable:
		for _, f := range fields {
			if strings.HasPrefix(f, prefix) && isIdent(f) {
				out = append(out, Completion{Text: base + "." + f, Display: f, Kind: KindField})
			}
		}
	case dotted:
		for _, fn := range e.functions {
			if strings.HasPrefix(fn, prefix) && !strings.Contains(fn, ".") {
				out = append(out, Completion{Text: base + "." + fn + "(", Display: fn, Kind: KindFunction})
			}
		}
	default:
		if strings.HasPrefix(cel.Variable, prefix) {
			out = append(out, Completion{Text: cel.Variable, Display: cel.Variable, Kind: KindVariable})
		}
		for _, fn := range e.functions {
			if strings.HasPrefix(fn, prefix) {
				out = append(out, Completion{Text: fn + "(", Display: fn, Kind: KindFunction})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// Expand extends input with the longest prefix shared by every candidate
// and returns the candidates. A single candidate is inserted whole.
func (e *Engine) Expand(input string, fields []string) (string, []Completion) {
	matches := e.Complete(input, fields)
	if len(matches) == 0 {
		return input, nil
	}
	head, token := trailingToken(input)
	common := matches[0].Text
	for _, m := range matches[1:] {
		common = commonPrefix(common, m.Text)
	}
	if len(common) <= len(token) {
		return input, matches
	}
	return head + common, matches
}

// cutLast splits "a.b.c" into "a.b" and "c".
func cutLast(token string) (base, last string, dotted bool) {
	i := strings.LastIndexByte(token, '.')
	if i < 0 {
		return "", token, false
	}
	return token[:i], token[i+1:], true
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func isIdent(s string) bool {
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || !isTokenByte(s[i]) {
			return false
		}
	}
	return true
}
