package view

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Matcher reports whether item passes filter. It is never called with an
// empty filter.
type Matcher[T any] func(item T, filter string) bool

// SubstringMatcher matches items whose key contains the filter, ignoring
// case.
func SubstringMatcher[T any](key func(T) string) Matcher[T] {
	return func(item T, filter string) bool {
		return strings.Contains(strings.ToLower(key(item)), strings.ToLower(filter))
	}
}

// FuzzyMatcher matches items whose key contains the filter's characters in
// order, ignoring case and diacritics.
func FuzzyMatcher[T any](key func(T) string) Matcher[T] {
	return func(item T, filter string) bool {
		return fuzzy.MatchNormalizedFold(filter, key(item))
	}
}

// GlobMatcher matches keys against a shell-style pattern, ignoring case.
// A filter without wildcards matches anywhere in the key, and an invalid
// pattern falls back to substring matching. The compiled pattern is cached
// per filter text, so the matcher must not be shared across goroutines.
func GlobMatcher[T any](key func(T) string) Matcher[T] {
	var (
		last    string
		pattern glob.Glob
	)
	substring := SubstringMatcher(key)
	return func(item T, filter string) bool {
		if filter != last || pattern == nil {
			last = filter
			text := strings.ToLower(filter)
			if !strings.ContainsAny(text, "*?[{") {
				text = "*" + text + "*"
			}
			g, err := glob.Compile(text)
			if err != nil {
				pattern = nil
				return substring(item, filter)
			}
			pattern = g
		}
		return pattern.Match(strings.ToLower(key(item)))
	}
}

// Filter returns the current filter text.
func (m *Model[T]) Filter() string { return m.filter }

// FilterPush appends r to the filter.
func (m *Model[T]) FilterPush(r rune) {
	m.SetFilter(m.filter + string(r))
}

// FilterPop removes the last rune of the filter. The view resets even when
// the filter is already empty.
func (m *Model[T]) FilterPop() {
	runes := []rune(m.filter)
	if len(runes) > 0 {
		runes = runes[:len(runes)-1]
	}
	m.SetFilter(string(runes))
}

// FilterClear empties the filter.
func (m *Model[T]) FilterClear() {
	m.SetFilter("")
}

// SetFilter replaces the filter text and returns to the first row.
func (m *Model[T]) SetFilter(filter string) {
	m.filter = filter
	m.resetCursor()
}

// SetPredicate installs an additional item predicate applied after the
// filter text, or removes it when pred is nil.
func (m *Model[T]) SetPredicate(pred func(T) bool) {
	m.predicate = pred
	m.resetCursor()
}

// SetMatcher swaps the filter matcher.
func (m *Model[T]) SetMatcher(match Matcher[T]) {
	m.match = match
	m.resetCursor()
}

func (m *Model[T]) resetCursor() {
	m.refresh()
	m.selected, m.scroll = 0, 0
	m.expanded = noExpansion
}
