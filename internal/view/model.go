// Package view holds the per-listing state behind every table and tree in
// the browser: items, selection, scroll, filter, inline expansion and sort.
// All operations are synchronous and perform no I/O.
package view

import (
	"sort"
)

const (
	// PageStep is how far PageUp and PageDown move the selection.
	PageStep = 10
	// DefaultPageSize is used when a model is created with a non-positive
	// page size.
	DefaultPageSize = 20

	noExpansion = -1
)

// Compare orders two items by the named column. It returns a negative
// number when a sorts before b.
type Compare[T any] func(a, b T, column string) int

// Option configures a Model.
type Option[T any] func(*Model[T])

// WithMatcher sets how filter text selects items.
func WithMatcher[T any](m Matcher[T]) Option[T] {
	return func(v *Model[T]) { v.match = m }
}

// WithCompare enables column sorting.
func WithCompare[T any](c Compare[T]) Option[T] {
	return func(v *Model[T]) { v.compare = c }
}

// WithItems seeds the model.
func WithItems[T any](items []T) Option[T] {
	return func(v *Model[T]) { v.all = items }
}

// Model is the state of one paginated listing. Navigation keeps
// scroll <= selected <= scroll+pageSize-1; filter changes reset selection,
// scroll and expansion.
type Model[T any] struct {
	all      []T
	filtered []T

	selected int
	scroll   int
	expanded int
	pageSize int

	filter    string
	match     Matcher[T]
	predicate func(T) bool

	sortColumn string
	sortDesc   bool
	compare    Compare[T]

	loading bool
	err     error
}

// New returns an empty model.
func New[T any](pageSize int, opts ...Option[T]) *Model[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	m := &Model[T]{pageSize: pageSize, expanded: noExpansion}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	return m
}

// SetItems replaces the backing items, keeping the selection where it still
// fits. Expansion is cleared when it no longer indexes the filtered view.
func (m *Model[T]) SetItems(items []T) {
	m.all = items
	m.refresh()
	m.clampSelection()
}

// Items returns every item, ignoring the filter.
func (m *Model[T]) Items() []T { return m.all }

// Filtered returns the items that pass the filter, in display order.
func (m *Model[T]) Filtered() []T { return m.filtered }

// Len is the number of filtered items.
func (m *Model[T]) Len() int { return len(m.filtered) }

// Total is the number of items before filtering.
func (m *Model[T]) Total() int { return len(m.all) }

// Selected returns the selected item.
func (m *Model[T]) Selected() (T, bool) {
	var zero T
	if m.selected < 0 || m.selected >= len(m.filtered) {
		return zero, false
	}
	return m.filtered[m.selected], true
}

// SelectedIndex returns the selection as an index into Filtered.
func (m *Model[T]) SelectedIndex() int { return m.selected }

// Scroll returns the index of the first visible row.
func (m *Model[T]) Scroll() int { return m.scroll }

// PageSize returns the number of visible rows.
func (m *Model[T]) PageSize() int { return m.pageSize }

// SetPageSize changes the number of visible rows and re-establishes the
// viewport around the selection.
func (m *Model[T]) SetPageSize(n int) {
	if n <= 0 {
		n = 1
	}
	m.pageSize = n
	m.ensureVisible()
}

// Loading reports whether a fetch for this view is in flight.
func (m *Model[T]) Loading() bool { return m.loading }

// SetLoading marks a fetch as started or finished.
func (m *Model[T]) SetLoading(loading bool) { m.loading = loading }

// Err is the last fetch error, shown alongside the previous items.
func (m *Model[T]) Err() error { return m.err }

// SetErr records or clears the last fetch error.
func (m *Model[T]) SetErr(err error) { m.err = err }

// NextItem moves the selection down one row within [0, count-1], scrolling
// by the minimum needed to keep it visible.
func (m *Model[T]) NextItem(count int) {
	if count <= 0 {
		m.selected, m.scroll = 0, 0
		return
	}
	m.selected = min(m.selected+1, count-1)
	m.ensureVisible()
}

// PrevItem moves the selection up one row.
func (m *Model[T]) PrevItem() {
	m.selected = max(m.selected-1, 0)
	m.ensureVisible()
}

// PageDown moves the selection down by PageStep and snaps the scroll offset
// to the page containing it.
func (m *Model[T]) PageDown(count int) {
	if count <= 0 {
		m.selected, m.scroll = 0, 0
		return
	}
	m.selected = min(m.selected+PageStep, count-1)
	m.snap()
}

// PageUp moves the selection up by PageStep and snaps the scroll offset.
func (m *Model[T]) PageUp() {
	m.selected = max(m.selected-PageStep, 0)
	m.snap()
}

// Top selects the first row.
func (m *Model[T]) Top() {
	m.selected, m.scroll = 0, 0
}

// Bottom selects the last of count rows.
func (m *Model[T]) Bottom(count int) {
	if count <= 0 {
		m.Top()
		return
	}
	m.selected = count - 1
	m.scroll = max(0, count-m.pageSize)
}

// GotoPage selects the first row of page (1-based) out of total rows. The
// scroll offset snaps to the page but never runs past the last full page.
func (m *Model[T]) GotoPage(page, total int) {
	if total <= 0 {
		m.Top()
		return
	}
	page = max(page, 1)
	m.selected = min((page-1)*m.pageSize, total-1)
	m.scroll = min((m.selected/m.pageSize)*m.pageSize, max(0, total-m.pageSize))
}

// Select moves the selection to index i of the filtered view.
func (m *Model[T]) Select(i int) bool {
	if i < 0 || i >= len(m.filtered) {
		return false
	}
	m.selected = i
	m.ensureVisible()
	return true
}

// SelectWhere selects the first filtered item satisfying pred.
func (m *Model[T]) SelectWhere(pred func(T) bool) bool {
	for i, item := range m.filtered {
		if pred(item) {
			return m.Select(i)
		}
	}
	return false
}

// CurrentPage returns the 1-based page holding the selection.
func (m *Model[T]) CurrentPage() int {
	return m.selected/m.pageSize + 1
}

// PageCount returns the number of pages needed for the filtered items.
func (m *Model[T]) PageCount() int {
	return PageCount(len(m.filtered), m.pageSize)
}

// ToggleExpand expands the selected row, or collapses it when it is
// already the expanded one.
func (m *Model[T]) ToggleExpand() {
	if m.expanded == m.selected {
		m.expanded = noExpansion
		return
	}
	m.Expand()
}

// Expand marks the selected row as expanded.
func (m *Model[T]) Expand() {
	if m.selected < 0 || m.selected >= len(m.filtered) {
		return
	}
	m.expanded = m.selected
}

// Collapse clears the expansion marker.
func (m *Model[T]) Collapse() {
	m.expanded = noExpansion
}

// Expanded returns the expanded index into the filtered view.
func (m *Model[T]) Expanded() (int, bool) {
	if m.expanded == noExpansion {
		return 0, false
	}
	return m.expanded, true
}

// SortColumn returns the active sort column and whether it is descending.
func (m *Model[T]) SortColumn() (string, bool) { return m.sortColumn, m.sortDesc }

// SetSort orders the filtered view by column. An empty column restores the
// source order. Expansion is cleared because row indexes move.
func (m *Model[T]) SetSort(column string, desc bool) {
	m.sortColumn, m.sortDesc = column, desc
	m.refresh()
	m.clampSelection()
	m.expanded = noExpansion
}

// ToggleSortDirection flips between ascending and descending.
func (m *Model[T]) ToggleSortDirection() {
	m.SetSort(m.sortColumn, !m.sortDesc)
}

// Row is one resolved visible row.
type Row[T any] struct {
	Index    int
	Item     T
	Selected bool
	Expanded bool
}

// Visible returns the rows in the current viewport.
func (m *Model[T]) Visible() []Row[T] {
	if len(m.filtered) == 0 {
		return nil
	}
	start := min(m.scroll, len(m.filtered))
	end := min(start+m.pageSize, len(m.filtered))
	rows := make([]Row[T], 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, Row[T]{
			Index:    i,
			Item:     m.filtered[i],
			Selected: i == m.selected,
			Expanded: i == m.expanded,
		})
	}
	return rows
}

func (m *Model[T]) ensureVisible() {
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected > m.scroll+m.pageSize-1 {
		m.scroll = m.selected - m.pageSize + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m *Model[T]) snap() {
	m.scroll = (m.selected / m.pageSize) * m.pageSize
}

func (m *Model[T]) clampSelection() {
	switch {
	case len(m.filtered) == 0:
		m.selected, m.scroll = 0, 0
	case m.selected >= len(m.filtered):
		m.selected = len(m.filtered) - 1
	case m.selected < 0:
		m.selected = 0
	}
	if m.scroll > m.selected {
		m.scroll = m.selected
	}
	m.ensureVisible()
	if m.expanded >= len(m.filtered) {
		m.expanded = noExpansion
	}
}

func (m *Model[T]) refresh() {
	filtered := make([]T, 0, len(m.all))
	for _, item := range m.all {
		if m.filter != "" && m.match != nil && !m.match(item, m.filter) {
			continue
		}
		if m.predicate != nil && !m.predicate(item) {
			continue
		}
		filtered = append(filtered, item)
	}
	if m.sortColumn != "" && m.compare != nil {
		col, desc := m.sortColumn, m.sortDesc
		sort.SliceStable(filtered, func(i, j int) bool {
			c := m.compare(filtered[i], filtered[j], col)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	m.filtered = filtered
}
