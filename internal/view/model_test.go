package view

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%03d", i)
	}
	return out
}

func identity(s string) string { return s }

func newStrings(n, pageSize int) *Model[string] {
	return New(pageSize,
		WithItems(names(n)),
		WithMatcher(SubstringMatcher(identity)),
		WithCompare[string](func(a, b string, _ string) int { return strings.Compare(a, b) }),
	)
}

func assertViewport[T any](t *testing.T, m *Model[T]) {
	t.Helper()
	sel, scroll, ps := m.SelectedIndex(), m.Scroll(), m.PageSize()
	assert.LessOrEqual(t, scroll, sel, "scroll <= selected")
	assert.LessOrEqual(t, sel, scroll+ps-1, "selected <= scroll+page_size-1")
}

func TestNewDefaults(t *testing.T) {
	m := New[string](0)
	assert.Equal(t, DefaultPageSize, m.PageSize())
	assert.Equal(t, 0, m.Len())
	_, ok := m.Selected()
	assert.False(t, ok)
	_, ok = m.Expanded()
	assert.False(t, ok)
	assert.Nil(t, m.Visible())
}

func TestNextItemMinimalScroll(t *testing.T) {
	m := newStrings(30, 5)
	for i := 0; i < 4; i++ {
		m.NextItem(m.Len())
	}
	assert.Equal(t, 4, m.SelectedIndex())
	assert.Equal(t, 0, m.Scroll())

	m.NextItem(m.Len())
	assert.Equal(t, 5, m.SelectedIndex())
	assert.Equal(t, 1, m.Scroll(), "scrolls by one row, not a full page")

	for i := 0; i < 100; i++ {
		m.NextItem(m.Len())
	}
	assert.Equal(t, 29, m.SelectedIndex(), "clamped to the last item")
	assert.Equal(t, 25, m.Scroll())
}

func TestPrevItemMinimalScroll(t *testing.T) {
	m := newStrings(30, 5)
	m.Bottom(m.Len())
	assert.Equal(t, 29, m.SelectedIndex())
	assert.Equal(t, 25, m.Scroll())

	for i := 0; i < 5; i++ {
		m.PrevItem()
	}
	assert.Equal(t, 24, m.SelectedIndex())
	assert.Equal(t, 24, m.Scroll())

	for i := 0; i < 100; i++ {
		m.PrevItem()
	}
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, 0, m.Scroll())
}

func TestPageDownSnaps(t *testing.T) {
	m := newStrings(100, 8)
	m.PageDown(m.Len())
	assert.Equal(t, 10, m.SelectedIndex())
	assert.Equal(t, 8, m.Scroll(), "snapped to the page holding row 10")

	m.PageDown(m.Len())
	assert.Equal(t, 20, m.SelectedIndex())
	assert.Equal(t, 16, m.Scroll())

	m.PageUp()
	assert.Equal(t, 10, m.SelectedIndex())
	assert.Equal(t, 8, m.Scroll())

	m.PageUp()
	m.PageUp()
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, 0, m.Scroll())
}

func TestPageDownClampsToMax(t *testing.T) {
	m := newStrings(13, 5)
	m.PageDown(m.Len())
	m.PageDown(m.Len())
	assert.Equal(t, 12, m.SelectedIndex())
	assert.Equal(t, 10, m.Scroll())
}

func TestStepAndPageDiffer(t *testing.T) {
	stepped := newStrings(50, 8)
	for i := 0; i < 10; i++ {
		stepped.NextItem(stepped.Len())
	}
	paged := newStrings(50, 8)
	paged.PageDown(paged.Len())

	assert.Equal(t, stepped.SelectedIndex(), paged.SelectedIndex())
	assert.Equal(t, 3, stepped.Scroll())
	assert.Equal(t, 8, paged.Scroll())
}

func TestGotoPage(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		pageSize   int
		page       int
		wantSel    int
		wantScroll int
	}{
		{name: "first page", total: 50, pageSize: 10, page: 1, wantSel: 0, wantScroll: 0},
		{name: "middle page", total: 50, pageSize: 10, page: 3, wantSel: 20, wantScroll: 20},
		{name: "past the end clamps", total: 50, pageSize: 10, page: 9, wantSel: 49, wantScroll: 40},
		{name: "partial last page", total: 45, pageSize: 10, page: 5, wantSel: 40, wantScroll: 35},
		{name: "fewer rows than a page", total: 4, pageSize: 10, page: 2, wantSel: 3, wantScroll: 0},
		{name: "page zero is page one", total: 20, pageSize: 10, page: 0, wantSel: 0, wantScroll: 0},
		{name: "empty", total: 0, pageSize: 10, page: 3, wantSel: 0, wantScroll: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStrings(tt.total, tt.pageSize)
			m.GotoPage(tt.page, tt.total)
			assert.Equal(t, tt.wantSel, m.SelectedIndex())
			assert.Equal(t, tt.wantScroll, m.Scroll())
			if tt.total > 0 {
				assertViewport(t, m)
			}
		})
	}
}

func TestViewportInvariantRandomOps(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for run := 0; run < 50; run++ {
		total := rng.IntN(120) + 1
		m := newStrings(total, rng.IntN(15)+1)
		for step := 0; step < 200; step++ {
			switch rng.IntN(7) {
			case 0:
				m.NextItem(total)
			case 1:
				m.PrevItem()
			case 2:
				m.PageDown(total)
			case 3:
				m.PageUp()
			case 4:
				m.GotoPage(rng.IntN(PageCount(total, m.PageSize())+2), total)
			case 5:
				m.Bottom(total)
			case 6:
				m.Top()
			}
			require.GreaterOrEqual(t, m.SelectedIndex(), 0)
			require.Less(t, m.SelectedIndex(), total)
			require.LessOrEqual(t, m.Scroll(), m.SelectedIndex())
			require.LessOrEqual(t, m.SelectedIndex(), m.Scroll()+m.PageSize()-1)
		}
	}
}

func TestExpansion(t *testing.T) {
	m := newStrings(10, 5)
	m.NextItem(m.Len())
	m.ToggleExpand()
	idx, ok := m.Expanded()
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	m.ToggleExpand()
	_, ok = m.Expanded()
	assert.False(t, ok, "toggling the expanded row collapses it")

	m.Expand()
	m.NextItem(m.Len())
	m.ToggleExpand()
	idx, _ = m.Expanded()
	assert.Equal(t, 2, idx, "toggling another row moves the expansion")

	m.Collapse()
	_, ok = m.Expanded()
	assert.False(t, ok)
}

func TestExpandOnEmptyIsNoop(t *testing.T) {
	m := New[string](5)
	m.Expand()
	m.ToggleExpand()
	_, ok := m.Expanded()
	assert.False(t, ok)
}

func TestSetItemsKeepsSelectionAndClearsStaleExpansion(t *testing.T) {
	m := newStrings(20, 5)
	for i := 0; i < 12; i++ {
		m.NextItem(m.Len())
	}
	m.Expand()

	m.SetItems(names(30))
	assert.Equal(t, 12, m.SelectedIndex())
	idx, ok := m.Expanded()
	require.True(t, ok)
	assert.Equal(t, 12, idx)

	m.SetItems(names(6))
	assert.Equal(t, 5, m.SelectedIndex())
	_, ok = m.Expanded()
	assert.False(t, ok)
	assertViewport(t, m)

	m.SetItems(nil)
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, 0, m.Scroll())
}

func TestVisible(t *testing.T) {
	m := newStrings(12, 5)
	m.PageDown(m.Len())
	m.Expand()

	rows := m.Visible()
	require.Len(t, rows, 2)
	assert.Equal(t, 10, rows[0].Index)
	assert.Equal(t, "item-010", rows[0].Item)
	assert.True(t, rows[0].Selected)
	assert.True(t, rows[0].Expanded)
	assert.False(t, rows[1].Selected)
}

func TestSort(t *testing.T) {
	m := newStrings(5, 5)
	m.NextItem(m.Len())
	m.Expand()

	m.SetSort("name", true)
	assert.Equal(t, []string{"item-004", "item-003", "item-002", "item-001", "item-000"}, m.Filtered())
	_, ok := m.Expanded()
	assert.False(t, ok)

	m.ToggleSortDirection()
	col, desc := m.SortColumn()
	assert.Equal(t, "name", col)
	assert.False(t, desc)
	assert.Equal(t, "item-000", m.Filtered()[0])

	m.SetSort("", false)
	assert.Equal(t, names(5), m.Filtered())
}

func TestSelectWhere(t *testing.T) {
	m := newStrings(40, 5)
	require.True(t, m.SelectWhere(func(s string) bool { return s == "item-033" }))
	assert.Equal(t, 33, m.SelectedIndex())
	assertViewport(t, m)
	assert.False(t, m.SelectWhere(func(s string) bool { return s == "missing" }))
}

func TestSetPageSizeKeepsViewport(t *testing.T) {
	m := newStrings(40, 20)
	m.Bottom(m.Len())
	m.SetPageSize(5)
	assertViewport(t, m)
	m.SetPageSize(0)
	assert.Equal(t, 1, m.PageSize())
	assertViewport(t, m)
}

func TestLoadingAndErr(t *testing.T) {
	m := newStrings(3, 5)
	m.SetLoading(true)
	assert.True(t, m.Loading())
	m.SetErr(assert.AnError)
	m.SetLoading(false)
	assert.ErrorIs(t, m.Err(), assert.AnError)
	assert.Equal(t, 3, m.Len(), "items survive a failed fetch")
}
