package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertReset[T any](t *testing.T, m *Model[T]) {
	t.Helper()
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, 0, m.Scroll())
	_, ok := m.Expanded()
	assert.False(t, ok)
}

func TestFilterMutationsReset(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Model[string])
	}{
		{name: "push", mutate: func(m *Model[string]) { m.FilterPush('1') }},
		{name: "pop", mutate: func(m *Model[string]) { m.FilterPop() }},
		{name: "clear", mutate: func(m *Model[string]) { m.FilterClear() }},
		{name: "set", mutate: func(m *Model[string]) { m.SetFilter("item-01") }},
		{name: "predicate", mutate: func(m *Model[string]) { m.SetPredicate(func(string) bool { return true }) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStrings(60, 10)
			m.SetFilter("item")
			m.PageDown(m.Len())
			m.PageDown(m.Len())
			m.Expand()
			require.NotZero(t, m.Scroll())

			tt.mutate(m)
			assertReset(t, m)
		})
	}
}

func TestFilterPushPop(t *testing.T) {
	m := newStrings(30, 10)
	m.FilterPush('0')
	m.FilterPush('2')
	assert.Equal(t, "02", m.Filter())
	assert.Equal(t, []string{"item-002", "item-020", "item-021", "item-022", "item-023", "item-024", "item-025", "item-026", "item-027", "item-028", "item-029"}, m.Filtered())
	assert.Equal(t, 30, m.Total())

	m.FilterPop()
	assert.Equal(t, "0", m.Filter())
	m.FilterPop()
	m.FilterPop()
	assert.Equal(t, "", m.Filter())
	assert.Equal(t, 30, m.Len())
}

func TestFilterPopMultibyte(t *testing.T) {
	m := New[string](5, WithMatcher(SubstringMatcher(identity)))
	m.SetFilter("café")
	m.FilterPop()
	assert.Equal(t, "caf", m.Filter())
}

func TestSubstringMatcherIgnoresCase(t *testing.T) {
	m := New(5,
		WithItems([]string{"Prod-API", "staging-api", "worker"}),
		WithMatcher(SubstringMatcher(identity)),
	)
	m.SetFilter("API")
	assert.Equal(t, []string{"Prod-API", "staging-api"}, m.Filtered())
}

func TestFuzzyMatcher(t *testing.T) {
	m := New(5,
		WithItems([]string{"orders-queue", "dead-letter", "ordr", "Öre-events"}),
		WithMatcher(FuzzyMatcher(identity)),
	)
	m.SetFilter("odq")
	assert.Equal(t, []string{"orders-queue"}, m.Filtered())

	m.SetFilter("ore")
	assert.Contains(t, m.Filtered(), "Öre-events")
	assert.Contains(t, m.Filtered(), "orders-queue")
}

func TestGlobMatcher(t *testing.T) {
	m := New(5,
		WithItems([]string{"web-001", "web-002", "api-001", "Web-Admin"}),
		WithMatcher(GlobMatcher(identity)),
	)
	m.SetFilter("web-*")
	assert.Equal(t, []string{"web-001", "web-002", "Web-Admin"}, m.Filtered())

	m.SetFilter("*-001")
	assert.Equal(t, []string{"web-001", "api-001"}, m.Filtered())

	m.SetFilter("admin")
	assert.Equal(t, []string{"Web-Admin"}, m.Filtered(), "plain text matches anywhere")

	m.SetFilter("web-00[")
	assert.Equal(t, []string{}, m.Filtered(), "invalid patterns fall back to substring")
}

func TestPredicateCombinesWithFilter(t *testing.T) {
	m := newStrings(30, 10)
	m.SetFilter("item-01")
	m.SetPredicate(func(s string) bool { return s != "item-015" })
	assert.Len(t, m.Filtered(), 9)
	m.SetPredicate(nil)
	assert.Len(t, m.Filtered(), 10)
}

func TestSetMatcher(t *testing.T) {
	m := newStrings(30, 10)
	m.SetFilter("i1")
	assert.Empty(t, m.Filtered())
	m.SetMatcher(FuzzyMatcher(identity))
	// 001, 010-019 and 021
	assert.Len(t, m.Filtered(), 12)
}
