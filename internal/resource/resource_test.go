package resource

import (
	"testing"

	"github.com/oakwood-commons/cloudx/internal/focus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemField(t *testing.T) {
	item := Item{
		ID:         "i-1",
		ARN:        "arn:aws:ec2:eu-west-1:1:instance/i-1",
		Region:     "eu-west-1",
		Attributes: map[string]string{"state": "running"},
	}
	assert.Equal(t, "i-1", item.Field(ColumnName), "name falls back to id")
	assert.Equal(t, "running", item.Field("state"))
	assert.Equal(t, "", item.Field("missing"))
	assert.Equal(t, "eu-west-1", item.Field(ColumnRegion))
	assert.Equal(t, "i-1", item.FilterText())

	item.Name = "web"
	assert.Equal(t, "web i-1", item.FilterText())
	assert.Equal(t, "web", item.Vars()[ColumnName])
	assert.Equal(t, "running", item.Vars()["state"])
}

func TestCompareField(t *testing.T) {
	a := Item{ID: "a", Attributes: map[string]string{"memory": "512", "runtime": "Go"}}
	b := Item{ID: "b", Attributes: map[string]string{"memory": "1024", "runtime": "python"}}

	assert.Equal(t, -1, CompareField(a, b, "memory"), "numeric comparison")
	assert.Negative(t, CompareField(a, b, "runtime"))
	assert.Zero(t, CompareField(a, a, "memory"))
	assert.Negative(t, CompareField(a, b, ColumnID))
}

func TestHierarchyKey(t *testing.T) {
	assert.Equal(t, "GET /x", Item{ID: "r1", Key: "GET /x"}.HierarchyKey())
	assert.Equal(t, "/x", Item{ID: "/x"}.HierarchyKey())
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []string{"apis", "buckets", "functions", "instances", "logs", "queues", "stacks"}, c.Names())

	logs, ok := c.Get("logs")
	require.True(t, ok)
	assert.Equal(t, 100, logs.MaxItems)
	assert.Equal(t, []focus.Target{focus.Input, focus.Dropdown("range"), focus.Pagination}, logs.FocusControls())

	fns, _ := c.Get("functions")
	assert.Equal(t, []focus.Target{focus.Input, focus.Checkbox("exact"), focus.Checkbox("archived"), focus.Pagination}, fns.FocusControls())

	queues, _ := c.Get("queues")
	assert.Equal(t, []focus.Target{focus.Input, focus.Pagination}, queues.FocusControls())
	assert.Zero(t, queues.MaxItems, "no cap unless configured")
}

func TestCatalogMerge(t *testing.T) {
	c := DefaultCatalog()
	merged, err := c.Merge([]Service{
		{Name: "queues", Title: "SQS", MaxItems: 50},
		{Name: "tables", Title: "Tables"},
	})
	require.NoError(t, err)
	q, _ := merged.Get("queues")
	assert.Equal(t, 50, q.MaxItems)
	_, ok := merged.Get("tables")
	assert.True(t, ok)
	assert.Len(t, merged.Services(), 8)
}

func TestNewCatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		services []Service
	}{
		{name: "unnamed", services: []Service{{}}},
		{name: "duplicate", services: []Service{{Name: "a"}, {Name: "a"}}},
		{name: "bad hierarchy", services: []Service{{Name: "a", Hierarchy: "graph"}}},
		{name: "empty dropdown", services: []Service{{Name: "a", Controls: []Control{{Kind: focus.KindDropdown, Name: "d"}}}}},
		{name: "bad control", services: []Service{{Name: "a", Controls: []Control{{Kind: focus.KindInput, Name: "x"}}}}},
		{name: "negative cap", services: []Service{{Name: "a", MaxItems: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.services...)
			assert.Error(t, err)
		})
	}
}

func TestEventFilterText(t *testing.T) {
	e := Event{Resource: "Bucket", Status: "CREATE_FAILED", Reason: "exists"}
	assert.Equal(t, "Bucket CREATE_FAILED exists", e.FilterText())
}
