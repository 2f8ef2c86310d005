package formatter

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/cloudx/internal/hierarchy"
	"github.com/oakwood-commons/cloudx/internal/resource"
)

var items = []resource.Item{
	{ID: "i-00001", Name: "web-001", Attributes: map[string]string{"state": "running"}},
	{ID: "i-00002", Name: "batch-worker-with-a-long-name", Attributes: map[string]string{"state": "stopped"}},
}

func TestFormatTablePlain(t *testing.T) {
	out := FormatTable(items, TableOptions{Columns: []string{"name", "id", "state"}, Plain: true})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[0], "STATE")
	assert.Contains(t, lines[1], "web-001")
	assert.Contains(t, lines[2], "stopped")
	assert.Equal(t, strings.Index(lines[0], "ID"), strings.Index(lines[1], "i-00001"), "columns align")
}

func TestFormatTableFitsWidth(t *testing.T) {
	out := FormatTable(items, TableOptions{Columns: []string{"name", "id"}, Width: 24, Plain: true})
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 24, line)
	}
	assert.Contains(t, out, "…")
}

func TestFormatTableDefaults(t *testing.T) {
	out := FormatTable(nil, TableOptions{Plain: true})
	assert.Equal(t, "NAME  ID\n", out)
}

func TestFormatRows(t *testing.T) {
	out := FormatRows([]string{"key", "action"}, [][]string{{"ctrl+r", "regions"}, {"q"}}, TableOptions{Plain: true})
	assert.Equal(t, "KEY     ACTION\nctrl+r  regions\nq\n", out)
}

func TestFitWidths(t *testing.T) {
	w := []int{10, 4, 20}
	fitWidths(w, 20)
	assert.Equal(t, 20, w[0]+w[1]+w[2])
	assert.Equal(t, 4, w[1])

	w = []int{3, 3}
	fitWidths(w, 2)
	assert.Equal(t, []int{3, 3}, w)
}

func TestFormatHierarchy(t *testing.T) {
	r := hierarchy.BuildPaths([]string{"/a", "/a/b", "/a/b/c", "/x/y"}, func(s string) string { return s })
	out := FormatHierarchy(r, TreeOptions{MarkVirtual: true})
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "c")
	assert.Contains(t, out, "x (virtual)")

	shallow := FormatHierarchy(r, TreeOptions{MaxDepth: 1})
	assert.NotContains(t, shallow, "── b")
	assert.Contains(t, shallow, "...")

	withRoot := FormatHierarchy(r, TreeOptions{Root: "routes"})
	assert.True(t, strings.HasPrefix(withRoot, "routes"))
}

func TestFormatYAMLAndJSON(t *testing.T) {
	y, err := FormatYAML(map[string]string{"message": "line one\nline two"}, YAMLFormatOptions{LiteralBlockStrings: true})
	require.NoError(t, err)
	assert.Contains(t, y, "message: |")

	j, err := FormatJSON(items[0])
	require.NoError(t, err)
	assert.Contains(t, j, `"id": "i-00001"`)
	assert.True(t, strings.HasSuffix(j, "}\n"))
}

func TestHighlight(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Highlight(&b, "a: 1\n", "yaml", ""))
	assert.Contains(t, b.String(), "a")
	assert.Contains(t, b.String(), "\x1b[")
}
