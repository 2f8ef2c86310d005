package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string   `yaml:"id"`
	Count int      `yaml:"count,omitempty"`
	Tags  []string `yaml:"tags,omitempty"`
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{name: "yaml mapping", input: "name: bob\nage: 25\n", want: FormatYAML},
		{name: "yaml list", input: "- a\n- b\n- c\n", want: FormatYAML},
		{name: "yaml flow list items", input: "items:\n  - {id: a}\n", want: FormatYAML},
		{name: "multi document", input: "---\na: 1\n---\n{\"b\": 2}\n", want: FormatYAML},
		{name: "json object", input: `{"a": 1}`, want: FormatJSON},
		{name: "json array", input: "[1, 2, 3]", want: FormatJSON},
		{name: "json string list", input: `["b"]`, want: FormatJSON},
		{name: "ndjson", input: "{\"a\": 1}\n{\"a\": 2}\n", want: FormatNDJSON},
		{name: "toml section", input: "[server]\nhost = \"x\"\n", want: FormatTOML},
		{name: "toml array of tables", input: "[[items]]\nid = \"a\"\n", want: FormatTOML},
		{name: "toml key values", input: "# c\nname = \"a\"\nport = 8080\n", want: FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect([]byte(tt.input)))
		})
	}
}

func TestFormatForPath(t *testing.T) {
	f, ok := FormatForPath("a/b/fixture.YML")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)

	f, ok = FormatForPath("events.jsonl")
	assert.True(t, ok)
	assert.Equal(t, FormatNDJSON, f)

	_, ok = FormatForPath("notes.txt")
	assert.False(t, ok)
}

func TestDocuments(t *testing.T) {
	docs, err := Documents([]byte("a: 1\n---\nb: 2\n"), "")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, map[string]any{"a": 1}, docs[0])

	docs, err = Documents([]byte("{\"a\": 1}\n\n{\"a\": 2}\n"), FormatNDJSON)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = Documents([]byte("{\"a\": 1}\nnot json\n"), FormatNDJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = Documents([]byte("  \n"), "")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Documents([]byte("a = [1,"), FormatTOML)
	assert.Error(t, err)
}

func TestDecodeKeepsDefaults(t *testing.T) {
	type settings struct {
		Name    string        `yaml:"name"`
		Size    int           `yaml:"size"`
		Timeout time.Duration `yaml:"timeout"`
	}
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{name: "yaml", input: "size: 9\ntimeout: 2s\n", format: FormatYAML},
		{name: "json", input: `{"size": 9, "timeout": "2s"}`, format: FormatJSON},
		{name: "toml", input: "size = 9\ntimeout = \"2s\"\n", format: FormatTOML},
		{name: "detected toml", input: "size = 9\ntimeout = \"2s\"\n", format: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings{Name: "default", Size: 1}
			require.NoError(t, Decode([]byte(tt.input), tt.format, &s))
			assert.Equal(t, settings{Name: "default", Size: 9, Timeout: 2 * time.Second}, s)
		})
	}

	var s settings
	assert.Error(t, Decode([]byte("{}\n{}\n"), FormatNDJSON, &s))
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{name: "yaml list", input: "- id: a\n  count: 2\n- id: b\n  tags: [x]\n"},
		{name: "yaml documents", input: "id: a\ncount: 2\n---\nid: b\ntags: [x]\n"},
		{name: "json array", input: `[{"id": "a", "count": 2}, {"id": "b", "tags": ["x"]}]`},
		{name: "ndjson", input: "{\"id\": \"a\", \"count\": 2}\n{\"id\": \"b\", \"tags\": [\"x\"]}\n"},
		{name: "toml tables", input: "[[items]]\nid = \"a\"\ncount = 2\n\n[[items]]\nid = \"b\"\ntags = [\"x\"]\n", format: FormatTOML},
	}
	want := []record{{ID: "a", Count: 2}, {ID: "b", Tags: []string{"x"}}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeList[record]([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := DecodeList[record]([]byte("- id: [unterminated\n"), FormatYAML)
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": "z", "count": 3}`), 0o600))

	var r record
	require.NoError(t, ReadFile(path, &r))
	assert.Equal(t, record{ID: "z", Count: 3}, r)

	assert.Error(t, ReadFile(filepath.Join(dir, "missing.yaml"), &r))
}
