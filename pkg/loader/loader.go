// Package loader decodes structured documents whose format is given by a
// file extension or detected from the content. YAML (single or multi
// document), JSON, newline-delimited JSON and TOML are supported. Decoded
// values are bound through their yaml struct tags whatever the input format.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names a document syntax.
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatTOML   Format = "toml"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty input")

var (
	// TOML section headers: [server], [[items]], ["table name"], [a."b.c"].
	// JSON arrays such as [1, 2, 3] do not match.
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// TOML key = value, as opposed to YAML key: value.
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// FormatForPath maps a file extension to its format.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".ndjson", ".jsonl":
		return FormatNDJSON, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// Detect guesses the format of input. A valid JSON document is JSON even
// when it looks like a TOML header, such as ["a"]. Anything not recognized
// as NDJSON, TOML or JSON is YAML.
func Detect(input []byte) Format {
	text := strings.TrimSpace(string(input))
	if strings.HasPrefix(text, "---") || strings.Contains(text, "\n---") {
		return FormatYAML
	}
	if (strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")) && json.Valid([]byte(text)) {
		return FormatJSON
	}
	lines := strings.Split(text, "\n")
	if isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	if isLikelyTOML(lines) {
		return FormatTOML
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// isLikelyNDJSON requires several lines, most of them starting like a JSON
// object or array, so YAML lists of bare scalars are not misread.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

// isLikelyTOML looks for a section header or a majority of key = value
// lines.
func isLikelyTOML(lines []string) bool {
	keyValues, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			return true
		}
		if tomlKeyValue.MatchString(line) {
			keyValues++
		}
	}
	return nonEmpty > 0 && keyValues > nonEmpty/2
}

// Documents parses every document in data. Single-document formats yield
// one element; multi-document YAML and NDJSON yield one per document.
func Documents(data []byte, format Format) ([]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	if format == "" {
		format = Detect(data)
	}
	switch format {
	case FormatNDJSON:
		return ndjsonDocuments(data)
	case FormatTOML:
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return []any{doc}, nil
	case FormatJSON:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return []any{doc}, nil
	case FormatYAML:
		return yamlDocuments(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func yamlDocuments(data []byte) ([]any, error) {
	var docs []any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, ErrEmpty
	}
	return docs, nil
}

func ndjsonDocuments(data []byte) ([]any, error) {
	var docs []any
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc any
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", i+1, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Decode binds a single document to v through its yaml tags. Fields absent
// from the document keep their current value, so v can hold defaults. An
// empty format is detected.
func Decode(data []byte, format Format, v any) error {
	if format == "" {
		format = Detect(data)
	}
	switch format {
	case FormatYAML, FormatJSON:
		// JSON is valid YAML.
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", format, err)
		}
		return nil
	case FormatTOML:
		docs, err := Documents(data, format)
		if err != nil {
			return err
		}
		return rebind(docs[0], v)
	default:
		return fmt.Errorf("decode: %s holds several documents", format)
	}
}

// DecodeList binds every record in data to a T. A document that is a list
// contributes each element; a mapping whose only value is a list, such as
// a TOML array of tables, contributes that list; any other document is one
// record.
func DecodeList[T any](data []byte, format Format) ([]T, error) {
	docs, err := Documents(data, format)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, doc := range docs {
		for _, rec := range records(doc) {
			var v T
			if err := rebind(rec, &v); err != nil {
				return nil, fmt.Errorf("record %d: %w", len(out)+1, err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func records(doc any) []any {
	switch d := doc.(type) {
	case []any:
		return d
	case map[string]any:
		if len(d) == 1 {
			for _, v := range d {
				if list, ok := v.([]any); ok {
					return list
				}
			}
		}
	}
	return []any{doc}
}

// rebind re-encodes a generic value as YAML and decodes it into v.
func rebind(value, v any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// ReadFile reads path and decodes it into v, using the extension to pick
// the format and detecting it otherwise.
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	format, _ := FormatForPath(path)
	return Decode(data, format, v)
}
