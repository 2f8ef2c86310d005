package loader

const maxExpandDepth = 20

// DecodeString parses value as a serialized document (JSON, YAML, NDJSON or
// TOML). It reports false unless the result is a mapping or a list, so
// plain words and numbers stay strings.
func DecodeString(value string) (any, bool) {
	if value == "" {
		return nil, false
	}
	docs, err := Documents([]byte(value), "")
	if err != nil {
		return nil, false
	}
	var doc any = docs
	if len(docs) == 1 {
		doc = docs[0]
	}
	if !isStructured(doc) {
		return nil, false
	}
	return doc, true
}

// ExpandStrings walks a generic tree and replaces every string leaf that
// DecodeString accepts with its parsed structure, recursing into the
// result. Containers are copied; node is not modified.
func ExpandStrings(node any) any {
	return expand(node, 0)
}

func expand(node any, depth int) any {
	if depth > maxExpandDepth {
		return node
	}
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = expand(val, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = expand(val, depth+1)
		}
		return out
	case string:
		if decoded, ok := DecodeString(v); ok {
			return expand(decoded, depth+1)
		}
		return v
	default:
		return node
	}
}

func isStructured(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
