package cel

import (
	"fmt"
	"sort"
	"strings"
)

// Functions lists the functions and macros callable in filters, without
// operators and internal declarations.
func Functions() ([]string, error) {
	e, err := filterEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	seen := make(map[string]bool)
	for name := range e.Functions() {
		if !isOperator(name) {
			seen[name] = true
		}
	}
	for _, m := range e.Macros() {
		if !isOperator(m.Function()) {
			seen[m.Function()] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
		return true
	}
	// Type conversions and dotted names such as math.greatest stay.
	for _, r := range name {
		if !(r == '.' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
