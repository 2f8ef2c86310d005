package keymap

import (
	"fmt"
	"strings"
)

var sequenceModifiers = map[string]Modifier{
	"c": ModCtrl,
	"a": ModAlt,
	"m": ModAlt,
	"s": ModShift,
	"d": ModMeta,
}

// ParseSequence parses a scripted key sequence such as "jj/lambda<CR>" or
// "<C-r><Down><Enter>". Text outside angle brackets is typed one key per
// character; bracketed tokens name special keys with optional C-, A-, S-
// and D- modifier prefixes. An unclosed "<" is typed literally.
func ParseSequence(s string) ([]Key, error) {
	var keys []Key
	remaining := s
	for len(remaining) > 0 {
		start := strings.Index(remaining, "<")
		if start == -1 {
			keys = append(keys, literalKeys(remaining)...)
			break
		}
		keys = append(keys, literalKeys(remaining[:start])...)

		end := strings.Index(remaining[start:], ">")
		if end == -1 {
			keys = append(keys, literalKeys(remaining[start:])...)
			break
		}
		token := remaining[start+1 : start+end]
		k, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		remaining = remaining[start+end+1:]
	}
	return keys, nil
}

func literalKeys(text string) []Key {
	keys := make([]Key, 0, len(text))
	for _, r := range text {
		if r == ' ' {
			keys = append(keys, Key{Name: "space"})
			continue
		}
		keys = append(keys, Key{Name: string(r)})
	}
	return keys
}

func parseToken(token string) (Key, error) {
	if token == "" {
		return Key{Name: "<"}, nil
	}
	var mods Modifier
	name := token
	for len(name) > 2 && name[1] == '-' {
		m, ok := sequenceModifiers[strings.ToLower(name[:1])]
		if !ok {
			return Key{}, fmt.Errorf("%w: unknown modifier in <%s>", ErrInvalidKey, token)
		}
		mods |= m
		name = name[2:]
	}
	if mods != 0 && len(name) == 1 {
		return normalize(Key{Name: name, Mods: mods}), nil
	}
	lower := strings.ToLower(name)
	switch lower {
	case "lt":
		lower = "<"
	case "gt":
		lower = ">"
	}
	return normalize(Key{Name: lower, Mods: mods}), nil
}
