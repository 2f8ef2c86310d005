package keymap

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
}

var keyNameAliases = map[string]string{
	"escape":   "esc",
	"return":   "enter",
	"cr":       "enter",
	"bs":       "backspace",
	"del":      "delete",
	"pagedown": "pgdown",
	"pgdn":     "pgdown",
	"pageup":   "pgup",
	" ":        "space",
}

// Key is a key identity: a key name plus the held modifiers. Printable keys
// are named by their character ("j", "G", "/"); special keys use the names
// bubbletea reports ("enter", "esc", "pgdown", "right").
type Key struct {
	Name string
	Mods Modifier
}

// Has reports whether every modifier in mods is held.
func (k Key) Has(mods Modifier) bool {
	return k.Mods&mods == mods
}

// String renders the key with modifiers in ctrl, alt, shift, meta order,
// matching bubbletea keystrokes.
func (k Key) String() string {
	var sb strings.Builder
	if k.Has(ModCtrl) {
		sb.WriteString("ctrl+")
	}
	if k.Has(ModAlt) {
		sb.WriteString("alt+")
	}
	if k.Has(ModShift) {
		sb.WriteString("shift+")
	}
	if k.Has(ModMeta) {
		sb.WriteString("meta+")
	}
	sb.WriteString(k.Name)
	return sb.String()
}

// Rune returns the character a text input should receive for this key.
// Keys chorded with ctrl, alt or meta never type.
func (k Key) Rune() (rune, bool) {
	if k.Mods&(ModCtrl|ModAlt|ModMeta) != 0 {
		return 0, false
	}
	if k.Name == "space" {
		return ' ', true
	}
	if utf8.RuneCountInString(k.Name) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(k.Name)
	if !unicode.IsPrint(r) {
		return 0, false
	}
	return r, true
}

// ParseKey parses a keystroke such as "j", "G", "ctrl+r", "shift+tab" or
// "ctrl+alt+shift+right". A shifted letter without other modifiers is
// normalized to its upper-case name so "shift+g" and "G" are the same key.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if s == " " {
		return Key{Name: "space"}, nil
	}
	name := strings.TrimSpace(s)
	var mods Modifier
	for {
		i := strings.Index(name, "+")
		if i <= 0 || i == len(name)-1 {
			break
		}
		m, ok := modifierNames[strings.ToLower(name[:i])]
		if !ok {
			return Key{}, fmt.Errorf("%w: unknown modifier in %q", ErrInvalidKey, s)
		}
		mods |= m
		name = name[i+1:]
	}
	if name == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return normalize(Key{Name: name, Mods: mods}), nil
}

// MustParseKey is ParseKey for keys known at compile time.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func normalize(k Key) Key {
	if utf8.RuneCountInString(k.Name) > 1 {
		lower := strings.ToLower(k.Name)
		if alias, ok := keyNameAliases[lower]; ok {
			lower = alias
		}
		k.Name = lower
		return k
	}
	if alias, ok := keyNameAliases[k.Name]; ok {
		k.Name = alias
		return k
	}
	r, _ := utf8.DecodeRuneInString(k.Name)
	if !unicode.IsLetter(r) {
		return k
	}
	chorded := k.Mods&(ModCtrl|ModAlt|ModMeta) != 0
	switch {
	case !chorded && k.Has(ModShift):
		k.Name = string(unicode.ToUpper(r))
		k.Mods &^= ModShift
	case chorded && unicode.IsUpper(r):
		k.Name = string(unicode.ToLower(r))
		k.Mods |= ModShift
	}
	return k
}

// KeyFromMsg converts a bubbletea key press into a Key.
func KeyFromMsg(msg tea.KeyPressMsg) Key {
	s := msg.String()
	k, err := ParseKey(s)
	if err != nil {
		return Key{Name: s}
	}
	return k
}
