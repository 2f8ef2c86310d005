package keymap

import (
	"fmt"
	"strings"
)

// ModeKind identifies an interaction state.
type ModeKind string

const (
	ModeNormal           ModeKind = "normal"
	ModeFilterInput      ModeKind = "filter"
	ModeEventFilterInput ModeKind = "event_filter"
	ModeQueryInput       ModeKind = "query"
	ModeColumnSelector   ModeKind = "column_selector"
	ModeItemPicker       ModeKind = "picker"
	ModeErrorModal       ModeKind = "error"
	ModeHelpModal        ModeKind = "help"
	ModeCalendarPicker   ModeKind = "calendar"
	ModeOverlayMenu      ModeKind = "menu"
)

// PickerKind names what an item picker chooses between.
type PickerKind string

const (
	PickerNone    PickerKind = ""
	PickerService PickerKind = "service"
	PickerRegion  PickerKind = "region"
	PickerProfile PickerKind = "profile"
	PickerSession PickerKind = "session"
	PickerTab     PickerKind = "tab"
)

// Mode is the active interaction state. Picker is only set for
// ModeItemPicker. Mode values are comparable and used as map keys.
type Mode struct {
	Kind   ModeKind
	Picker PickerKind
}

var (
	Normal           = Mode{Kind: ModeNormal}
	FilterInput      = Mode{Kind: ModeFilterInput}
	EventFilterInput = Mode{Kind: ModeEventFilterInput}
	QueryInput       = Mode{Kind: ModeQueryInput}
	ColumnSelector   = Mode{Kind: ModeColumnSelector}
	ErrorModal       = Mode{Kind: ModeErrorModal}
	HelpModal        = Mode{Kind: ModeHelpModal}
	CalendarPicker   = Mode{Kind: ModeCalendarPicker}
	OverlayMenu      = Mode{Kind: ModeOverlayMenu}
)

// ValidPickers lists every item picker variant.
var ValidPickers = []PickerKind{PickerService, PickerRegion, PickerProfile, PickerSession, PickerTab}

// ItemPicker returns the picker mode for kind.
func ItemPicker(kind PickerKind) Mode {
	return Mode{Kind: ModeItemPicker, Picker: kind}
}

// AllModes returns every defined mode in a stable order.
func AllModes() []Mode {
	modes := []Mode{Normal, FilterInput, EventFilterInput, QueryInput, ColumnSelector}
	for _, p := range ValidPickers {
		modes = append(modes, ItemPicker(p))
	}
	return append(modes, ErrorModal, HelpModal, CalendarPicker, OverlayMenu)
}

// String renders the mode the way config files and the CLI name it,
// e.g. "normal" or "picker:region".
func (m Mode) String() string {
	if m.Kind == ModeItemPicker {
		return string(m.Kind) + ":" + string(m.Picker)
	}
	return string(m.Kind)
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	for _, known := range AllModes() {
		if known == m {
			return true
		}
	}
	return false
}

// IsTextInput reports whether unbound printable keys are typed into the
// mode's input line.
func (m Mode) IsTextInput() bool {
	switch m.Kind {
	case ModeFilterInput, ModeEventFilterInput, ModeQueryInput, ModeItemPicker:
		return true
	default:
		return false
	}
}

// ParseMode parses a mode name as produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if kind, picker, ok := strings.Cut(s, ":"); ok {
		m := Mode{Kind: ModeKind(kind), Picker: PickerKind(picker)}
		if m.Kind != ModeItemPicker || !m.Valid() {
			return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, s)
		}
		return m, nil
	}
	m := Mode{Kind: ModeKind(s)}
	if !m.Valid() {
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}
