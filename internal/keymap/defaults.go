package keymap

// Default bindings per mode. Keys use ParseKey syntax. Text-entry modes
// additionally type any unbound printable key (see Dispatcher.Dispatch).

var normalBindings = map[string]ActionKind{
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,

	"j":      ActionNextItem,
	"down":   ActionNextItem,
	"k":      ActionPrevItem,
	"up":     ActionPrevItem,
	"ctrl+d": ActionPageDown,
	"pgdown": ActionPageDown,
	"ctrl+u": ActionPageUp,
	"pgup":   ActionPageUp,
	"g":      ActionTop,
	"home":   ActionTop,
	"G":      ActionBottom,
	"end":    ActionBottom,

	"l":         ActionExpandRow,
	"right":     ActionExpandRow,
	"h":         ActionCollapseRow,
	"left":      ActionCollapseRow,
	"space":     ActionToggleExpand,
	"enter":     ActionSelect,
	"esc":       ActionGoBack,
	"backspace": ActionGoBack,

	// plain and ctrl chords of the same letter are unrelated
	"r":      ActionRefresh,
	"ctrl+r": ActionOpenRegionPicker,
	"R":      ActionRetry,
	"n":      ActionNextPage,
	"p":      ActionPrevPage,
	"ctrl+p": ActionOpenProfilePicker,
	"s":      ActionSortByColumn,
	"S":      ActionToggleSortDirection,
	"ctrl+s": ActionOpenSessionPicker,
	"t":      ActionOpenTabPicker,
	"ctrl+t": ActionNewTab,
	"ctrl+w": ActionCloseTab,

	"ctrl+alt+shift+right": ActionNextTab,
	"ctrl+alt+shift+left":  ActionPrevTab,

	":": ActionOpenServicePicker,
	"/": ActionOpenFilter,
	"e": ActionOpenEventFilter,
	"i": ActionOpenQuery,
	"D": ActionOpenCalendar,
	"c": ActionOpenColumnSelector,
	"?": ActionOpenHelp,
	"m": ActionOpenMenu,
}

var filterBindings = map[string]ActionKind{
	"ctrl+c":     ActionQuit,
	"enter":      ActionApplyFilter,
	"esc":        ActionCancelFilter,
	"backspace":  ActionFilterBackspace,
	"ctrl+u":     ActionFilterClear,
	"tab":        ActionNextFilterFocus,
	"shift+tab":  ActionPrevFilterFocus,
	"ctrl+space": ActionCompleteFilter,
	"left":       ActionPrevPage,
	"right":      ActionNextPage,
}

var queryBindings = map[string]ActionKind{
	"ctrl+c":    ActionQuit,
	"enter":     ActionExecuteQuery,
	"esc":       ActionCloseMenu,
	"backspace": ActionQueryBackspace,
}

var columnSelectorBindings = map[string]ActionKind{
	"ctrl+c": ActionQuit,
	"j":      ActionNextItem,
	"down":   ActionNextItem,
	"k":      ActionPrevItem,
	"up":     ActionPrevItem,
	"space":  ActionToggleColumn,
	"enter":  ActionToggleColumn,
	"esc":    ActionCloseMenu,
	"c":      ActionCloseMenu,
}

var pickerBindings = map[string]ActionKind{
	"ctrl+c":    ActionQuit,
	"down":      ActionNextItem,
	"ctrl+n":    ActionNextItem,
	"up":        ActionPrevItem,
	"ctrl+p":    ActionPrevItem,
	"enter":     ActionSelect,
	"esc":       ActionCloseMenu,
	"backspace": ActionFilterBackspace,
}

// pickerExtras are bound on top of pickerBindings for one picker only.
var pickerExtras = map[PickerKind]map[string]ActionKind{
	PickerTab:     {"ctrl+w": ActionCloseTab},
	PickerSession: {"ctrl+d": ActionDeleteSession},
}

var errorBindings = map[string]ActionKind{
	"ctrl+c": ActionQuit,
	"esc":    ActionCloseMenu,
	"enter":  ActionCloseMenu,
	"q":      ActionCloseMenu,
	"R":      ActionRetry,
}

var helpBindings = map[string]ActionKind{
	"ctrl+c": ActionQuit,
	"esc":    ActionCloseMenu,
	"?":      ActionCloseMenu,
	"q":      ActionCloseMenu,
	"j":      ActionNextItem,
	"down":   ActionNextItem,
	"k":      ActionPrevItem,
	"up":     ActionPrevItem,
}

var calendarBindings = map[string]ActionKind{
	"ctrl+c": ActionQuit,
	"h":      ActionPrevDay,
	"left":   ActionPrevDay,
	"l":      ActionNextDay,
	"right":  ActionNextDay,
	"k":      ActionPrevWeek,
	"up":     ActionPrevWeek,
	"j":      ActionNextWeek,
	"down":   ActionNextWeek,
	"enter":  ActionSelect,
	"esc":    ActionCloseMenu,
}

var menuBindings = map[string]ActionKind{
	"ctrl+c": ActionQuit,
	"j":      ActionNextItem,
	"down":   ActionNextItem,
	"k":      ActionPrevItem,
	"up":     ActionPrevItem,
	"enter":  ActionSelect,
	"esc":    ActionCloseMenu,
	"m":      ActionCloseMenu,
}

// defaultBindings returns the built-in table for m.
func defaultBindings(m Mode) map[string]ActionKind {
	switch m.Kind {
	case ModeNormal:
		return normalBindings
	case ModeFilterInput, ModeEventFilterInput:
		return filterBindings
	case ModeQueryInput:
		return queryBindings
	case ModeColumnSelector:
		return columnSelectorBindings
	case ModeItemPicker:
		extras, ok := pickerExtras[m.Picker]
		if !ok {
			return pickerBindings
		}
		merged := make(map[string]ActionKind, len(pickerBindings)+len(extras))
		for k, v := range pickerBindings {
			merged[k] = v
		}
		for k, v := range extras {
			merged[k] = v
		}
		return merged
	case ModeErrorModal:
		return errorBindings
	case ModeHelpModal:
		return helpBindings
	case ModeCalendarPicker:
		return calendarBindings
	case ModeOverlayMenu:
		return menuBindings
	default:
		return nil
	}
}

// textAction is the action typed characters produce in text-entry modes.
func textAction(m Mode) ActionKind {
	switch m.Kind {
	case ModeQueryInput:
		return ActionQueryChar
	case ModeFilterInput, ModeEventFilterInput, ModeItemPicker:
		return ActionFilterChar
	default:
		return ActionNone
	}
}
