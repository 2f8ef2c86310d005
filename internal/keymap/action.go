package keymap

import (
	"fmt"
	"strings"
)

// ActionKind is a semantic command produced by the dispatcher.
type ActionKind string

const (
	ActionNone ActionKind = ""

	ActionQuit         ActionKind = "quit"
	ActionNextItem     ActionKind = "next_item"
	ActionPrevItem     ActionKind = "prev_item"
	ActionPageDown     ActionKind = "page_down"
	ActionPageUp       ActionKind = "page_up"
	ActionTop          ActionKind = "top"
	ActionBottom       ActionKind = "bottom"
	ActionExpandRow    ActionKind = "expand_row"
	ActionCollapseRow  ActionKind = "collapse_row"
	ActionToggleExpand ActionKind = "toggle_expand"
	ActionSelect       ActionKind = "select"
	ActionGoBack       ActionKind = "go_back"

	ActionRefresh  ActionKind = "refresh"
	ActionRetry    ActionKind = "retry"
	ActionNextPage ActionKind = "next_page"
	ActionPrevPage ActionKind = "prev_page"

	ActionSortByColumn        ActionKind = "sort_by_column"
	ActionToggleSortDirection ActionKind = "toggle_sort_direction"

	ActionOpenServicePicker ActionKind = "open_service_picker"
	ActionOpenRegionPicker  ActionKind = "open_region_picker"
	ActionOpenProfilePicker ActionKind = "open_profile_picker"
	ActionOpenSessionPicker ActionKind = "open_session_picker"
	ActionOpenTabPicker     ActionKind = "open_tab_picker"

	ActionNewTab   ActionKind = "new_tab"
	ActionCloseTab ActionKind = "close_tab"
	ActionNextTab  ActionKind = "next_tab"
	ActionPrevTab  ActionKind = "prev_tab"

	ActionOpenFilter         ActionKind = "open_filter"
	ActionOpenEventFilter    ActionKind = "open_event_filter"
	ActionOpenQuery          ActionKind = "open_query"
	ActionOpenCalendar       ActionKind = "open_calendar"
	ActionOpenColumnSelector ActionKind = "open_column_selector"
	ActionOpenHelp           ActionKind = "open_help"
	ActionOpenMenu           ActionKind = "open_menu"
	ActionCloseMenu          ActionKind = "close_menu"

	ActionApplyFilter     ActionKind = "apply_filter"
	ActionCancelFilter    ActionKind = "cancel_filter"
	ActionFilterChar      ActionKind = "filter_char"
	ActionFilterBackspace ActionKind = "filter_backspace"
	ActionFilterClear     ActionKind = "filter_clear"
	ActionNextFilterFocus ActionKind = "next_filter_focus"
	ActionPrevFilterFocus ActionKind = "prev_filter_focus"
	ActionCompleteFilter  ActionKind = "complete_filter"

	ActionExecuteQuery   ActionKind = "execute_query"
	ActionQueryChar      ActionKind = "query_char"
	ActionQueryBackspace ActionKind = "query_backspace"

	ActionToggleColumn  ActionKind = "toggle_column"
	ActionDeleteSession ActionKind = "delete_session"

	ActionPrevDay  ActionKind = "prev_day"
	ActionNextDay  ActionKind = "next_day"
	ActionPrevWeek ActionKind = "prev_week"
	ActionNextWeek ActionKind = "next_week"
)

// actionDescriptions doubles as the registry of known actions and feeds the
// help modal.
var actionDescriptions = map[ActionKind]string{
	ActionQuit:                "quit",
	ActionNextItem:            "down",
	ActionPrevItem:            "up",
	ActionPageDown:            "page down",
	ActionPageUp:              "page up",
	ActionTop:                 "top",
	ActionBottom:              "bottom",
	ActionExpandRow:           "expand",
	ActionCollapseRow:         "collapse",
	ActionToggleExpand:        "toggle details",
	ActionSelect:              "select",
	ActionGoBack:              "back",
	ActionRefresh:             "refresh",
	ActionRetry:               "retry last fetch",
	ActionNextPage:            "next page",
	ActionPrevPage:            "previous page",
	ActionSortByColumn:        "sort column",
	ActionToggleSortDirection: "sort direction",
	ActionOpenServicePicker:   "services",
	ActionOpenRegionPicker:    "regions",
	ActionOpenProfilePicker:   "profiles",
	ActionOpenSessionPicker:   "sessions",
	ActionOpenTabPicker:       "tabs",
	ActionNewTab:              "new tab",
	ActionCloseTab:            "close tab",
	ActionNextTab:             "next tab",
	ActionPrevTab:             "previous tab",
	ActionOpenFilter:          "filter",
	ActionOpenEventFilter:     "filter events",
	ActionOpenQuery:           "query",
	ActionOpenCalendar:        "end date",
	ActionOpenColumnSelector:  "columns",
	ActionOpenHelp:            "help",
	ActionOpenMenu:            "menu",
	ActionCloseMenu:           "close",
	ActionApplyFilter:         "apply",
	ActionCancelFilter:        "cancel",
	ActionFilterChar:          "type",
	ActionFilterBackspace:     "delete char",
	ActionFilterClear:         "clear",
	ActionNextFilterFocus:     "next control",
	ActionPrevFilterFocus:     "previous control",
	ActionCompleteFilter:      "complete expression",
	ActionExecuteQuery:        "run query",
	ActionQueryChar:           "type",
	ActionQueryBackspace:      "delete char",
	ActionToggleColumn:        "toggle column",
	ActionDeleteSession:       "delete session",
	ActionPrevDay:             "previous day",
	ActionNextDay:             "next day",
	ActionPrevWeek:            "previous week",
	ActionNextWeek:            "next week",
}

// Description returns the short help text for the action kind.
func (k ActionKind) Description() string {
	return actionDescriptions[k]
}

// CarriesChar reports whether actions of this kind carry a typed rune.
func (k ActionKind) CarriesChar() bool {
	return k == ActionFilterChar || k == ActionQueryChar
}

// ParseActionKind resolves a config action name.
func ParseActionKind(s string) (ActionKind, error) {
	k := ActionKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := actionDescriptions[k]; !ok {
		return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return k, nil
}

// Action is a dispatched command. Char is only set for text-input kinds.
type Action struct {
	Kind ActionKind
	Char rune
}

// Is reports whether the action has the given kind.
func (a Action) Is(kind ActionKind) bool {
	return a.Kind == kind
}

func (a Action) String() string {
	if a.Kind.CarriesChar() {
		return fmt.Sprintf("%s(%q)", a.Kind, a.Char)
	}
	return string(a.Kind)
}
