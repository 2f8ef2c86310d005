package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchNormal(t *testing.T) {
	d := Default()
	tests := []struct {
		key  string
		want ActionKind
	}{
		{key: "q", want: ActionQuit},
		{key: "ctrl+c", want: ActionQuit},
		{key: "j", want: ActionNextItem},
		{key: "down", want: ActionNextItem},
		{key: "k", want: ActionPrevItem},
		{key: "ctrl+d", want: ActionPageDown},
		{key: "pgup", want: ActionPageUp},
		{key: "g", want: ActionTop},
		{key: "G", want: ActionBottom},
		{key: "l", want: ActionExpandRow},
		{key: "h", want: ActionCollapseRow},
		{key: "space", want: ActionToggleExpand},
		{key: "enter", want: ActionSelect},
		{key: "esc", want: ActionGoBack},
		{key: "r", want: ActionRefresh},
		{key: "ctrl+r", want: ActionOpenRegionPicker},
		{key: "R", want: ActionRetry},
		{key: "p", want: ActionPrevPage},
		{key: "ctrl+p", want: ActionOpenProfilePicker},
		{key: "s", want: ActionSortByColumn},
		{key: "ctrl+s", want: ActionOpenSessionPicker},
		{key: "t", want: ActionOpenTabPicker},
		{key: "ctrl+t", want: ActionNewTab},
		{key: "ctrl+w", want: ActionCloseTab},
		{key: "ctrl+alt+shift+right", want: ActionNextTab},
		{key: "ctrl+alt+shift+left", want: ActionPrevTab},
		{key: "/", want: ActionOpenFilter},
		{key: "e", want: ActionOpenEventFilter},
		{key: "i", want: ActionOpenQuery},
		{key: ":", want: ActionOpenServicePicker},
		{key: "c", want: ActionOpenColumnSelector},
		{key: "?", want: ActionOpenHelp},
		{key: "m", want: ActionOpenMenu},
		{key: "D", want: ActionOpenCalendar},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := d.Dispatch(MustParseKey(tt.key), Normal)
			require.True(t, ok)
			assert.Equal(t, Action{Kind: tt.want}, got)
		})
	}
}

func TestDispatchNormalMisses(t *testing.T) {
	d := Default()
	for _, ks := range []string{"x", "ctrl+alt+right", "alt+shift+right", "ctrl+x", "f5", "Z"} {
		t.Run(ks, func(t *testing.T) {
			_, ok := d.Dispatch(MustParseKey(ks), Normal)
			assert.False(t, ok)
		})
	}
}

func TestDispatchTextModes(t *testing.T) {
	d := Default()
	tests := []struct {
		name string
		mode Mode
		key  string
		want Action
	}{
		{name: "filter types letter", mode: FilterInput, key: "j", want: Action{Kind: ActionFilterChar, Char: 'j'}},
		{name: "filter types space", mode: FilterInput, key: "space", want: Action{Kind: ActionFilterChar, Char: ' '}},
		{name: "filter types q", mode: FilterInput, key: "q", want: Action{Kind: ActionFilterChar, Char: 'q'}},
		{name: "filter enter applies", mode: FilterInput, key: "enter", want: Action{Kind: ActionApplyFilter}},
		{name: "filter tab focus", mode: FilterInput, key: "tab", want: Action{Kind: ActionNextFilterFocus}},
		{name: "filter shift tab", mode: FilterInput, key: "shift+tab", want: Action{Kind: ActionPrevFilterFocus}},
		{name: "filter ctrl u clears", mode: FilterInput, key: "ctrl+u", want: Action{Kind: ActionFilterClear}},
		{name: "event filter types", mode: EventFilterInput, key: "F", want: Action{Kind: ActionFilterChar, Char: 'F'}},
		{name: "query types", mode: QueryInput, key: "(", want: Action{Kind: ActionQueryChar, Char: '('}},
		{name: "query enter executes", mode: QueryInput, key: "enter", want: Action{Kind: ActionExecuteQuery}},
		{name: "query backspace", mode: QueryInput, key: "backspace", want: Action{Kind: ActionQueryBackspace}},
		{name: "picker types", mode: ItemPicker(PickerRegion), key: "e", want: Action{Kind: ActionFilterChar, Char: 'e'}},
		{name: "picker ctrl n", mode: ItemPicker(PickerService), key: "ctrl+n", want: Action{Kind: ActionNextItem}},
		{name: "tab picker closes tab", mode: ItemPicker(PickerTab), key: "ctrl+w", want: Action{Kind: ActionCloseTab}},
		{name: "session picker deletes", mode: ItemPicker(PickerSession), key: "ctrl+d", want: Action{Kind: ActionDeleteSession}},
		{name: "ctrl c always quits", mode: QueryInput, key: "ctrl+c", want: Action{Kind: ActionQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Dispatch(MustParseKey(tt.key), tt.mode)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatchTextModesIgnoreChords(t *testing.T) {
	d := Default()
	for _, ks := range []string{"ctrl+x", "alt+a", "f2", "delete"} {
		t.Run(ks, func(t *testing.T) {
			_, ok := d.Dispatch(MustParseKey(ks), FilterInput)
			assert.False(t, ok)
		})
	}
	_, ok := d.Dispatch(MustParseKey("ctrl+d"), ItemPicker(PickerRegion))
	assert.False(t, ok, "delete session is only bound in the session picker")
}

func TestDispatchNonTextModesDoNotType(t *testing.T) {
	d := Default()
	for _, m := range []Mode{Normal, ColumnSelector, ErrorModal, HelpModal, CalendarPicker, OverlayMenu} {
		t.Run(m.String(), func(t *testing.T) {
			_, ok := d.Dispatch(MustParseKey("x"), m)
			assert.False(t, ok)
		})
	}
}

func TestDispatchUnknownMode(t *testing.T) {
	_, ok := Default().Dispatch(MustParseKey("ctrl+c"), Mode{Kind: "bogus"})
	assert.False(t, ok)
}

// Every key listed in a mode's table dispatches to exactly its action.
func TestDispatchTotality(t *testing.T) {
	d := Default()
	for _, m := range AllModes() {
		for ks, want := range defaultBindings(m) {
			got, ok := d.Dispatch(MustParseKey(ks), m)
			require.True(t, ok, "%s %s", m, ks)
			assert.Equal(t, want, got.Kind, "%s %s", m, ks)
		}
	}
}

func TestNewWithOverrides(t *testing.T) {
	d, err := New(Overrides{
		"normal":         {"x": "refresh", "q": Unbind, "ctrl+q": "quit"},
		"picker":         {"ctrl+j": "next_item"},
		"picker:session": {"ctrl+j": "prev_item"},
	})
	require.NoError(t, err)

	got, ok := d.Dispatch(MustParseKey("x"), Normal)
	require.True(t, ok)
	assert.Equal(t, ActionRefresh, got.Kind)

	_, ok = d.Dispatch(MustParseKey("q"), Normal)
	assert.False(t, ok)

	got, _ = d.Dispatch(MustParseKey("ctrl+q"), Normal)
	assert.Equal(t, ActionQuit, got.Kind)

	got, _ = d.Dispatch(MustParseKey("ctrl+j"), ItemPicker(PickerRegion))
	assert.Equal(t, ActionNextItem, got.Kind)

	got, _ = d.Dispatch(MustParseKey("ctrl+j"), ItemPicker(PickerSession))
	assert.Equal(t, ActionPrevItem, got.Kind)

	// defaults are untouched
	got, _ = Default().Dispatch(MustParseKey("q"), Normal)
	assert.Equal(t, ActionQuit, got.Kind)
}

func TestNewOverrideErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
		wantErr   error
	}{
		{name: "unknown mode", overrides: Overrides{"visual": {"x": "quit"}}, wantErr: ErrUnknownMode},
		{name: "unknown picker", overrides: Overrides{"picker:bucket": {"x": "quit"}}, wantErr: ErrUnknownMode},
		{name: "unknown action", overrides: Overrides{"normal": {"x": "explode"}}, wantErr: ErrUnknownAction},
		{name: "bad key", overrides: Overrides{"normal": {"hyper+x": "quit"}}, wantErr: ErrInvalidKey},
		{name: "payload action", overrides: Overrides{"filter": {"x": "filter_char"}}, wantErr: ErrPayloadRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.overrides)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestKeysFor(t *testing.T) {
	keys := Default().KeysFor(Normal, ActionQuit)
	got := make([]string, 0, len(keys))
	for _, k := range keys {
		got = append(got, k.String())
	}
	assert.Equal(t, []string{"ctrl+c", "q"}, got)
}

func TestParseMode(t *testing.T) {
	for _, m := range AllModes() {
		t.Run(m.String(), func(t *testing.T) {
			got, err := ParseMode(m.String())
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
	_, err := ParseMode("picker")
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestHelpBindings(t *testing.T) {
	d := Default()
	bindings := d.HelpBindings(Normal)
	require.NotEmpty(t, bindings)

	var quitHelp string
	for _, b := range bindings {
		if b.Help().Desc == ActionQuit.Description() {
			quitHelp = b.Help().Key
		}
	}
	assert.Equal(t, "ctrl+c/q", quitHelp)

	filter := d.HelpBindings(FilterInput)
	last := filter[len(filter)-1]
	assert.Equal(t, "text", last.Help().Key)

	cols := d.HelpColumns(Normal, 8)
	total := 0
	for _, c := range cols {
		assert.LessOrEqual(t, len(c), 8)
		total += len(c)
	}
	assert.Equal(t, len(bindings), total)
}
