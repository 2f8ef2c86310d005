// Package focus cycles keyboard focus through the controls of a compound
// filter bar.
package focus

// Kind is the type of a focusable control.
type Kind string

const (
	KindInput      Kind = "input"
	KindCheckbox   Kind = "checkbox"
	KindDropdown   Kind = "dropdown"
	KindPagination Kind = "pagination"
)

// Target identifies one control. Targets are comparable.
type Target struct {
	Kind Kind
	Name string
}

var (
	// Input is the filter text input present in every filter bar.
	Input = Target{Kind: KindInput, Name: "filter"}
	// Pagination is the page selector present in every filter bar.
	Pagination = Target{Kind: KindPagination, Name: "pagination"}
)

// Checkbox returns a checkbox target.
func Checkbox(name string) Target { return Target{Kind: KindCheckbox, Name: name} }

// Dropdown returns a dropdown target.
func Dropdown(name string) Target { return Target{Kind: KindDropdown, Name: name} }

func (t Target) String() string {
	return string(t.Kind) + ":" + t.Name
}

func indexOf(controls []Target, current Target) int {
	for i, c := range controls {
		if c == current {
			return i
		}
	}
	return 0
}

// Next returns the control after current, wrapping at the end. An unknown
// current is treated as the first control. An empty ring returns current.
func Next(controls []Target, current Target) Target {
	if len(controls) == 0 {
		return current
	}
	return controls[(indexOf(controls, current)+1)%len(controls)]
}

// Prev returns the control before current, wrapping at the start.
func Prev(controls []Target, current Target) Target {
	if len(controls) == 0 {
		return current
	}
	n := len(controls)
	return controls[(indexOf(controls, current)-1+n)%n]
}

// Ring holds a control set and the focused control.
type Ring struct {
	controls []Target
	current  Target
}

// NewRing returns a ring focused on its first control.
func NewRing(controls ...Target) *Ring {
	r := &Ring{controls: append([]Target(nil), controls...)}
	if len(controls) > 0 {
		r.current = controls[0]
	}
	return r
}

// Controls returns the registered controls in order.
func (r *Ring) Controls() []Target {
	return append([]Target(nil), r.controls...)
}

// Current returns the focused control.
func (r *Ring) Current() Target { return r.current }

// Is reports whether t has focus.
func (r *Ring) Is(t Target) bool { return r.current == t }

// Next moves focus forward and returns the new target.
func (r *Ring) Next() Target {
	r.current = Next(r.controls, r.current)
	return r.current
}

// Prev moves focus backward and returns the new target.
func (r *Ring) Prev() Target {
	r.current = Prev(r.controls, r.current)
	return r.current
}

// Focus moves focus to t if it is registered.
func (r *Ring) Focus(t Target) bool {
	for _, c := range r.controls {
		if c == t {
			r.current = t
			return true
		}
	}
	return false
}

// Reset focuses the first control.
func (r *Ring) Reset() {
	if len(r.controls) > 0 {
		r.current = r.controls[0]
	}
}
