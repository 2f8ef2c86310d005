package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines colors used across the browser.
type Theme struct {
	Accent     color.Color // Title, keys and focused controls
	Muted      color.Color // Secondary text
	HeaderFG   color.Color // Column headers
	HeaderBG   color.Color // Title and footer bars
	SelectedFG color.Color // Selected row foreground
	SelectedBG color.Color // Selected row background
	Border     color.Color // Overlay borders and separators
	Error      color.Color // Error banners
	Success    color.Color // Status messages
	Match      color.Color // Fuzzy match highlights
}

// DefaultTheme is the dark 256-color palette.
func DefaultTheme() Theme {
	return Theme{
		Accent:     lipgloss.Color("81"),
		Muted:      lipgloss.Color("244"),
		HeaderFG:   lipgloss.Color("81"),
		HeaderBG:   lipgloss.Color("236"),
		SelectedFG: lipgloss.Color("250"),
		SelectedBG: lipgloss.Color("24"),
		Border:     lipgloss.Color("238"),
		Error:      lipgloss.Color("203"),
		Success:    lipgloss.Color("114"),
		Match:      lipgloss.Color("221"),
	}
}

type styles struct {
	title    lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	header   lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	focused  lipgloss.Style
	match    lipgloss.Style
	errText  lipgloss.Style
	status   lipgloss.Style
	footer   lipgloss.Style
	box      lipgloss.Style
}

// newStyles builds the styles for th. Without color only reverse video
// marks the selection and focus.
func newStyles(th Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		rev := plain.Reverse(true)
		return styles{
			title: plain, tab: plain, tabOn: rev, header: plain.Bold(true),
			selected: rev, muted: plain, focused: rev, match: plain.Underline(true),
			errText: plain, status: plain, footer: plain,
			box: plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Background(th.HeaderBG),
		tab:      lipgloss.NewStyle().Foreground(th.Muted),
		tabOn:    lipgloss.NewStyle().Bold(true).Foreground(th.SelectedFG).Background(th.SelectedBG),
		header:   lipgloss.NewStyle().Bold(true).Foreground(th.HeaderFG),
		selected: lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG),
		muted:    lipgloss.NewStyle().Foreground(th.Muted),
		focused:  lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Reverse(true),
		match:    lipgloss.NewStyle().Bold(true).Foreground(th.Match),
		errText:  lipgloss.NewStyle().Bold(true).Foreground(th.Error),
		status:   lipgloss.NewStyle().Foreground(th.Success),
		footer:   lipgloss.NewStyle().Foreground(th.Muted).Background(th.HeaderBG),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.Border).Padding(0, 1),
	}
}
