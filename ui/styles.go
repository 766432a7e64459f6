package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/cornish/inkwell/config"
	"github.com/cornish/inkwell/props"
)

// Styles contains all the styles used by the view
type Styles struct {
	Theme config.ThemeConfig

	// Status bar styles
	StatusBar      lipgloss.Style
	StatusModified lipgloss.Style
	StatusStyle    lipgloss.Style
	Warning        lipgloss.Style

	// Text styles
	Selection lipgloss.Style
	Cursor    lipgloss.Style
	Filler    lipgloss.Style
}

// NewStyles creates a Styles configuration from a theme
func NewStyles(theme config.ThemeConfig) Styles {
	return Styles{
		Theme: theme,

		StatusBar: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.StatusBg)).
			Foreground(lipgloss.Color(theme.StatusFg)),

		StatusModified: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.StatusBg)).
			Foreground(lipgloss.Color(theme.WarningFg)).
			Bold(true),

		StatusStyle: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.StatusBg)).
			Foreground(lipgloss.Color(theme.StatusFg)).
			Italic(true),

		Warning: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.StatusBg)).
			Foreground(lipgloss.Color(theme.WarningFg)).
			Bold(true),

		Selection: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.SelectionBg)).
			Foreground(lipgloss.Color(theme.SelectionFg)),

		Cursor: lipgloss.NewStyle().
			Reverse(true),

		Filler: lipgloss.NewStyle().
			Faint(true),
	}
}

// DefaultStyles returns the styles of the default theme
func DefaultStyles() Styles {
	return NewStyles(config.DefaultConfig().Theme)
}

// toggled reports whether a bold-like toggle is on for a run, given the value
// the run derives and its explicit setting.
func toggled(p props.IntProp, explicit *props.Set, derived props.Derived) bool {
	base := derived.Int(p) == props.ToggleOn
	v, ok := explicit.Int(p)
	if !ok {
		return base
	}
	if v.Val == props.ToggleInvert {
		return !base
	}
	return v.Val == props.ToggleOn
}

// RunStyle returns the terminal style for a run's effective formatting.
func RunStyle(explicit *props.Set, derived props.Derived) lipgloss.Style {
	s := lipgloss.NewStyle().
		Bold(toggled(props.Bold, explicit, derived)).
		Italic(toggled(props.Italic, explicit, derived)).
		Underline(toggled(props.Underline, explicit, derived))
	if v, ok := explicit.Int(props.ForeColor); ok {
		s = s.Foreground(rgbColor(v.Val))
	}
	if v, ok := explicit.Int(props.BackColor); ok {
		s = s.Background(rgbColor(v.Val))
	}
	return s
}

// rgbColor converts a packed 0xRRGGBB value to a terminal color.
func rgbColor(v int) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", v&0xffffff))
}
