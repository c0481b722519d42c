package theme

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// detectedDark is the terminal background lipgloss detected before any
// override was applied. Apply is first called before the program starts,
// so the terminal is never queried while the UI owns it.
var detectedDark = sync.OnceValue(lipgloss.HasDarkBackground)

// Apply selects the color variant: "dark", "light", or anything else for
// the detected terminal background.
func Apply(name string) {
	dark := detectedDark()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		dark = true
	case "light":
		dark = false
	}
	lipgloss.SetHasDarkBackground(dark)
}

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlay content such as help and the command palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle is the bold heading inside a view.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// ListItemStyle is the base style for todo rows.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the focused todo row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DimmedStyle renders completed todos.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// EmptyStyle is used for the no-data placeholder.
var EmptyStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Align(lipgloss.Center, lipgloss.Center)

// StatusStyle returns a color-coded style for a todo's status label.
func StatusStyle(done bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if done {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorYellow)
}

// NotificationStyle returns the status bar style for a notification level.
func NotificationStyle(level model.NotificationLevel) lipgloss.Style {
	base := StatusBarStyle.Bold(true)

	switch level {
	case model.NotifySuccess:
		return base.Background(ColorGreen)
	case model.NotifyError:
		return base.Background(ColorRed)
	default:
		return base.Background(ColorBlue)
	}
}
