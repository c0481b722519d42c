package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/theme"
)

// Layout holds the terminal dimensions and the fixed chrome around the
// active view.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the title bar with the signed-in user on the right.
func (l Layout) RenderHeader(title, user string) string {
	left := theme.HeaderStyle.Render(title)
	right := ""
	if user != "" {
		right = theme.HeaderStyle.Align(lipgloss.Right).Render(user)
	}
	return l.fill(theme.HeaderStyle, left, right)
}

// RenderStatusBar renders the active notification when there is one,
// the key hints otherwise.
func (l Layout) RenderStatusBar(hints string, note *model.Notification) string {
	if note != nil {
		style := theme.NotificationStyle(note.Level)
		return l.fill(style, style.Render(note.Message), "")
	}
	return l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
}

// fill pads the space between left and right with the bar background.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(max(l.ContentHeight(), 0)).
		MaxHeight(max(l.ContentHeight(), 0)).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
