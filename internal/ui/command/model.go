package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/theme"
)

// Name is a command palette command.
type Name string

const (
	Logout         Name = "logout"
	Refresh        Name = "refresh"
	Admin          Name = "admin"
	Todos          Name = "todos"
	ClearCompleted Name = "clear completed"
	Help           Name = "help"
	Settings       Name = "settings"
	Quit           Name = "quit"
)

// Commands lists every command in suggestion order.
var Commands = []Name{Todos, Admin, Refresh, ClearCompleted, Settings, Help, Logout, Quit}

var aliases = map[string]Name{
	"q":       Quit,
	"exit":    Quit,
	"sync":    Refresh,
	"clear":   ClearCompleted,
	"signout": Logout,
	"list":    Todos,
	"config":  Settings,
}

// Parse resolves typed text to a command. Unknown text reports false.
func Parse(s string) (Name, bool) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if a, ok := aliases[s]; ok {
		return a, true
	}
	for _, c := range Commands {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// CommandMsg is emitted when the user executes a known command.
type CommandMsg Name

// UnknownCommandMsg is emitted for text that is not a command.
type UnknownCommandMsg string

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Width = width - 6
	ti.ShowSuggestions = true

	suggestions := make([]string, len(Commands))
	for i, c := range Commands {
		suggestions[i] = string(c)
	}
	ti.SetSuggestions(suggestions)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		if name, ok := Parse(text); ok {
			return m, func() tea.Msg { return CommandMsg(name) }
		}
		return m, func() tea.Msg { return UnknownCommandMsg(text) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Command Palette")

	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = string(c)
	}
	hint := theme.HelpStyle.Render(strings.Join(names, " · "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), "", hint)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}
