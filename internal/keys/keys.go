package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the todo views.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Todo actions
	Add            key.Binding
	Toggle         key.Binding
	Delete         key.Binding
	ClearCompleted key.Binding

	// Search and filters
	Search       key.Binding
	StatusFilter key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "pgdown"),
			key.WithHelp("l/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "pgup"),
			key.WithHelp("h/←", "prev page"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new todo"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x/space", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		ClearCompleted: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete completed"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		StatusFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle status"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Add, k.Toggle,
		k.Search, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage, k.Back, k.Quit},
		{k.Add, k.Toggle, k.Delete, k.ClearCompleted},
		{k.Search, k.StatusFilter, k.Refresh},
		{k.Command, k.Help},
	}
}

// AdminHelp is the help view for the admin table, which is read-only.
type AdminHelp struct{ *KeyMap }

// ShortHelp returns the admin view's essential keybindings.
func (a AdminHelp) ShortHelp() []key.Binding {
	return []key.Binding{a.Up, a.Down, a.Search, a.StatusFilter, a.Help, a.Quit}
}

// FullHelp returns the admin view's keybindings by category.
func (a AdminHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{a.Up, a.Down, a.NextPage, a.PrevPage, a.Back, a.Quit},
		{a.Search, a.StatusFilter, a.Refresh},
		{a.Command, a.Help},
	}
}
