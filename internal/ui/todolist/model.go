package todolist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/keys"
	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/theme"
	"github.com/nhle/todoclient/internal/todoview"
	"github.com/nhle/todoclient/internal/ui"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeSearch
)

// Model is the signed-in user's todo list.
type Model struct {
	ctrl        *todoview.Controller
	keys        *keys.KeyMap
	mode        mode
	adding      bool
	cursor      int
	addInput    textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model
	pages       paginator.Model
	width       int
	height      int
}

// New creates a todo list view driven by ctrl.
func New(ctrl *todoview.Controller, k *keys.KeyMap, width, height int) Model {
	ai := textinput.New()
	ai.Placeholder = "What needs to be done?"
	ai.Prompt = "+ "
	ai.Width = width - 6

	si := textinput.New()
	si.Placeholder = "search todos..."
	si.Prompt = "/ "
	si.Width = width - 6

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("•")
	p.InactiveDot = lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render("•")

	return Model{
		ctrl:        ctrl,
		keys:        k,
		addInput:    ai,
		searchInput: si,
		spinner:     s,
		pages:       p,
		width:       width,
		height:      height,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Load(), m.spinner.Tick)
}

// Controller exposes the underlying controller.
func (m Model) Controller() *todoview.Controller { return m.ctrl }

// Adding reports whether a create call is in flight.
func (m Model) Adding() bool { return m.adding }

// Typing reports whether a text input has focus, so global keys should
// be passed through.
func (m Model) Typing() bool { return m.mode != modeBrowse }

// Selected returns the todo under the cursor.
func (m Model) Selected() (model.Todo, bool) {
	entries := m.ctrl.Entries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return model.Todo{}, false
	}
	return entries[m.cursor], true
}

// Update handles messages for the todo list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.mode {
		case modeAdd:
			return m.handleAddKeys(msg)
		case modeSearch:
			return m.handleSearchKeys(msg)
		default:
			return m.handleBrowseKeys(msg)
		}
	}

	if msg, ok := msg.(todoview.TodoAddedMsg); ok && msg.View == m.ctrl.ID() {
		m.adding = false
		if msg.Err == nil {
			m.mode = modeBrowse
			m.addInput.Reset()
			m.addInput.Blur()
			m.cursor = 0
		}
	}

	var cmds []tea.Cmd
	cmds = append(cmds, m.ctrl.Update(msg))

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	m.sync()
	return m, tea.Batch(cmds...)
}

func (m Model) handleAddKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.adding {
			return m, nil
		}
		cmd, err := m.ctrl.Add(m.addInput.Value())
		if err != nil {
			return m, m.failed("add todo", err)
		}
		// The input stays open until the server accepts the todo.
		m.adding = true
		return m, cmd

	case tea.KeyEsc:
		m.mode = modeBrowse
		m.adding = false
		m.addInput.Reset()
		m.addInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.searchInput.Blur()
		return m, m.ctrl.SubmitSearch()

	case tea.KeyEsc:
		m.mode = modeBrowse
		m.searchInput.Reset()
		m.searchInput.Blur()
		return m, m.ctrl.ClearSearch()
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.ctrl.SetSearch(m.searchInput.Value()))
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.ctrl.Entries())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.NextPage):
		m.cursor = 0
		return m, m.ctrl.NextPage()

	case key.Matches(msg, m.keys.PrevPage):
		m.cursor = 0
		return m, m.ctrl.PrevPage()

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		cmd := m.addInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.ctrl.PendingSearch())
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.Selected(); ok {
			return m, m.ctrl.Toggle(t.ID)
		}

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.Selected(); ok {
			return m, m.ctrl.Delete(t.ID)
		}

	case key.Matches(msg, m.keys.ClearCompleted):
		return m, m.ctrl.DeleteCompleted()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.ctrl.Refresh()
	}

	return m, nil
}

// ClearCompleted deletes the done todos of the current page.
func (m Model) ClearCompleted() tea.Cmd { return m.ctrl.DeleteCompleted() }

// Refresh re-fetches the current page.
func (m Model) Refresh() tea.Cmd { return m.ctrl.Refresh() }

func (m Model) failed(op string, err error) tea.Cmd {
	view := m.ctrl.ID()
	return func() tea.Msg {
		return todoview.FailedMsg{View: view, Op: op, Err: err}
	}
}

// sync keeps the cursor and the paginator in step with the controller.
func (m *Model) sync() {
	if n := len(m.ctrl.Entries()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.pages.TotalPages = m.ctrl.TotalPages()
	m.pages.Page = m.ctrl.Filter().Page - 1
}

// View renders the todo list.
func (m Model) View() string {
	var sections []string
	sections = append(sections, theme.TitleStyle.Render("My Todos"))

	switch {
	case m.mode == modeAdd:
		sections = append(sections, m.addInput.View())
	case m.mode == modeSearch:
		sections = append(sections, m.searchInput.View())
	case m.ctrl.Filter().Search != "":
		sections = append(sections, theme.HelpStyle.Render(
			fmt.Sprintf("search: %q", m.ctrl.Filter().Search)))
	}

	sections = append(sections, m.renderEntries())
	sections = append(sections, "", m.renderFooter())

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderEntries() string {
	entries := m.ctrl.Entries()

	if m.ctrl.NoData() {
		return theme.EmptyStyle.
			Width(max(m.width-4, 0)).
			Height(m.ctrl.Options().PageSize).
			Render("No data found.")
	}

	now := time.Now()
	var b strings.Builder
	for i, t := range entries {
		mark := "[ ]"
		if t.IsDone {
			mark = "[x]"
		}
		line := mark + " " + t.Item
		if t.IsDone {
			line = theme.DimmedStyle.Render(line)
		}
		if t.CreatedAt != nil {
			line += "  " + theme.HelpStyle.Render(ui.Age(*t.CreatedAt, now))
		}
		if i == m.cursor && m.mode == modeBrowse {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(entries)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderFooter() string {
	page := m.ctrl.Page()
	status := fmt.Sprintf("page %d of %d · %d todos",
		m.ctrl.Filter().Page, m.ctrl.TotalPages(), page.TotalData)

	footer := m.pages.View() + "  " + theme.HelpStyle.Render(status)
	if m.ctrl.Loading() {
		footer += "  " + m.spinner.View() + " loading"
	}
	return footer
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.addInput.Width = width - 6
	m.searchInput.Width = width - 6
}
