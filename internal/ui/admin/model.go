package admin

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/keys"
	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/theme"
	"github.com/nhle/todoclient/internal/todoview"
)

// Model is the admin overview of every user's todos.
type Model struct {
	ctrl      *todoview.Controller
	keys      *keys.KeyMap
	table     table.Model
	search    textinput.Model
	searching bool
	spinner   spinner.Model
	pages     paginator.Model
	width     int
	height    int
}

// New creates an admin view driven by ctrl.
func New(ctrl *todoview.Controller, k *keys.KeyMap, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(ctrl.Options().PageSize+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue)
	t.SetStyles(styles)

	si := textinput.New()
	si.Placeholder = "search by todo or owner..."
	si.Prompt = "/ "
	si.Width = width - 6

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	p := paginator.New()
	p.Type = paginator.Arabic

	return Model{
		ctrl:    ctrl,
		keys:    k,
		table:   t,
		search:  si,
		spinner: s,
		pages:   p,
		width:   width,
		height:  height,
	}
}

func columns(width int) []table.Column {
	status := 10
	rest := max(width-status-10, 30)
	return []table.Column{
		{Title: "Item", Width: rest * 3 / 5},
		{Title: "Owner", Width: rest * 2 / 5},
		{Title: "Status", Width: status},
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Load(), m.spinner.Tick)
}

// Controller exposes the underlying controller.
func (m Model) Controller() *todoview.Controller { return m.ctrl }

// Typing reports whether the search input has focus.
func (m Model) Typing() bool { return m.searching }

// Refresh re-fetches the current page.
func (m Model) Refresh() tea.Cmd { return m.ctrl.Refresh() }

// Update handles messages for the admin view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleBrowseKeys(msg)
	}

	cmd := m.ctrl.Update(msg)
	var spin tea.Cmd
	m.spinner, spin = m.spinner.Update(msg)

	m.sync()
	return m, tea.Batch(cmd, spin)
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, m.ctrl.SubmitSearch()

	case tea.KeyEsc:
		m.searching = false
		m.search.Reset()
		m.search.Blur()
		return m, m.ctrl.ClearSearch()
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.ctrl.SetSearch(m.search.Value()))
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.NextPage):
		return m, m.ctrl.NextPage()

	case key.Matches(msg, m.keys.PrevPage):
		return m, m.ctrl.PrevPage()

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.ctrl.PendingSearch())
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.StatusFilter):
		return m, m.ctrl.CycleStatusFilter()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.ctrl.Refresh()
	}

	return m, nil
}

// sync copies the controller's page into the table and paginator.
func (m *Model) sync() {
	entries := m.ctrl.Entries()
	rows := make([]table.Row, len(entries))
	for i, t := range entries {
		rows[i] = table.Row{t.Item, t.OwnerName(), t.StatusLabel()}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}

	m.pages.TotalPages = m.ctrl.TotalPages()
	m.pages.Page = m.ctrl.Filter().Page - 1
}

// StatusLabel describes the active status filter.
func StatusLabel(status *bool) string {
	switch {
	case status == nil:
		return "All"
	case *status:
		return model.Todo{IsDone: true}.StatusLabel()
	default:
		return model.Todo{}.StatusLabel()
	}
}

// View renders the admin table.
func (m Model) View() string {
	filter := m.ctrl.Filter()

	header := theme.TitleStyle.Render("All Todos")
	status := theme.HelpStyle.Render("status: " + StatusLabel(filter.Status))

	search := ""
	switch {
	case m.searching:
		search = m.search.View()
	case filter.Search != "":
		search = theme.HelpStyle.Render(fmt.Sprintf("search: %q", filter.Search))
	}

	body := m.table.View()
	if m.ctrl.NoData() {
		body = theme.EmptyStyle.
			Width(max(m.width-4, 0)).
			Height(m.ctrl.Options().PageSize + 1).
			Render("No data found.")
	}

	footer := fmt.Sprintf("page %s · %d todos", m.pages.View(), m.ctrl.Page().TotalData)
	footer = theme.HelpStyle.Render(footer)
	if m.ctrl.Loading() {
		footer += "  " + m.spinner.View() + " loading"
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			header, status, search, body, "", footer,
		))
}

// SetSize updates the table dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetWidth(max(width-4, 0))
	m.search.Width = width - 6
}
