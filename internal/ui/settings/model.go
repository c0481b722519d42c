package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/theme"
	"github.com/nhle/todoclient/internal/ui"
)

// SavedMsg reports the result of writing the settings file.
type SavedMsg struct {
	Config model.AppConfig
	Err    error
}

// CancelledMsg signals the settings view closed without saving.
type CancelledMsg struct{}

type formBindings struct {
	baseURL       string
	pageSize      string
	debounceMS    string
	theme         string
	notifySeconds string
}

// Model edits the persisted client settings.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	base   model.AppConfig
	path   string
	width  int
	height int
}

// New creates a settings view that writes to path.
func New(path string, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		path:   path,
		width:  width,
		height: height,
	}
}

// Start fills the form from cfg.
func (m *Model) Start(cfg model.AppConfig) tea.Cmd {
	m.base = cfg
	m.fb.baseURL = cfg.API.BaseURL
	m.fb.pageSize = strconv.Itoa(cfg.Todos.PageSize)
	m.fb.debounceMS = strconv.Itoa(cfg.Todos.SearchDebounceMS)
	m.fb.theme = cfg.Display.Theme
	m.fb.notifySeconds = strconv.Itoa(cfg.Display.NotificationSec)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Takes effect on next start").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Todos per page").
				Value(&m.fb.pageSize).
				Validate(validateCount("Page size", 1)),
			huh.NewInput().
				Title("Search debounce (ms)").
				Value(&m.fb.debounceMS).
				Validate(validateCount("Debounce", 0)),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Detect", "default"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&m.fb.theme),
			huh.NewInput().
				Title("Notification seconds").
				Value(&m.fb.notifySeconds).
				Validate(validateCount("Notification time", 1)),
		),
	).WithWidth(ui.FormWidth(m.width)).WithShowHelp(false)
	return m.form.Init()
}

// Config returns the settings currently entered in the form applied over
// the config the form was started with. The form validators guarantee
// the numbers parse.
func (m Model) Config() model.AppConfig {
	cfg := m.base
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	cfg.Todos.PageSize, _ = strconv.Atoi(strings.TrimSpace(m.fb.pageSize))
	cfg.Todos.SearchDebounceMS, _ = strconv.Atoi(strings.TrimSpace(m.fb.debounceMS))
	cfg.Display.Theme = m.fb.theme
	cfg.Display.NotificationSec, _ = strconv.Atoi(strings.TrimSpace(m.fb.notifySeconds))
	return cfg
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.save(m.Config())
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	return m, cmd
}

func (m Model) save(cfg model.AppConfig) tea.Cmd {
	path := m.path
	return func() tea.Msg {
		err := model.SaveConfig(path, &cfg)
		return SavedMsg{Config: cfg, Err: err}
	}
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Settings"),
		theme.HelpStyle.Render(m.path),
		"",
		m.form.View(),
		"",
		theme.HelpStyle.Render("enter next · esc cancel"),
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(ui.FormWidth(width))
	}
}

// --- Validators ---

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:3000)")
	}
	return nil
}

func validateCount(field string, least int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		if n < least {
			return fmt.Errorf("%s must be at least %d", field, least)
		}
		return nil
	}
}
