package register

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/auth"
	"github.com/nhle/todoclient/internal/theme"
	"github.com/nhle/todoclient/internal/ui"
)

// SubmitMsg is dispatched when the user submits the registration form.
type SubmitMsg struct {
	Input auth.RegisterInput
}

// BackMsg asks to return to the login view.
type BackMsg struct{}

type formBindings struct {
	firstName string
	lastName  string
	email     string
	password  string
	confirm   string
	about     string
}

// Model is the registration view.
type Model struct {
	form        *huh.Form
	fb          *formBindings
	spinner     spinner.Model
	submitting  bool
	emailDomain string
	width       int
	height      int
}

// New creates a registration view. emailDomain is shown as a hint for
// emails entered without "@".
func New(emailDomain string, width, height int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		fb:          &formBindings{},
		spinner:     s,
		emailDomain: emailDomain,
		width:       width,
		height:      height,
	}
}

// Start shows an empty form.
func (m *Model) Start() tea.Cmd {
	*m.fb = formBindings{}
	return m.build()
}

// Retry rebuilds the form after a failed attempt, keeping what was typed
// except the passwords.
func (m *Model) Retry() tea.Cmd {
	m.fb.password = ""
	m.fb.confirm = ""
	return m.build()
}

func (m *Model) build() tea.Cmd {
	m.submitting = false

	emailHint := ""
	if m.emailDomain != "" {
		emailHint = fmt.Sprintf("@%s is added when omitted", m.emailDomain)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&m.fb.firstName),
			huh.NewInput().Title("Last name").Value(&m.fb.lastName),
			huh.NewInput().
				Title("Email").
				Description(emailHint).
				Value(&m.fb.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm),
			huh.NewText().
				Title("About").
				Placeholder("Tell us about yourself").
				Lines(3).
				Value(&m.fb.about),
		),
	).WithWidth(ui.FormWidth(m.width)).
		WithHeight(ui.FormHeight(m.height)).
		WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the registration view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.submitting {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	if m.form == nil {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return m, func() tea.Msg { return BackMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		input := auth.RegisterInput{
			FirstName:       m.fb.firstName,
			LastName:        m.fb.lastName,
			Email:           m.fb.email,
			Password:        m.fb.password,
			ConfirmPassword: m.fb.confirm,
			About:           m.fb.about,
		}
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg { return SubmitMsg{Input: input} },
		)
	}

	return m, cmd
}

// View renders the registration form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	body := m.form.View()
	if m.submitting {
		body = m.spinner.View() + " Creating account..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Create account"),
		body,
		"",
		theme.HelpStyle.Render("enter next · shift+tab back · esc sign in"),
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
