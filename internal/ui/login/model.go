package login

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todoclient/internal/auth"
	"github.com/nhle/todoclient/internal/theme"
	"github.com/nhle/todoclient/internal/ui"
)

// SubmitMsg is dispatched when the user submits the login form.
type SubmitMsg struct {
	Input auth.LoginInput
}

// RegisterMsg asks to switch to the registration view.
type RegisterMsg struct{}

// ForgotPasswordMsg asks for a password reset for Email.
type ForgotPasswordMsg struct {
	Email string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	remember bool
}

// Model is the login view.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	spinner    spinner.Model
	submitting bool
	width      int
	height     int
}

// New creates a new login view model.
func New(width, height int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		fb:      &formBindings{},
		spinner: s,
		width:   width,
		height:  height,
	}
}

// Start shows an empty form, prefilled with a remembered email.
func (m *Model) Start(rememberedEmail string) tea.Cmd {
	m.fb.email = rememberedEmail
	m.fb.password = ""
	m.fb.remember = rememberedEmail != ""
	return m.build()
}

// Retry rebuilds the form after a failed attempt, keeping the email and
// the remember-me choice.
func (m *Model) Retry() tea.Cmd {
	m.fb.password = ""
	return m.build()
}

func (m *Model) build() tea.Cmd {
	m.submitting = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@squareteam.com").
				Value(&m.fb.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password),
			huh.NewConfirm().
				Title("Remember me").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.remember),
		),
	).WithWidth(ui.FormWidth(m.width)).WithShowHelp(false)
	return m.form.Init()
}

// Submitting reports whether a login call is in flight.
func (m Model) Submitting() bool { return m.submitting }

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.submitting {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	if m.form == nil {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+r":
			return m, func() tea.Msg { return RegisterMsg{} }
		case "ctrl+f":
			email := m.fb.email
			return m, func() tea.Msg { return ForgotPasswordMsg{Email: email} }
		}
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		input := auth.LoginInput{
			Email:    m.fb.email,
			Password: m.fb.password,
			Remember: m.fb.remember,
		}
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg { return SubmitMsg{Input: input} },
		)
	}

	return m, cmd
}

// View renders the login form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	body := m.form.View()
	if m.submitting {
		body = m.spinner.View() + " Signing in..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Sign in"),
		body,
		"",
		theme.HelpStyle.Render("enter next · ctrl+r register · ctrl+f forgot password"),
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
