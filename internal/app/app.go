package app

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/auth"
	"github.com/nhle/todoclient/internal/keys"
	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/session"
	"github.com/nhle/todoclient/internal/theme"
	"github.com/nhle/todoclient/internal/todoview"
	"github.com/nhle/todoclient/internal/ui"
	"github.com/nhle/todoclient/internal/ui/admin"
	"github.com/nhle/todoclient/internal/ui/command"
	helpview "github.com/nhle/todoclient/internal/ui/help"
	"github.com/nhle/todoclient/internal/ui/login"
	"github.com/nhle/todoclient/internal/ui/register"
	"github.com/nhle/todoclient/internal/ui/settings"
	"github.com/nhle/todoclient/internal/ui/todolist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewRegister
	ViewTodos
	ViewAdmin
	ViewHelp
	ViewCommand
	ViewSettings
)

// Model is the root Bubble Tea model. It owns the session and routes
// between the auth views and the todo views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	cfg          model.AppConfig
	auth         *auth.Service
	todos        todoview.API

	session *session.Session

	loginView    login.Model
	registerView register.Model
	todoList     todolist.Model
	adminView    admin.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settings.Model

	// todosStarted and adminStarted track which todo views have loaded
	// for the current session.
	todosStarted bool
	adminStarted bool

	notice    *model.Notification
	noticeSeq int
	noticeTTL time.Duration
	restoring bool
	ready     bool
}

// New creates the root model. client serves the todo views; authSvc
// owns login state.
func New(cfg model.AppConfig, authSvc *auth.Service, client todoview.API) Model {
	k := keys.DefaultKeyMap()

	ttl := time.Duration(cfg.Display.NotificationSec) * time.Second
	if ttl <= 0 {
		ttl = 3 * time.Second
	}

	return Model{
		currentView:  ViewLogin,
		keys:         k,
		cfg:          cfg,
		auth:         authSvc,
		todos:        client,
		loginView:    login.New(80, 24),
		registerView: register.New(cfg.Register.EmailDomain, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		settingsView: settings.New(model.DefaultConfigPath(), 80, 24),
		layout:       ui.NewLayout(80, 24),
		noticeTTL:    ttl,
		restoring:    true,
	}
}

// WithConfigPath sets the file the settings view writes to.
func (m Model) WithConfigPath(path string) Model {
	m.settingsView = settings.New(path, m.layout.ContentWidth(), m.layout.ContentHeight())
	return m
}

// Init restores a persisted session, if any.
func (m Model) Init() tea.Cmd {
	return m.restore()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.registerView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		if m.todosStarted {
			m.todoList.SetSize(w, h)
		}
		if m.adminStarted {
			m.adminView.SetSize(w, h)
		}
		return m.updateActiveView(msg)

	case sessionRestoredMsg:
		m.restoring = false
		if msg.err != nil {
			log.Printf("restore session: %v", msg.err)
			cmd := tea.Batch(m.notify(model.NotifyError, api.Message(msg.err)), m.showLogin())
			return m, cmd
		}
		if msg.sess == nil {
			cmd := m.showLogin()
			return m, cmd
		}
		cmd := m.startSession(msg.sess)
		return m, cmd

	case login.SubmitMsg:
		return m, m.login(msg.Input)

	case loginResultMsg:
		if msg.err != nil {
			log.Printf("login: %v", msg.err)
			cmd := tea.Batch(
				m.notify(model.NotifyError, api.Message(msg.err)),
				m.loginView.Retry(),
			)
			return m, cmd
		}
		cmd := tea.Batch(
			m.notify(model.NotifySuccess, "Welcome, "+msg.sess.Claims.FullName),
			m.startSession(msg.sess),
		)
		return m, cmd

	case login.RegisterMsg:
		m.currentView = ViewRegister
		cmd := m.registerView.Start()
		return m, cmd

	case login.ForgotPasswordMsg:
		return m, m.forgotPassword(msg.Email)

	case forgotResultMsg:
		level := model.NotifyInfo
		if api.IsValidation(msg.err) {
			level = model.NotifyError
		}
		cmd := m.notify(level, api.Message(msg.err))
		return m, cmd

	case register.SubmitMsg:
		return m, m.register(msg.Input)

	case registerResultMsg:
		if msg.err != nil {
			log.Printf("register: %v", msg.err)
			cmd := tea.Batch(
				m.notify(model.NotifyError, api.Message(msg.err)),
				m.registerView.Retry(),
			)
			return m, cmd
		}
		text := msg.ack.Message
		if text == "" {
			text = "Registration successful. Please sign in."
		}
		cmd := tea.Batch(m.notify(model.NotifySuccess, text), m.showLogin())
		return m, cmd

	case register.BackMsg:
		cmd := m.showLogin()
		return m, cmd

	case todoview.FailedMsg:
		if m.session == nil || !m.ownsView(msg.View) {
			return m, nil
		}
		if api.IsUnauthorized(msg.Err) {
			cmd := m.expireSession()
			return m, cmd
		}
		cmd := m.notify(model.NotifyError, api.Message(msg.Err))
		return m, cmd

	case noticeExpiredMsg:
		if m.notice != nil && m.notice.ID == msg.id {
			m.notice = nil
		}
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(command.Name(msg))
		return m, cmd

	case settings.SavedMsg:
		m.currentView = m.previousView
		if msg.Err != nil {
			log.Printf("save settings: %v", msg.Err)
			cmd := m.notify(model.NotifyError, "Could not save settings")
			return m, cmd
		}
		m.applySettings(msg.Config)
		cmd := m.notify(model.NotifySuccess, "Settings saved")
		return m, cmd

	case settings.CancelledMsg:
		m.currentView = m.previousView
		return m, nil

	case command.UnknownCommandMsg:
		m.currentView = m.previousView
		cmd := m.notify(model.NotifyError, "Unknown command: "+string(msg))
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.typing() {
			break
		}

		switch msg.String() {
		case "q":
			if m.currentView == ViewTodos || m.currentView == ViewAdmin {
				return m, tea.Quit
			}

		case "esc":
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			cmd := m.openHelp()
			return m, cmd

		case ":":
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			cmd := m.commandView.Focus()
			return m, cmd
		}

		return m.updateActiveView(msg)
	}

	return m.broadcast(msg)
}

// ownsView reports whether id belongs to a todo view of the current
// session. Results from an earlier session's views are dropped.
func (m Model) ownsView(id int) bool {
	if m.todosStarted && m.todoList.Controller().ID() == id {
		return true
	}
	return m.adminStarted && m.adminView.Controller().ID() == id
}

// typing reports whether the active view has a focused text input.
func (m Model) typing() bool {
	switch m.currentView {
	case ViewLogin, ViewRegister, ViewCommand, ViewSettings:
		return true
	case ViewTodos:
		return m.todoList.Typing()
	case ViewAdmin:
		return m.adminView.Typing()
	default:
		return false
	}
}

// broadcast delivers non-key messages. Both todo views see every message
// so their results land even while another view is shown; each
// controller drops messages that are not its own.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.todosStarted {
		m.todoList, cmd = m.todoList.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.adminStarted {
		m.adminView, cmd = m.adminView.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
		cmds = append(cmds, cmd)
	case ViewRegister:
		m.registerView, cmd = m.registerView.Update(msg)
		cmds = append(cmds, cmd)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
		cmds = append(cmds, cmd)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case ViewTodos:
		if m.todosStarted {
			m.todoList, cmd = m.todoList.Update(msg)
		}
	case ViewAdmin:
		if m.adminStarted {
			m.adminView, cmd = m.adminView.Update(msg)
		}
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settingsView.Start(m.cfg)
}

// applySettings adopts saved settings. Page size and debounce reach todo
// views created after this point; the API base URL needs a restart.
func (m *Model) applySettings(cfg model.AppConfig) {
	m.cfg = cfg
	if ttl := time.Duration(cfg.Display.NotificationSec) * time.Second; ttl > 0 {
		m.noticeTTL = ttl
	}
	theme.Apply(cfg.Display.Theme)
}

func (m *Model) openHelp() tea.Cmd {
	if m.currentView == ViewAdmin {
		m.helpView.Show(keys.AdminHelp{KeyMap: m.keys})
	} else {
		m.helpView.Show(m.keys)
	}
	m.previousView = m.currentView
	m.currentView = ViewHelp
	return nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready || m.restoring {
		return "Loading..."
	}

	user := ""
	if m.session != nil {
		user = m.session.Claims.FullName
		if m.session.IsAdmin() {
			user += " (admin)"
		}
	}

	header := m.layout.RenderHeader("Todo", user)
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.notice)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewRegister:
		return m.registerView.View()
	case ViewTodos:
		return m.todoList.View()
	case ViewAdmin:
		return m.adminView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter next | ctrl+r register | ctrl+c quit"
	case ViewRegister:
		return "enter next | esc back to sign in | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewSettings:
		return "enter next | esc cancel"
	case ViewAdmin:
		if m.adminView.Typing() {
			return "enter search | esc clear"
		}
		return "/ search | f status | h/l page | : command | ? help | q quit"
	default:
		if m.todoList.Typing() {
			return "enter confirm | esc cancel"
		}
		return "n new | x toggle | d delete | D clear done | / search | h/l page | ? help | q quit"
	}
}
