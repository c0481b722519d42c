package app

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/auth"
	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/session"
	"github.com/nhle/todoclient/internal/todoview"
	"github.com/nhle/todoclient/internal/ui/admin"
	"github.com/nhle/todoclient/internal/ui/todolist"
)

// sessionRestoredMsg carries the session found at startup, if any.
type sessionRestoredMsg struct {
	sess *session.Session
	err  error
}

// loginResultMsg is sent after a login attempt.
type loginResultMsg struct {
	sess *session.Session
	err  error
}

// registerResultMsg is sent after a registration attempt.
type registerResultMsg struct {
	ack api.Ack
	err error
}

// forgotResultMsg is sent after a password reset request.
type forgotResultMsg struct{ err error }

// noticeExpiredMsg clears the notification with the given id.
type noticeExpiredMsg struct{ id int }

func (m Model) restore() tea.Cmd {
	svc := m.auth
	return func() tea.Msg {
		sess, err := svc.Restore(context.Background())
		return sessionRestoredMsg{sess: sess, err: err}
	}
}

func (m Model) login(in auth.LoginInput) tea.Cmd {
	svc := m.auth
	return func() tea.Msg {
		sess, err := svc.Login(context.Background(), in)
		return loginResultMsg{sess: sess, err: err}
	}
}

func (m Model) register(in auth.RegisterInput) tea.Cmd {
	svc := m.auth
	return func() tea.Msg {
		ack, err := svc.Register(context.Background(), in)
		return registerResultMsg{ack: ack, err: err}
	}
}

func (m Model) forgotPassword(email string) tea.Cmd {
	svc := m.auth
	return func() tea.Msg {
		return forgotResultMsg{err: svc.ForgotPassword(email)}
	}
}

// showLogin routes to the login form, prefilled with a remembered email.
func (m *Model) showLogin() tea.Cmd {
	m.currentView = ViewLogin
	return m.loginView.Start(m.auth.RememberedEmail())
}

// startSession installs sess and routes by role.
func (m *Model) startSession(sess *session.Session) tea.Cmd {
	m.session = sess
	m.todosStarted = false
	m.adminStarted = false

	switch sess.Claims.Role {
	case session.RoleAdmin:
		return m.enterAdmin()
	case session.RoleUser:
		return m.enterTodos()
	default:
		log.Printf("session: unhandled role %v", sess.Claims.Role)
		return m.endSession("Unsupported account role", model.NotifyError)
	}
}

// enterTodos routes to the user's todo list, loading it on first visit.
func (m *Model) enterTodos() tea.Cmd {
	if m.session == nil {
		return m.showLogin()
	}
	m.currentView = ViewTodos
	if m.todosStarted {
		return nil
	}

	ctrl := todoview.New(m.todos, m.session.Token, todoview.UserOptions(m.pageSize(), m.debounce()))
	m.todoList = todolist.New(ctrl, m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())
	m.todosStarted = true
	return m.todoList.Init()
}

// enterAdmin routes to the admin table. Non-admins are sent to their
// own todos instead.
func (m *Model) enterAdmin() tea.Cmd {
	if m.session == nil {
		return m.showLogin()
	}
	if !m.session.IsAdmin() {
		return tea.Batch(m.notify(model.NotifyError, "Access denied"), m.enterTodos())
	}

	m.currentView = ViewAdmin
	if m.adminStarted {
		return nil
	}

	ctrl := todoview.New(m.todos, m.session.Token, todoview.AdminOptions(m.pageSize(), m.debounce()))
	m.adminView = admin.New(ctrl, m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())
	m.adminStarted = true
	return m.adminView.Init()
}

// expireSession drops a session the API no longer accepts.
func (m *Model) expireSession() tea.Cmd {
	return m.endSession("Session expired. Please log in again.", model.NotifyError)
}

// logout ends the session at the user's request.
func (m *Model) logout() tea.Cmd {
	return m.endSession("Logged out", model.NotifyInfo)
}

func (m *Model) endSession(text string, level model.NotificationLevel) tea.Cmd {
	if err := m.auth.Logout(); err != nil {
		log.Printf("logout: %v", err)
		text = api.Message(err)
		level = model.NotifyError
	}
	m.session = nil
	m.todosStarted = false
	m.adminStarted = false
	m.todoList = todolist.Model{}
	m.adminView = admin.Model{}
	return tea.Batch(m.notify(level, text), m.showLogin())
}

// notify shows text in the status bar until the notification TTL passes
// or another notification replaces it.
func (m *Model) notify(level model.NotificationLevel, text string) tea.Cmd {
	m.noticeSeq++
	id := m.noticeSeq
	m.notice = &model.Notification{
		ID:        id,
		Level:     level,
		Message:   text,
		CreatedAt: time.Now(),
	}
	return tea.Tick(m.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m Model) pageSize() int {
	return m.cfg.Todos.PageSize
}

func (m Model) debounce() time.Duration {
	return time.Duration(m.cfg.Todos.SearchDebounceMS) * time.Millisecond
}
