package app

import (
	"errors"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/auth"
	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/session"
	"github.com/nhle/todoclient/internal/todoview"
	"github.com/nhle/todoclient/internal/ui/command"
	"github.com/nhle/todoclient/internal/ui/login"
	"github.com/nhle/todoclient/internal/ui/settings"
	"github.com/nhle/todoclient/tests/testutil"
)

type harness struct {
	fake    *testutil.FakeAPI
	secrets *session.MemoryStore
	m       Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Uma User", "uma@x.io", "pw", "USER")
	fake.AddUser("Ada Admin", "ada@x.io", "pw", "ADMIN")

	secrets := session.NewMemoryStore()
	client := api.NewClient(fake.URL())
	svc := auth.NewService(client, secrets, session.NewMemoryStore(), auth.Options{
		EmailDomain: "squareteam.com",
	})

	cfg := model.AppConfig{
		Todos:   model.TodosConfig{PageSize: 5},
		Display: model.DisplayConfig{NotificationSec: 3},
	}

	h := &harness{fake: fake, secrets: secrets, m: New(cfg, svc, client)}
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	mdl, cmd := h.m.Update(msg)
	h.m = mdl.(Model)
	return cmd
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	h.send(h.m.Init()())
}

func (h *harness) signIn(t *testing.T, email string) {
	t.Helper()
	if err := h.secrets.Set(session.KeyToken, h.fake.Token(t, email)); err != nil {
		t.Fatal(err)
	}
	h.start(t)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartup_NoSessionShowsLogin(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if h.m.currentView != ViewLogin || h.m.session != nil {
		t.Fatalf("view = %v, session = %v", h.m.currentView, h.m.session)
	}
}

func TestStartup_RoutesByRole(t *testing.T) {
	tests := []struct {
		email string
		want  ViewState
	}{
		{"uma@x.io", ViewTodos},
		{"ada@x.io", ViewAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			h := newHarness(t)
			h.signIn(t, tt.email)

			if h.m.currentView != tt.want {
				t.Errorf("view = %v, want %v", h.m.currentView, tt.want)
			}
		})
	}
}

func TestAdminGate_DeniesUser(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "uma@x.io")

	h.send(runes(":"))
	if h.m.currentView != ViewCommand {
		t.Fatalf("':' opened %v", h.m.currentView)
	}
	h.send(command.CommandMsg(command.Admin))

	if h.m.currentView != ViewTodos {
		t.Errorf("view = %v, want todos", h.m.currentView)
	}
	if h.m.notice == nil || h.m.notice.Message != "Access denied" {
		t.Errorf("notice = %+v", h.m.notice)
	}
}

func TestAdminCanSwitchToOwnTodos(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "ada@x.io")

	h.send(runes(":"))
	h.send(command.CommandMsg(command.Todos))

	if h.m.currentView != ViewTodos || !h.m.todosStarted {
		t.Errorf("view = %v started = %v", h.m.currentView, h.m.todosStarted)
	}
}

func TestUnauthorizedDropsSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "uma@x.io")

	h.send(todoview.FailedMsg{
		View: h.m.todoList.Controller().ID(),
		Op:   "get todos",
		Err:  &api.Error{Kind: api.KindRemote, Op: "get todos", Status: http.StatusUnauthorized, Message: "Unauthorized"},
	})

	if h.m.currentView != ViewLogin || h.m.session != nil {
		t.Fatalf("view = %v, session = %v", h.m.currentView, h.m.session)
	}
	if _, err := h.secrets.Get(session.KeyToken); !errors.Is(err, session.ErrNotFound) {
		t.Error("token should be removed")
	}
	if h.m.notice == nil || h.m.notice.Level != model.NotifyError {
		t.Errorf("notice = %+v", h.m.notice)
	}
}

func TestUnauthorizedFromEarlierSessionIgnored(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "uma@x.io")
	stale := h.m.todoList.Controller().ID()

	h.send(runes(":"))
	h.send(command.CommandMsg(command.Logout))
	cmd := h.send(login.SubmitMsg{Input: auth.LoginInput{Email: "uma@x.io", Password: "pw"}})
	h.send(cmd())
	if h.m.currentView != ViewTodos || h.m.session == nil {
		t.Fatalf("re-login: view = %v, session = %v", h.m.currentView, h.m.session)
	}

	h.send(todoview.FailedMsg{
		View: stale,
		Op:   "get todos",
		Err:  &api.Error{Kind: api.KindRemote, Op: "get todos", Status: http.StatusUnauthorized, Message: "Unauthorized"},
	})

	if h.m.currentView != ViewTodos || h.m.session == nil {
		t.Errorf("stale 401 ended the new session: view = %v", h.m.currentView)
	}
	if tok, _ := h.secrets.Get(session.KeyToken); tok == "" {
		t.Error("token should still be stored")
	}
}

func TestOtherFailuresOnlyNotify(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "uma@x.io")

	h.send(todoview.FailedMsg{View: h.m.todoList.Controller().ID(), Op: "delete todo", Err: &api.Error{
		Kind: api.KindRemote, Op: "delete todo", Status: http.StatusNotFound, Message: "Todo not found",
	}})

	if h.m.currentView != ViewTodos {
		t.Errorf("view = %v, want todos", h.m.currentView)
	}
	if h.m.notice == nil || h.m.notice.Message != "Todo not found" {
		t.Errorf("notice = %+v", h.m.notice)
	}
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	cmd := h.send(login.SubmitMsg{Input: auth.LoginInput{Email: "uma@x.io", Password: "pw"}})
	h.send(cmd())

	if h.m.currentView != ViewTodos || h.m.session == nil {
		t.Fatalf("view = %v, session = %v", h.m.currentView, h.m.session)
	}
	if tok, _ := h.secrets.Get(session.KeyToken); tok == "" {
		t.Error("token should be persisted")
	}
}

func TestLoginFailureStaysOnLogin(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	cmd := h.send(login.SubmitMsg{Input: auth.LoginInput{Email: "uma@x.io", Password: "nope"}})
	h.send(cmd())

	if h.m.currentView != ViewLogin {
		t.Errorf("view = %v, want login", h.m.currentView)
	}
	if h.m.notice == nil || h.m.notice.Message != "Invalid email or password" {
		t.Errorf("notice = %+v", h.m.notice)
	}
}

func TestLogoutCommand(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "uma@x.io")

	h.send(runes(":"))
	h.send(command.CommandMsg(command.Logout))

	if h.m.currentView != ViewLogin || h.m.session != nil || h.m.todosStarted {
		t.Errorf("after logout: view %v session %v started %v", h.m.currentView, h.m.session, h.m.todosStarted)
	}
	if _, err := h.secrets.Get(session.KeyToken); !errors.Is(err, session.ErrNotFound) {
		t.Error("token should be removed")
	}
}

func TestNoticeExpiry(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	_ = h.m.notify(model.NotifyInfo, "first")
	first := h.m.notice.ID
	_ = h.m.notify(model.NotifyInfo, "second")

	h.send(noticeExpiredMsg{id: first})
	if h.m.notice == nil || h.m.notice.Message != "second" {
		t.Fatalf("stale expiry cleared the newer notice: %+v", h.m.notice)
	}

	h.send(noticeExpiredMsg{id: h.m.notice.ID})
	if h.m.notice != nil {
		t.Errorf("notice = %+v, want cleared", h.m.notice)
	}
}

func TestTodoResultsReachListWhileHelpIsOpen(t *testing.T) {
	h := newHarness(t)
	h.fake.SeedTodo("uma@x.io", "Buy milk", false)
	h.signIn(t, "uma@x.io")

	load := h.m.todoList.Controller().Refresh()
	h.send(runes("?"))
	if h.m.currentView != ViewHelp {
		t.Fatalf("'?' opened %v", h.m.currentView)
	}
	h.send(load())

	if entries := h.m.todoList.Controller().Entries(); len(entries) != 1 || entries[0].Item != "Buy milk" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSettingsSavedAppliesConfig(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "uma@x.io")

	h.send(runes(":"))
	h.send(command.CommandMsg(command.Settings))
	if h.m.currentView != ViewSettings {
		t.Fatalf("view = %v, want settings", h.m.currentView)
	}

	cfg := h.m.cfg
	cfg.Display.NotificationSec = 7
	h.send(settings.SavedMsg{Config: cfg})

	if h.m.currentView != ViewTodos {
		t.Errorf("view = %v, want todos", h.m.currentView)
	}
	if h.m.noticeTTL != 7*time.Second {
		t.Errorf("noticeTTL = %v", h.m.noticeTTL)
	}
	if h.m.notice == nil || h.m.notice.Message != "Settings saved" {
		t.Errorf("notice = %+v", h.m.notice)
	}
}
