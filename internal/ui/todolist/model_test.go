package todolist_test

import (
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/keys"
	"github.com/nhle/todoclient/internal/todoview"
	"github.com/nhle/todoclient/internal/ui/todolist"
	"github.com/nhle/todoclient/tests/testutil"
)

// drive runs cmd and feeds the resulting messages back into m, skipping
// spinner ticks so it terminates.
func drive(m todolist.Model, cmd tea.Cmd) todolist.Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case todoview.PageLoadedMsg, todoview.TodoAddedMsg, todoview.TodoMarkedMsg,
			todoview.TodoDeletedMsg, todoview.BulkDeletedMsg:
			var c tea.Cmd
			m, c = m.Update(msg)
			queue = append(queue, c)
		}
	}
	return m
}

func newList(t *testing.T) (todolist.Model, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Uma User", "uma@x.io", "pw", "USER")
	ctrl := todoview.New(api.NewClient(fake.URL()), fake.Token(t, "uma@x.io"), todoview.UserOptions(5, 0))
	return todolist.New(ctrl, keys.DefaultKeyMap(), 80, 20), fake
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEmptyListShowsNoData(t *testing.T) {
	m, _ := newList(t)
	m = drive(m, m.Init())

	if !strings.Contains(m.View(), "No data found.") {
		t.Errorf("view = %q", m.View())
	}
}

func TestAddThroughKeys(t *testing.T) {
	m, fake := newList(t)
	m = drive(m, m.Init())

	m, _ = m.Update(key("n"))
	if !m.Typing() {
		t.Fatal("n should open the add input")
	}
	for _, r := range "Buy milk" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(m, cmd)

	if m.Typing() {
		t.Error("input should close after enter")
	}
	if fake.TodoCount() != 1 {
		t.Fatalf("TodoCount = %d", fake.TodoCount())
	}
	if got, ok := m.Selected(); !ok || got.Item != "Buy milk" {
		t.Errorf("selected = %+v", got)
	}
	if !strings.Contains(m.View(), "[ ] Buy milk") {
		t.Errorf("view = %q", m.View())
	}
}

func TestFailedAddKeepsInput(t *testing.T) {
	m, fake := newList(t)
	fake.Fail(http.MethodPost, "/todos", http.StatusInternalServerError, `{"message":"boom"}`)
	m = drive(m, m.Init())

	m, _ = m.Update(key("n"))
	for _, r := range "Buy milk" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Adding() {
		t.Error("create should be in flight after enter")
	}
	m = drive(m, cmd)

	if !m.Typing() || m.Adding() {
		t.Errorf("typing = %v adding = %v, want input open and idle", m.Typing(), m.Adding())
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Errorf("typed item lost: %q", m.View())
	}
	if fake.TodoCount() != 0 {
		t.Errorf("TodoCount = %d", fake.TodoCount())
	}
}

func TestToggleThroughKeys(t *testing.T) {
	m, fake := newList(t)
	id := fake.SeedTodo("uma@x.io", "Walk dog", false)
	m = drive(m, m.Init())

	m, cmd := m.Update(key("x"))
	if sel, _ := m.Selected(); !sel.IsDone {
		t.Error("toggle should show done immediately")
	}
	m = drive(m, cmd)

	if !fake.IsDone(id) {
		t.Error("server should have the todo done")
	}
	if !strings.Contains(m.View(), "[x] Walk dog") {
		t.Errorf("view = %q", m.View())
	}
}

func TestBlankAddReportsFailure(t *testing.T) {
	m, _ := newList(t)
	m = drive(m, m.Init())

	m, _ = m.Update(key("n"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg, ok := cmd().(todoview.FailedMsg)
	if !ok || !api.IsValidation(msg.Err) {
		t.Errorf("msg = %#v", msg)
	}
}
