package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Name
		ok   bool
	}{
		{"logout", Logout, true},
		{"  Clear   Completed ", ClearCompleted, true},
		{"clear", ClearCompleted, true},
		{"q", Quit, true},
		{"sync", Refresh, true},
		{"admin", Admin, true},
		{"launch", "", false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	m.Focus()
	for _, r := range "refresh" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should emit a command")
	}
	if got := cmd(); got != CommandMsg(Refresh) {
		t.Errorf("msg = %#v", got)
	}
}

func TestEnterUnknown(t *testing.T) {
	m := New(80, 24)
	m.Focus()
	for _, r := range "fly" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := cmd(); got != UnknownCommandMsg("fly") {
		t.Errorf("msg = %#v", got)
	}
}
