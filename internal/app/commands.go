package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/ui/command"
)

// executeCommand handles a command from the command palette. The palette
// has already restored the view it was opened from.
func (m *Model) executeCommand(name command.Name) tea.Cmd {
	switch name {
	case command.Quit:
		return tea.Quit
	case command.Help:
		return m.openHelp()
	case command.Settings:
		return m.openSettings()
	}

	if m.session == nil {
		return m.notify(model.NotifyError, "Please sign in first")
	}

	switch name {
	case command.Logout:
		return m.logout()

	case command.Todos:
		return m.enterTodos()

	case command.Admin:
		return m.enterAdmin()

	case command.Refresh:
		switch {
		case m.currentView == ViewAdmin && m.adminStarted:
			return m.adminView.Refresh()
		case m.currentView == ViewTodos && m.todosStarted:
			return m.todoList.Refresh()
		}
		return nil

	case command.ClearCompleted:
		if m.currentView != ViewTodos {
			return m.notify(model.NotifyError, "Open your todos to clear completed items")
		}
		cmd := m.todoList.ClearCompleted()
		if cmd == nil {
			return m.notify(model.NotifyInfo, "No completed todos on this page")
		}
		return cmd
	}

	return nil
}
