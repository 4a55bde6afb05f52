package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"scout-cli/internal/actions"
)

// Run starts the interactive UI. The toolbar is built here when the caller
// left it nil, so its toasts land on this model's message loop.
func Run(deps Deps) error {
	m := NewModel(deps)
	if m.deps.Toolbar == nil {
		m.deps.Toolbar = actions.New(deps.Client,
			actions.WithNotifier(m.Notifier()),
			actions.WithLogger(deps.Log),
		)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
