package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"scout-cli/internal/api"
	"scout-cli/internal/model"
)

type listChangedMsg struct{}

type statsMsg struct {
	stats model.Stats
	ok    bool
}

type toastMsg toast

type toastTickMsg time.Time

type actionDoneMsg struct{}

func waitChange(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return listChangedMsg{}
	}
}

func waitToast(ch chan toast) tea.Cmd {
	return func() tea.Msg {
		return toastMsg(<-ch)
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// fetchStats loads the aggregate counters off the UI loop. The context is
// cancelled on quit so a late response is dropped instead of written.
func (m *appModel) fetchStats() tea.Cmd {
	if m.statsCancel != nil {
		m.statsCancel()
	}
	ctx, cancel := context.WithCancel(m.deps.Ctx)
	m.statsCancel = cancel

	client := m.deps.Client
	return func() tea.Msg {
		stats, err := client.Stats(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, api.ErrNoToken) {
				return statsMsg{ok: false}
			}
			return nil
		}
		return statsMsg{stats: stats, ok: true}
	}
}

// runAction dispatches a toolbar action off the UI loop. The toolbar posts
// its own toasts; the message just re-arms rendering.
func runAction(fn func() bool) tea.Cmd {
	return func() tea.Msg {
		fn()
		return actionDoneMsg{}
	}
}
