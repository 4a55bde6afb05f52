package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"scout-cli/internal/model"
	"scout-cli/internal/store"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput.Width = min(48, max(16, msg.Width-4))
		return m, nil

	case listChangedMsg:
		m.clampCursor()
		return m, waitChange(m.changes)

	case statsMsg:
		if msg.ok {
			m.stats = msg.stats
			m.statsOK = true
		}
		return m, nil

	case toastMsg:
		m.pushToast(toast(msg))
		return m, waitToast(m.toastCh)

	case toastTickMsg:
		m.expireToasts(time.Time(msg))
		return m, toastTick()

	case actionDoneMsg:
		// Counts move when a status changes; refresh them alongside the list.
		return m, m.fetchStats()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal first: it swallows everything.
	if m.confirmDecline != "" {
		switch msg.String() {
		case "y", "Y", "enter":
			id := m.confirmDecline
			m.confirmDecline = ""
			tb, ctx := m.deps.Toolbar, m.deps.Ctx
			return m, runAction(func() bool { return tb.Decline(ctx, id) })
		case "n", "N", "esc":
			m.confirmDecline = ""
			return m, nil
		}
		return m, nil
	}

	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.deps.Ctl.ClearSearch()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		// Every keystroke lands in the debounce buffer; the fetch fires
		// once typing pauses.
		m.deps.Ctl.SetSearchInput(m.searchInput.Value())
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		if m.statsCancel != nil {
			m.statsCancel()
		}
		m.deps.Ctl.Close()
		return m, tea.Quit

	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, nil

	case "esc":
		if m.deps.Sel.Selected() != "" {
			m.deps.Sel.Close()
			return m, nil
		}
		return m, nil

	case "j", "down":
		m.cursor++
		m.clampCursor()
		return m, nil

	case "k", "up":
		m.cursor--
		m.clampCursor()
		return m, nil

	case "enter":
		if c, ok := m.current(); ok {
			m.deps.Sel.Select(c.ID)
		}
		return m, nil

	case "v":
		m.view = (m.view + 1) % 4
		m.deps.Addr.Set("view", m.view.String())
		return m, nil

	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		m.deps.Ctl.HandleSort(sortColumns[idx])
		return m, nil

	case "left", "h", "[":
		m.deps.Ctl.PrevPage()
		return m, nil

	case "right", "l", "]":
		m.deps.Ctl.NextPage()
		return m, nil

	case "f":
		m.deps.Ctl.SetFilter(nextStatus(m.deps.Ctl.Query().Status))
		return m, nil

	case "x":
		m.deps.Ctl.ClearFilters()
		m.searchInput.SetValue("")
		m.deps.Ctl.ClearSearch()
		return m, nil

	case "+", "=":
		m.deps.Ctl.SetLimit(m.deps.Ctl.Query().Limit + 25)
		return m, nil

	case "-":
		m.deps.Ctl.SetLimit(m.deps.Ctl.Query().Limit - 25)
		return m, nil

	case "r":
		m.deps.Ctl.Refresh()
		return m, m.fetchStats()

	case "S":
		m.showStats = !m.showStats
		if m.deps.Store != nil {
			_ = m.deps.Store.SetBool(m.deps.Ctx, store.PrefShowStats, m.showStats)
		}
		return m, nil

	case "c":
		link := m.deps.Addr.Link(m.deps.BaseURL + "/connections")
		if err := clipboard.WriteAll(link); err != nil {
			m.pushToast(toast{text: "clipboard unavailable"})
		} else {
			m.pushToast(toast{text: "link copied", ok: true})
		}
		return m, nil

	case "a":
		if c, ok := m.current(); ok && c.CanAccept() {
			tb, ctx, id := m.deps.Toolbar, m.deps.Ctx, c.ID
			return m, runAction(func() bool { return tb.Accept(ctx, id) })
		}
		return m, nil

	case "d":
		if c, ok := m.current(); ok && c.CanDecline() {
			m.confirmDecline = c.ID
		}
		return m, nil

	case "t":
		if c, ok := m.current(); ok && c.CanTerminate() {
			tb, ctx, id := m.deps.Toolbar, m.deps.Ctx, c.ID
			return m, runAction(func() bool { return tb.Terminate(ctx, id) })
		}
		return m, nil
	}

	return m, nil
}

func (m *appModel) clampCursor() {
	n := len(m.items())
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// nextStatus cycles all -> pending -> active -> declined -> terminated -> all.
func nextStatus(cur model.ConnectionStatus) model.ConnectionStatus {
	if cur == "" {
		return model.Statuses[0]
	}
	for i, s := range model.Statuses {
		if s == cur {
			if i == len(model.Statuses)-1 {
				return ""
			}
			return model.Statuses[i+1]
		}
	}
	return ""
}
