package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"scout-cli/internal/actions"
	"scout-cli/internal/format"
)

var (
	mdMu sync.Mutex
	// Cache renderers by wrap width. WithAutoStyle can block on terminal
	// background queries, so a fixed style is used instead.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdMu.Lock()
	r := mdRenderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("auto"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdMu.Unlock()
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}
	mdMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (m appModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.showStats {
		b.WriteString(m.renderStats())
		b.WriteString("\n")
	}

	if m.searching || m.searchInput.Value() != "" {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	switch m.view {
	case viewGrid:
		b.WriteString(m.renderGrid())
	case viewSplit:
		b.WriteString(m.renderSplit())
	case viewBrowse:
		b.WriteString(m.renderBrowse())
	default:
		b.WriteString(m.renderTable())
	}
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	if t := m.renderToasts(); t != "" {
		b.WriteString("\n")
		b.WriteString(t)
	}

	if m.confirmDecline != "" {
		b.WriteString("\n\n")
		b.WriteString(m.renderConfirm())
	}

	return b.String()
}

func (m appModel) renderHeader() string {
	st := m.deps.Ctl.State()
	q := m.deps.Ctl.Query()

	title := titleStyle.Render("Connections")
	var parts []string
	if q.Status != "" {
		parts = append(parts, q.Status.Label())
	}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("%q", q.Search))
	}
	if st.Loading {
		parts = append(parts, "loading…")
	}
	if len(parts) == 0 {
		return title + "  " + mutedStyle.Render(m.view.String())
	}
	return title + "  " + mutedStyle.Render(strings.Join(parts, " · ")+" · "+m.view.String())
}

func (m appModel) renderStats() string {
	if !m.statsOK {
		return mutedStyle.Render("stats …")
	}
	s := m.stats
	return mutedStyle.Render(fmt.Sprintf("total %d · pending %d · active %d · declined %d",
		s.Total, s.Pending, s.Active, s.Declined))
}

// bodyWidth is the width renderers may fill, never below a floor that keeps
// columns legible.
func (m appModel) bodyWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(40, m.width-2)
}

func (m appModel) renderTable() string {
	items := m.items()
	st := m.deps.Ctl.State()
	if len(items) == 0 {
		return m.renderEmpty(st.Err)
	}

	w := m.bodyWidth()
	company := max(12, (w-34)/2)
	role := max(12, w-34-company)

	q := m.deps.Ctl.Query()
	arrow := func(col string) string {
		if q.SortBy != col {
			return ""
		}
		if q.SortOrder == "asc" {
			return " ↑"
		}
		return " ↓"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-12s %s",
		company, "COMPANY"+arrow("companyName"),
		role, "ROLE"+arrow("roleTitle"),
		"STATUS"+arrow("status"),
		"UPDATED"+arrow("created_at"))))
	b.WriteString("\n")

	selected := m.deps.Sel.Selected()
	for i, c := range items {
		line := fmt.Sprintf("%-*s %-*s %-12s %s",
			company, ansi.Truncate(c.CompanyName, company, "…"),
			role, ansi.Truncate(c.RoleTitle, role, "…"),
			c.Status.Label(),
			format.RelativeTime(c.UpdatedAt))
		switch {
		case i == m.cursor:
			line = selectedRowStyle.Render("▸ " + line)
		case c.ID != "" && c.ID == selected:
			line = statusStyle(string(c.Status)).Render("• " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if st.Err != "" {
		b.WriteString(errStyle.Render("! " + st.Err))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m appModel) renderGrid() string {
	items := m.items()
	st := m.deps.Ctl.State()
	if len(items) == 0 {
		return m.renderEmpty(st.Err)
	}

	cardW := 30
	cols := max(1, m.bodyWidth()/(cardW+2))

	var cards []string
	for i, c := range items {
		body := titleStyle.Render(ansi.Truncate(c.CompanyName, cardW-2, "…")) + "\n" +
			ansi.Truncate(c.RoleTitle, cardW-2, "…") + "\n" +
			statusStyle(string(c.Status)).Render(c.Status.Label()) +
			mutedStyle.Render(" · "+format.RelativeTime(c.UpdatedAt))
		style := cardStyle
		if i == m.cursor {
			style = cardSelectedStyle
		}
		cards = append(cards, style.Width(cardW).Render(body))
	}

	var rows []string
	for i := 0; i < len(cards); i += cols {
		end := min(i+cols, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m appModel) renderSplit() string {
	listW := max(28, m.bodyWidth()/2-1)

	items := m.items()
	var left strings.Builder
	if len(items) == 0 {
		left.WriteString(mutedStyle.Render("no connections"))
	}
	for i, c := range items {
		line := ansi.Truncate(c.CompanyName+" · "+c.RoleTitle, listW-2, "…")
		if i == m.cursor {
			line = selectedRowStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		left.WriteString(line)
		left.WriteString("\n")
	}

	right := m.renderDetailPanel(m.bodyWidth() - listW - 3)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listW).Render(strings.TrimRight(left.String(), "\n")),
		panelStyle.Render(right))
}

func (m appModel) renderBrowse() string {
	return m.renderDetailPanel(m.bodyWidth())
}

// renderDetailPanel shows the URL-selected record, falling back to the
// cursor row. A selection that is not on the current page renders a
// placeholder rather than an error.
func (m appModel) renderDetailPanel(width int) string {
	items := m.items()

	c, ok := m.deps.Sel.Resolve(items)
	if !ok {
		if m.deps.Sel.Selected() != "" {
			return mutedStyle.Render("selected connection is not on this page")
		}
		if c, ok = m.current(); !ok {
			return mutedStyle.Render("nothing selected")
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(c.CompanyName))
	b.WriteString("\n")
	b.WriteString(c.RoleTitle)
	if c.Location != "" {
		b.WriteString(mutedStyle.Render(" · " + c.Location))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle(string(c.Status)).Render(c.Status.Label()))
	b.WriteString(mutedStyle.Render("  recruiter " + c.RecruiterName))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("created " + format.RelativeTime(c.CreatedAt) +
		" · updated " + format.RelativeTime(c.UpdatedAt)))

	if c.Notes != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdown(c.Notes, width))
	}

	if offered := actions.Offered(c); len(offered) > 0 {
		labels := make([]string, len(offered))
		for i, a := range offered {
			labels[i] = string(a)
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("actions: " + strings.Join(labels, ", ")))
	}
	return b.String()
}

func (m appModel) renderEmpty(errText string) string {
	if errText != "" {
		return errStyle.Render("! " + errText)
	}
	if m.deps.Ctl.State().Loading {
		return mutedStyle.Render("loading…")
	}
	return mutedStyle.Render("no connections match")
}

func (m appModel) renderFooter() string {
	q := m.deps.Ctl.Query()
	total := m.deps.Ctl.TotalPages()
	page := fmt.Sprintf("page %d/%d", q.Page, total)
	help := "j/k move · enter select · / search · f filter · 1-4 sort · [ ] page · v view · a/d/t act · c copy link · S stats · q quit"
	return mutedStyle.Render(page + "  " + help)
}

func (m appModel) renderConfirm() string {
	var who string
	if c, ok := m.deps.Sel.Resolve(m.items()); ok && c.ID == m.confirmDecline {
		who = c.CompanyName
	} else {
		for _, c := range m.items() {
			if c.ID == m.confirmDecline {
				who = c.CompanyName
				break
			}
		}
	}
	msg := "Decline this connection?"
	if who != "" {
		msg = "Decline the connection with " + who + "?"
	}
	return cardSelectedStyle.Render(titleStyle.Render(msg) + "\n" +
		mutedStyle.Render("y confirm · esc cancel"))
}
