package tui

import (
	"strings"
	"time"
)

const toastTTL = 4 * time.Second

type toast struct {
	text string
	ok   bool
	at   time.Time
}

func (m *appModel) pushToast(t toast) {
	t.at = time.Now()
	m.toasts = append(m.toasts, t)
	if len(m.toasts) > 3 {
		m.toasts = m.toasts[len(m.toasts)-3:]
	}
}

func (m *appModel) expireToasts(now time.Time) {
	keep := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Sub(t.at) < toastTTL {
			keep = append(keep, t)
		}
	}
	m.toasts = keep
}

func (m appModel) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range m.toasts {
		style := toastErrStyle
		if t.ok {
			style = toastOKStyle
		}
		b.WriteString(style.Render("• "+t.text) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
