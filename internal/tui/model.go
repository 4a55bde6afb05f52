package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"scout-cli/internal/actions"
	"scout-cli/internal/api"
	"scout-cli/internal/listctl"
	"scout-cli/internal/model"
	"scout-cli/internal/selection"
	"scout-cli/internal/store"
)

type viewMode int

const (
	viewTable viewMode = iota
	viewGrid
	viewSplit
	viewBrowse
)

func (v viewMode) String() string {
	switch v {
	case viewTable:
		return "table"
	case viewGrid:
		return "grid"
	case viewSplit:
		return "split"
	case viewBrowse:
		return "browse"
	}
	return "table"
}

func viewModeFrom(s string) viewMode {
	switch s {
	case "grid":
		return viewGrid
	case "split":
		return viewSplit
	case "browse":
		return viewBrowse
	}
	return viewTable
}

// sortColumns is the column cycle the sort hotkeys walk, in header order.
var sortColumns = []string{"companyName", "roleTitle", "status", "created_at"}

// Deps carries everything the portal TUI needs. Ctx must have the list
// controller attached (listctl.NewContext); the toolbar resolves its refresh
// target from it.
type Deps struct {
	Ctx     context.Context
	Ctl     *listctl.Controller
	Sel     *selection.Selection
	Toolbar *actions.Toolbar
	Client  *api.Client
	Addr    *listctl.Address
	Store   *store.Store
	BaseURL string // portal web base for deep links
	Log     *zap.Logger
}

type appModel struct {
	deps Deps

	width  int
	height int

	view   viewMode
	cursor int

	searching   bool
	searchInput textinput.Model

	showStats bool
	stats     model.Stats
	statsOK   bool
	// statsCancel abandons the in-flight stats fetch on quit, so a late
	// response cannot write to a torn-down model.
	statsCancel context.CancelFunc

	// confirmDecline holds the id awaiting the user's confirmation, "" when
	// the modal is closed.
	confirmDecline string

	toasts []toast

	changes chan struct{}
	toastCh chan toast
}

// NewModel builds the TUI model. The initial view mode comes from the
// address (deep link) and the stats toggle from the local store.
func NewModel(deps Deps) appModel {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	input := textinput.New()
	input.Placeholder = "search connections"
	input.Prompt = "/ "
	input.CharLimit = 120
	input.SetValue(deps.Ctl.SearchInput())

	m := appModel{
		deps:        deps,
		view:        viewModeFrom(deps.Addr.Get("view")),
		searchInput: input,
		showStats:   true,
		changes:     make(chan struct{}, 1),
		toastCh:     make(chan toast, 8),
	}

	if deps.Store != nil {
		if v, err := deps.Store.Bool(deps.Ctx, store.PrefShowStats, true); err == nil {
			m.showStats = v
		}
	}

	deps.Ctl.Subscribe(func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})

	return m
}

// notifier adapts the toolbar's toast output onto the TUI's message loop.
type notifier struct{ ch chan toast }

func (n notifier) Success(msg string) { n.ch <- toast{text: msg, ok: true} }
func (n notifier) Error(msg string)   { n.ch <- toast{text: msg} }

// Notifier returns the sink to hand to actions.WithNotifier for this model.
func (m appModel) Notifier() actions.Notifier { return notifier{ch: m.toastCh} }

func (m appModel) Init() tea.Cmd {
	m.deps.Ctl.Start()
	return tea.Batch(
		waitChange(m.changes),
		waitToast(m.toastCh),
		m.fetchStats(),
		toastTick(),
	)
}

// items is the current page, straight from the shared controller.
func (m appModel) items() []model.Connection {
	return m.deps.Ctl.State().Data
}

// current returns the connection under the cursor.
func (m appModel) current() (model.Connection, bool) {
	items := m.items()
	if len(items) == 0 || m.cursor >= len(items) {
		return model.Connection{}, false
	}
	return items[m.cursor], true
}
