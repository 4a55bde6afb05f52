// Package selection tracks which list item is "open" in a detail panel. The
// selected id is projected into the shared address under its own param, so a
// deep link can land straight on an open detail panel, and it stays put
// across pagination.
package selection

import (
	"sync"

	"scout-cli/internal/listctl"
	"scout-cli/internal/model"
)

// DefaultParam is the portal's historical name for the selection param.
const DefaultParam = "invitationId"

type Selection struct {
	mu    sync.Mutex
	param string
	addr  *listctl.Address
	id    string
}

// New creates a selection projected under param. addr may be nil for callers
// without a URL surface (headless commands).
func New(param string, addr *listctl.Address) *Selection {
	if param == "" {
		param = DefaultParam
	}
	s := &Selection{param: param, addr: addr}
	if addr != nil {
		s.id = addr.Get(param)
	}
	return s
}

// Select opens id. Selecting the already-open id closes it instead, so the
// same key/click toggles the panel.
func (s *Selection) Select(id string) {
	s.mu.Lock()
	if s.id == id {
		s.id = ""
	} else {
		s.id = id
	}
	s.project()
	s.mu.Unlock()
}

// Close deselects. Idempotent.
func (s *Selection) Close() {
	s.mu.Lock()
	s.id = ""
	s.project()
	s.mu.Unlock()
}

// Selected returns the open id, or "" when nothing is open.
func (s *Selection) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Resolve scans the currently loaded page for the selected item. A selected
// id that fell off the page (or arrived via deep link before the fetch) is a
// legal state: ok is false and the caller renders a placeholder.
func (s *Selection) Resolve(items []model.Connection) (model.Connection, bool) {
	id := s.Selected()
	if id == "" {
		return model.Connection{}, false
	}
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Connection{}, false
}

func (s *Selection) project() {
	if s.addr == nil {
		return
	}
	if s.id == "" {
		s.addr.Del(s.param)
		return
	}
	s.addr.Set(s.param, s.id)
}
