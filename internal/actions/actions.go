// Package actions is the toolbar behind accept/decline/terminate. It talks
// to the backend, keeps per-item in-flight flags, surfaces results as
// toasts, and asks the owning list controller to refetch after a successful
// write. It never mutates list data in place: the refetch is what moves an
// accepted item out of a "pending"-filtered list, so the client can not
// drift from the server's authoritative state.
package actions

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"scout-cli/internal/api"
	"scout-cli/internal/listctl"
	"scout-cli/internal/model"
)

type Action string

const (
	ActionAccept    Action = "accept"
	ActionDecline   Action = "decline"
	ActionTerminate Action = "terminate"
)

// Mutator is the slice of the API client the toolbar consumes.
type Mutator interface {
	Respond(ctx context.Context, id string, accept bool) error
	Terminate(ctx context.Context, id string) error
}

// Confirmer gates destructive actions behind an explicit user confirmation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Notifier receives the toast messages the toolbar emits.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type flightKey struct {
	id     string
	action Action
}

type Option func(*Toolbar)

func WithConfirmer(c Confirmer) Option {
	return func(t *Toolbar) { t.confirm = c }
}

func WithNotifier(n Notifier) Option {
	return func(t *Toolbar) { t.notify = n }
}

// WithRefresh sets the fallback refresh callback for toolbars running
// detached from a list controller (standalone detail page).
func WithRefresh(fn func()) Option {
	return func(t *Toolbar) { t.refresh = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(t *Toolbar) { t.log = log }
}

type Toolbar struct {
	client  Mutator
	confirm Confirmer
	notify  Notifier
	refresh func()
	log     *zap.Logger

	mu       sync.Mutex
	inFlight map[flightKey]bool
}

func New(client Mutator, opts ...Option) *Toolbar {
	t := &Toolbar{
		client:   client,
		notify:   nopNotifier{},
		log:      zap.NewNop(),
		inFlight: map[flightKey]bool{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Offered returns the actions the UI should show for conn's current status.
// This is the only client-side precondition check; the backend re-validates
// and its rejection message is surfaced verbatim.
func Offered(conn model.Connection) []Action {
	var out []Action
	if conn.CanAccept() {
		out = append(out, ActionAccept)
	}
	if conn.CanDecline() {
		out = append(out, ActionDecline)
	}
	if conn.CanTerminate() {
		out = append(out, ActionTerminate)
	}
	return out
}

// InFlight reports whether an action is currently running for id. Views use
// it to disable the triggering control.
func (t *Toolbar) InFlight(id string, action Action) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight[flightKey{id, action}]
}

// Accept accepts a pending connection. Returns false when the call was a
// no-op (already in flight).
func (t *Toolbar) Accept(ctx context.Context, id string) bool {
	return t.run(ctx, id, ActionAccept, "Connection accepted", func(ctx context.Context) error {
		return t.client.Respond(ctx, id, true)
	})
}

// Decline declines a pending connection. The confirmation step happens
// before any request is sent; an unconfirmed decline is a no-op.
func (t *Toolbar) Decline(ctx context.Context, id string) bool {
	if t.confirm != nil && !t.confirm.Confirm("Decline this connection? This cannot be undone.") {
		return false
	}
	return t.run(ctx, id, ActionDecline, "Connection declined", func(ctx context.Context) error {
		return t.client.Respond(ctx, id, false)
	})
}

// Terminate ends an active connection.
func (t *Toolbar) Terminate(ctx context.Context, id string) bool {
	return t.run(ctx, id, ActionTerminate, "Connection terminated", func(ctx context.Context) error {
		return t.client.Terminate(ctx, id)
	})
}

// run serializes per (item, action): a second call while one is in flight is
// ignored, not queued. Failures stop here as toasts and never reach the
// list controller.
func (t *Toolbar) run(ctx context.Context, id string, action Action, successMsg string, call func(context.Context) error) bool {
	key := flightKey{id, action}

	t.mu.Lock()
	if t.inFlight[key] {
		t.mu.Unlock()
		return false
	}
	t.inFlight[key] = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.inFlight, key)
		t.mu.Unlock()
	}()

	err := call(ctx)
	switch {
	case errors.Is(err, api.ErrNoToken):
		// Auth still loading; silently drop, same as the list fetcher.
		t.log.Debug("action skipped, no token", zap.String("id", id), zap.String("action", string(action)))
		return true
	case err != nil:
		t.log.Debug("action failed", zap.String("id", id), zap.String("action", string(action)), zap.Error(err))
		t.notify.Error(err.Error())
		return true
	}

	t.notify.Success(successMsg)
	if ctl := listctl.MaybeFromContext(ctx); ctl != nil {
		ctl.Refresh()
	} else if t.refresh != nil {
		t.refresh()
	}
	return true
}
