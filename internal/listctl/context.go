package listctl

import (
	"context"
	"errors"
)

type ctxKey struct{}

// ErrNoController is returned by FromContext when the calling code runs
// outside a provider. It indicates a wiring mistake, not a runtime condition.
var ErrNoController = errors.New("listctl: no controller in context (missing provider)")

// NewContext returns a context carrying ctl, the provider half of the shared
// list context. Every view under it reads the same controller instead of
// fetching independently.
func NewContext(ctx context.Context, ctl *Controller) context.Context {
	return context.WithValue(ctx, ctxKey{}, ctl)
}

// FromContext is the required accessor: it fails loudly when no provider is
// in scope.
func FromContext(ctx context.Context) (*Controller, error) {
	ctl, ok := ctx.Value(ctxKey{}).(*Controller)
	if !ok || ctl == nil {
		return nil, ErrNoController
	}
	return ctl, nil
}

// MaybeFromContext is the optional accessor: nil when absent. Components
// that may legitimately run detached from a list (the action toolbar on a
// standalone detail page) use this and fall back to a caller-supplied
// refresh callback.
func MaybeFromContext(ctx context.Context) *Controller {
	ctl, _ := ctx.Value(ctxKey{}).(*Controller)
	return ctl
}
