package actions

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"scout-cli/internal/api"
	"scout-cli/internal/listctl"
	"scout-cli/internal/model"
	"scout-cli/internal/query"
)

type stubMutator struct {
	mu         sync.Mutex
	respond    []struct{ id string; accept bool }
	terminated []string
	err        error
	block      chan struct{} // when set, calls park here
}

func (s *stubMutator) Respond(_ context.Context, id string, accept bool) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.respond = append(s.respond, struct{ id string; accept bool }{id, accept})
	s.mu.Unlock()
	return s.err
}

func (s *stubMutator) Terminate(_ context.Context, id string) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.terminated = append(s.terminated, id)
	s.mu.Unlock()
	return s.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.successes = append(n.successes, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

type confirmFunc func(string) bool

func (f confirmFunc) Confirm(prompt string) bool { return f(prompt) }

func TestAccept_CallsBackendAndRefreshes(t *testing.T) {
	m := &stubMutator{}
	n := &recordingNotifier{}
	var refreshed atomic.Int32
	tb := New(m, WithNotifier(n), WithRefresh(func() { refreshed.Add(1) }))

	if !tb.Accept(context.Background(), "con-1") {
		t.Fatal("expected dispatch")
	}

	if len(m.respond) != 1 || m.respond[0].id != "con-1" || !m.respond[0].accept {
		t.Fatalf("expected one accept=true call; got %+v", m.respond)
	}
	if got := refreshed.Load(); got != 1 {
		t.Fatalf("expected refresh after success; got %d", got)
	}
	if len(n.successes) != 1 {
		t.Fatalf("expected success toast; got %+v", n)
	}
}

func TestDecline_RequiresConfirmation(t *testing.T) {
	m := &stubMutator{}
	declined := false
	tb := New(m, WithConfirmer(confirmFunc(func(string) bool { return declined })))

	if tb.Decline(context.Background(), "con-1") {
		t.Fatal("unconfirmed decline must be a no-op")
	}
	if len(m.respond) != 0 {
		t.Fatalf("no request should be sent without confirmation; got %+v", m.respond)
	}

	declined = true
	if !tb.Decline(context.Background(), "con-1") {
		t.Fatal("confirmed decline should dispatch")
	}
	if len(m.respond) != 1 || m.respond[0].accept {
		t.Fatalf("expected one accept=false call; got %+v", m.respond)
	}
}

func TestRapidDoubleClick_SendsOneRequest(t *testing.T) {
	m := &stubMutator{block: make(chan struct{})}
	tb := New(m)

	done := make(chan bool, 1)
	go func() { done <- tb.Accept(context.Background(), "con-1") }()

	// Wait until the first call is parked inside the backend, then click again.
	for !tb.InFlight("con-1", ActionAccept) {
		time.Sleep(time.Millisecond)
	}
	if tb.Accept(context.Background(), "con-1") {
		t.Fatal("second click while in flight must be ignored, not queued")
	}

	close(m.block)
	if !<-done {
		t.Fatal("first click should have dispatched")
	}
	if len(m.respond) != 1 {
		t.Fatalf("expected exactly one network call; got %d", len(m.respond))
	}
}

func TestFailure_SurfacesServerMessageVerbatim(t *testing.T) {
	m := &stubMutator{err: &api.Error{Status: 409, Message: "connection is no longer pending"}}
	n := &recordingNotifier{}
	var refreshed atomic.Int32
	tb := New(m, WithNotifier(n), WithRefresh(func() { refreshed.Add(1) }))

	tb.Terminate(context.Background(), "con-2")

	if len(n.errors) != 1 || n.errors[0] != "connection is no longer pending" {
		t.Fatalf("expected verbatim server message; got %+v", n.errors)
	}
	if got := refreshed.Load(); got != 0 {
		t.Fatalf("failed action must not refresh; got %d", got)
	}
}

func TestMissingToken_IsSilent(t *testing.T) {
	m := &stubMutator{err: api.ErrNoToken}
	n := &recordingNotifier{}
	tb := New(m, WithNotifier(n))

	tb.Accept(context.Background(), "con-3")

	if len(n.errors) != 0 && len(n.successes) != 0 {
		t.Fatalf("missing token must not toast; got %+v", n)
	}
}

type countingFetcher struct{ calls atomic.Int32 }

func (f *countingFetcher) ListConnections(context.Context, query.ListQuery) (model.Page[model.Connection], error) {
	f.calls.Add(1)
	return model.Page[model.Connection]{Pagination: model.Pagination{Total: 0, TotalPages: 0}}, nil
}

func TestSuccess_RefreshesControllerFromContext(t *testing.T) {
	f := &countingFetcher{}
	ctl := listctl.New(f, query.ConnectionDefaults())
	defer ctl.Close()
	ctx := listctl.NewContext(context.Background(), ctl)

	tb := New(&stubMutator{})
	tb.Accept(ctx, "con-1")

	deadline := time.Now().Add(time.Second)
	for f.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if f.calls.Load() == 0 {
		t.Fatal("expected the owning controller to refetch after success")
	}
}

func TestOffered_FollowsStatus(t *testing.T) {
	cases := []struct {
		status model.ConnectionStatus
		want   []Action
	}{
		{model.StatusPending, []Action{ActionAccept, ActionDecline}},
		{model.StatusActive, []Action{ActionTerminate}},
		{model.StatusDeclined, nil},
		{model.StatusTerminated, nil},
	}
	for _, tc := range cases {
		got := Offered(model.Connection{Status: tc.status})
		if len(got) != len(tc.want) {
			t.Fatalf("status %s: expected %v; got %v", tc.status, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("status %s: expected %v; got %v", tc.status, tc.want, got)
			}
		}
	}
}
