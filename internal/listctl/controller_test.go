package listctl

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"scout-cli/internal/api"
	"scout-cli/internal/model"
	"scout-cli/internal/query"
)

// autoFetcher answers every request immediately with a canned page.
type autoFetcher struct {
	mu    sync.Mutex
	calls []query.ListQuery
	total int
	err   error
}

func (f *autoFetcher) ListConnections(_ context.Context, q query.ListQuery) (model.Page[model.Connection], error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	err := f.err
	total := f.total
	f.mu.Unlock()
	if err != nil {
		return model.Page[model.Connection]{}, err
	}
	totalPages := (total + q.Limit - 1) / q.Limit
	n := q.Limit
	if remaining := total - (q.Page-1)*q.Limit; remaining < n {
		n = remaining
	}
	items := make([]model.Connection, 0, max(n, 0))
	for i := 0; i < n; i++ {
		items = append(items, model.Connection{ID: fmt.Sprintf("con-%d-%d", q.Page, i), Status: model.StatusPending})
	}
	return model.Page[model.Connection]{
		Items:      items,
		Pagination: model.Pagination{Total: total, TotalPages: totalPages, Page: q.Page},
	}, nil
}

func (f *autoFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *autoFetcher) lastCall() query.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// stubFetcher parks every request until the test releases it, so response
// ordering is under test control.
type fetchResult struct {
	page model.Page[model.Connection]
	err  error
}

type stubFetcher struct {
	mu      sync.Mutex
	pending []chan fetchResult
	calls   []query.ListQuery
}

func (f *stubFetcher) ListConnections(_ context.Context, q query.ListQuery) (model.Page[model.Connection], error) {
	ch := make(chan fetchResult, 1)
	f.mu.Lock()
	f.pending = append(f.pending, ch)
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	r := <-ch
	return r.page, r.err
}

func (f *stubFetcher) release(i int, r fetchResult) {
	f.mu.Lock()
	ch := f.pending[i]
	f.mu.Unlock()
	ch <- r
}

func (f *stubFetcher) pendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// quiesce waits until the controller has applied a response and is idle.
func quiesce(t *testing.T, c *Controller) {
	t.Helper()
	waitFor(t, "controller idle", func() bool { return !c.State().Loading })
}

func pageOf(items []model.Connection, total, totalPages int) model.Page[model.Connection] {
	return model.Page[model.Connection]{
		Items:      items,
		Pagination: model.Pagination{Total: total, TotalPages: totalPages},
	}
}

func TestLastRequestWins(t *testing.T) {
	f := &stubFetcher{}
	c := New(f, query.ConnectionDefaults())
	defer c.Close()

	c.Start() // request A
	waitFor(t, "request A", func() bool { return f.pendingCount() == 1 })
	c.GoToPage(2) // request B, before A resolves
	waitFor(t, "request B", func() bool { return f.pendingCount() == 2 })

	// B resolves first, then A arrives late.
	b := pageOf([]model.Connection{{ID: "from-B"}}, 60, 3)
	a := pageOf([]model.Connection{{ID: "from-A"}}, 60, 3)
	f.release(1, fetchResult{page: b})
	quiesce(t, c)
	f.release(0, fetchResult{page: a})

	// Give the stale response a chance to (wrongly) land.
	time.Sleep(30 * time.Millisecond)

	st := c.State()
	if len(st.Data) != 1 || st.Data[0].ID != "from-B" {
		t.Fatalf("expected B's result to stick; got %+v", st.Data)
	}
}

func TestSetFilter_ResetsPageAndProjectsURL(t *testing.T) {
	f := &autoFetcher{total: 100}
	addr := NewAddress()
	c := New(f, query.ConnectionDefaults(), WithAddress(addr))
	defer c.Close()

	c.Start()
	quiesce(t, c)
	c.GoToPage(3)
	quiesce(t, c)
	if got := c.Query().Page; got != 3 {
		t.Fatalf("expected page 3; got %d", got)
	}

	c.SetFilter(model.StatusActive)
	quiesce(t, c)

	q := c.Query()
	if q.Page != 1 {
		t.Fatalf("filter change must reset page to 1; got %d", q.Page)
	}
	if q.Status != model.StatusActive {
		t.Fatalf("expected status filter active; got %q", q.Status)
	}
	if got := f.lastCall(); got.Page != 1 || got.Status != model.StatusActive {
		t.Fatalf("expected refetch with page=1 status=active; got %+v", got)
	}
	// Default page is omitted from the URL.
	if got := addr.Encode(); got != "status=active" {
		t.Fatalf("expected URL %q; got %q", "status=active", got)
	}
}

func TestHandleSortAndGoToPage_PreserveFiltersAndSearch(t *testing.T) {
	f := &autoFetcher{total: 100}
	c := New(f, query.ConnectionDefaults(), WithQuiet(5*time.Millisecond))
	defer c.Close()

	c.Start()
	quiesce(t, c)
	c.SetFilter(model.StatusPending)
	quiesce(t, c)
	c.SetSearchInput("acme")
	waitFor(t, "search commit", func() bool { return c.Query().Search == "acme" })
	quiesce(t, c)

	c.HandleSort("companyName")
	quiesce(t, c)
	c.GoToPage(2)
	quiesce(t, c)

	q := c.Query()
	if q.Status != model.StatusPending || q.Search != "acme" {
		t.Fatalf("sort/page must not clear filter or search; got %+v", q)
	}
	if q.SortBy != "companyName" || q.SortOrder != query.OrderAsc {
		t.Fatalf("expected ascending sort on companyName; got %+v", q)
	}

	// Sorting the same column again flips the order and keeps the page.
	c.HandleSort("companyName")
	quiesce(t, c)
	q = c.Query()
	if q.SortOrder != query.OrderDesc {
		t.Fatalf("expected toggled order desc; got %q", q.SortOrder)
	}
	if q.Page != 2 {
		t.Fatalf("sort must not reset the page; got %d", q.Page)
	}
}

func TestSearchCommit_ResetsPageAndFetchesOnce(t *testing.T) {
	f := &autoFetcher{total: 100}
	c := New(f, query.ConnectionDefaults(), WithQuiet(20*time.Millisecond))
	defer c.Close()

	c.Start()
	quiesce(t, c)
	c.GoToPage(4)
	quiesce(t, c)
	before := f.callCount()

	// A burst of keystrokes; only the final value commits.
	for _, v := range []string{"a", "ac", "acm", "acme"} {
		c.SetSearchInput(v)
	}
	if got := c.SearchInput(); got != "acme" {
		t.Fatalf("raw input should update synchronously; got %q", got)
	}
	if got := c.Query().Search; got != "" {
		t.Fatalf("committed search should still be empty; got %q", got)
	}

	waitFor(t, "search commit", func() bool { return c.Query().Search == "acme" })
	quiesce(t, c)

	if got := f.callCount() - before; got != 1 {
		t.Fatalf("expected exactly 1 fetch for the keystroke burst; got %d", got)
	}
	if got := c.Query().Page; got != 1 {
		t.Fatalf("search commit must reset page to 1; got %d", got)
	}
}

func TestRefresh_ReusesExactQuery(t *testing.T) {
	f := &autoFetcher{total: 100}
	c := New(f, query.ConnectionDefaults(), WithQuiet(5*time.Millisecond))
	defer c.Close()

	c.Start()
	quiesce(t, c)
	c.SetFilter(model.StatusPending)
	quiesce(t, c)
	c.GoToPage(2)
	quiesce(t, c)

	want := c.Query()
	c.Refresh()
	quiesce(t, c)

	if diff := cmp.Diff(want, f.lastCall()); diff != "" {
		t.Fatalf("Refresh must reuse the query verbatim (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, c.Query()); diff != "" {
		t.Fatalf("Refresh must not change state (-want +got):\n%s", diff)
	}
}

func TestFetchError_KeepsStaleDataVisible(t *testing.T) {
	f := &autoFetcher{total: 50}
	c := New(f, query.ConnectionDefaults())
	defer c.Close()

	c.Start()
	quiesce(t, c)
	st := c.State()
	if len(st.Data) == 0 || st.Err != "" {
		t.Fatalf("expected a clean populated state first; got %+v", st)
	}
	keep := st.Data[0].ID

	f.mu.Lock()
	f.err = fmt.Errorf("backend unreachable")
	f.mu.Unlock()
	c.Refresh()
	quiesce(t, c)

	st = c.State()
	if st.Err != "backend unreachable" {
		t.Fatalf("expected surfaced error; got %q", st.Err)
	}
	if len(st.Data) == 0 || st.Data[0].ID != keep {
		t.Fatalf("error must leave the last good page visible; got %+v", st.Data)
	}

	// Recovery clears the message.
	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	c.Refresh()
	quiesce(t, c)
	if st := c.State(); st.Err != "" {
		t.Fatalf("expected error cleared after recovery; got %q", st.Err)
	}
}

func TestMissingToken_LeavesStateUntouched(t *testing.T) {
	f := &autoFetcher{total: 50}
	c := New(f, query.ConnectionDefaults())
	defer c.Close()

	c.Start()
	quiesce(t, c)
	before := c.State()

	f.mu.Lock()
	f.err = api.ErrNoToken
	f.mu.Unlock()
	c.Refresh()
	quiesce(t, c)

	st := c.State()
	if st.Err != "" {
		t.Fatalf("missing token must not surface an error; got %q", st.Err)
	}
	if len(st.Data) != len(before.Data) {
		t.Fatalf("missing token must not change data; had %d items, got %d", len(before.Data), len(st.Data))
	}
}

func TestPageClamp_AfterResultSetShrinks(t *testing.T) {
	f := &autoFetcher{total: 100} // 4 pages at limit 25
	c := New(f, query.ConnectionDefaults())
	defer c.Close()

	c.Start()
	quiesce(t, c)
	c.GoToPage(4)
	quiesce(t, c)

	// The server-side set shrinks to one page; the next refresh lands out of
	// range and the controller clamps + refetches silently.
	f.mu.Lock()
	f.total = 10
	f.mu.Unlock()
	c.Refresh()

	waitFor(t, "clamped page", func() bool {
		st := c.State()
		return !st.Loading && c.Query().Page == 1
	})
	if got := f.lastCall().Page; got != 1 {
		t.Fatalf("expected refetch on clamped page 1; got %d", got)
	}
}

// For any sequence of mutator calls, the page stays within
// [1, max(1, totalPages)] once the dust settles.
func TestPageBounds_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := rapid.IntRange(0, 120).Draw(rt, "total")
		f := &autoFetcher{total: total}
		c := New(f, query.ConnectionDefaults(), WithQuiet(time.Millisecond))
		defer c.Close()
		c.Start()

		ops := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 12).Draw(rt, "ops")
		for _, op := range ops {
			switch op {
			case 0:
				c.SetFilter(model.StatusActive)
			case 1:
				c.ClearFilters()
			case 2:
				c.GoToPage(rapid.IntRange(-2, 9).Draw(rt, "page"))
			case 3:
				c.HandleSort("companyName")
			case 4:
				c.SetLimit(rapid.SampledFrom([]int{10, 25, 50}).Draw(rt, "limit"))
			case 5:
				c.Refresh()
			}
		}

		deadline := time.Now().Add(2 * time.Second)
		for c.State().Loading && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}

		page := c.Query().Page
		if page < 1 || page > c.TotalPages() {
			rt.Fatalf("page %d outside [1, %d] (total=%d)", page, c.TotalPages(), total)
		}
	})
}

func TestSubscribersNotified(t *testing.T) {
	f := &autoFetcher{total: 10}
	c := New(f, query.ConnectionDefaults())
	defer c.Close()

	var mu sync.Mutex
	fired := 0
	c.Subscribe(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	c.Start()
	quiesce(t, c)

	mu.Lock()
	got := fired
	mu.Unlock()
	if got < 2 { // loading=true, then populated
		t.Fatalf("expected at least 2 notifications; got %d", got)
	}
}
