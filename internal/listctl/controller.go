// Package listctl owns the canonical list state for one portal list: the
// query (filters, search, sort, page, limit), the fetched page, and the
// query's projection into the shared Address. Every view renders from the one
// controller; none fetches on its own.
package listctl

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"scout-cli/internal/api"
	"scout-cli/internal/debounce"
	"scout-cli/internal/model"
	"scout-cli/internal/query"
)

// Fetcher is the slice of the API client the controller consumes.
type Fetcher interface {
	ListConnections(ctx context.Context, q query.ListQuery) (model.Page[model.Connection], error)
}

// FetchState is the render-facing snapshot of a fetch lifecycle. Err keeps
// the last failure message while Data/Pagination keep the last good page, so
// an error never blanks the list.
type FetchState struct {
	Data       []model.Connection
	Loading    bool
	Err        string
	Pagination *model.Pagination
}

// ownedParams is the slice of the Address the controller rewrites. Selection
// and view-mode params belong to other writers.
var ownedParams = []string{
	query.ParamStatus, query.ParamSearch, query.ParamSortBy,
	query.ParamSortOrder, query.ParamPage, query.ParamLimit,
}

type Option func(*Controller)

// WithAddress enables URL projection into addr. Each state transition
// rewrites (replaces, never pushes) the controller's own params.
func WithAddress(addr *Address) Option {
	return func(c *Controller) { c.addr = addr }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithQuiet overrides the search debounce interval (tests).
func WithQuiet(d time.Duration) Option {
	return func(c *Controller) { c.quiet = d }
}

// WithInitialQuery seeds the starting query, typically decoded from a deep
// link or a saved search.
func WithInitialQuery(q query.ListQuery) Option {
	return func(c *Controller) { c.q = q }
}

// Controller is safe for concurrent use. All fetches are asynchronous; a
// monotonically increasing sequence number makes the newest request's result
// authoritative no matter the order responses arrive in.
type Controller struct {
	fetcher  Fetcher
	defaults query.Defaults
	quiet    time.Duration
	addr     *Address
	log      *zap.Logger

	mu     sync.Mutex
	q      query.ListQuery
	state  FetchState
	seq    uint64
	subs   []func()
	search *debounce.Buffer

	ctx    context.Context
	cancel context.CancelFunc
}

func New(fetcher Fetcher, defaults query.Defaults, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher:  fetcher,
		defaults: defaults,
		quiet:    debounce.DefaultQuiet,
		q:        defaults.Query(),
		log:      zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.search = debounce.NewBuffer(c.quiet, c.commitSearch)
	if c.q.Search != "" {
		// Seeded search (deep link) becomes the buffer's committed value so
		// the first keystroke diffs against it, not against "".
		c.search.Set(c.q.Search)
		c.search.Flush()
	}
	c.project()
	return c
}

// Start issues the initial fetch. Separate from New so callers can subscribe
// before the first transition.
func (c *Controller) Start() {
	c.dispatch()
}

// Close stops the debounce timer and abandons in-flight work.
func (c *Controller) Close() {
	c.search.Stop()
	c.cancel()
}

// Subscribe registers fn to run after every state change. fn must be cheap
// and must not call back into the controller's mutators.
func (c *Controller) Subscribe(fn func()) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// State returns a snapshot of the fetch state. The Data slice is shared;
// consumers are read-only.
func (c *Controller) State() FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	if st.Pagination != nil {
		p := *st.Pagination
		st.Pagination = &p
	}
	return st
}

// Query returns the current canonical query.
func (c *Controller) Query() query.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q
}

// SearchInput returns the raw (not yet committed) search text.
func (c *Controller) SearchInput() string {
	return c.search.Raw()
}

// TotalPages returns the last known page count, at least 1.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Pagination == nil || c.state.Pagination.TotalPages < 1 {
		return 1
	}
	return c.state.Pagination.TotalPages
}

// SetFilter merges the status filter and returns to the first page.
func (c *Controller) SetFilter(status model.ConnectionStatus) {
	c.mutate(func() {
		c.q.Status = status
		c.q.Page = 1
	})
}

// SetSearchInput records a keystroke. No fetch happens until the debounce
// buffer commits; the commit resets the page and fetches.
func (c *Controller) SetSearchInput(text string) {
	c.search.Set(text)
}

// ClearSearch drops the search term immediately, skipping the quiet interval.
func (c *Controller) ClearSearch() {
	c.search.Set("")
	c.search.Flush()
}

// ClearFilters resets the status filter and returns to the first page.
func (c *Controller) ClearFilters() {
	c.mutate(func() {
		c.q.Status = ""
		c.q.Page = 1
	})
}

// HandleSort toggles the order when column is already the sort key, else
// sorts ascending by column. The page is left alone.
func (c *Controller) HandleSort(column string) {
	c.mutate(func() {
		if c.q.SortBy == column {
			if c.q.SortOrder == query.OrderAsc {
				c.q.SortOrder = query.OrderDesc
			} else {
				c.q.SortOrder = query.OrderAsc
			}
			return
		}
		c.q.SortBy = column
		c.q.SortOrder = query.OrderAsc
	})
}

// GoToPage moves to page n, clamped to the known page range. Filters and
// search are untouched.
func (c *Controller) GoToPage(n int) {
	c.mutate(func() {
		total := 0
		if c.state.Pagination != nil {
			total = c.state.Pagination.TotalPages
		}
		c.q = c.q.WithPage(n, total)
	})
}

// NextPage and PrevPage are conveniences over GoToPage.
func (c *Controller) NextPage() { c.GoToPage(c.Query().Page + 1) }
func (c *Controller) PrevPage() { c.GoToPage(c.Query().Page - 1) }

// SetLimit changes the page size and returns to the first page.
func (c *Controller) SetLimit(n int) {
	if n < 1 {
		return
	}
	c.mutate(func() {
		c.q.Limit = n
		c.q.Page = 1
	})
}

// Refresh re-issues the current query verbatim. Mutation handlers call this
// after a successful write so the user's filter/sort/page position survives
// the backend state change.
func (c *Controller) Refresh() {
	c.dispatch()
}

// commitSearch is the debounce buffer's commit hook.
func (c *Controller) commitSearch(term string) {
	c.mu.Lock()
	if c.q.Search == term {
		c.mu.Unlock()
		return
	}
	c.q.Search = term
	c.q.Page = 1
	c.projectLocked()
	c.mu.Unlock()
	c.dispatch()
}

// mutate applies fn to the query under lock, re-projects the URL, and
// fetches. Transitions that end up changing nothing still refetch; the
// sequence number keeps that harmless.
func (c *Controller) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.projectLocked()
	c.mu.Unlock()
	c.dispatch()
}

func (c *Controller) project() {
	c.mu.Lock()
	c.projectLocked()
	c.mu.Unlock()
}

func (c *Controller) projectLocked() {
	if c.addr == nil {
		return
	}
	c.addr.Replace(ownedParams, query.Encode(c.q, c.defaults))
}

// dispatch starts an asynchronous fetch for the current query. A response is
// applied only while its sequence number is still the newest; anything older
// is discarded unseen ("last request wins").
func (c *Controller) dispatch() {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	q := c.q
	c.state.Loading = true
	c.mu.Unlock()
	c.notify()

	go func() {
		page, err := c.fetcher.ListConnections(c.ctx, q)

		c.mu.Lock()
		if seq != c.seq {
			c.mu.Unlock()
			c.log.Debug("discarding stale response", zap.Uint64("seq", seq))
			return
		}
		c.state.Loading = false

		refetch := false
		switch {
		case errors.Is(err, api.ErrNoToken):
			// Auth still loading; keep whatever is on screen.
		case err != nil:
			// Stale-but-visible: the last good page stays up next to the
			// error message.
			c.state.Err = err.Error()
		default:
			c.state.Err = ""
			c.state.Data = page.Items
			p := page.Pagination
			c.state.Pagination = &p
			if clamped := c.q.Clamp(p.TotalPages); clamped.Page != c.q.Page {
				// The page fell out of range (shrunken result set); clamp
				// silently and fetch the page we actually want.
				c.q = clamped
				c.projectLocked()
				refetch = true
			}
		}
		c.mu.Unlock()
		c.notify()
		if refetch {
			c.dispatch()
		}
	}()
}

func (c *Controller) notify() {
	c.mu.Lock()
	subs := append([]func(){}, c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
