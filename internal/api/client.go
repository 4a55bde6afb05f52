// Package api is the HTTP client for the portal backend. It knows the wire
// shapes of the connections endpoints and nothing about view state; request
// ordering ("last request wins") is the list controller's job.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scout-cli/internal/model"
	"scout-cli/internal/query"
)

// ErrNoToken means the token source had nothing to offer, typically because
// auth state is still loading. Callers treat it as a silent no-op, not a
// failure to display.
var ErrNoToken = errors.New("no auth token")

// Error is a non-2xx response from the backend. Message carries the
// server-provided text when the body had the {"error":{"message":...}}
// envelope, and is surfaced to the user verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (HTTP %d)", e.Status)
}

// TokenSource yields the current bearer token, or "" when none is available.
type TokenSource interface {
	Token() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client talks to one portal backend. Safe for concurrent use.
type Client struct {
	base   *url.URL
	tokens TokenSource
	http   *http.Client
	log    *zap.Logger
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}
	c := &Client{
		base:   u,
		tokens: tokens,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type listEnvelope struct {
	Data       []model.Connection `json:"data"`
	Pagination model.Pagination   `json:"pagination"`
}

type itemEnvelope struct {
	Data model.Connection `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ListConnections fetches one page of connections for q.
func (c *Client) ListConnections(ctx context.Context, q query.ListQuery) (model.Page[model.Connection], error) {
	vals := url.Values{}
	if q.Status != "" {
		vals.Set(query.ParamStatus, string(q.Status))
	}
	if q.Search != "" {
		vals.Set(query.ParamSearch, q.Search)
	}
	vals.Set(query.ParamSortBy, q.SortBy)
	vals.Set(query.ParamSortOrder, string(q.SortOrder))
	vals.Set(query.ParamPage, fmt.Sprintf("%d", q.Page))
	vals.Set(query.ParamLimit, fmt.Sprintf("%d", q.Limit))

	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, "/connections?"+vals.Encode(), nil, &env); err != nil {
		return model.Page[model.Connection]{}, err
	}
	if env.Pagination.Page == 0 {
		env.Pagination.Page = q.Page
	}
	return model.Page[model.Connection]{Items: env.Data, Pagination: env.Pagination}, nil
}

// GetConnection fetches a single connection by id.
func (c *Client) GetConnection(ctx context.Context, id string) (model.Connection, error) {
	var env itemEnvelope
	if err := c.do(ctx, http.MethodGet, "/connections/"+url.PathEscape(id), nil, &env); err != nil {
		return model.Connection{}, err
	}
	return env.Data, nil
}

// Respond accepts or declines a pending connection. The backend distinguishes
// the two via the boolean flag in the body.
func (c *Client) Respond(ctx context.Context, id string, accept bool) error {
	body := map[string]bool{"accept": accept}
	return c.do(ctx, http.MethodPost, "/connections/"+url.PathEscape(id)+"/respond", body, nil)
}

// Terminate ends an active connection.
func (c *Client) Terminate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/connections/"+url.PathEscape(id)+"/terminate", nil, nil)
}

// Stats fetches the per-status aggregate counts. The counts are independent
// queries, so they go out concurrently.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	counts := []struct {
		status model.ConnectionStatus
		dst    *int
	}{
		{"", &stats.Total},
		{model.StatusPending, &stats.Pending},
		{model.StatusActive, &stats.Active},
		{model.StatusDeclined, &stats.Declined},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, cnt := range counts {
		g.Go(func() error {
			q := query.ConnectionDefaults().Query()
			q.Status = cnt.status
			q.Limit = 1
			page, err := c.ListConnections(ctx, q)
			if err != nil {
				return err
			}
			*cnt.dst = page.Pagination.Total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Stats{}, err
	}
	return stats, nil
}

// do issues one request. A missing token aborts before any network I/O with
// ErrNoToken.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	token := ""
	if c.tokens != nil {
		token = strings.TrimSpace(c.tokens.Token())
	}
	if token == "" {
		return ErrNoToken
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("portal request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = strings.TrimSpace(env.Error.Message)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
