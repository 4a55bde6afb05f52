package query

import (
	"net/url"
	"strconv"
	"strings"

	"scout-cli/internal/model"
)

// Query parameter names shared by the URL projection, the web view, and the
// backend's own list endpoints.
const (
	ParamStatus    = "status"
	ParamSearch    = "search"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamPage      = "page"
	ParamLimit     = "limit"
)

// Encode serializes q into query parameters, omitting every field equal to
// its default so the all-defaults query encodes to an empty string.
func Encode(q ListQuery, d Defaults) url.Values {
	vals := url.Values{}
	if q.Status != "" {
		vals.Set(ParamStatus, string(q.Status))
	}
	if q.Search != "" {
		vals.Set(ParamSearch, q.Search)
	}
	if q.SortBy != d.SortBy {
		vals.Set(ParamSortBy, q.SortBy)
	}
	if q.SortOrder != d.SortOrder {
		vals.Set(ParamSortOrder, string(q.SortOrder))
	}
	if q.Page > 1 {
		vals.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.Limit != d.Limit {
		vals.Set(ParamLimit, strconv.Itoa(q.Limit))
	}
	return vals
}

// Decode parses query parameters into a ListQuery. It never fails: unknown
// keys are ignored, malformed numbers and unrecognized enum values fall back
// to defaults. Decode(Encode(q, d), d) == q for any q reachable through the
// list controller's mutators.
func Decode(vals url.Values, d Defaults) ListQuery {
	q := d.Query()

	if s := model.ConnectionStatus(strings.TrimSpace(vals.Get(ParamStatus))); s.Valid() {
		q.Status = s
	}
	q.Search = vals.Get(ParamSearch)
	if by := strings.TrimSpace(vals.Get(ParamSortBy)); by != "" {
		q.SortBy = by
	}
	switch SortOrder(strings.ToLower(strings.TrimSpace(vals.Get(ParamSortOrder)))) {
	case OrderAsc:
		q.SortOrder = OrderAsc
	case OrderDesc:
		q.SortOrder = OrderDesc
	}
	if n, err := strconv.Atoi(vals.Get(ParamPage)); err == nil && n >= 1 {
		q.Page = n
	}
	if n, err := strconv.Atoi(vals.Get(ParamLimit)); err == nil && n >= 1 {
		q.Limit = n
	}
	return q
}
