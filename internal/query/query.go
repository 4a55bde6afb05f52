package query

import "scout-cli/internal/model"

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListQuery is the canonical filter/sort/pagination state for one list
// endpoint. The zero value is not meaningful; start from a Defaults.
type ListQuery struct {
	Status    model.ConnectionStatus
	Search    string
	SortBy    string
	SortOrder SortOrder
	Page      int
	Limit     int
}

// Defaults documents, per controller instantiation, which values are omitted
// from the URL projection and substituted for malformed input on decode.
type Defaults struct {
	SortBy    string
	SortOrder SortOrder
	Limit     int
}

// ConnectionDefaults matches the portal backend's own defaults for the
// connections endpoint.
func ConnectionDefaults() Defaults {
	return Defaults{SortBy: "created_at", SortOrder: OrderDesc, Limit: 25}
}

// Query returns the all-defaults query, the state a list starts in.
func (d Defaults) Query() ListQuery {
	return ListQuery{
		SortBy:    d.SortBy,
		SortOrder: d.SortOrder,
		Page:      1,
		Limit:     d.Limit,
	}
}

// WithPage returns a copy with Page clamped to [1, max(1, totalPages)].
// totalPages <= 0 means "unknown" and clamps only the lower bound.
func (q ListQuery) WithPage(n, totalPages int) ListQuery {
	if totalPages < 1 {
		totalPages = 1
	}
	if n > totalPages {
		n = totalPages
	}
	if n < 1 {
		n = 1
	}
	q.Page = n
	return q
}

// Clamp re-applies the page bounds after a fetch changed totalPages.
func (q ListQuery) Clamp(totalPages int) ListQuery {
	return q.WithPage(q.Page, totalPages)
}
