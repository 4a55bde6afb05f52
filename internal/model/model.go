package model

import "time"

type ConnectionStatus string

const (
	StatusPending    ConnectionStatus = "pending"
	StatusActive     ConnectionStatus = "active"
	StatusDeclined   ConnectionStatus = "declined"
	StatusTerminated ConnectionStatus = "terminated"
)

// Statuses lists every status the portal recognizes, in display order.
var Statuses = []ConnectionStatus{StatusPending, StatusActive, StatusDeclined, StatusTerminated}

func (s ConnectionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusDeclined, StatusTerminated:
		return true
	}
	return false
}

func (s ConnectionStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusDeclined:
		return "Declined"
	case StatusTerminated:
		return "Terminated"
	}
	return string(s)
}

// Connection is one recruiter<->company relationship record as the portal
// backend returns it. Notes is markdown.
type Connection struct {
	ID            string           `json:"id"`
	CompanyID     string           `json:"companyId"`
	CompanyName   string           `json:"companyName"`
	RecruiterID   string           `json:"recruiterId"`
	RecruiterName string           `json:"recruiterName"`
	RoleTitle     string           `json:"roleTitle"`
	Location      string           `json:"location,omitempty"`
	Status        ConnectionStatus `json:"status"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// CanAccept and friends mirror the backend's transition rules. The backend is
// authoritative; these only gate which actions the UI offers.
func (c Connection) CanAccept() bool    { return c.Status == StatusPending }
func (c Connection) CanDecline() bool   { return c.Status == StatusPending }
func (c Connection) CanTerminate() bool { return c.Status == StatusActive }

// Pagination is the metadata block of a paginated list response.
type Pagination struct {
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page,omitempty"`
}

// Page is one page of a list endpoint's results plus its metadata.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Stats holds the portal's per-status aggregate counts.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Active   int `json:"active"`
	Declined int `json:"declined"`
}
