package listctl

import (
	"net/url"
	"sync"
)

// Address is the process-wide query-string the portal treats as shared
// state: the list controller projects its query into it, the selection and
// view-mode params live beside it, and deep links are minted from it.
//
// Writers only ever touch their own keys. Replace deletes the caller's owned
// keys and merges the new values in, so independent writers (controller,
// selection, view toggle) never clobber each other's params, and params
// nobody recognizes survive rewrites untouched.
type Address struct {
	mu   sync.Mutex
	vals url.Values

	// replaces counts rewrites. There is no push: filter and pagination
	// churn replaces the current entry instead of growing back-button
	// history.
	replaces int
}

func NewAddress() *Address {
	return &Address{vals: url.Values{}}
}

// ParseAddress seeds an Address from a raw query string (deep link or a
// saved search). Malformed input yields an empty address rather than an
// error; individual params are still decoded defensively downstream.
func ParseAddress(raw string) *Address {
	vals, err := url.ParseQuery(raw)
	if err != nil {
		vals = url.Values{}
	}
	return &Address{vals: vals}
}

// Replace rewrites the caller's slice of the query string: every key in
// owned is removed, then the entries of set are written. Keys outside owned
// are preserved.
func (a *Address) Replace(owned []string, set url.Values) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range owned {
		a.vals.Del(k)
	}
	for k, vs := range set {
		for i, v := range vs {
			if i == 0 {
				a.vals.Set(k, v)
			} else {
				a.vals.Add(k, v)
			}
		}
	}
	a.replaces++
}

// Set writes a single param (selection id, view mode).
func (a *Address) Set(key, val string) {
	a.Replace([]string{key}, url.Values{key: {val}})
}

// Del removes a single param.
func (a *Address) Del(key string) {
	a.Replace([]string{key}, nil)
}

func (a *Address) Get(key string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vals.Get(key)
}

// Values returns a copy of the current params.
func (a *Address) Values() url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := url.Values{}
	for k, vs := range a.vals {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Encode returns the canonical query string (keys sorted, no leading "?").
func (a *Address) Encode() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vals.Encode()
}

// Link mints a shareable deep link for the current state.
func (a *Address) Link(base string) string {
	enc := a.Encode()
	if enc == "" {
		return base
	}
	return base + "?" + enc
}

// Replaces returns how many times the address has been rewritten in place.
func (a *Address) Replaces() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.replaces
}
