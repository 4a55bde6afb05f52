// Package debounce decouples keystroke rate from fetch rate: a Buffer holds
// the raw text of a search input and commits it downstream only once the user
// has paused typing.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet is the pause after the last keystroke before a commit fires.
const DefaultQuiet = 400 * time.Millisecond

// Buffer holds a raw input value and invokes onCommit with the committed
// value after the raw value has been stable for the quiet interval. Typing
// again before the interval elapses cancels and reschedules the pending
// commit, so at most one commit fires per pause.
type Buffer struct {
	mu        sync.Mutex
	quiet     time.Duration
	raw       string
	committed string
	timer     *time.Timer
	onCommit  func(string)
}

func NewBuffer(quiet time.Duration, onCommit func(string)) *Buffer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	if onCommit == nil {
		onCommit = func(string) {}
	}
	return &Buffer{quiet: quiet, onCommit: onCommit}
}

// Set records a keystroke. It returns synchronously; the commit happens later
// on the timer goroutine.
func (b *Buffer) Set(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.raw = raw
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, b.fire)
}

// Flush cancels any pending timer and commits the raw value immediately.
// Used by explicit "clear" so the UI does not wait out the quiet interval.
func (b *Buffer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()
	b.fire()
}

// Stop cancels any pending commit without firing it.
func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Raw returns the in-progress input value (what the text box shows).
func (b *Buffer) Raw() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw
}

// Committed returns the last committed value (what feeds the query).
func (b *Buffer) Committed() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed
}

func (b *Buffer) fire() {
	b.mu.Lock()
	if b.raw == b.committed {
		b.mu.Unlock()
		return
	}
	b.committed = b.raw
	val := b.committed
	cb := b.onCommit
	b.mu.Unlock()

	cb(val)
}
