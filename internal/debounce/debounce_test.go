package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestBuffer_CoalescesRapidKeystrokes(t *testing.T) {
	var commits atomic.Int32
	var last atomic.Value
	b := NewBuffer(50*time.Millisecond, func(v string) {
		commits.Add(1)
		last.Store(v)
	})

	for _, v := range []string{"a", "ac", "acm", "acme"} {
		b.Set(v)
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)

	if got := commits.Load(); got != 1 {
		t.Fatalf("expected exactly 1 commit; got %d", got)
	}
	if got := last.Load(); got != "acme" {
		t.Fatalf("expected committed value %q; got %v", "acme", got)
	}
	if got := b.Committed(); got != "acme" {
		t.Fatalf("Committed() = %q; want %q", got, "acme")
	}
}

func TestBuffer_RawIsSynchronous(t *testing.T) {
	b := NewBuffer(time.Hour, nil)
	b.Set("ac")
	if got := b.Raw(); got != "ac" {
		t.Fatalf("Raw() = %q; want %q", got, "ac")
	}
	if got := b.Committed(); got != "" {
		t.Fatalf("Committed() should still be empty; got %q", got)
	}
}

func TestBuffer_FlushCommitsImmediately(t *testing.T) {
	var commits atomic.Int32
	b := NewBuffer(time.Hour, func(string) { commits.Add(1) })

	b.Set("")
	b.Set("x")
	b.Set("")
	b.Flush()

	if got := b.Committed(); got != "" {
		t.Fatalf("expected cleared value; got %q", got)
	}
	// Raw equals the committed "" at flush time, so no commit fires, and the
	// cancelled timers must not fire late either.
	time.Sleep(20 * time.Millisecond)
	if got := commits.Load(); got != 0 {
		t.Fatalf("expected no commit for unchanged value; got %d", got)
	}
}

func TestBuffer_FlushCommitsChangedValue(t *testing.T) {
	var commits atomic.Int32
	b := NewBuffer(time.Hour, func(string) { commits.Add(1) })

	b.Set("acme")
	b.Flush()

	if got := b.Committed(); got != "acme" {
		t.Fatalf("expected %q; got %q", "acme", got)
	}
	if got := commits.Load(); got != 1 {
		t.Fatalf("expected 1 commit; got %d", got)
	}
}

func TestBuffer_StopCancelsPendingCommit(t *testing.T) {
	var called atomic.Bool
	b := NewBuffer(30*time.Millisecond, func(string) { called.Store(true) })

	b.Set("abandoned")
	b.Stop()
	time.Sleep(80 * time.Millisecond)

	if called.Load() {
		t.Fatal("commit should not fire after Stop")
	}
}
