// Package debounce coalesces bursts of calls into a single delayed invocation.
package debounce

import (
	"sync"
	"time"
)

// Trigger delays fn until wait has passed without another Call. Only the
// argument of the most recent Call is delivered.
type Trigger[T any] struct {
	wait time.Duration
	fn   func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	arg     T
	gen     uint64 // bumped on every schedule change so stale timers do nothing
}

// New creates a trigger. A non-positive wait fires on the next timer tick.
func New[T any](wait time.Duration, fn func(T)) *Trigger[T] {
	if wait < 0 {
		wait = 0
	}
	return &Trigger[T]{wait: wait, fn: fn}
}

// Wait returns the configured delay
func (t *Trigger[T]) Wait() time.Duration {
	return t.wait
}

// Call schedules fn(arg), restarting the delay
func (t *Trigger[T]) Call(arg T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.arg = arg
	t.pending = true
	t.gen++
	gen := t.gen

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.wait, func() { t.fire(gen) })
}

// Flush runs a pending invocation immediately on the calling goroutine
func (t *Trigger[T]) Flush() {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return
	}
	arg := t.take()
	t.mu.Unlock()

	t.fn(arg)
}

// Cancel drops a pending invocation
func (t *Trigger[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending {
		t.take()
	}
}

// Pending reports whether an invocation is scheduled
func (t *Trigger[T]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *Trigger[T]) fire(gen uint64) {
	t.mu.Lock()
	if !t.pending || gen != t.gen {
		t.mu.Unlock()
		return
	}
	arg := t.take()
	t.mu.Unlock()

	t.fn(arg)
}

// take clears the pending state and returns the argument. Caller holds mu.
func (t *Trigger[T]) take() T {
	arg := t.arg
	var zero T
	t.arg = zero
	t.pending = false
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	return arg
}
