// Package autosave provides the single-slot timer used to coalesce
// document writes.
package autosave

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

// RealClock schedules on the runtime timer.
type RealClock struct{}

// AfterFunc wraps time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// Timer holds at most one pending action. Scheduling a new action
// cancels the previous one.
type Timer struct {
	clock Clock

	mu      sync.Mutex
	gen     uint64
	pending Stopper
	action  func()
}

// New returns a Timer driven by clock; nil means RealClock.
func New(clock Clock) *Timer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Timer{clock: clock}
}

// Schedule arms action to run after d, replacing whatever was pending.
func (t *Timer) Schedule(d time.Duration, action func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.action = action
	gen := t.gen
	t.pending = t.clock.AfterFunc(d, func() { t.fire(gen) })
}

// Stop drops the pending action without running it.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Pending reports whether an action is waiting to run.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.action != nil
}

// Flush runs the pending action immediately, if there is one, and
// reports whether it did.
func (t *Timer) Flush() bool {
	t.mu.Lock()
	action := t.action
	t.cancelLocked()
	t.mu.Unlock()
	if action == nil {
		return false
	}
	action()
	return true
}

// cancelLocked bumps the generation so a callback that already fired
// but has not yet taken the lock finds itself superseded.
func (t *Timer) cancelLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.action = nil
	t.gen++
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.action == nil {
		t.mu.Unlock()
		return
	}
	action := t.action
	t.action = nil
	t.pending = nil
	t.mu.Unlock()
	action()
}
