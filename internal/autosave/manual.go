package autosave

import (
	"sort"
	"sync"
	"time"
)

// ManualClock is a Clock whose time only moves when Advance is called.
// Tests use it to drive debounced saves deterministically.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	at    time.Duration
	f     func()
	done  bool
}

// AfterFunc schedules f for d after the current manual time.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	mt := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, mt)
	return mt
}

func (mt *manualTimer) Stop() bool {
	mt.clock.mu.Lock()
	defer mt.clock.mu.Unlock()
	if mt.done {
		return false
	}
	mt.done = true
	return true
}

// Advance moves time forward by d and runs every callback that became
// due, in deadline order.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	kept := c.timers[:0]
	for _, mt := range c.timers {
		switch {
		case mt.done:
		case mt.at <= c.now:
			mt.done = true
			due = append(due, mt)
		default:
			kept = append(kept, mt)
		}
	}
	c.timers = kept
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, mt := range due {
		mt.f()
	}
}

// Now returns the elapsed manual time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
