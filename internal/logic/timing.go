package logic

import (
	"sync"
	"time"
)

// Timing holds the shared timestamps written by the edge handler and read by
// the idle monitor. All methods are safe for concurrent use.
type Timing struct {
	mu sync.Mutex
	ts Timestamps
}

// NewTiming returns timing state with every timestamp at "never".
func NewTiming() *Timing {
	return &Timing{}
}

// MarkOn records a power-on transition at now.
func (t *Timing) MarkOn(now time.Time) Timestamps {
	t.mu.Lock()
	defer t.mu.Unlock()
	advance(&t.ts.LastOn, now)
	return t.ts
}

// MarkOff records a power-off transition at now.
func (t *Timing) MarkOff(now time.Time) Timestamps {
	t.mu.Lock()
	defer t.mu.Unlock()
	advance(&t.ts.LastOff, now)
	return t.ts
}

// MarkNoMotion records that the sensor was seen low at now.
func (t *Timing) MarkNoMotion(now time.Time) Timestamps {
	t.mu.Lock()
	defer t.mu.Unlock()
	advance(&t.ts.LastNoMotion, now)
	return t.ts
}

// Snapshot returns a copy of all three timestamps taken under one lock.
func (t *Timing) Snapshot() Timestamps {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ts
}

// PowerState returns the derived state of the current snapshot.
func (t *Timing) PowerState() PowerState {
	return t.Snapshot().PowerState()
}

// advance moves *ts forward to now. A clock stepping backwards never moves
// a timestamp back.
func advance(ts *time.Time, now time.Time) {
	if now.After(*ts) {
		*ts = now
	}
}
