package logic

import "time"

// Policy holds the timing rules for turning the display off.
type Policy struct {
	// IdleTimeout is the minimum time since the last low observation.
	IdleTimeout time.Duration

	// MinOn is the minimum time the display stays on after a power-on.
	// It never drops below IdleTimeout.
	MinOn time.Duration
}

// NewPolicy returns a policy with the given idle timeout and hold time.
// A non-positive idle timeout falls back to the default. The hold time is
// raised to the idle timeout when shorter, so a missed low edge can never
// turn the display off sooner than IdleTimeout after motion.
func NewPolicy(idle, minOn time.Duration) Policy {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if minOn < idle {
		minOn = idle
	}
	return Policy{IdleTimeout: idle, MinOn: minOn}
}

// hold returns the effective minimum-on duration.
func (p Policy) hold() time.Duration {
	if p.MinOn < p.IdleTimeout {
		return p.IdleTimeout
	}
	return p.MinOn
}

// OffDue reports whether a power-off should be attempted at now, before the
// sensor is re-sampled. The display must be on, idle for at least
// IdleTimeout, and on for at least MinOn.
func (p Policy) OffDue(ts Timestamps, now time.Time) bool {
	if ts.PowerState() != PowerOn {
		return false
	}
	if now.Sub(ts.LastNoMotion) < p.IdleTimeout {
		return false
	}
	return now.Sub(ts.LastOn) >= p.hold()
}

// OffAt returns the earliest time a power-off can become due for ts, or the
// zero time if the display is off.
func (p Policy) OffAt(ts Timestamps) time.Time {
	if ts.PowerState() != PowerOn {
		return time.Time{}
	}
	idle := ts.LastNoMotion.Add(p.IdleTimeout)
	held := ts.LastOn.Add(p.hold())
	if held.After(idle) {
		return held
	}
	return idle
}

// Heartbeat tracks when the next periodic status line is due.
type Heartbeat struct {
	interval  time.Duration
	startTime time.Time
	last      time.Time
}

// NewHeartbeat creates a heartbeat that first fires interval after startTime.
// An interval <= 0 disables it.
func NewHeartbeat(interval time.Duration, startTime time.Time) *Heartbeat {
	return &Heartbeat{interval: interval, startTime: startTime, last: startTime}
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if disabled or not yet due.
func (h *Heartbeat) Check(now time.Time) *HeartbeatData {
	if h.interval <= 0 {
		return nil
	}
	if now.Sub(h.last) < h.interval {
		return nil
	}
	h.last = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
	}
}
