// Package status provides a thread-safe status tracker for the motion-wakeup
// daemon. It is read by the heartbeat logger and --print-state.
package status

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motion-wakeup/internal/gpio"
	"github.com/sweeney/motion-wakeup/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Backend      string
	Chip         string
	Pin          int
	PollMs       int64
	DebounceMs   int64
	IdleTimeoutS int64
	MinOnS       int64
	HeartbeatMs  int64
	OffRetries   int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Timestamps logic.Timestamps
	Level      gpio.Level
	LevelKnown bool
	Counts     logic.Counts
	LastError  string
	StartTime  time.Time
	Now        time.Time
	Config     Config
}

// Power returns the derived display state.
func (s Snapshot) Power() logic.PowerState {
	return s.Timestamps.PowerState()
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// MarshalZerologObject writes the snapshot as structured log fields.
func (s Snapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Str("power", string(s.Power())).
		Dur("uptime", s.Uptime().Truncate(time.Second)).
		Int("motion", s.Counts.Motion).
		Int("no_motion", s.Counts.NoMotion).
		Int("power_on", s.Counts.PowerOn).
		Int("power_off", s.Counts.PowerOff).
		Int("failures", s.Counts.Failures).
		Int("off_averted", s.Counts.OffAverted)
	if s.LevelKnown {
		e.Str("level", s.Level.String())
	}
	timeField(e, "last_on", s.Timestamps.LastOn)
	timeField(e, "last_off", s.Timestamps.LastOff)
	timeField(e, "last_no_motion", s.Timestamps.LastNoMotion)
	if s.LastError != "" {
		e.Str("last_error", s.LastError)
	}
}

func timeField(e *zerolog.Event, key string, t time.Time) {
	if t.IsZero() {
		e.Str(key, "never")
		return
	}
	e.Time(key, t)
}

// Tracker holds mutable daemon state behind an RWMutex. Timestamps are read
// from the shared timing state on every snapshot, never copied.
type Tracker struct {
	mu     sync.RWMutex
	timing *logic.Timing
	snap   Snapshot
}

// NewTracker creates a Tracker with the given start time, timing state and
// config.
func NewTracker(startTime time.Time, timing *logic.Timing, cfg Config) *Tracker {
	return &Tracker{
		timing: timing,
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordEdge counts a sensor transition and remembers the level.
func (t *Tracker) RecordEdge(level gpio.Level) {
	t.mu.Lock()
	if level == gpio.High {
		t.snap.Counts.Motion++
	} else {
		t.snap.Counts.NoMotion++
	}
	t.snap.Level = level
	t.snap.LevelKnown = true
	t.mu.Unlock()
}

// RecordLevel remembers a directly sampled level.
func (t *Tracker) RecordLevel(level gpio.Level) {
	t.mu.Lock()
	t.snap.Level = level
	t.snap.LevelKnown = true
	t.mu.Unlock()
}

// RecordPower counts a power attempt and its failure, if any.
func (t *Tracker) RecordPower(on bool, err error) {
	t.mu.Lock()
	if on {
		t.snap.Counts.PowerOn++
	} else {
		t.snap.Counts.PowerOff++
	}
	t.mu.Unlock()
	if err != nil {
		t.RecordFailure(err)
	}
}

// RecordFailure counts a failed actuator call.
func (t *Tracker) RecordFailure(err error) {
	t.mu.Lock()
	t.snap.Counts.Failures++
	t.snap.LastError = err.Error()
	t.mu.Unlock()
}

// RecordOffAverted counts an idle timeout cancelled by a high re-sample.
func (t *Tracker) RecordOffAverted() {
	t.mu.Lock()
	t.snap.Counts.OffAverted++
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	return t.SnapshotAt(time.Now())
}

// SnapshotAt is Snapshot with an injected clock reading.
func (t *Tracker) SnapshotAt(now time.Time) Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if t.timing != nil {
		s.Timestamps = t.timing.Snapshot()
	}
	s.Now = now
	return s
}
