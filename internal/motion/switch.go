// Package motion turns sensor edges into display power transitions.
//
// Two goroutines drive it: the sensor's edge callback (Handler) and the idle
// polling loop (Monitor). They share only the logic.Timing state and a Switch,
// which serializes every power transition.
package motion

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motion-wakeup/internal/display"
	"github.com/sweeney/motion-wakeup/internal/gpio"
	"github.com/sweeney/motion-wakeup/internal/logic"
	"github.com/sweeney/motion-wakeup/internal/status"
)

// DefaultOffRetries is the number of extra power-off attempts made in the same
// poll iteration after a failure.
const DefaultOffRetries = 2

// Switch owns the transition lock. A power-on and an idle power-off never
// interleave: the off decision, re-sample, command and timestamp update all
// happen under mu.
type Switch struct {
	mu               sync.Mutex
	now              func() time.Time
	timing           *logic.Timing
	actuator         display.Actuator
	tracker          *status.Tracker
	log              zerolog.Logger
	resetScreensaver bool
	offRetries       int

	// avertedDue is the due time of the last idle timeout counted as averted.
	avertedDue time.Time
}

// SwitchConfig configures a Switch.
type SwitchConfig struct {
	ResetScreensaver bool
	OffRetries       int
}

// NewSwitch creates a Switch reading time from now. tracker may be nil.
func NewSwitch(now func() time.Time, timing *logic.Timing, actuator display.Actuator, tracker *status.Tracker, cfg SwitchConfig, log zerolog.Logger) *Switch {
	if cfg.OffRetries < 0 {
		cfg.OffRetries = 0
	}
	return &Switch{
		now:              now,
		timing:           timing,
		actuator:         actuator,
		tracker:          tracker,
		log:              log,
		resetScreensaver: cfg.ResetScreensaver,
		offRetries:       cfg.OffRetries,
	}
}

// On records a power-on and runs the power-on command. A failure is logged
// and returned; LastOn is recorded either way.
func (s *Switch) On(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// The command issued last decides the derived state, even when the clock
	// has not moved since the previous power-off.
	if off := s.timing.Snapshot().LastOff; !now.After(off) {
		now = off.Add(time.Nanosecond)
	}
	s.timing.MarkOn(now)
	s.log.Info().Msg("powering display on")
	err := s.actuator.SetPower(ctx, true)
	if s.tracker != nil {
		s.tracker.RecordPower(true, err)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("display power on failed")
		return err
	}

	if s.resetScreensaver {
		if rerr := s.actuator.ResetScreensaver(ctx); rerr != nil {
			s.log.Warn().Err(rerr).Msg("screensaver reset failed")
			if s.tracker != nil {
				s.tracker.RecordFailure(rerr)
			}
		}
	}
	return nil
}

// OffOutcome reports what an idle check did.
type OffOutcome int

const (
	OffNotDue  OffOutcome = iota // timeout not reached or display already off
	OffAverted                   // re-sample found motion
	OffSkipped                   // re-sample failed
	OffDone                      // power-off command succeeded
	OffFailed                    // every power-off attempt failed
)

func (o OffOutcome) String() string {
	switch o {
	case OffNotDue:
		return "not-due"
	case OffAverted:
		return "averted"
	case OffSkipped:
		return "skipped"
	case OffDone:
		return "done"
	case OffFailed:
		return "failed"
	}
	return "unknown"
}

// OffIfIdle powers the display off if policy says it is due and the sensor
// still reads low. LastOff is recorded after the attempt, successful or not.
func (s *Switch) OffIfIdle(ctx context.Context, policy logic.Policy, sensor LevelReader) OffOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ts := s.timing.Snapshot()
	if !policy.OffDue(ts, now) {
		return OffNotDue
	}

	level, err := sensor.Level()
	if err != nil {
		s.log.Error().Err(err).Msg("re-sample before power off failed")
		if s.tracker != nil {
			s.tracker.RecordFailure(err)
		}
		return OffSkipped
	}
	if s.tracker != nil {
		s.tracker.RecordLevel(level)
	}
	if level == gpio.High {
		// Continuous motion keeps the same timeout due on every poll; count it once.
		if due := policy.OffAt(ts); !due.Equal(s.avertedDue) {
			s.avertedDue = due
			s.log.Debug().Msg("idle timeout reached but motion present, keeping display on")
			if s.tracker != nil {
				s.tracker.RecordOffAverted()
			}
		}
		return OffAverted
	}

	idle := now.Sub(ts.LastNoMotion)
	if ts.LastNoMotion.IsZero() {
		idle = now.Sub(ts.LastOn)
	}
	s.log.Info().Dur("idle", idle.Truncate(time.Second)).Msg("powering display off")

	outcome := OffDone
	for attempt := 0; ; attempt++ {
		err = s.actuator.SetPower(ctx, false)
		if s.tracker != nil {
			s.tracker.RecordPower(false, err)
		}
		if err == nil {
			break
		}
		s.log.Error().Err(err).Int("attempt", attempt+1).Msg("display power off failed")
		if attempt >= s.offRetries || ctx.Err() != nil {
			outcome = OffFailed
			break
		}
	}
	s.timing.MarkOff(now)
	return outcome
}

// LevelReader samples the sensor level directly.
type LevelReader interface {
	Level() (gpio.Level, error)
}
