package motion

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motion-wakeup/internal/logic"
	"github.com/sweeney/motion-wakeup/internal/status"
)

// DefaultPoll is the idle check interval.
const DefaultPoll = 500 * time.Millisecond

// Monitor polls for a sustained absence of motion and powers the display off.
type Monitor struct {
	now       func() time.Time
	sw        *Switch
	sensor    LevelReader
	policy    logic.Policy
	tracker   *status.Tracker
	heartbeat *logic.Heartbeat
	log       zerolog.Logger
}

// NewMonitor creates an idle monitor. tracker may be nil; a heartbeat
// interval <= 0 disables heartbeat logging.
func NewMonitor(now func() time.Time, sw *Switch, sensor LevelReader, policy logic.Policy, tracker *status.Tracker, heartbeat time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		now:       now,
		sw:        sw,
		sensor:    sensor,
		policy:    policy,
		tracker:   tracker,
		heartbeat: logic.NewHeartbeat(heartbeat, now()),
		log:       log,
	}
}

// Check runs one idle iteration.
func (m *Monitor) Check(ctx context.Context) OffOutcome {
	outcome := m.sw.OffIfIdle(ctx, m.policy, m.sensor)
	if outcome == OffFailed {
		m.log.Warn().Msg("display may still be on; waiting for the next motion cycle")
	}

	if hb := m.heartbeat.Check(m.now()); hb != nil && m.tracker != nil {
		m.log.Info().EmbedObject(m.tracker.SnapshotAt(hb.Timestamp)).Msg("heartbeat")
	}
	return outcome
}

// Run calls Check on every tick until ctx is cancelled. It never stops on its
// own; the daemon cancels ctx only when it receives a signal.
func (m *Monitor) Run(ctx context.Context, tick <-chan time.Time) error {
	m.log.Info().
		Dur("idle_timeout", m.policy.IdleTimeout).
		Dur("min_on", m.policy.MinOn).
		Msg("watching for motion")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			m.Check(ctx)
		}
	}
}
