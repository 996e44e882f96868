package motion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/motion-wakeup/internal/display"
	"github.com/sweeney/motion-wakeup/internal/gpio"
	"github.com/sweeney/motion-wakeup/internal/logic"
	"github.com/sweeney/motion-wakeup/internal/status"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a settable clock safe for concurrent use.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// At sets the clock to epoch plus s seconds.
func (c *fakeClock) At(s int) {
	c.mu.Lock()
	c.t = epoch.Add(time.Duration(s) * time.Second)
	c.mu.Unlock()
}

func at(s int) time.Time {
	return epoch.Add(time.Duration(s) * time.Second)
}

type rig struct {
	clock    *fakeClock
	sensor   *gpio.FakeSensor
	actuator *display.FakeActuator
	tracker  *status.Tracker
	sup      *Supervisor
}

// newRig builds a started supervisor with the sensor low at t=0.
func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{
		clock:    &fakeClock{t: epoch},
		sensor:   gpio.NewFakeSensor(gpio.Low),
		actuator: display.NewFakeActuator(),
	}
	timing := logic.NewTiming()
	r.tracker = status.NewTracker(epoch, timing, status.Config{})
	r.sup = New(cfg, Deps{
		Sensor:   r.sensor,
		Actuator: r.actuator,
		Timing:   timing,
		Tracker:  r.tracker,
		Now:      r.clock.Now,
		Log:      zerolog.Nop(),
	})
	require.NoError(t, r.sup.Start(context.Background()))
	return r
}

// edge moves the clock to s and delivers level.
func (r *rig) edge(t *testing.T, s int, level gpio.Level) {
	t.Helper()
	r.clock.At(s)
	require.NoError(t, r.sensor.Edge(level))
}

// poll moves the clock to s and runs one monitor iteration.
func (r *rig) poll(t *testing.T, s int) OffOutcome {
	t.Helper()
	r.clock.At(s)
	return r.sup.Monitor().Check(context.Background())
}

func (r *rig) timestamps() logic.Timestamps {
	return r.sup.Timing().Snapshot()
}

func policy(idle int) Config {
	return Config{
		Policy:           logic.NewPolicy(time.Duration(idle)*time.Second, 0),
		OffRetries:       DefaultOffRetries,
		ResetScreensaver: true,
	}
}
