package motion

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motion-wakeup/internal/display"
	"github.com/sweeney/motion-wakeup/internal/gpio"
	"github.com/sweeney/motion-wakeup/internal/logic"
	"github.com/sweeney/motion-wakeup/internal/status"
)

// SetupError is returned when the sensor cannot be prepared. It is the only
// error that leaves the supervisor.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup: %s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Config holds the supervisor's tunables.
type Config struct {
	Policy           logic.Policy
	Heartbeat        time.Duration
	OffRetries       int
	ResetScreensaver bool
	WakeOnStart      bool
}

// Deps are the collaborators of a Supervisor. Timing, Tracker and Now are
// optional.
type Deps struct {
	Sensor   gpio.Sensor
	Actuator display.Actuator
	Timing   *logic.Timing
	Tracker  *status.Tracker
	Now      func() time.Time
	Log      zerolog.Logger
}

// Supervisor wires the edge handler and the idle monitor to one sensor.
type Supervisor struct {
	cfg     Config
	sensor  gpio.Sensor
	timing  *logic.Timing
	sw      *Switch
	handler *Handler
	monitor *Monitor
	log     zerolog.Logger
}

// New creates a Supervisor. Nothing touches the sensor until Start.
func New(cfg Config, deps Deps) *Supervisor {
	if deps.Timing == nil {
		deps.Timing = logic.NewTiming()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.Policy.IdleTimeout <= 0 {
		cfg.Policy = logic.NewPolicy(cfg.Policy.IdleTimeout, cfg.Policy.MinOn)
	}

	sw := NewSwitch(deps.Now, deps.Timing, deps.Actuator, deps.Tracker, SwitchConfig{
		ResetScreensaver: cfg.ResetScreensaver,
		OffRetries:       cfg.OffRetries,
	}, deps.Log)

	return &Supervisor{
		cfg:     cfg,
		sensor:  deps.Sensor,
		timing:  deps.Timing,
		sw:      sw,
		handler: NewHandler(deps.Now, deps.Timing, sw, deps.Tracker, deps.Log),
		monitor: NewMonitor(deps.Now, sw, deps.Sensor, cfg.Policy, deps.Tracker, cfg.Heartbeat, deps.Log),
		log:     deps.Log,
	}
}

// Timing returns the shared timing state.
func (s *Supervisor) Timing() *logic.Timing {
	return s.timing
}

// Handler returns the edge handler installed by Start.
func (s *Supervisor) Handler() *Handler {
	return s.handler
}

// Monitor returns the idle monitor started by Run.
func (s *Supervisor) Monitor() *Monitor {
	return s.monitor
}

// Start registers the edge handler and primes the timing state from the
// current level. With WakeOnStart the display is powered on first so the
// derived state matches the panel.
func (s *Supervisor) Start(ctx context.Context) error {
	if s.cfg.WakeOnStart {
		// A failed command is logged by the switch and not fatal.
		_ = s.sw.On(ctx)
	}

	if err := s.sensor.Watch(s.handler.Handle); err != nil {
		return &SetupError{Op: "register edge callback", Err: err}
	}

	level, err := s.sensor.Level()
	if err != nil {
		return &SetupError{Op: "read initial level", Err: err}
	}
	s.log.Debug().Stringer("level", level).Msg("initial sensor level")
	if level == gpio.Low || !s.cfg.WakeOnStart {
		s.handler.Handle(level)
	}
	return nil
}

// Run starts the supervisor and runs the idle monitor until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context, tick <-chan time.Time) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	return s.monitor.Run(ctx, tick)
}

// Close releases the sensor.
func (s *Supervisor) Close() error {
	return s.sensor.Close()
}
