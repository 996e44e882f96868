package motion

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/motion-wakeup/internal/gpio"
	"github.com/sweeney/motion-wakeup/internal/logic"
	"github.com/sweeney/motion-wakeup/internal/status"
)

// Handler reacts to sensor edges. It is installed as the sensor callback.
type Handler struct {
	now     func() time.Time
	timing  *logic.Timing
	sw      *Switch
	tracker *status.Tracker
	log     zerolog.Logger
}

// NewHandler creates an edge handler. tracker may be nil.
func NewHandler(now func() time.Time, timing *logic.Timing, sw *Switch, tracker *status.Tracker, log zerolog.Logger) *Handler {
	return &Handler{
		now:     now,
		timing:  timing,
		sw:      sw,
		tracker: tracker,
		log:     log,
	}
}

// Handle processes one level transition.
// High powers the display on immediately, whatever its current state.
// Low only records the time; the monitor decides when to power off.
func (h *Handler) Handle(level gpio.Level) {
	if h.tracker != nil {
		h.tracker.RecordEdge(level)
	}

	if level == gpio.High {
		h.log.Info().Msg("motion detected")
		// Failures are logged by the switch; the next edge retries.
		_ = h.sw.On(context.Background())
		return
	}

	ts := h.timing.MarkNoMotion(h.now())
	h.log.Info().Msg("no motion")
	h.log.Debug().
		Time("last_no_motion", ts.LastNoMotion).
		Time("last_on", ts.LastOn).
		Time("last_off", ts.LastOff).
		Msg("timing state")
}
