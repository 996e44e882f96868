package motion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweeney/motion-wakeup/internal/gpio"
	"github.com/sweeney/motion-wakeup/internal/logic"
)

func TestHighEdgePowersOn(t *testing.T) {
	r := newRig(t, policy(30))

	r.edge(t, 3, gpio.High)

	assert.Equal(t, []bool{true}, r.actuator.History())
	assert.Equal(t, 1, r.actuator.Resets)
	ts := r.timestamps()
	assert.Equal(t, at(3), ts.LastOn)
	assert.Equal(t, logic.PowerOn, ts.PowerState())
}

func TestLowEdgeOnlyRecords(t *testing.T) {
	r := newRig(t, policy(30))
	r.edge(t, 0, gpio.High)

	r.edge(t, 4, gpio.Low)

	assert.Equal(t, []bool{true}, r.actuator.History(), "low edge must not power off")
	ts := r.timestamps()
	assert.Equal(t, at(4), ts.LastNoMotion)
	assert.Equal(t, logic.PowerOn, ts.PowerState())
}

func TestRepeatedHighEdgesEachPowerOn(t *testing.T) {
	r := newRig(t, policy(30))

	for s := 0; s < 5; s++ {
		r.edge(t, s, gpio.High)
		assert.Equal(t, OffNotDue, r.poll(t, s))
		assert.Equal(t, at(s), r.timestamps().LastOn)
	}

	assert.Equal(t, []bool{true, true, true, true, true}, r.actuator.History())
	assert.Equal(t, 0, r.actuator.Count(false))
}

func TestHighEdgeWhileAlreadyOn(t *testing.T) {
	r := newRig(t, policy(30))
	r.edge(t, 0, gpio.High)
	r.edge(t, 1, gpio.Low)

	r.edge(t, 10, gpio.High)

	assert.Equal(t, 2, r.actuator.Count(true))
	assert.Equal(t, at(10), r.timestamps().LastOn)
}

func TestPowerOnFailureIsRecorded(t *testing.T) {
	r := newRig(t, policy(30))
	r.actuator.SetPowerError(errors.New("vcgencmd missing"))

	r.edge(t, 2, gpio.High)

	ts := r.timestamps()
	assert.Equal(t, at(2), ts.LastOn, "attempt is recorded")
	assert.Equal(t, logic.PowerOn, ts.PowerState())
	assert.Equal(t, 0, r.actuator.Resets, "no screensaver reset after a failed power on")

	snap := r.tracker.SnapshotAt(at(2))
	assert.Equal(t, 1, snap.Counts.Failures)
	assert.Equal(t, "vcgencmd missing", snap.LastError)

	// The next edge retries.
	r.actuator.SetPowerError(nil)
	r.edge(t, 3, gpio.High)
	assert.Equal(t, 2, r.actuator.Count(true))
	assert.Equal(t, 1, r.actuator.Resets)
}

func TestScreensaverResetFailureIsNotFatal(t *testing.T) {
	r := newRig(t, policy(30))
	r.actuator.ResetError = errors.New("no DISPLAY")

	r.edge(t, 0, gpio.High)

	assert.Equal(t, logic.PowerOn, r.timestamps().PowerState())
	assert.Equal(t, 1, r.tracker.SnapshotAt(at(0)).Counts.Failures)
}

func TestScreensaverResetDisabled(t *testing.T) {
	cfg := policy(30)
	cfg.ResetScreensaver = false
	r := newRig(t, cfg)

	r.edge(t, 0, gpio.High)

	assert.Equal(t, 0, r.actuator.Resets)
}

func TestHandlerCountsEdges(t *testing.T) {
	r := newRig(t, policy(30))

	r.edge(t, 0, gpio.High)
	r.edge(t, 1, gpio.Low)
	r.edge(t, 2, gpio.High)

	counts := r.tracker.SnapshotAt(at(2)).Counts
	assert.Equal(t, 2, counts.Motion)
	// One from priming at start plus one edge.
	assert.Equal(t, 2, counts.NoMotion)
	assert.Equal(t, 2, counts.PowerOn)
}
