package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPolicyDefaults(t *testing.T) {
	p := NewPolicy(0, 0)
	assert.Equal(t, DefaultIdleTimeout, p.IdleTimeout)
	assert.Equal(t, DefaultIdleTimeout, p.MinOn)

	p = NewPolicy(10*time.Second, 0)
	assert.Equal(t, 10*time.Second, p.MinOn, "hold should follow the idle timeout")

	p = NewPolicy(10*time.Second, time.Minute)
	assert.Equal(t, time.Minute, p.MinOn)
}

func TestOffDueRequiresDisplayOn(t *testing.T) {
	p := NewPolicy(30*time.Second, 0)

	assert.False(t, p.OffDue(Timestamps{}, at(1000)), "never turned on")
	assert.False(t, p.OffDue(Timestamps{LastOn: at(0), LastOff: at(1)}, at(1000)), "already off")
}

func TestOffDueIdleBoundary(t *testing.T) {
	p := NewPolicy(30*time.Second, time.Second)
	ts := Timestamps{LastOn: at(-60), LastNoMotion: at(0)}

	assert.False(t, p.OffDue(ts, at(29)))
	assert.False(t, p.OffDue(ts, at(30).Add(-time.Millisecond)))
	assert.True(t, p.OffDue(ts, at(30)))
	assert.True(t, p.OffDue(ts, at(31)))
}

func TestOffDueHonoursHoldAfterMotion(t *testing.T) {
	// High at T=0 immediately followed by low at T=0: no off before T+30.
	p := NewPolicy(30*time.Second, 0)
	ts := Timestamps{LastOn: at(0), LastNoMotion: at(0)}

	for s := 0; s < 30; s++ {
		assert.False(t, p.OffDue(ts, at(s)), "premature off at t=%d", s)
	}
	assert.True(t, p.OffDue(ts, at(30)))
}

func TestOffDueHoldWithoutAnyLowEdge(t *testing.T) {
	// LastNoMotion is "never", so only the hold time protects the display.
	p := NewPolicy(30*time.Second, 0)
	ts := Timestamps{LastOn: at(0)}

	assert.False(t, p.OffDue(ts, at(10)))
	assert.True(t, p.OffDue(ts, at(30)))
}

func TestNewPolicyRaisesShortHold(t *testing.T) {
	p := NewPolicy(30*time.Second, time.Second)
	assert.Equal(t, 30*time.Second, p.MinOn)
}

func TestOffDueShortHoldStillWaitsIdleTimeoutAfterMotion(t *testing.T) {
	// Motion at T=29 whose low edge was lost; the last low is from T=0.
	ts := Timestamps{LastOn: at(29), LastNoMotion: at(0)}
	for _, p := range []Policy{
		NewPolicy(30*time.Second, time.Second),
		{IdleTimeout: 30 * time.Second, MinOn: time.Second},
	} {
		assert.False(t, p.OffDue(ts, at(30)))
		assert.False(t, p.OffDue(ts, at(58)))
		assert.True(t, p.OffDue(ts, at(59)))
		assert.Equal(t, at(59), p.OffAt(ts))
	}
}

func TestOffDueLongerHold(t *testing.T) {
	p := NewPolicy(5*time.Second, 60*time.Second)
	ts := Timestamps{LastOn: at(0), LastNoMotion: at(1)}

	assert.False(t, p.OffDue(ts, at(6)), "idle elapsed but hold has not")
	assert.True(t, p.OffDue(ts, at(60)))
}

func TestOffAt(t *testing.T) {
	p := NewPolicy(5*time.Second, 0)

	assert.True(t, p.OffAt(Timestamps{}).IsZero())
	assert.Equal(t, at(6), p.OffAt(Timestamps{LastOn: at(0), LastNoMotion: at(1)}))
	assert.Equal(t, at(15), p.OffAt(Timestamps{LastOn: at(10), LastNoMotion: at(1)}))
}

func TestHeartbeat(t *testing.T) {
	h := NewHeartbeat(time.Minute, epoch)

	assert.Nil(t, h.Check(epoch.Add(59*time.Second)))

	hb := h.Check(epoch.Add(time.Minute))
	if assert.NotNil(t, hb) {
		assert.Equal(t, time.Minute, hb.Uptime)
		assert.Equal(t, epoch.Add(time.Minute), hb.Timestamp)
	}

	assert.Nil(t, h.Check(epoch.Add(90*time.Second)), "interval restarts after a heartbeat")
	assert.NotNil(t, h.Check(epoch.Add(2*time.Minute)))
}

func TestHeartbeatDisabled(t *testing.T) {
	h := NewHeartbeat(0, epoch)
	assert.Nil(t, h.Check(epoch.Add(24*time.Hour)))
}
