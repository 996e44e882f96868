// Package logic contains the pure timing rules of the display power state
// machine. This package has NO external dependencies (no GPIO, commands, OS,
// or time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// PowerState is the derived power state of the display.
type PowerState string

const (
	PowerOn  PowerState = "ON"
	PowerOff PowerState = "OFF"
)

// DefaultIdleTimeout is the no-motion period before the display is turned off.
const DefaultIdleTimeout = 30 * time.Second

// Timestamps is a consistent view of the shared timing state.
// A zero time means the event has never happened.
type Timestamps struct {
	LastOn       time.Time // most recent power-on transition
	LastOff      time.Time // most recent power-off transition
	LastNoMotion time.Time // most recent observation of a low level
}

// PowerState derives the display state from the two transition timestamps.
// The display is on only if it was turned on after it was last turned off.
func (ts Timestamps) PowerState() PowerState {
	if ts.LastOn.After(ts.LastOff) {
		return PowerOn
	}
	return PowerOff
}

// Counts tracks state machine activity since startup.
type Counts struct {
	Motion     int // rising edges
	NoMotion   int // falling edges
	PowerOn    int // power-on attempts
	PowerOff   int // power-off attempts
	Failures   int // failed actuator calls
	OffAverted int // idle timeouts cancelled by a high re-sample
}

// HeartbeatData contains information for a heartbeat log line.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
}
