// Package display switches the attached display on and off through external
// commands, with a fake for tests.
package display

import "context"

// Actuator performs display power side effects.
type Actuator interface {
	// SetPower turns the display on or off.
	SetPower(ctx context.Context, on bool) error

	// ResetScreensaver resets the screensaver idle timer so a blanked
	// X session comes back together with the panel.
	ResetScreensaver(ctx context.Context) error
}

// Default commands for a Raspberry Pi running X.
var (
	DefaultPowerOnCmd  = []string{"vcgencmd", "display_power", "1"}
	DefaultPowerOffCmd = []string{"vcgencmd", "display_power", "0"}
	DefaultResetCmd    = []string{"xset", "s", "reset"}
)
