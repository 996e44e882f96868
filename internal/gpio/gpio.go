// Package gpio provides motion sensor input with hardware abstraction.
// The real implementations use the Linux GPIO character device (gpiocdev)
// or periph.io. The fake implementation allows testing without hardware.
package gpio

// Level is the logic level reported by the motion sensor.
type Level int

const (
	Low  Level = iota // no motion
	High              // motion present
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Sensor delivers level transitions of a single input pin.
type Sensor interface {
	// Watch registers handler for both rising and falling edges.
	// Any previously registered handler is cleared first.
	// The handler runs on a goroutine owned by the sensor.
	Watch(handler func(Level)) error

	// Level samples the current pin level directly.
	Level() (Level, error)

	// Close releases GPIO resources.
	Close() error
}

// Defaults for a Raspberry Pi with the PIR output on BCM 8.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 8
)

// Backend names accepted by Open.
const (
	BackendGPIOCDev = "gpiocdev"
	BackendPeriph   = "periph"
)
