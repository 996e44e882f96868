//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// RealSensor is not available on non-Linux platforms.
type RealSensor struct{}

// NewRealSensor returns an error on non-Linux platforms.
func NewRealSensor(chip string, pin int, debounce time.Duration) (*RealSensor, error) {
	return nil, errors.New("gpio: gpiocdev not supported on this platform (requires Linux)")
}

// Watch is not implemented on non-Linux platforms.
func (r *RealSensor) Watch(handler func(Level)) error {
	return errors.New("gpio: not supported")
}

// Level is not implemented on non-Linux platforms.
func (r *RealSensor) Level() (Level, error) {
	return Low, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealSensor) Close() error {
	return nil
}
