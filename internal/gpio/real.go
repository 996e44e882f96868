//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealSensor watches a PIR output using the Linux GPIO character device.
type RealSensor struct {
	mu       sync.Mutex
	chip     string
	pin      int
	debounce time.Duration
	line     *gpiocdev.Line
}

// NewRealSensor claims pin on chip as a plain input. Edge detection is
// enabled later by Watch.
func NewRealSensor(chip string, pin int, debounce time.Duration) (*RealSensor, error) {
	if chip == "" {
		chip = DefaultChip
	}
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		return nil, fmt.Errorf("request pin %d on %s: %w", pin, chip, err)
	}
	return &RealSensor{
		chip:     chip,
		pin:      pin,
		debounce: debounce,
		line:     line,
	}, nil
}

// Watch re-requests the line with both-edge detection and handler attached.
// gpiocdev cannot swap the handler of a live request, so the previous request
// is released first.
func (r *RealSensor) Watch(handler func(Level)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.line != nil {
		if err := r.line.Close(); err != nil {
			return fmt.Errorf("release pin %d: %w", r.pin, err)
		}
		r.line = nil
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			if evt.Type == gpiocdev.LineEventRisingEdge {
				handler(High)
				return
			}
			handler(Low)
		}),
	}
	if r.debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(r.debounce))
	}

	line, err := gpiocdev.RequestLine(r.chip, r.pin, opts...)
	if err != nil {
		return fmt.Errorf("request edges on pin %d: %w", r.pin, err)
	}
	r.line = line
	return nil
}

// Level reads the current pin value.
func (r *RealSensor) Level() (Level, error) {
	r.mu.Lock()
	line := r.line
	r.mu.Unlock()
	if line == nil {
		return Low, fmt.Errorf("pin %d not requested", r.pin)
	}

	v, err := line.Value()
	if err != nil {
		return Low, fmt.Errorf("read pin %d: %w", r.pin, err)
	}
	if v == 1 {
		return High, nil
	}
	return Low, nil
}

// Close releases the line.
// The pin is reconfigured to input with pull-down first, matching the Pi boot
// default, so the PIR module sees a clean state across reboots.
func (r *RealSensor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.line == nil {
		return nil
	}
	var errs []error
	if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", r.pin, err))
	}
	if err := r.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", r.pin, err))
	}
	r.line = nil

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
