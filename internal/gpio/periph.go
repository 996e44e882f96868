package gpio

import (
	"fmt"
	"sync"
	"time"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgeWait bounds each WaitForEdge call so the watcher can notice Close.
const edgeWait = 500 * time.Millisecond

// PeriphSensor watches a PIR output through periph.io.
// Pins are addressed by their BCM numbers.
type PeriphSensor struct {
	mu   sync.Mutex
	pin  pgpio.PinIO
	stop chan struct{}
	done chan struct{}
}

// NewPeriphSensor initialises the periph host and configures the pin as an
// input with pull-down.
func NewPeriphSensor(bcm int) (*PeriphSensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", bcm))
	if p == nil {
		return nil, fmt.Errorf("no such pin GPIO%d", bcm)
	}
	if err := p.In(pgpio.PullDown, pgpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure GPIO%d as input: %w", bcm, err)
	}
	return &PeriphSensor{pin: p}, nil
}

// Watch stops any running watcher, enables both-edge detection and starts a
// goroutine delivering the level after each edge.
func (s *PeriphSensor) Watch(handler func(Level)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcher()
	if err := s.pin.In(pgpio.PullDown, pgpio.BothEdges); err != nil {
		return fmt.Errorf("enable edges on %s: %w", s.pin, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if s.pin.WaitForEdge(edgeWait) {
				handler(fromPeriph(s.pin.Read()))
			}
		}
	}()
	return nil
}

// stopWatcher must be called with s.mu held.
func (s *PeriphSensor) stopWatcher() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

// Level reads the current pin level.
func (s *PeriphSensor) Level() (Level, error) {
	return fromPeriph(s.pin.Read()), nil
}

// Close stops the watcher and disables edge detection.
func (s *PeriphSensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcher()
	if err := s.pin.In(pgpio.PullDown, pgpio.NoEdge); err != nil {
		return fmt.Errorf("disable edges on %s: %w", s.pin, err)
	}
	return nil
}

func fromPeriph(l pgpio.Level) Level {
	if l == pgpio.High {
		return High
	}
	return Low
}
