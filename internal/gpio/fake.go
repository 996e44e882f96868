package gpio

import (
	"errors"
	"sync"
)

// FakeSensor is a test double with a settable level.
// Edges are delivered synchronously on the caller's goroutine.
type FakeSensor struct {
	mu      sync.Mutex
	level   Level
	handler func(Level)

	// Watches counts successful Watch calls.
	Watches int

	// Closed tracks if Close was called.
	Closed bool

	// WatchError, if set, will be returned by Watch.
	WatchError error

	// ReadError, if set, will be returned by Level.
	ReadError error
}

// NewFakeSensor creates a FakeSensor reporting level.
func NewFakeSensor(level Level) *FakeSensor {
	return &FakeSensor{level: level}
}

// Watch stores handler, replacing any previous one.
func (f *FakeSensor) Watch(handler func(Level)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WatchError != nil {
		return f.WatchError
	}
	f.handler = handler
	f.Watches++
	return nil
}

// Level returns the current scripted level.
func (f *FakeSensor) Level() (Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return Low, f.ReadError
	}
	return f.level, nil
}

// Edge sets the level and delivers it to the registered handler.
// Returns an error if no handler is registered.
func (f *FakeSensor) Edge(level Level) error {
	f.mu.Lock()
	f.level = level
	h := f.handler
	f.mu.Unlock()

	if h == nil {
		return errors.New("no handler registered")
	}
	h(level)
	return nil
}

// Set changes the level without delivering an edge, as when the pin has
// moved but the kernel event is still queued.
func (f *FakeSensor) Set(level Level) {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
}

// SetReadError sets the error returned by Level.
func (f *FakeSensor) SetReadError(err error) {
	f.mu.Lock()
	f.ReadError = err
	f.mu.Unlock()
}

// Close marks the sensor as closed and drops the handler.
func (f *FakeSensor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	f.handler = nil
	return nil
}
