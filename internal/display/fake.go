package display

import (
	"context"
	"sync"
)

// FakeActuator records power calls for test assertions.
// It is safe for concurrent use.
type FakeActuator struct {
	mu sync.Mutex

	// Calls contains the requested power state of every SetPower call,
	// failed ones included.
	Calls []bool

	// Resets counts ResetScreensaver calls.
	Resets int

	// PowerError, if set, is returned by SetPower.
	PowerError error

	// ResetError, if set, is returned by ResetScreensaver.
	ResetError error

	// OnCall, if set, runs inside SetPower before it returns.
	OnCall func(on bool)
}

// NewFakeActuator creates a FakeActuator for testing.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// SetPower records the call.
func (f *FakeActuator) SetPower(ctx context.Context, on bool) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, on)
	err := f.PowerError
	hook := f.OnCall
	f.mu.Unlock()

	if hook != nil {
		hook(on)
	}
	return err
}

// ResetScreensaver records the call.
func (f *FakeActuator) ResetScreensaver(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Resets++
	return f.ResetError
}

// SetPowerError sets the error returned by SetPower.
func (f *FakeActuator) SetPowerError(err error) {
	f.mu.Lock()
	f.PowerError = err
	f.mu.Unlock()
}

// History returns a copy of the recorded power calls.
func (f *FakeActuator) History() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.Calls...)
}

// Count returns the number of calls requesting state on.
func (f *FakeActuator) Count(on bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == on {
			n++
		}
	}
	return n
}

// Reset clears recorded calls and injected errors.
func (f *FakeActuator) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
	f.Resets = 0
	f.PowerError = nil
	f.ResetError = nil
	f.OnCall = nil
}
