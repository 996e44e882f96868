package gpio

import (
	"fmt"
	"time"
)

// Config selects and configures a sensor backend.
type Config struct {
	Backend  string
	Chip     string
	Pin      int
	Debounce time.Duration
}

// Open returns the sensor for cfg.Backend. An empty backend means gpiocdev.
func Open(cfg Config) (Sensor, error) {
	switch cfg.Backend {
	case "", BackendGPIOCDev:
		return NewRealSensor(cfg.Chip, cfg.Pin, cfg.Debounce)
	case BackendPeriph:
		return NewPeriphSensor(cfg.Pin)
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", cfg.Backend)
	}
}
