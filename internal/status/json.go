package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Power         string     `json:"power"`
	Level         string     `json:"level"`
	LastOn        string     `json:"last_on"`
	LastOff       string     `json:"last_off"`
	LastNoMotion  string     `json:"last_no_motion"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	LastError     string     `json:"last_error,omitempty"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Motion     int `json:"motion"`
	NoMotion   int `json:"no_motion"`
	PowerOn    int `json:"power_on"`
	PowerOff   int `json:"power_off"`
	Failures   int `json:"failures"`
	OffAverted int `json:"off_averted"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend      string `json:"backend"`
	Chip         string `json:"chip"`
	Pin          int    `json:"pin"`
	PollMs       int64  `json:"poll_ms"`
	DebounceMs   int64  `json:"debounce_ms"`
	IdleTimeoutS int64  `json:"idle_timeout_s"`
	MinOnS       int64  `json:"min_on_s"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	OffRetries   int    `json:"off_retries"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatJSON returns the indented JSON status.
func FormatJSON(snap Snapshot) []byte {
	level := "UNKNOWN"
	if snap.LevelKnown {
		level = snap.Level.String()
	}

	inner := StatusInner{
		Power:         string(snap.Power()),
		Level:         level,
		LastOn:        formatTime(snap.Timestamps.LastOn),
		LastOff:       formatTime(snap.Timestamps.LastOff),
		LastNoMotion:  formatTime(snap.Timestamps.LastNoMotion),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		LastError:     snap.LastError,
		Counts: CountsJSON{
			Motion:     snap.Counts.Motion,
			NoMotion:   snap.Counts.NoMotion,
			PowerOn:    snap.Counts.PowerOn,
			PowerOff:   snap.Counts.PowerOff,
			Failures:   snap.Counts.Failures,
			OffAverted: snap.Counts.OffAverted,
		},
		Config: ConfigJSON{
			Backend:      snap.Config.Backend,
			Chip:         snap.Config.Chip,
			Pin:          snap.Config.Pin,
			PollMs:       snap.Config.PollMs,
			DebounceMs:   snap.Config.DebounceMs,
			IdleTimeoutS: snap.Config.IdleTimeoutS,
			MinOnS:       snap.Config.MinOnS,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			OffRetries:   snap.Config.OffRetries,
		},
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
