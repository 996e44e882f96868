package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultCommandTimeout bounds a single command invocation.
const DefaultCommandTimeout = 10 * time.Second

// CommandConfig holds the argv of each command. An empty ResetCmd disables
// the screensaver reset.
type CommandConfig struct {
	PowerOnCmd  []string
	PowerOffCmd []string
	ResetCmd    []string
	Timeout     time.Duration
}

// CommandActuator runs external commands. Calls are serialized so on and off
// commands never overlap.
type CommandActuator struct {
	mu  sync.Mutex
	cfg CommandConfig
}

// NewCommandActuator validates cfg and fills in defaults.
func NewCommandActuator(cfg CommandConfig) (*CommandActuator, error) {
	if len(cfg.PowerOnCmd) == 0 {
		cfg.PowerOnCmd = DefaultPowerOnCmd
	}
	if len(cfg.PowerOffCmd) == 0 {
		cfg.PowerOffCmd = DefaultPowerOffCmd
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCommandTimeout
	}
	for _, argv := range [][]string{cfg.PowerOnCmd, cfg.PowerOffCmd, cfg.ResetCmd} {
		if len(argv) > 0 && strings.TrimSpace(argv[0]) == "" {
			return nil, errors.New("display: empty command name")
		}
	}
	return &CommandActuator{cfg: cfg}, nil
}

// SetPower runs the power-on or power-off command.
func (a *CommandActuator) SetPower(ctx context.Context, on bool) error {
	if on {
		return a.run(ctx, a.cfg.PowerOnCmd)
	}
	return a.run(ctx, a.cfg.PowerOffCmd)
}

// ResetScreensaver runs the reset command, if configured.
func (a *CommandActuator) ResetScreensaver(ctx context.Context) error {
	if len(a.cfg.ResetCmd) == 0 {
		return nil
	}
	return a.run(ctx, a.cfg.ResetCmd)
}

func (a *CommandActuator) run(ctx context.Context, argv []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", strings.Join(argv, " "), err, msg)
		}
		return fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return nil
}
