package display

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestNewCommandActuatorDefaults(t *testing.T) {
	a, err := NewCommandActuator(CommandConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPowerOnCmd, a.cfg.PowerOnCmd)
	assert.Equal(t, DefaultPowerOffCmd, a.cfg.PowerOffCmd)
	assert.Empty(t, a.cfg.ResetCmd)
	assert.Equal(t, DefaultCommandTimeout, a.cfg.Timeout)
}

func TestNewCommandActuatorRejectsBlankName(t *testing.T) {
	_, err := NewCommandActuator(CommandConfig{ResetCmd: []string{" "}})
	assert.Error(t, err)
}

func TestSetPowerRunsMatchingCommand(t *testing.T) {
	requireSh(t)
	a, err := NewCommandActuator(CommandConfig{
		PowerOnCmd:  []string{"sh", "-c", "exit 0"},
		PowerOffCmd: []string{"sh", "-c", "echo panel busy >&2; exit 3"},
	})
	require.NoError(t, err)

	assert.NoError(t, a.SetPower(context.Background(), true))

	err = a.SetPower(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panel busy")
	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
}

func TestResetScreensaverDisabled(t *testing.T) {
	a, err := NewCommandActuator(CommandConfig{})
	require.NoError(t, err)
	assert.NoError(t, a.ResetScreensaver(context.Background()))
}

func TestResetScreensaverRunsCommand(t *testing.T) {
	requireSh(t)
	a, err := NewCommandActuator(CommandConfig{ResetCmd: []string{"sh", "-c", "exit 1"}})
	require.NoError(t, err)
	assert.Error(t, a.ResetScreensaver(context.Background()))
}

func TestCommandTimeout(t *testing.T) {
	requireSh(t)
	a, err := NewCommandActuator(CommandConfig{
		PowerOnCmd: []string{"sh", "-c", "exec sleep 5"},
		Timeout:    50 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	assert.Error(t, a.SetPower(context.Background(), true))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestFakeActuatorRecords(t *testing.T) {
	f := NewFakeActuator()
	ctx := context.Background()

	require.NoError(t, f.SetPower(ctx, true))
	require.NoError(t, f.SetPower(ctx, false))
	require.NoError(t, f.SetPower(ctx, true))
	require.NoError(t, f.ResetScreensaver(ctx))

	assert.Equal(t, []bool{true, false, true}, f.History())
	assert.Equal(t, 2, f.Count(true))
	assert.Equal(t, 1, f.Count(false))
	assert.Equal(t, 1, f.Resets)

	f.Reset()
	assert.Empty(t, f.History())
}
