// Command motion-wakeup powers a display on when a PIR motion sensor fires and
// off again once no motion has been seen for the idle timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sweeney/motion-wakeup/internal/display"
	"github.com/sweeney/motion-wakeup/internal/gpio"
	"github.com/sweeney/motion-wakeup/internal/logic"
	"github.com/sweeney/motion-wakeup/internal/motion"
	"github.com/sweeney/motion-wakeup/internal/status"
)

// defaultTimeout is the idle timeout in seconds.
const defaultTimeout = 30

// maxTimeout is the largest timeout in seconds that fits in a time.Duration.
const maxTimeout = math.MaxInt64 / int64(time.Second)

const timeoutHelp = `usage:
    motion-wakeup --timeout <integer>
    motion-wakeup -t <integer>
    Set the seconds with no motion before the display is turned back off. Default is timeout 30

Example:
    motion-wakeup --timeout 60
`

// openSensor is replaced in tests.
var openSensor = gpio.Open

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	args, warnings := normalizeArgs(os.Args[1:])
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

// options is the resolved daemon configuration.
type options struct {
	Timeout          int
	MinOn            time.Duration
	Backend          string
	Chip             string
	Pin              int
	Poll             time.Duration
	Debounce         time.Duration
	Heartbeat        time.Duration
	OffRetries       int
	WakeOnStart      bool
	ResetScreensaver bool
	PowerOnCmd       []string
	PowerOffCmd      []string
	ResetCmd         []string
	CommandTimeout   time.Duration
	LogLevel         string
	LogFormat        string
	PrintState       bool
}

func newRootCmd() *cobra.Command {
	cmd, _ := newCommand()
	return cmd
}

// newCommand returns the root command and the viper instance bound to its
// flags.
func newCommand() (*cobra.Command, *viper.Viper) {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "motion-wakeup",
		Short: "Turn a display on when motion is detected and off when idle",
		Long: `motion-wakeup watches a PIR motion sensor on a GPIO pin. A rising edge
powers the display on immediately; once the sensor has been low for the idle
timeout (and the display has been on for at least --min-on) it is powered off.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				log.Warn().Strs("args", args).Msg("unexpected arguments ignored")
				fmt.Fprint(cmd.ErrOrStderr(), timeoutHelp)
			}
			readConfigFile(v, configFile)
			opts := loadOptions(v, cmd.ErrOrStderr())
			log.Logger = newLogger(opts.LogFormat, opts.LogLevel, cmd.ErrOrStderr())
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.FParseErrWhitelist.UnknownFlags = true

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (default /etc/motion-wakeup/motion-wakeup.yaml or ./motion-wakeup.yaml)")
	f.StringP("timeout", "t", strconv.Itoa(defaultTimeout), "seconds with no motion before the display is turned off")
	f.Duration("min-on", 0, "minimum time the display stays on after motion (raised to the timeout if shorter)")
	f.String("backend", gpio.BackendGPIOCDev, "GPIO backend: gpiocdev or periph")
	f.String("chip", gpio.DefaultChip, "GPIO chip (gpiocdev backend)")
	f.Int("pin", gpio.DefaultPin, "BCM pin number of the motion sensor")
	f.Duration("poll", motion.DefaultPoll, "idle check interval")
	f.Duration("debounce", 0, "kernel edge debounce period (gpiocdev backend, 0 to disable)")
	f.Duration("heartbeat", 15*time.Minute, "status log interval (0 to disable)")
	f.Int("off-retries", motion.DefaultOffRetries, "immediate retries of a failed power off")
	f.Bool("wake-on-start", true, "power the display on at startup")
	f.Bool("reset-screensaver", true, "reset the X screensaver when powering on")
	f.String("power-on-cmd", strings.Join(display.DefaultPowerOnCmd, " "), "command that powers the display on")
	f.String("power-off-cmd", strings.Join(display.DefaultPowerOffCmd, " "), "command that powers the display off")
	f.String("reset-cmd", strings.Join(display.DefaultResetCmd, " "), "command that resets the screensaver")
	f.Duration("command-timeout", display.DefaultCommandTimeout, "timeout for each display command")
	f.String("log-level", "info", "log level: debug, info, warn, error")
	f.String("log-format", "console", "log format: console or json")
	f.Bool("print-state", false, "print current sensor state and exit")

	v.SetEnvPrefix("MOTION_WAKEUP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(f); err != nil {
		panic(err)
	}
	return cmd, v
}

// readConfigFile loads an optional config file. A missing or broken file is
// logged and ignored so the daemon still starts with flags and defaults.
func readConfigFile(v *viper.Viper, path string) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("motion-wakeup")
		v.AddConfigPath("/etc/motion-wakeup")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}
		log.Warn().Err(err).Msg("ignoring config file")
		return
	}
	log.Info().Str("file", v.ConfigFileUsed()).Msg("loaded config file")
}

// loadOptions resolves options from flags, environment and config file.
// Invalid timeouts fall back to the default with a warning and usage text.
func loadOptions(v *viper.Viper, stderr io.Writer) options {
	timeout, err := parseTimeout(v.GetString("timeout"))
	if err != nil {
		log.Warn().Err(err).Int("default", defaultTimeout).Msg("invalid timeout, using default")
		fmt.Fprint(stderr, timeoutHelp)
		timeout = defaultTimeout
	}

	return options{
		Timeout:          timeout,
		MinOn:            v.GetDuration("min-on"),
		Backend:          v.GetString("backend"),
		Chip:             v.GetString("chip"),
		Pin:              v.GetInt("pin"),
		Poll:             positive(v.GetDuration("poll"), motion.DefaultPoll),
		Debounce:         v.GetDuration("debounce"),
		Heartbeat:        v.GetDuration("heartbeat"),
		OffRetries:       v.GetInt("off-retries"),
		WakeOnStart:      v.GetBool("wake-on-start"),
		ResetScreensaver: v.GetBool("reset-screensaver"),
		PowerOnCmd:       strings.Fields(v.GetString("power-on-cmd")),
		PowerOffCmd:      strings.Fields(v.GetString("power-off-cmd")),
		ResetCmd:         strings.Fields(v.GetString("reset-cmd")),
		CommandTimeout:   v.GetDuration("command-timeout"),
		LogLevel:         v.GetString("log-level"),
		LogFormat:        v.GetString("log-format"),
		PrintState:       v.GetBool("print-state"),
	}
}

// parseTimeout accepts a positive integer number of seconds. An empty value
// means the default.
func parseTimeout(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultTimeout, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive: %d", n)
	}
	if int64(n) > maxTimeout {
		return 0, fmt.Errorf("too large: %d (max %d)", n, maxTimeout)
	}
	return n, nil
}

// normalizeArgs drops a trailing --timeout/-t that has no value, which the
// flag parser would otherwise reject.
func normalizeArgs(args []string) ([]string, []string) {
	if len(args) == 0 {
		return args, nil
	}
	last := args[len(args)-1]
	if last == "--timeout" || last == "-t" {
		return args[:len(args)-1], []string{fmt.Sprintf("%s given without a value, using default %d", last, defaultTimeout)}
	}
	return args, nil
}

func positive(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(format, level string, w io.Writer) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	if format == "json" {
		out = w
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func run(parent context.Context, opts options, stdout io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}

	sensor, err := openSensor(gpio.Config{
		Backend:  opts.Backend,
		Chip:     opts.Chip,
		Pin:      opts.Pin,
		Debounce: opts.Debounce,
	})
	if err != nil {
		return &motion.SetupError{Op: "open sensor", Err: err}
	}
	defer sensor.Close()

	if opts.PrintState {
		return printState(sensor, opts, stdout)
	}

	resetCmd := opts.ResetCmd
	if !opts.ResetScreensaver {
		resetCmd = nil
	}
	actuator, err := display.NewCommandActuator(display.CommandConfig{
		PowerOnCmd:  opts.PowerOnCmd,
		PowerOffCmd: opts.PowerOffCmd,
		ResetCmd:    resetCmd,
		Timeout:     opts.CommandTimeout,
	})
	if err != nil {
		return fmt.Errorf("init display commands: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(opts.Poll)
	defer ticker.Stop()

	return runDaemon(ctx, opts, sensor, actuator, time.Now, ticker.C, log.Logger)
}

func runDaemon(ctx context.Context, opts options, sensor gpio.Sensor, actuator display.Actuator, now func() time.Time, tick <-chan time.Time, logger zerolog.Logger) error {
	policy := logic.NewPolicy(time.Duration(opts.Timeout)*time.Second, opts.MinOn)
	timing := logic.NewTiming()
	tracker := status.NewTracker(now(), timing, statusConfig(opts, policy))

	sup := motion.New(motion.Config{
		Policy:           policy,
		Heartbeat:        opts.Heartbeat,
		OffRetries:       opts.OffRetries,
		ResetScreensaver: opts.ResetScreensaver,
		WakeOnStart:      opts.WakeOnStart,
	}, motion.Deps{
		Sensor:   sensor,
		Actuator: actuator,
		Timing:   timing,
		Tracker:  tracker,
		Now:      now,
		Log:      logger,
	})

	logger.Info().
		Str("backend", opts.Backend).
		Int("pin", opts.Pin).
		Dur("poll", opts.Poll).
		Dur("timeout", policy.IdleTimeout).
		Msg("PIR motion sensor started, press CTRL+C to exit")

	if err := sup.Run(ctx, tick); err != nil {
		return err
	}
	logger.Info().EmbedObject(tracker.SnapshotAt(now())).Msg("shutting down")
	return nil
}

func printState(sensor gpio.Sensor, opts options, stdout io.Writer) error {
	level, err := sensor.Level()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	policy := logic.NewPolicy(time.Duration(opts.Timeout)*time.Second, opts.MinOn)
	tracker := status.NewTracker(time.Now(), nil, statusConfig(opts, policy))
	tracker.RecordLevel(level)
	fmt.Fprintf(stdout, "%s\n", status.FormatJSON(tracker.Snapshot()))
	return nil
}

func statusConfig(opts options, policy logic.Policy) status.Config {
	return status.Config{
		Backend:      opts.Backend,
		Chip:         opts.Chip,
		Pin:          opts.Pin,
		PollMs:       opts.Poll.Milliseconds(),
		DebounceMs:   opts.Debounce.Milliseconds(),
		IdleTimeoutS: int64(policy.IdleTimeout / time.Second),
		MinOnS:       int64(policy.MinOn / time.Second),
		HeartbeatMs:  opts.Heartbeat.Milliseconds(),
		OffRetries:   opts.OffRetries,
	}
}
