// Command step-sensor counts footsteps from an accelerometer stream and
// publishes step, reset and lifecycle events to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sweeney/step-sensor/internal/eventloop"
	"github.com/sweeney/step-sensor/internal/gpio"
	"github.com/sweeney/step-sensor/internal/logic"
	"github.com/sweeney/step-sensor/internal/metrics"
	"github.com/sweeney/step-sensor/internal/mqtt"
	"github.com/sweeney/step-sensor/internal/sensor"
	"github.com/sweeney/step-sensor/internal/status"
	"github.com/sweeney/step-sensor/internal/tui"
	"github.com/sweeney/step-sensor/internal/web"
)

// statusInterval is how often the loop refreshes the tracker, metrics
// gauges and MQTT connection state, and checks for a due heartbeat.
const statusInterval = time.Second

type options struct {
	source       string
	serialDevice string
	baud         int
	replayFile   string
	replayPace   bool
	demoRate     time.Duration

	broker    string
	heartbeat time.Duration
	httpAddr  string
	useTUI    bool
	logFile   string

	buttonPin      int
	buttonDebounce time.Duration
	buttonPoll     time.Duration

	checkSensor bool
	debug       bool

	threshold float64
	minGap    time.Duration
	cooldown  time.Duration
}

func main() {
	var opts options
	defaults := logic.DefaultParams()

	rootCmd := &cobra.Command{
		Use:   "step-sensor",
		Short: "Count footsteps from an accelerometer and publish them to MQTT",
		Long: `step-sensor reads vertical acceleration samples from a serial-attached
accelerometer (or a recorded file, or a synthetic walk with --source demo),
counts steps with a threshold-and-cooldown detector, and publishes step,
reset and lifecycle events to an MQTT broker.

The count is shown on an HTTP status page, optionally in the terminal with
--tui, and can be reset from either, or from a push button on a GPIO line.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&opts.source, "source", "serial", "Sample source: serial, replay or demo")
	f.StringVar(&opts.serialDevice, "serial-device", "/dev/ttyUSB0", "Serial device of the accelerometer")
	f.IntVar(&opts.baud, "baud", sensor.DefaultBaud, "Serial baud rate")
	f.StringVar(&opts.replayFile, "replay-file", "", "Recorded sample file for --source replay")
	f.BoolVar(&opts.replayPace, "replay-pace", true, "Replay at the recorded sample timestamps")
	f.DurationVar(&opts.demoRate, "demo-rate", 50*time.Millisecond, "Sample interval for --source demo")
	f.StringVar(&opts.broker, "broker", "tcp://localhost:1883", "MQTT broker address")
	f.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.StringVar(&opts.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	f.BoolVar(&opts.useTUI, "tui", false, "Show the step count in the terminal")
	f.StringVar(&opts.logFile, "log-file", "step-sensor.log", "Log destination while --tui owns the terminal")
	f.IntVar(&opts.buttonPin, "button-pin", -1, "BCM pin of a reset push button (-1 to disable)")
	f.DurationVar(&opts.buttonDebounce, "button-debounce", 50*time.Millisecond, "Reset button debounce")
	f.DurationVar(&opts.buttonPoll, "button-poll", 20*time.Millisecond, "Reset button polling interval")
	f.BoolVar(&opts.checkSensor, "check-sensor", false, "Report whether the sensor is available and exit")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	f.Float64Var(&opts.threshold, "threshold", defaults.Threshold, "Minimum acceleration change for a step")
	f.DurationVar(&opts.minGap, "min-gap", defaults.MinGap, "Minimum time between steps")
	f.DurationVar(&opts.cooldown, "cooldown", defaults.Cooldown, "Cooldown after each step")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug, useTUI bool, logFile string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if useTUI {
		// The terminal belongs to the TUI.
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Sugar(), nil
}

func newSource(opts options, logger *zap.SugaredLogger) (sensor.Source, error) {
	switch opts.source {
	case "serial":
		return sensor.NewSerialSource(opts.serialDevice, opts.baud, logger), nil
	case "replay":
		if opts.replayFile == "" {
			return nil, errors.New("--source replay needs --replay-file")
		}
		return sensor.NewReplaySource(opts.replayFile, opts.replayPace, logger), nil
	case "demo":
		return sensor.NewDemoSource(opts.demoRate), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want serial, replay or demo)", opts.source)
	}
}

func run(opts options) error {
	logger, err := newLogger(opts.debug, opts.useTUI, opts.logFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, err := newSource(opts, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	if opts.checkSensor {
		if source.IsAvailable() {
			fmt.Printf("%s: available\n", source.Name())
		} else {
			fmt.Printf("%s: not available\n", source.Name())
		}
		return nil
	}

	params := logic.Params{Threshold: opts.threshold, MinGap: opts.minGap, Cooldown: opts.cooldown}
	if params.Threshold < 0 || params.MinGap < 0 || params.Cooldown < 0 {
		return errors.New("--threshold, --min-gap and --cooldown must not be negative")
	}

	var button gpio.Reader
	if opts.buttonPin >= 0 {
		r, err := gpio.NewRealReader(opts.buttonPin)
		if err != nil {
			return fmt.Errorf("init reset button: %w", err)
		}
		defer r.Close()
		button = r
	}

	publisher, err := mqtt.NewRealPublisher(opts.broker, logger)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	start := time.Now()
	tracker := status.NewTracker(start, status.Config{
		ThresholdG:  params.Threshold,
		MinGapMs:    params.MinGap.Milliseconds(),
		CooldownMs:  params.Cooldown.Milliseconds(),
		HeartbeatMs: opts.heartbeat.Milliseconds(),
		Broker:      opts.broker,
		HTTPAddr:    opts.httpAddr,
	})
	tracker.SetSensor(source.Name(), source.IsAvailable())
	tracker.SetMQTTConnected(publisher.IsConnected())

	m := metrics.New()
	m.Update(tracker.Snapshot())

	publishStartup(publisher, tracker, logger)

	loop := eventloop.New(eventloop.DefaultQueueSize)
	d := newDaemon(loopConfig{
		Loop:           loop,
		Detector:       logic.NewDetector(params, loop),
		Source:         source,
		Publisher:      publisher,
		MQTTStatus:     publisher,
		Tracker:        tracker,
		Metrics:        m,
		Button:         button,
		ButtonDebounce: opts.buttonDebounce,
		Heartbeat:      opts.heartbeat,
		Now:            time.Now,
		Logger:         logger,
	})

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker, web.Options{
			Reset:     d.RequestReset,
			Metrics:   m.Handler(),
			AccessLog: zap.NewStdLog(logger.Desugar()).Writer(),
		})
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("http server error: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		logger.Infof("http status server listening on %s", opts.httpAddr)
	}

	stop := make(chan string, 1)
	if opts.useTUI {
		p := tea.NewProgram(tui.New(tracker, d.RequestReset), tea.WithAltScreen())
		go func() {
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				logger.Errorf("tui: %v", err)
			}
			stop <- "TUI_QUIT"
		}()
		defer p.Kill()
	}

	var buttonTick <-chan time.Time
	if button != nil {
		bt := time.NewTicker(opts.buttonPoll)
		defer bt.Stop()
		buttonTick = bt.C
		logger.Infof("reset button on BCM pin %d", opts.buttonPin)
	}

	logger.Infof("started: source=%s threshold=%.2f min_gap=%v cooldown=%v broker=%s heartbeat=%v",
		source.Name(), params.Threshold, params.MinGap, params.Cooldown, opts.broker, opts.heartbeat)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return d.run(ticker.C, buttonTick, sigCh, stop)
}

// publishStartup publishes the retained STARTUP event with a full status
// snapshot.
func publishStartup(publisher mqtt.Publisher, tracker *status.Tracker, logger *zap.SugaredLogger) {
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(event); err != nil {
		logger.Warnf("failed to publish startup event: %v", err)
		return
	}
	logger.Infof("published startup event")
}
