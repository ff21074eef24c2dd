package main

import (
	"errors"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/step-sensor/internal/eventloop"
	"github.com/sweeney/step-sensor/internal/gpio"
	"github.com/sweeney/step-sensor/internal/logic"
	"github.com/sweeney/step-sensor/internal/metrics"
	"github.com/sweeney/step-sensor/internal/mqtt"
	"github.com/sweeney/step-sensor/internal/sensor"
	"github.com/sweeney/step-sensor/internal/status"
)

// ButtonResetSource labels resets from the GPIO push button.
const ButtonResetSource = "button"

// loopConfig holds the collaborators of the run loop. Tracker, Metrics,
// MQTTStatus and Button are optional.
type loopConfig struct {
	Loop           *eventloop.Loop
	Detector       *logic.Detector
	Source         sensor.Source
	Publisher      mqtt.Publisher
	MQTTStatus     mqtt.ConnectionStatus
	Tracker        *status.Tracker
	Metrics        *metrics.Metrics
	Button         gpio.Reader
	ButtonDebounce time.Duration
	Heartbeat      time.Duration
	Now            func() time.Time
	Logger         *zap.SugaredLogger
}

// daemon owns the detector. Everything that touches it runs on the goroutine
// executing run; other goroutines go through Loop.
type daemon struct {
	loopConfig
	heartbeat *logic.Heartbeat
	button    *logic.Button
}

func newDaemon(cfg loopConfig) *daemon {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &daemon{
		loopConfig: cfg,
		heartbeat:  logic.NewHeartbeat(cfg.Now()),
		button:     logic.NewButton(cfg.ButtonDebounce),
	}
}

// RequestReset queues a reset. Safe to call from any goroutine.
func (d *daemon) RequestReset(source string) bool {
	return d.Loop.Post(func() { d.reset(source) })
}

// run subscribes to the sensor and processes queued work, status ticks and
// button polls until a signal or stop request arrives.
func (d *daemon) run(tick, buttonTick <-chan time.Time, sig <-chan os.Signal, stop <-chan string) error {
	sub := d.subscribe()

	for {
		select {
		case fn := <-d.Loop.Queue():
			fn()

		case <-tick:
			d.refresh()
			d.checkHeartbeat()

		case <-buttonTick:
			d.pollButton()

		case s := <-sig:
			d.Logger.Infof("received %v, shutting down", s)
			d.shutdown(sub, signalName(s))
			return nil

		case reason := <-stop:
			d.Logger.Infof("stop requested (%s), shutting down", reason)
			d.shutdown(sub, reason)
			return nil
		}
	}
}

func (d *daemon) subscribe() sensor.Subscription {
	if !d.Source.IsAvailable() {
		d.Logger.Warnf("sensor %s is not available; step count will stay at 0", d.Source.Name())
		return nil
	}
	sub, err := d.Source.Subscribe(func(s logic.Sample) {
		d.Loop.Post(func() { d.onSample(s) })
	})
	if err != nil {
		if errors.Is(err, sensor.ErrUnavailable) {
			d.Logger.Warnf("sensor %s is not available; step count will stay at 0", d.Source.Name())
		} else {
			d.Logger.Errorf("subscribe to sensor %s: %v", d.Source.Name(), err)
		}
		return nil
	}
	d.Logger.Infof("subscribed to sensor %s", d.Source.Name())
	return sub
}

func (d *daemon) onSample(s logic.Sample) {
	event, verdict := d.Detector.OnSample(s)
	if verdict == logic.VerdictClosed {
		return
	}
	if d.Metrics != nil {
		d.Metrics.ObserveSample(verdict)
	}

	if event == nil {
		d.Logger.Debugw("sample rejected", "verdict", verdict, "acceleration", s.Acceleration, "ts", s.TimestampMillis)
		return
	}

	d.Logger.Infow("step", "count", event.Steps, "acceleration", event.Acceleration)
	if err := d.Publisher.Publish(*event); err != nil {
		d.Logger.Warnf("publish error: %v", err)
	}
	if d.Tracker != nil {
		d.Tracker.RecordStep(*event)
	}
	d.refresh()
}

func (d *daemon) reset(source string) {
	event := d.Detector.Reset(source, d.Now())
	d.Logger.Infof("reset from %s", source)
	if err := d.Publisher.Publish(event); err != nil {
		d.Logger.Warnf("publish error: %v", err)
	}
	if d.Metrics != nil {
		d.Metrics.ObserveReset(source)
	}
	d.refresh()
}

func (d *daemon) pollButton() {
	if d.Button == nil {
		return
	}
	pressed, err := d.Button.Read()
	if err != nil {
		d.Logger.Warnf("button read error: %v", err)
		return
	}
	if d.button.Process(pressed, d.Now()) {
		d.reset(ButtonResetSource)
	}
}

// refresh copies detector and connection state to the tracker and gauges.
func (d *daemon) refresh() {
	if d.Tracker == nil {
		return
	}
	d.Tracker.Update(d.Detector)
	if d.MQTTStatus != nil {
		d.Tracker.SetMQTTConnected(d.MQTTStatus.IsConnected())
	}
	if d.Metrics != nil {
		d.Metrics.Update(d.Tracker.Snapshot())
	}
}

func (d *daemon) checkHeartbeat() {
	hb := d.heartbeat.Check(d.Now(), d.Heartbeat, d.Detector)
	if hb == nil {
		return
	}
	d.Logger.Infof("heartbeat: uptime=%v steps=%d accepted=%d rejected=%d",
		hb.Uptime.Truncate(time.Second), hb.Steps, hb.Counts.Accepted, hb.Counts.TotalRejected())

	event := mqtt.SystemEvent{
		Timestamp: hb.Timestamp,
		Event:     "HEARTBEAT",
	}
	if d.Tracker != nil {
		event.RawPayload = status.FormatStatusEvent(d.Tracker.Snapshot(), "HEARTBEAT", "")
	}
	if err := d.Publisher.PublishSystem(event); err != nil {
		d.Logger.Warnf("heartbeat publish error: %v", err)
	}
}

// shutdown stops the detector before releasing the sensor so a late
// cooldown timer or sample never reaches it.
func (d *daemon) shutdown(sub sensor.Subscription, reason string) {
	d.Detector.Close()
	d.Loop.Close()
	if sub != nil {
		sub.Unsubscribe()
	}

	event := mqtt.SystemEvent{
		Timestamp: d.Now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if d.Tracker != nil {
		d.refresh()
		event.RawPayload = status.FormatStatusEvent(d.Tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := d.Publisher.PublishSystem(event); err != nil {
		d.Logger.Warnf("failed to publish shutdown event: %v", err)
	} else {
		d.Logger.Infof("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
