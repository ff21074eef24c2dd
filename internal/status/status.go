// Package status provides a thread-safe status tracker for the step-sensor daemon.
// The event loop writes to it; HTTP handlers, the terminal UI and MQTT
// lifecycle events read point-in-time snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/step-sensor/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	ThresholdG  float64
	MinGapMs    int64
	CooldownMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Steps            int
	CooldownActive   bool
	SensorName       string
	SensorAvailable  bool
	LastStep         time.Time // zero until the first step
	LastAcceleration float64
	Counts           logic.SampleCounts
	StartTime        time.Time
	Now              time.Time
	MQTTConnected    bool
	Config           Config
}

// Calories is recomputed from Steps on every read.
func (s Snapshot) Calories() float64 {
	return logic.Calories(s.Steps)
}

// Running reports whether any steps have been counted since the last reset.
func (s Snapshot) Running() bool {
	return s.Steps != 0
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update copies the detector's current state. Called from the event loop
// after every sample, reset and cooldown change.
func (t *Tracker) Update(d *logic.Detector) {
	st := d.State()
	counts := d.CountsSnapshot()
	t.mu.Lock()
	t.snap.Steps = st.StepCount
	t.snap.CooldownActive = st.CooldownActive
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordStep notes the time and acceleration of the latest step.
func (t *Tracker) RecordStep(e logic.Event) {
	t.mu.Lock()
	t.snap.LastStep = e.Timestamp
	t.snap.LastAcceleration = e.Acceleration
	t.mu.Unlock()
}

// SetSensor sets the sensor name and availability.
func (t *Tracker) SetSensor(name string, available bool) {
	t.mu.Lock()
	t.snap.SensorName = name
	t.snap.SensorAvailable = available
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
