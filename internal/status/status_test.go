package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/step-sensor/internal/logic"
)

func newDetectorWithSteps(t *testing.T, n int) *logic.Detector {
	t.Helper()
	sched := logic.NewFakeScheduler()
	d := logic.NewDetector(logic.DefaultParams(), sched)
	var ts int64
	accel := 0.0
	for i := 0; i < n; i++ {
		ts += 1000
		accel = 0.5 - accel
		if ev, v := d.OnSample(logic.Sample{Acceleration: accel, TimestampMillis: ts}); ev == nil {
			t.Fatalf("step %d rejected: %s", i, v)
		}
		sched.Advance(time.Second)
	}
	return d
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{ThresholdG: 0.1, MinGapMs: 800, CooldownMs: 1000, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.CooldownMs != 1000 {
		t.Errorf("Config.CooldownMs: got %d, want 1000", snap.Config.CooldownMs)
	}
	if snap.Steps != 0 {
		t.Errorf("expected 0 steps initially, got %d", snap.Steps)
	}
	if snap.Running() {
		t.Error("expected sitting initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	d := newDetectorWithSteps(t, 10)
	d.OnSample(logic.Sample{Acceleration: 0.5, TimestampMillis: 1}) // out of order

	tr.Update(d)

	snap := tr.Snapshot()
	if snap.Steps != 10 {
		t.Errorf("Steps: got %d, want 10", snap.Steps)
	}
	if snap.Calories() != logic.Calories(10) {
		t.Errorf("Calories: got %v, want %v", snap.Calories(), logic.Calories(10))
	}
	if !snap.Running() {
		t.Error("expected running after steps")
	}
	if snap.Counts.Accepted != 10 {
		t.Errorf("Counts.Accepted: got %d, want 10", snap.Counts.Accepted)
	}
	if snap.Counts.Rejected[logic.VerdictOutOfOrder] != 1 {
		t.Errorf("Counts.Rejected[out_of_order]: got %d, want 1", snap.Counts.Rejected[logic.VerdictOutOfOrder])
	}

	d.Reset("test", time.Now())
	tr.Update(d)
	if tr.Snapshot().Running() {
		t.Error("expected sitting after reset")
	}
}

func TestRecordStep(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr.RecordStep(logic.Event{Type: logic.EventStep, Timestamp: at, Acceleration: -0.4})

	snap := tr.Snapshot()
	if !snap.LastStep.Equal(at) {
		t.Errorf("LastStep: got %v, want %v", snap.LastStep, at)
	}
	if snap.LastAcceleration != -0.4 {
		t.Errorf("LastAcceleration: got %v, want -0.4", snap.LastAcceleration)
	}
}

func TestSetSensorAndMQTT(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetSensor("serial:/dev/ttyUSB0", true)
	tr.SetMQTTConnected(true)
	snap := tr.Snapshot()
	if snap.SensorName != "serial:/dev/ttyUSB0" || !snap.SensorAvailable {
		t.Errorf("sensor: got %q %v", snap.SensorName, snap.SensorAvailable)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{})
	tr.now = func() time.Time { return start.Add(90 * time.Second) }

	if got := tr.Snapshot().Uptime(); got != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	d := newDetectorWithSteps(t, 3)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Snapshot()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.SetMQTTConnected(j%2 == 0)
				tr.SetSensor("fake", true)
			}
		}()
	}
	// Detector itself is single-threaded; only one writer calls Update.
	for j := 0; j < 100; j++ {
		tr.Update(d)
	}
	wg.Wait()
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{ThresholdG: 0.1, MinGapMs: 800, CooldownMs: 1000, HeartbeatMs: 900000, Broker: "tcp://b:1883", HTTPAddr: ":80"})
	tr.now = func() time.Time { return start.Add(time.Hour) }
	tr.Update(newDetectorWithSteps(t, 10))
	tr.RecordStep(logic.Event{Timestamp: start.Add(30 * time.Minute)})
	tr.SetSensor("demo", true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := sj.Status
	if s.Steps != 10 {
		t.Errorf("Steps: got %d, want 10", s.Steps)
	}
	if s.Calories != "0.50" {
		t.Errorf("Calories: got %q, want 0.50", s.Calories)
	}
	if s.Activity != "running" {
		t.Errorf("Activity: got %q, want running", s.Activity)
	}
	if s.UptimeSeconds != 3600 {
		t.Errorf("UptimeSeconds: got %d, want 3600", s.UptimeSeconds)
	}
	if s.LastStep != "2026-01-01T00:30:00Z" {
		t.Errorf("LastStep: got %q", s.LastStep)
	}
	if s.Sensor.Name != "demo" || !s.Sensor.Available {
		t.Errorf("Sensor: got %+v", s.Sensor)
	}
	if s.Samples.Accepted != 10 {
		t.Errorf("Samples.Accepted: got %d, want 10", s.Samples.Accepted)
	}
	if _, ok := s.Samples.Rejected["cooldown"]; !ok {
		t.Error("expected every rejection verdict listed")
	}
	if _, ok := s.Samples.Rejected["accepted"]; ok {
		t.Error("accepted is not a rejection verdict")
	}
	if s.Config.MinGapMs != 800 || s.Config.CooldownMs != 1000 || s.Config.Threshold != 0.1 {
		t.Errorf("Config: got %+v", s.Config)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON must not carry event/reason")
	}
}

func TestFormatJSONBeforeFirstStep(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Activity != "sitting" {
		t.Errorf("Activity: got %q, want sitting", sj.Status.Activity)
	}
	if sj.Status.Calories != "0.00" {
		t.Errorf("Calories: got %q, want 0.00", sj.Status.Calories)
	}
	if sj.Status.LastStep != "" {
		t.Errorf("LastStep should be omitted, got %q", sj.Status.LastStep)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var sj StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q", sj.Status.Reason)
	}
}
