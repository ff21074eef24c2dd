package logic

import (
	"testing"
	"time"
)

func TestHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(start)
	d, _ := newTestDetector(t)

	if hb := h.Check(start.Add(time.Hour), 0, d); hb != nil {
		t.Error("zero interval should disable heartbeat")
	}
	if hb := h.Check(start.Add(time.Hour), -time.Second, d); hb != nil {
		t.Error("negative interval should disable heartbeat")
	}
}

func TestHeartbeatInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(start)
	d, _ := newTestDetector(t)
	d.OnSample(Sample{Acceleration: 0.5, TimestampMillis: 1000})

	if hb := h.Check(start.Add(14*time.Minute), 15*time.Minute, d); hb != nil {
		t.Error("heartbeat fired before interval")
	}

	hb := h.Check(start.Add(15*time.Minute), 15*time.Minute, d)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", hb.Uptime)
	}
	if hb.Steps != 1 {
		t.Errorf("Steps: got %d, want 1", hb.Steps)
	}
	if hb.Calories != 0.05 {
		t.Errorf("Calories: got %v, want 0.05", hb.Calories)
	}
	if hb.Counts.Accepted != 1 {
		t.Errorf("Counts.Accepted: got %d, want 1", hb.Counts.Accepted)
	}

	// Next one is measured from the last heartbeat
	if hb := h.Check(start.Add(20*time.Minute), 15*time.Minute, d); hb != nil {
		t.Error("heartbeat fired again too early")
	}
	if hb := h.Check(start.Add(30*time.Minute), 15*time.Minute, d); hb == nil {
		t.Error("expected second heartbeat")
	}
}
