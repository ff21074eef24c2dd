package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/step-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string      `json:"event,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	Steps          int         `json:"steps"`
	Calories       string      `json:"calories"`
	Activity       string      `json:"activity"`
	CooldownActive bool        `json:"cooldown_active"`
	LastStep       string      `json:"last_step,omitempty"`
	UptimeSeconds  int64       `json:"uptime_seconds"`
	StartTime      string      `json:"start_time"`
	Timestamp      string      `json:"timestamp"`
	Sensor         SensorJSON  `json:"sensor"`
	MQTT           MQTTStatus  `json:"mqtt"`
	Samples        SamplesJSON `json:"samples"`
	Config         ConfigJSON  `json:"config"`
}

// SensorJSON reports the sample source.
type SensorJSON struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// SamplesJSON is the JSON representation of per-verdict sample counts.
type SamplesJSON struct {
	Accepted int            `json:"accepted"`
	Rejected map[string]int `json:"rejected"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Threshold   float64 `json:"threshold"`
	MinGapMs    int64   `json:"min_gap_ms"`
	CooldownMs  int64   `json:"cooldown_ms"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	Broker      string  `json:"broker"`
	HTTPAddr    string  `json:"http_addr"`
}

// Activity is "running" once any step is counted, "sitting" otherwise.
func Activity(snap Snapshot) string {
	if snap.Running() {
		return "running"
	}
	return "sitting"
}

func buildInner(snap Snapshot) StatusInner {
	rejected := make(map[string]int)
	for _, v := range logic.Verdicts {
		if v == logic.VerdictAccepted {
			continue
		}
		rejected[string(v)] = snap.Counts.Rejected[v]
	}

	inner := StatusInner{
		Steps:          snap.Steps,
		Calories:       fmt.Sprintf("%.2f", snap.Calories()),
		Activity:       Activity(snap),
		CooldownActive: snap.CooldownActive,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		Sensor:         SensorJSON{Name: snap.SensorName, Available: snap.SensorAvailable},
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Samples:        SamplesJSON{Accepted: snap.Counts.Accepted, Rejected: rejected},
		Config: ConfigJSON{
			Threshold:   snap.Config.ThresholdG,
			MinGapMs:    snap.Config.MinGapMs,
			CooldownMs:  snap.Config.CooldownMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if !snap.LastStep.IsZero() {
		inner.LastStep = snap.LastStep.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
