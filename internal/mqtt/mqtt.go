// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/step-sensor/internal/logic"
)

// Topic is the MQTT topic for step and reset events.
const Topic = "fitness/steps/sensor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "fitness/steps/sensor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a step or reset event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Steps StepsPayload `json:"steps"`
}

// StepsPayload contains the step event details.
type StepsPayload struct {
	Timestamp    string   `json:"timestamp"`
	Event        string   `json:"event"`
	Count        int      `json:"count"`
	Calories     string   `json:"calories"`
	Acceleration *float64 `json:"acceleration,omitempty"`
	Source       string   `json:"source,omitempty"`
}

// FormatCalories renders calories the way the display shows them.
func FormatCalories(c float64) string {
	return fmt.Sprintf("%.2f", c)
}

// FormatPayload creates the JSON payload for a step or reset event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := StepsPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Count:     event.Steps,
		Calories:  FormatCalories(event.Calories),
		Source:    event.Source,
	}
	if event.Type == logic.EventStep {
		a := event.Acceleration
		p.Acceleration = &a
	}
	return json.Marshal(Payload{Steps: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
