// Package logic contains pure step-detection logic.
// This package has NO external dependencies (no sensors, MQTT, OS, or time.Sleep).
// Time is always injectable: samples carry their own timestamps and deferred
// work goes through a Scheduler.
package logic

import "time"

// CaloriesPerStep is the fixed calorie estimate for a single step.
const CaloriesPerStep = 0.05

// Sample is one vertical-acceleration reading with its capture time.
type Sample struct {
	Acceleration    float64
	TimestampMillis int64
}

// Time returns the sample timestamp as a time.Time.
func (s Sample) Time() time.Time {
	return time.UnixMilli(s.TimestampMillis)
}

// DetectorState is the complete mutable state of the step detector.
// The zero value is the initial READY state.
type DetectorState struct {
	LastAcceptedValue     float64
	LastAcceptedTimestamp int64 // milliseconds
	CooldownActive        bool
	StepCount             int
}

// Params are the tunables of the threshold-and-cooldown heuristic.
type Params struct {
	// Threshold is the minimum absolute acceleration change (exclusive).
	Threshold float64
	// MinGap is the minimum timestamp gap since the last step (exclusive).
	MinGap time.Duration
	// Cooldown is how long after a step no further step is counted.
	Cooldown time.Duration
}

// DefaultParams returns the stock detector tuning: 0.1 threshold,
// 800ms gap, 1000ms cooldown.
func DefaultParams() Params {
	return Params{
		Threshold: 0.1,
		MinGap:    800 * time.Millisecond,
		Cooldown:  1000 * time.Millisecond,
	}
}

// Verdict explains why a sample was or was not counted.
type Verdict string

const (
	VerdictAccepted       Verdict = "accepted"
	VerdictBelowThreshold Verdict = "below_threshold"
	VerdictCooldown       Verdict = "cooldown"
	VerdictTooSoon        Verdict = "too_soon"
	VerdictOutOfOrder     Verdict = "out_of_order"

	// VerdictClosed is returned for samples arriving after Close. Such
	// samples are not counted anywhere.
	VerdictClosed Verdict = "closed"
)

// Verdicts lists every verdict, accepted first.
var Verdicts = []Verdict{
	VerdictAccepted,
	VerdictBelowThreshold,
	VerdictCooldown,
	VerdictTooSoon,
	VerdictOutOfOrder,
}

// EventType is the kind of event published to display surfaces.
type EventType string

const (
	EventStep  EventType = "STEP"
	EventReset EventType = "RESET"
)

// Event is a step or reset to be published.
type Event struct {
	Timestamp    time.Time
	Type         EventType
	Steps        int
	Calories     float64
	Acceleration float64 // STEP only
	Source       string  // RESET only: who asked for it (http, tui, button)
}

// SampleCounts tracks how many samples got each verdict since startup.
type SampleCounts struct {
	Accepted int
	Rejected map[Verdict]int
}

// TotalRejected sums all rejection verdicts.
func (c SampleCounts) TotalRejected() int {
	n := 0
	for _, v := range c.Rejected {
		n += v
	}
	return n
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Steps     int
	Calories  float64
	Counts    SampleCounts
}
