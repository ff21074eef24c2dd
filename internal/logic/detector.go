package logic

import (
	"math"
	"time"
)

// OnSample applies one sample to the state and reports whether it counted.
// A sample is a step only if the acceleration moved by more than the
// threshold since the last step, no cooldown is running, and the timestamp
// is more than MinGap after the last step. Rejected samples leave the state
// unchanged.
//
// Timestamps must be non-decreasing. A sample older than the last accepted
// step is rejected as VerdictOutOfOrder.
func OnSample(s Sample, st DetectorState, p Params) (DetectorState, Verdict) {
	gap := s.TimestampMillis - st.LastAcceptedTimestamp
	if gap < 0 {
		return st, VerdictOutOfOrder
	}
	if math.Abs(s.Acceleration-st.LastAcceptedValue) <= p.Threshold {
		return st, VerdictBelowThreshold
	}
	if st.CooldownActive {
		return st, VerdictCooldown
	}
	if gap <= p.MinGap.Milliseconds() {
		return st, VerdictTooSoon
	}

	st.StepCount++
	st.LastAcceptedValue = s.Acceleration
	st.LastAcceptedTimestamp = s.TimestampMillis
	st.CooldownActive = true
	return st, VerdictAccepted
}

// Reset zeroes the step count. The last accepted value, timestamp and
// cooldown flag are kept, so a reset mid-cooldown still waits out the
// original window.
func Reset(st DetectorState) DetectorState {
	st.StepCount = 0
	return st
}

// ClearCooldown is the timer-driven COOLDOWN_ACTIVE -> READY transition.
func ClearCooldown(st DetectorState) DetectorState {
	st.CooldownActive = false
	return st
}

// Calories estimates calories burnt for a step count.
func Calories(steps int) float64 {
	return float64(steps) * CaloriesPerStep
}

// Task is a cancellable piece of deferred work.
type Task interface {
	// Cancel prevents the task from running. It reports whether the task
	// was still pending.
	Cancel() bool
}

// Scheduler runs fn after d on the same logical thread that drives the
// Detector.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

// Detector owns a DetectorState and the deferred cooldown-clear task.
// It is not safe for concurrent use: call it from a single event loop and
// give it a Scheduler that delivers onto that loop.
type Detector struct {
	params  Params
	sched   Scheduler
	state   DetectorState
	pending Task
	counts  SampleCounts
	closed  bool
}

// NewDetector creates a detector in the READY state.
func NewDetector(params Params, sched Scheduler) *Detector {
	return &Detector{
		params: params,
		sched:  sched,
		counts: SampleCounts{Rejected: make(map[Verdict]int)},
	}
}

// OnSample processes a sample. It returns a STEP event when the sample was
// accepted, nil otherwise, along with the verdict.
func (d *Detector) OnSample(s Sample) (*Event, Verdict) {
	if d.closed {
		return nil, VerdictClosed
	}

	next, verdict := OnSample(s, d.state, d.params)
	if verdict != VerdictAccepted {
		d.counts.Rejected[verdict]++
		return nil, verdict
	}

	d.state = next
	d.counts.Accepted++
	d.pending = d.sched.Schedule(d.params.Cooldown, d.clearCooldown)

	return &Event{
		Timestamp:    s.Time(),
		Type:         EventStep,
		Steps:        d.state.StepCount,
		Calories:     Calories(d.state.StepCount),
		Acceleration: s.Acceleration,
	}, verdict
}

func (d *Detector) clearCooldown() {
	d.pending = nil
	if d.closed {
		return
	}
	d.state = ClearCooldown(d.state)
}

// Reset zeroes the step count and returns the RESET event to publish.
func (d *Detector) Reset(source string, now time.Time) Event {
	d.state = Reset(d.state)
	return Event{
		Timestamp: now,
		Type:      EventReset,
		Steps:     0,
		Calories:  0,
		Source:    source,
	}
}

// Close cancels a pending cooldown-clear. The detector ignores samples
// afterwards.
func (d *Detector) Close() {
	d.closed = true
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}

// Steps returns the current step count.
func (d *Detector) Steps() int {
	return d.state.StepCount
}

// Calories returns the estimated calories for the current step count.
func (d *Detector) Calories() float64 {
	return Calories(d.state.StepCount)
}

// CooldownActive reports whether the detector is in COOLDOWN_ACTIVE.
func (d *Detector) CooldownActive() bool {
	return d.state.CooldownActive
}

// State returns a copy of the detector state.
func (d *Detector) State() DetectorState {
	return d.state
}

// Params returns the tuning the detector was built with.
func (d *Detector) Params() Params {
	return d.params
}

// CountsSnapshot returns a copy of the per-verdict sample counts.
func (d *Detector) CountsSnapshot() SampleCounts {
	out := SampleCounts{
		Accepted: d.counts.Accepted,
		Rejected: make(map[Verdict]int, len(d.counts.Rejected)),
	}
	for k, v := range d.counts.Rejected {
		out.Rejected[k] = v
	}
	return out
}
