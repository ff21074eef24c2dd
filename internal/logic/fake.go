package logic

import (
	"sort"
	"time"
)

// FakeScheduler is a manually advanced Scheduler for tests.
// Nothing fires until Advance is called.
type FakeScheduler struct {
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
	fired     bool
}

func (t *fakeTask) Cancel() bool {
	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	return true
}

// NewFakeScheduler creates a FakeScheduler at virtual time zero.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// Schedule queues fn to run d after the current virtual time.
func (f *FakeScheduler) Schedule(d time.Duration, fn func()) Task {
	f.seq++
	t := &fakeTask{at: f.now + d, seq: f.seq, fn: fn}
	f.tasks = append(f.tasks, t)
	return t
}

// Advance moves virtual time forward by d and runs every task that came due,
// in due order.
func (f *FakeScheduler) Advance(d time.Duration) {
	f.now += d
	for {
		due := f.due()
		if due == nil {
			return
		}
		due.fired = true
		due.fn()
	}
}

// Pending returns the number of tasks neither fired nor cancelled.
func (f *FakeScheduler) Pending() int {
	n := 0
	for _, t := range f.tasks {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

func (f *FakeScheduler) due() *fakeTask {
	var ready []*fakeTask
	for _, t := range f.tasks {
		if !t.fired && !t.cancelled && t.at <= f.now {
			ready = append(ready, t)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].at != ready[j].at {
			return ready[i].at < ready[j].at
		}
		return ready[i].seq < ready[j].seq
	})
	return ready[0]
}
