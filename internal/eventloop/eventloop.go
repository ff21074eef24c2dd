// Package eventloop provides the single logical thread that owns the step
// detector. Producers on other goroutines post closures; the run loop drains
// Queue and executes them one at a time.
package eventloop

import (
	"sync"
	"time"

	"github.com/sweeney/step-sensor/internal/logic"
)

// DefaultQueueSize is large enough to absorb a burst of sensor samples while
// the loop publishes to MQTT.
const DefaultQueueSize = 256

// Loop is a FIFO of work for a single consumer goroutine.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Loop whose queue holds up to size pending closures.
func New(size int) *Loop {
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post enqueues fn. It blocks while the queue is full and returns false if
// the loop was closed first.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Queue is the channel the consumer drains.
func (l *Loop) Queue() <-chan func() {
	return l.queue
}

// Close stops accepting work. Closures already queued stay in Queue.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Schedule posts fn to the loop after d. The returned task can be cancelled
// up to the moment fn starts running on the loop, including after it has
// been queued.
func (l *Loop) Schedule(d time.Duration, fn func()) logic.Task {
	t := &task{fn: fn}
	t.timer = time.AfterFunc(d, func() {
		l.Post(t.run)
	})
	return t
}

type task struct {
	mu        sync.Mutex
	timer     *time.Timer
	fn        func()
	cancelled bool
	started   bool
}

func (t *task) run() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()
	t.fn()
}

func (t *task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled || t.started {
		return false
	}
	t.cancelled = true
	t.timer.Stop()
	return true
}
