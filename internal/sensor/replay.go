package sensor

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/step-sensor/internal/logic"
)

// ReplaySource plays back a recorded sample file in the line protocol.
// With pacing on, samples are delivered with the same spacing as their
// timestamps so that wall-clock cooldowns behave as they did live.
type ReplaySource struct {
	path   string
	pace   bool
	now    func() time.Time
	logger *zap.SugaredLogger

	mu   sync.Mutex
	subs []*lineSubscription
}

// NewReplaySource creates a source that reads path.
func NewReplaySource(path string, pace bool, logger *zap.SugaredLogger) *ReplaySource {
	return &ReplaySource{
		path:   path,
		pace:   pace,
		now:    time.Now,
		logger: logger,
	}
}

// Name returns "replay:<path>".
func (r *ReplaySource) Name() string {
	return "replay:" + r.path
}

// IsAvailable reports whether the file exists.
func (r *ReplaySource) IsAvailable() bool {
	if r.path == "" {
		return false
	}
	_, err := os.Stat(r.path)
	return err == nil
}

// Subscribe opens the file and starts playback.
func (r *ReplaySource) Subscribe(h Handler) (Subscription, error) {
	if !r.IsAvailable() {
		return nil, ErrUnavailable
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}

	var p pacer
	if r.pace {
		p = timestampPacer()
	}
	sub := startLineSubscription(r.Name(), f, h, r.now, p, r.logger)

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	return sub, nil
}

// Close stops playback.
func (r *ReplaySource) Close() error {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return nil
}

// timestampPacer sleeps for the gap between consecutive sample timestamps.
// Negative gaps are delivered immediately.
func timestampPacer() pacer {
	var last int64
	first := true
	return func(s logic.Sample, stop <-chan struct{}) bool {
		if first {
			first = false
			last = s.TimestampMillis
			return true
		}
		gap := time.Duration(s.TimestampMillis-last) * time.Millisecond
		last = s.TimestampMillis
		if gap <= 0 {
			return true
		}
		t := time.NewTimer(gap)
		defer t.Stop()
		select {
		case <-t.C:
			return true
		case <-stop:
			return false
		}
	}
}
