package sensor

import (
	"sync"

	"github.com/sweeney/step-sensor/internal/logic"
)

// FakeSource is a test double whose samples are pushed with Emit.
type FakeSource struct {
	// Available controls the return value of IsAvailable.
	Available bool

	// SubscribeError, if set, will be returned by Subscribe.
	SubscribeError error

	// Closed tracks if Close was called.
	Closed bool

	// Unsubscribed counts released subscriptions.
	Unsubscribed int

	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

// NewFakeSource creates an available FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{Available: true, handlers: make(map[int]Handler)}
}

// Name returns "fake".
func (f *FakeSource) Name() string {
	return "fake"
}

// IsAvailable returns f.Available.
func (f *FakeSource) IsAvailable() bool {
	return f.Available
}

// Subscribe registers h.
func (f *FakeSource) Subscribe(h Handler) (Subscription, error) {
	if f.SubscribeError != nil {
		return nil, f.SubscribeError
	}
	if !f.Available {
		return nil, ErrUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.handlers[f.nextID] = h
	return &fakeSubscription{src: f, id: f.nextID}, nil
}

// Emit delivers samples synchronously to every subscriber.
func (f *FakeSource) Emit(samples ...logic.Sample) {
	f.mu.Lock()
	hs := make([]Handler, 0, len(f.handlers))
	for _, h := range f.handlers {
		hs = append(hs, h)
	}
	f.mu.Unlock()

	for _, s := range samples {
		for _, h := range hs {
			h(s)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (f *FakeSource) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

type fakeSubscription struct {
	src  *FakeSource
	id   int
	once sync.Once
}

func (s *fakeSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.src.mu.Lock()
		delete(s.src.handlers, s.id)
		s.src.Unsubscribed++
		s.src.mu.Unlock()
	})
}
