package sensor

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sweeney/step-sensor/internal/logic"
)

// DemoSource synthesizes a walking signal so the daemon can run without
// hardware. The wearer alternates between walking and standing still.
type DemoSource struct {
	rate time.Duration
	now  func() time.Time

	mu   sync.Mutex
	subs []*demoSubscription
}

// NewDemoSource creates a demo source emitting one sample per rate.
func NewDemoSource(rate time.Duration) *DemoSource {
	if rate <= 0 {
		rate = 50 * time.Millisecond
	}
	return &DemoSource{rate: rate, now: time.Now}
}

// Name returns "demo".
func (d *DemoSource) Name() string {
	return "demo"
}

// IsAvailable is always true.
func (d *DemoSource) IsAvailable() bool {
	return true
}

// Subscribe starts the synthetic signal.
func (d *DemoSource) Subscribe(h Handler) (Subscription, error) {
	sub := &demoSubscription{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go sub.run(d.rate, d.now, h)

	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
	return sub, nil
}

// Close stops every running subscription.
func (d *DemoSource) Close() error {
	d.mu.Lock()
	subs := d.subs
	d.subs = nil
	d.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return nil
}

type demoSubscription struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (s *demoSubscription) run(rate time.Duration, now func() time.Time, h Handler) {
	defer close(s.done)

	rng := rand.New(rand.NewSource(now().UnixNano()))
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	start := now()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			t := now()
			h(logic.Sample{
				Acceleration:    demoSignal(t.Sub(start), rng),
				TimestampMillis: t.UnixMilli(),
			})
		}
	}
}

func (s *demoSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
}

// demoSignal is a ~1.8Hz stride for 20s followed by 10s standing, plus noise
// well under the step threshold.
func demoSignal(elapsed time.Duration, rng *rand.Rand) float64 {
	const (
		walkFor  = 20 * time.Second
		cycle    = 30 * time.Second
		strideHz = 1.8
		noise    = 0.02
	)
	n := (rng.Float64()*2 - 1) * noise
	if elapsed%cycle >= walkFor {
		return n
	}
	return 0.4*math.Sin(2*math.Pi*strideHz*elapsed.Seconds()) + n
}
