// Package sensor provides accelerometer sample sources with an abstraction
// for testing. Real sources read a line protocol from a serial-attached
// accelerometer or a recorded file; the demo source synthesizes a walk; the
// fake source is driven by tests.
package sensor

import (
	"errors"

	"github.com/sweeney/step-sensor/internal/logic"
)

// ErrUnavailable is returned by Subscribe when the sensor is not present.
var ErrUnavailable = errors.New("sensor: not available")

// Handler receives samples. It is called from the source's own goroutine and
// must not block for long.
type Handler func(logic.Sample)

// Source delivers accelerometer samples to subscribers.
type Source interface {
	// Name identifies the source in logs and status output.
	Name() string

	// IsAvailable reports whether the sensor can deliver samples.
	IsAvailable() bool

	// Subscribe starts delivering samples to h until the subscription is
	// released.
	Subscribe(h Handler) (Subscription, error)

	// Close releases any resources held by the source.
	Close() error
}

// Subscription is a handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops delivery. It is safe to call more than once.
	Unsubscribe()
}
