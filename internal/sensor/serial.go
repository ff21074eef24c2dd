package sensor

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

// DefaultBaud matches the usual microcontroller firmware for the sensor.
const DefaultBaud = 115200

// SerialSource reads samples from an accelerometer that streams the line
// protocol over a serial port.
type SerialSource struct {
	device string
	baud   int
	now    func() time.Time
	logger *zap.SugaredLogger

	// open is swapped out in tests.
	open func(c *serial.Config) (io.ReadWriteCloser, error)

	mu   sync.Mutex
	subs []*lineSubscription
}

// NewSerialSource creates a source for the given serial device.
func NewSerialSource(device string, baud int, logger *zap.SugaredLogger) *SerialSource {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &SerialSource{
		device: device,
		baud:   baud,
		now:    time.Now,
		logger: logger,
		open:   serial.OpenPort,
	}
}

// Name returns "serial:<device>".
func (s *SerialSource) Name() string {
	return "serial:" + s.device
}

// IsAvailable reports whether the device node exists.
func (s *SerialSource) IsAvailable() bool {
	if s.device == "" {
		return false
	}
	_, err := os.Stat(s.device)
	return err == nil
}

// Subscribe opens the port and starts reading samples.
func (s *SerialSource) Subscribe(h Handler) (Subscription, error) {
	if !s.IsAvailable() {
		return nil, ErrUnavailable
	}

	s.logger.Debugf("opening serial port %s at %d baud", s.device, s.baud)
	port, err := s.open(&serial.Config{Name: s.device, Baud: s.baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", s.device, err)
	}

	sub := startLineSubscription(s.Name(), port, h, s.now, nil, s.logger)

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return sub, nil
}

// Close releases every subscription still open.
func (s *SerialSource) Close() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return nil
}
