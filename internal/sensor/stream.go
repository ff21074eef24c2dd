package sensor

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/step-sensor/internal/logic"
)

// unsubscribeTimeout bounds how long Unsubscribe waits for the reader
// goroutine after closing its input.
const unsubscribeTimeout = 2 * time.Second

// lineSubscription reads the line protocol from rc on its own goroutine.
type lineSubscription struct {
	name   string
	rc     io.Closer
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
	logger *zap.SugaredLogger
}

// pacer optionally delays delivery of a sample. It returns false when the
// subscription is stopping.
type pacer func(s logic.Sample, stop <-chan struct{}) bool

func startLineSubscription(name string, rc io.ReadCloser, h Handler, now func() time.Time, pace pacer, logger *zap.SugaredLogger) *lineSubscription {
	sub := &lineSubscription{
		name:   name,
		rc:     rc,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
	go sub.read(rc, h, now, pace)
	return sub
}

func (s *lineSubscription) read(r io.Reader, h Handler, now func() time.Time, pace pacer) {
	defer close(s.done)

	scanner := bufio.NewScanner(r)
	lines, bad := 0, 0
	for scanner.Scan() {
		lines++
		sample, err := ParseLine(scanner.Text(), now)
		if errors.Is(err, errSkipLine) {
			continue
		}
		if err != nil {
			bad++
			s.logger.Debugf("%s: line %d: %v", s.name, lines, err)
			continue
		}
		if pace != nil && !pace(sample, s.stop) {
			return
		}
		select {
		case <-s.stop:
			return
		default:
		}
		h(sample)
	}

	select {
	case <-s.stop:
		// Read errors after Unsubscribe are expected: we closed the input.
		return
	default:
	}
	if err := scanner.Err(); err != nil {
		s.logger.Errorf("%s: read error after %d lines: %v", s.name, lines, err)
		return
	}
	s.logger.Infof("%s: end of input after %d lines (%d unparseable)", s.name, lines, bad)
}

// Unsubscribe closes the input and waits briefly for the reader to exit.
func (s *lineSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.stop)
		if err := s.rc.Close(); err != nil {
			s.logger.Warnf("%s: close: %v", s.name, err)
		}
		select {
		case <-s.done:
		case <-time.After(unsubscribeTimeout):
			s.logger.Warnf("%s: reader did not stop within %v", s.name, unsubscribeTimeout)
		}
	})
}

// Done is closed when the reader goroutine exits.
func (s *lineSubscription) Done() <-chan struct{} {
	return s.done
}
