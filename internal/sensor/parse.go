package sensor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/step-sensor/internal/logic"
)

// errSkipLine marks blank and comment lines.
var errSkipLine = errors.New("skip line")

// ParseLine decodes one line of the accelerometer line protocol.
// Fields are separated by commas or whitespace:
//
//	y            vertical acceleration only, stamped with now
//	t,y          timestamp in milliseconds and vertical acceleration
//	t,x,y,z      timestamp and all three axes; y is used
//
// Blank lines and lines starting with '#' are skipped.
func ParseLine(line string, now func() time.Time) (logic.Sample, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return logic.Sample{}, errSkipLine
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})

	switch len(fields) {
	case 1:
		y, err := parseAccel(fields[0])
		if err != nil {
			return logic.Sample{}, err
		}
		return logic.Sample{Acceleration: y, TimestampMillis: now().UnixMilli()}, nil
	case 2:
		ts, err := parseTimestamp(fields[0])
		if err != nil {
			return logic.Sample{}, err
		}
		y, err := parseAccel(fields[1])
		if err != nil {
			return logic.Sample{}, err
		}
		return logic.Sample{Acceleration: y, TimestampMillis: ts}, nil
	case 4:
		ts, err := parseTimestamp(fields[0])
		if err != nil {
			return logic.Sample{}, err
		}
		y, err := parseAccel(fields[2])
		if err != nil {
			return logic.Sample{}, err
		}
		return logic.Sample{Acceleration: y, TimestampMillis: ts}, nil
	default:
		return logic.Sample{}, fmt.Errorf("parse %q: expected 1, 2 or 4 fields, got %d", line, len(fields))
	}
}

func parseTimestamp(s string) (int64, error) {
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ts, nil
}

func parseAccel(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse acceleration %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse acceleration %q: not a finite number", s)
	}
	return v, nil
}
