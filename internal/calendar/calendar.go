// Package calendar computes UTC day boundaries for feed expiry.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrOutOfRange is returned when a computed date falls outside the
// supported calendar range.
var ErrOutOfRange = errors.New("date out of range")

const (
	minYear = 1
	maxYear = 9999
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// MidnightUTC takes the calendar day of t in t's own location, shifts it by
// dayOffset days, and returns midnight UTC of the resulting day. A feed day
// is identified by its local date but stored as a UTC midnight, so the local
// components are reused as-is rather than converting the instant.
func MidnightUTC(t time.Time, dayOffset int) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("midnight UTC: %w: zero time", ErrOutOfRange)
	}

	y, m, d := t.Date()
	out := time.Date(y, m, d+dayOffset, 0, 0, 0, 0, time.UTC)

	if out.Year() < minYear || out.Year() > maxYear {
		return time.Time{}, fmt.Errorf("midnight UTC of %s %+d days: %w", t.Format(time.DateOnly), dayOffset, ErrOutOfRange)
	}
	return out, nil
}
