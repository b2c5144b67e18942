package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// Session lengths are minutes within a single day; times are minutes since
// midnight. Intervals are half-open, so a booking ending 15:00 does not
// collide with one starting 15:00.

// DefaultDurationMinutes is the session length assumed when neither the
// request nor the package specifies one.
const DefaultDurationMinutes = 60

// Interval is a half-open [Start, End) span in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// ParseClock parses a 24h "HH:mm" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, ErrInvalidTimeFormat
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, ErrInvalidTimeFormat
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:mm".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ResolveDuration picks the session length for a request. Precedence is an
// explicit duration, then the span between start and end times, then the
// package default, then DefaultDurationMinutes. A non-positive explicit
// duration or a non-positive start/end span is rejected rather than silently
// replaced.
func ResolveDuration(explicit int, start, end string, packageDefault int) (int, error) {
	if explicit != 0 {
		if explicit < 0 {
			return 0, ErrInvalidDuration
		}
		return explicit, nil
	}
	if end != "" {
		startMin, err := ParseClock(start)
		if err != nil {
			return 0, err
		}
		endMin, err := ParseClock(end)
		if err != nil {
			return 0, err
		}
		if endMin <= startMin {
			return 0, ErrInvalidDuration
		}
		return endMin - startMin, nil
	}
	if packageDefault > 0 {
		return packageDefault, nil
	}
	return DefaultDurationMinutes, nil
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Conflicts reports whether the requested interval overlaps any existing one.
func Conflicts(requested Interval, existing []Interval) bool {
	for _, iv := range existing {
		if Overlaps(requested, iv) {
			return true
		}
	}
	return false
}

// BookedIntervals converts bookings into occupied intervals. Rows whose
// stored time no longer parses are skipped instead of blocking the whole
// day.
func BookedIntervals(bookings []*Booking) []Interval {
	intervals := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		start, err := ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		intervals = append(intervals, Interval{Start: start, End: start + b.DurationMinutes})
	}
	return intervals
}
