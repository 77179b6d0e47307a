// Package interval provides day-local time-of-day math used by the
// availability engine. All spans are half-open: [Start, End).
package interval

import (
	"fmt"
)

// TimeOfDay is minutes since midnight, 0..1440.
type TimeOfDay int

const (
	Midnight  TimeOfDay = 0
	EndOfDay  TimeOfDay = 24 * 60
	minsInDay           = 24 * 60
)

// ParseClock parses "HH:MM" into a TimeOfDay.
func ParseClock(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || h*60+m > minsInDay {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustClock is ParseClock for constants in tests and seeds.
func MustClock(s string) TimeOfDay {
	t, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= EndOfDay
}

// Span is a half-open interval of a single day.
type Span struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewSpan(start, end TimeOfDay) Span {
	return Span{Start: start, End: end}
}

func (s Span) Empty() bool {
	return s.End <= s.Start
}

func (s Span) Duration() int {
	if s.Empty() {
		return 0
	}
	return int(s.End - s.Start)
}

// Overlaps reports whether two half-open spans intersect.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Subtract removes every span in busy from base and returns the remaining
// open sub-spans in chronological order. The busy list does not need to be
// sorted or disjoint; spans outside base are ignored.
func Subtract(base Span, busy []Span) []Span {
	if base.Empty() {
		return nil
	}

	open := []Span{base}
	for _, b := range busy {
		if b.Empty() {
			continue
		}
		var next []Span
		for _, o := range open {
			if !o.Overlaps(b) {
				next = append(next, o)
				continue
			}
			if left := (Span{Start: o.Start, End: b.Start}); !left.Empty() {
				next = append(next, left)
			}
			if right := (Span{Start: b.End, End: o.End}); !right.Empty() {
				next = append(next, right)
			}
		}
		open = next
	}
	return open
}
