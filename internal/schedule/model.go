package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

// WeeklyEntry is the legacy recurring template: one row per practitioner per
// day of week. At most one working entry may exist per (practitioner, day).
type WeeklyEntry struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	DayOfWeek      time.Weekday
	StartTime      interval.TimeOfDay
	EndTime        interval.TimeOfDay
	IsWorking      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Break blocks out part of a working day. Recurring breaks carry a day of
// week; one-time breaks carry a specific date. Exactly one of the two is set.
type Break struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	StartTime      interval.TimeOfDay
	EndTime        interval.TimeOfDay
	Description    string
	IsRecurring    bool
	DayOfWeek      *time.Weekday
	SpecificDate   *time.Time
	CreatedAt      time.Time
}

// AppliesTo reports whether the break blocks time on the given date.
func (b Break) AppliesTo(date time.Time) bool {
	if b.IsRecurring {
		return b.DayOfWeek != nil && *b.DayOfWeek == date.Weekday()
	}
	return b.SpecificDate != nil && sameDate(*b.SpecificDate, date)
}

func (b Break) Span() interval.Span {
	return interval.NewSpan(b.StartTime, b.EndTime)
}

// DayOff removes an entire date from a practitioner's calendar, unique per
// (practitioner, date).
type DayOff struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	Date           time.Time
	Reason         *string
	CreatedAt      time.Time
}

// SchedulePeriod is the newer date-ranged template: working days, hours and
// an optional single break window, valid over [StartDate, EndDate]. Periods
// for the same practitioner may overlap; selection is deterministic (latest
// StartDate wins, then latest CreatedAt).
type SchedulePeriod struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	WorkingDays    []time.Weekday
	WorkStart      interval.TimeOfDay
	WorkEnd        interval.TimeOfDay
	BreakStart     *interval.TimeOfDay
	BreakEnd       *interval.TimeOfDay
	CreatedAt      time.Time
}

// Covers reports whether the period's date range includes the given date.
func (p SchedulePeriod) Covers(date time.Time) bool {
	return !dateBefore(date, p.StartDate) && !dateBefore(p.EndDate, date)
}

// WorksOn reports whether the period includes the given weekday.
func (p SchedulePeriod) WorksOn(day time.Weekday) bool {
	for _, d := range p.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// BreakSpan returns the period-level break window, if configured.
func (p SchedulePeriod) BreakSpan() (interval.Span, bool) {
	if p.BreakStart == nil || p.BreakEnd == nil {
		return interval.Span{}, false
	}
	return interval.NewSpan(*p.BreakStart, *p.BreakEnd), true
}

// DayWindow is the resolved working time for one practitioner on one date:
// the base window plus every break that applies.
type DayWindow struct {
	Window interval.Span
	Breaks []interval.Span
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
