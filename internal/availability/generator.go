// Package availability derives bookable start times for a practitioner and
// date from schedule templates, breaks, days off and committed appointments.
// It is a pure read path: no locks are taken and results may be stale by the
// time a booking is attempted, so the booking path re-validates.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
)

// Reason explains an empty slot list. An empty list always carries a reason.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNotWorkingDay  Reason = "NOT_WORKING_DAY"
	ReasonDayOff         Reason = "DAY_OFF"
	ReasonNoActivePeriod Reason = "NO_ACTIVE_PERIOD"
	ReasonFullyBooked    Reason = "FULLY_BOOKED"
)

var (
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrInvalidDate     = errors.New("date is required")
)

// DayOffReader is the slice of the schedule repository the generator needs
// for the day-off short-circuit.
type DayOffReader interface {
	DayOff(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*schedule.DayOff, error)
}

// BookedReader reports committed, non-cancelled appointment spans for a
// practitioner and date.
type BookedReader interface {
	BookedSpans(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]interval.Span, error)
}

type Result struct {
	Slots  []interval.TimeOfDay
	Reason Reason
}

type Generator struct {
	daysOff DayOffReader
	sources []schedule.Source
	booked  BookedReader
	// stepMinutes overrides the candidate step; 0 means step by the
	// requested duration.
	stepMinutes int
}

// NewGenerator builds a generator that consults sources in order. The first
// source with data for the practitioner decides; later sources are only
// consulted when an earlier one is not configured at all.
func NewGenerator(daysOff DayOffReader, booked BookedReader, stepMinutes int, sources ...schedule.Source) *Generator {
	return &Generator{
		daysOff:     daysOff,
		sources:     sources,
		booked:      booked,
		stepMinutes: stepMinutes,
	}
}

// WindowFor resolves the working window for the date, applying the day-off
// short-circuit and the source fallback order. A nil window comes with the
// reason no slots exist.
func (g *Generator) WindowFor(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*schedule.DayWindow, Reason, error) {
	// A day off wins over any working-hours configuration.
	if _, err := g.daysOff.DayOff(ctx, practitionerID, date); err == nil {
		return nil, ReasonDayOff, nil
	} else if !errors.Is(err, schedule.ErrDayOffNotFound) {
		return nil, ReasonNone, fmt.Errorf("check day off: %w", err)
	}

	reason := ReasonNotWorkingDay
	for _, src := range g.sources {
		win, err := src.WindowFor(ctx, practitionerID, date)
		switch {
		case err == nil:
			return win, ReasonNone, nil
		case errors.Is(err, schedule.ErrSourceNotConfigured):
			// Practitioner is not on this representation; try the next.
			continue
		case errors.Is(err, schedule.ErrNoActivePeriod):
			// Period-managed practitioners do not fall back to the
			// weekly template.
			return nil, ReasonNoActivePeriod, nil
		case errors.Is(err, schedule.ErrNotWorkingDay):
			return nil, ReasonNotWorkingDay, nil
		default:
			return nil, ReasonNone, err
		}
	}
	return nil, reason, nil
}

// Slots returns the ordered bookable start times for the practitioner, date
// and duration, or the reason none exist.
func (g *Generator) Slots(ctx context.Context, practitionerID uuid.UUID, date time.Time, durationMinutes int) (*Result, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if date.IsZero() {
		return nil, ErrInvalidDate
	}

	win, reason, err := g.WindowFor(ctx, practitionerID, date)
	if err != nil {
		return nil, err
	}
	if win == nil {
		return &Result{Reason: reason}, nil
	}

	open := interval.Subtract(win.Window, win.Breaks)

	booked, err := g.booked.BookedSpans(ctx, practitionerID, date)
	if err != nil {
		return nil, fmt.Errorf("load booked spans: %w", err)
	}

	step := g.stepMinutes
	if step <= 0 {
		step = durationMinutes
	}

	var slots []interval.TimeOfDay
	for _, span := range open {
		for _, sub := range interval.Subtract(span, booked) {
			for start := sub.Start; start+interval.TimeOfDay(durationMinutes) <= sub.End; start += interval.TimeOfDay(step) {
				slots = append(slots, start)
			}
		}
	}

	if len(slots) == 0 {
		return &Result{Reason: ReasonFullyBooked}, nil
	}
	return &Result{Slots: slots}, nil
}
