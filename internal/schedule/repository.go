package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWeeklyEntryNotFound = errors.New("weekly schedule entry not found")
	ErrBreakNotFound       = errors.New("break not found")
	ErrDayOffNotFound      = errors.New("day off not found")
	ErrPeriodNotFound      = errors.New("schedule period not found")
	ErrDayOffExists        = errors.New("day off already exists for this date")
)

// Repository contains all schedule reads and admin writes. Schedule data is
// owned by clinic-admin workflows; the engine reads it fresh on every call
// and never caches it.
type Repository interface {
	WeeklyEntry(ctx context.Context, practitionerID uuid.UUID, day time.Weekday) (*WeeklyEntry, error)
	WeeklyEntries(ctx context.Context, practitionerID uuid.UUID) ([]WeeklyEntry, error)
	UpsertWeeklyEntry(ctx context.Context, entry WeeklyEntry) (*WeeklyEntry, error)

	BreaksForDate(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Break, error)
	AddBreak(ctx context.Context, brk Break) (*Break, error)
	RemoveBreak(ctx context.Context, practitionerID, breakID uuid.UUID) error

	DayOff(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*DayOff, error)
	AddDayOff(ctx context.Context, dayOff DayOff) (*DayOff, error)
	RemoveDayOff(ctx context.Context, practitionerID, dayOffID uuid.UUID) error

	// PeriodsFor returns every period for the practitioner, newest first
	// (start_date desc, created_at desc) so the first covering match is the
	// deterministic tie-break winner.
	PeriodsFor(ctx context.Context, practitionerID uuid.UUID) ([]SchedulePeriod, error)
	CreatePeriod(ctx context.Context, period SchedulePeriod) (*SchedulePeriod, error)
	UpdatePeriod(ctx context.Context, period SchedulePeriod) (*SchedulePeriod, error)
	DeletePeriod(ctx context.Context, practitionerID, periodID uuid.UUID) error
}
