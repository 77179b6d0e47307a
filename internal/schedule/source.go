package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

var (
	// ErrSourceNotConfigured means the practitioner has no data in this
	// representation at all; the caller should try the next source.
	ErrSourceNotConfigured = errors.New("schedule source not configured for practitioner")
	ErrNotWorkingDay       = errors.New("practitioner does not work on this day")
	ErrNoActivePeriod      = errors.New("no schedule period covers this date")
)

// Source derives the working window for one schedule representation. The two
// representations (legacy weekly template, date-ranged periods) coexist and
// are queried independently; the availability generator composes them.
type Source interface {
	Name() string
	WindowFor(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*DayWindow, error)
}

// PeriodReader is the slice of the repository the period source needs.
type PeriodReader interface {
	PeriodsFor(ctx context.Context, practitionerID uuid.UUID) ([]SchedulePeriod, error)
	BreaksForDate(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Break, error)
}

// WeeklyReader is the slice of the repository the weekly source needs.
type WeeklyReader interface {
	WeeklyEntry(ctx context.Context, practitionerID uuid.UUID, day time.Weekday) (*WeeklyEntry, error)
	BreaksForDate(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Break, error)
}

// PeriodSource resolves windows from date-ranged schedule periods.
type PeriodSource struct {
	repo PeriodReader
}

func NewPeriodSource(repo PeriodReader) *PeriodSource {
	return &PeriodSource{repo: repo}
}

func (s *PeriodSource) Name() string { return "period" }

func (s *PeriodSource) WindowFor(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*DayWindow, error) {
	periods, err := s.repo.PeriodsFor(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("load schedule periods: %w", err)
	}
	if len(periods) == 0 {
		return nil, ErrSourceNotConfigured
	}

	// PeriodsFor orders newest first, so the first covering match is the
	// deterministic winner when periods overlap.
	var match *SchedulePeriod
	for i := range periods {
		p := periods[i]
		if p.Covers(date) && p.WorksOn(date.Weekday()) {
			match = &p
			break
		}
	}
	if match == nil {
		return nil, ErrNoActivePeriod
	}

	win := &DayWindow{Window: interval.NewSpan(match.WorkStart, match.WorkEnd)}
	if brk, ok := match.BreakSpan(); ok {
		win.Breaks = append(win.Breaks, brk)
	}

	adhoc, err := s.repo.BreaksForDate(ctx, practitionerID, date)
	if err != nil {
		return nil, fmt.Errorf("load breaks: %w", err)
	}
	for _, b := range adhoc {
		win.Breaks = append(win.Breaks, b.Span())
	}

	return win, nil
}

// WeeklySource resolves windows from the legacy weekly template.
type WeeklySource struct {
	repo WeeklyReader
}

func NewWeeklySource(repo WeeklyReader) *WeeklySource {
	return &WeeklySource{repo: repo}
}

func (s *WeeklySource) Name() string { return "weekly" }

func (s *WeeklySource) WindowFor(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*DayWindow, error) {
	entry, err := s.repo.WeeklyEntry(ctx, practitionerID, date.Weekday())
	if err != nil {
		if errors.Is(err, ErrWeeklyEntryNotFound) {
			return nil, ErrNotWorkingDay
		}
		return nil, fmt.Errorf("load weekly entry: %w", err)
	}
	if !entry.IsWorking {
		return nil, ErrNotWorkingDay
	}

	win := &DayWindow{Window: interval.NewSpan(entry.StartTime, entry.EndTime)}

	breaks, err := s.repo.BreaksForDate(ctx, practitionerID, date)
	if err != nil {
		return nil, fmt.Errorf("load breaks: %w", err)
	}
	for _, b := range breaks {
		win.Breaks = append(win.Breaks, b.Span())
	}

	return win, nil
}
