package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidBreakKind = errors.New("break must be recurring with a day of week or one-time with a specific date")
	ErrNoWorkingDays    = errors.New("schedule period needs at least one working day")
)

// Service is the thin admin pass-through for schedule data. It validates the
// entity invariants and delegates to the repository; it holds no state
// between calls, so admin changes are visible to the next availability read.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "schedule").Logger()}
}

func (s *Service) SetWeeklyEntry(ctx context.Context, entry WeeklyEntry) (*WeeklyEntry, error) {
	if entry.IsWorking && entry.EndTime <= entry.StartTime {
		return nil, ErrInvalidTimeRange
	}
	if entry.DayOfWeek < time.Sunday || entry.DayOfWeek > time.Saturday {
		return nil, fmt.Errorf("day of week %d out of range", entry.DayOfWeek)
	}

	saved, err := s.repo.UpsertWeeklyEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("upsert weekly entry: %w", err)
	}

	s.log.Info().
		Str("practitioner_id", entry.PractitionerID.String()).
		Int("day_of_week", int(entry.DayOfWeek)).
		Bool("is_working", entry.IsWorking).
		Msg("weekly schedule entry saved")
	return saved, nil
}

func (s *Service) WeeklyEntries(ctx context.Context, practitionerID uuid.UUID) ([]WeeklyEntry, error) {
	return s.repo.WeeklyEntries(ctx, practitionerID)
}

func (s *Service) AddBreak(ctx context.Context, brk Break) (*Break, error) {
	if brk.EndTime <= brk.StartTime {
		return nil, ErrInvalidTimeRange
	}
	// Exactly one of day-of-week / specific-date, matching the recurring flag.
	if brk.IsRecurring != (brk.DayOfWeek != nil) || brk.IsRecurring == (brk.SpecificDate != nil) {
		return nil, ErrInvalidBreakKind
	}

	saved, err := s.repo.AddBreak(ctx, brk)
	if err != nil {
		return nil, fmt.Errorf("add break: %w", err)
	}
	return saved, nil
}

func (s *Service) RemoveBreak(ctx context.Context, practitionerID, breakID uuid.UUID) error {
	return s.repo.RemoveBreak(ctx, practitionerID, breakID)
}

func (s *Service) AddDayOff(ctx context.Context, dayOff DayOff) (*DayOff, error) {
	if dayOff.Date.IsZero() {
		return nil, errors.New("day off date is required")
	}
	saved, err := s.repo.AddDayOff(ctx, dayOff)
	if err != nil {
		return nil, fmt.Errorf("add day off: %w", err)
	}
	return saved, nil
}

func (s *Service) RemoveDayOff(ctx context.Context, practitionerID, dayOffID uuid.UUID) error {
	return s.repo.RemoveDayOff(ctx, practitionerID, dayOffID)
}

func (s *Service) CreatePeriod(ctx context.Context, period SchedulePeriod) (*SchedulePeriod, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	saved, err := s.repo.CreatePeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("create schedule period: %w", err)
	}
	return saved, nil
}

func (s *Service) UpdatePeriod(ctx context.Context, period SchedulePeriod) (*SchedulePeriod, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	saved, err := s.repo.UpdatePeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("update schedule period: %w", err)
	}
	return saved, nil
}

func (s *Service) DeletePeriod(ctx context.Context, practitionerID, periodID uuid.UUID) error {
	return s.repo.DeletePeriod(ctx, practitionerID, periodID)
}

func validatePeriod(p SchedulePeriod) error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return errors.New("period start and end dates are required")
	}
	if dateBefore(p.EndDate, p.StartDate) {
		return ErrInvalidDateRange
	}
	if p.WorkEnd <= p.WorkStart {
		return ErrInvalidTimeRange
	}
	if len(p.WorkingDays) == 0 {
		return ErrNoWorkingDays
	}
	if (p.BreakStart == nil) != (p.BreakEnd == nil) {
		return errors.New("period break needs both start and end")
	}
	if p.BreakStart != nil && *p.BreakEnd <= *p.BreakStart {
		return ErrInvalidTimeRange
	}
	return nil
}
