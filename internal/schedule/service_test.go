package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

// echoRepo accepts every write and returns the input unchanged.
type echoRepo struct{}

func (echoRepo) WeeklyEntry(context.Context, uuid.UUID, time.Weekday) (*WeeklyEntry, error) {
	return nil, ErrWeeklyEntryNotFound
}

func (echoRepo) WeeklyEntries(context.Context, uuid.UUID) ([]WeeklyEntry, error) {
	return nil, nil
}

func (echoRepo) UpsertWeeklyEntry(_ context.Context, entry WeeklyEntry) (*WeeklyEntry, error) {
	return &entry, nil
}

func (echoRepo) BreaksForDate(context.Context, uuid.UUID, time.Time) ([]Break, error) {
	return nil, nil
}

func (echoRepo) AddBreak(_ context.Context, brk Break) (*Break, error) { return &brk, nil }
func (echoRepo) RemoveBreak(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (echoRepo) DayOff(context.Context, uuid.UUID, time.Time) (*DayOff, error) {
	return nil, ErrDayOffNotFound
}

func (echoRepo) AddDayOff(_ context.Context, d DayOff) (*DayOff, error) { return &d, nil }
func (echoRepo) RemoveDayOff(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (echoRepo) PeriodsFor(context.Context, uuid.UUID) ([]SchedulePeriod, error) {
	return nil, nil
}

func (echoRepo) CreatePeriod(_ context.Context, p SchedulePeriod) (*SchedulePeriod, error) {
	return &p, nil
}

func (echoRepo) UpdatePeriod(_ context.Context, p SchedulePeriod) (*SchedulePeriod, error) {
	return &p, nil
}

func (echoRepo) DeletePeriod(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func newTestService() *Service {
	return NewService(echoRepo{}, zerolog.Nop())
}

func TestSetWeeklyEntryValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SetWeeklyEntry(ctx, WeeklyEntry{
		DayOfWeek: time.Monday,
		StartTime: interval.MustClock("17:00"),
		EndTime:   interval.MustClock("09:00"),
		IsWorking: true,
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	// A non-working entry carries no meaningful times.
	saved, err := svc.SetWeeklyEntry(ctx, WeeklyEntry{DayOfWeek: time.Sunday, IsWorking: false})
	require.NoError(t, err)
	assert.False(t, saved.IsWorking)
}

func TestAddBreakValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	dow := time.Monday
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	base := Break{
		StartTime: interval.MustClock("12:00"),
		EndTime:   interval.MustClock("13:00"),
	}

	t.Run("inverted times", func(t *testing.T) {
		brk := base
		brk.StartTime, brk.EndTime = brk.EndTime, brk.StartTime
		brk.SpecificDate = &day
		_, err := svc.AddBreak(ctx, brk)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("recurring without day of week", func(t *testing.T) {
		brk := base
		brk.IsRecurring = true
		_, err := svc.AddBreak(ctx, brk)
		assert.ErrorIs(t, err, ErrInvalidBreakKind)
	})

	t.Run("one-time without date", func(t *testing.T) {
		_, err := svc.AddBreak(ctx, base)
		assert.ErrorIs(t, err, ErrInvalidBreakKind)
	})

	t.Run("both kinds at once", func(t *testing.T) {
		brk := base
		brk.IsRecurring = true
		brk.DayOfWeek = &dow
		brk.SpecificDate = &day
		_, err := svc.AddBreak(ctx, brk)
		assert.ErrorIs(t, err, ErrInvalidBreakKind)
	})

	t.Run("valid recurring", func(t *testing.T) {
		brk := base
		brk.IsRecurring = true
		brk.DayOfWeek = &dow
		_, err := svc.AddBreak(ctx, brk)
		assert.NoError(t, err)
	})

	t.Run("valid one-time", func(t *testing.T) {
		brk := base
		brk.SpecificDate = &day
		_, err := svc.AddBreak(ctx, brk)
		assert.NoError(t, err)
	})
}

func TestCreatePeriodValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	valid := SchedulePeriod{
		StartDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		WorkingDays: []time.Weekday{time.Monday},
		WorkStart:   interval.MustClock("09:00"),
		WorkEnd:     interval.MustClock("17:00"),
	}

	_, err := svc.CreatePeriod(ctx, valid)
	assert.NoError(t, err)

	t.Run("inverted dates", func(t *testing.T) {
		p := valid
		p.StartDate, p.EndDate = p.EndDate, p.StartDate
		_, err := svc.CreatePeriod(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("single day period is allowed", func(t *testing.T) {
		p := valid
		p.EndDate = p.StartDate
		_, err := svc.CreatePeriod(ctx, p)
		assert.NoError(t, err)
	})

	t.Run("inverted hours", func(t *testing.T) {
		p := valid
		p.WorkStart, p.WorkEnd = p.WorkEnd, p.WorkStart
		_, err := svc.CreatePeriod(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("no working days", func(t *testing.T) {
		p := valid
		p.WorkingDays = nil
		_, err := svc.CreatePeriod(ctx, p)
		assert.ErrorIs(t, err, ErrNoWorkingDays)
	})

	t.Run("half-configured break", func(t *testing.T) {
		p := valid
		start := interval.MustClock("12:00")
		p.BreakStart = &start
		_, err := svc.CreatePeriod(ctx, p)
		assert.Error(t, err)
	})

	t.Run("inverted break", func(t *testing.T) {
		p := valid
		start := interval.MustClock("13:00")
		end := interval.MustClock("12:00")
		p.BreakStart, p.BreakEnd = &start, &end
		_, err := svc.CreatePeriod(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}
