package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

type fakeScheduleReader struct {
	periods []SchedulePeriod
	weekly  map[time.Weekday]*WeeklyEntry
	breaks  []Break
}

func (f *fakeScheduleReader) PeriodsFor(_ context.Context, _ uuid.UUID) ([]SchedulePeriod, error) {
	return f.periods, nil
}

func (f *fakeScheduleReader) WeeklyEntry(_ context.Context, _ uuid.UUID, day time.Weekday) (*WeeklyEntry, error) {
	entry, ok := f.weekly[day]
	if !ok {
		return nil, ErrWeeklyEntryNotFound
	}
	return entry, nil
}

func (f *fakeScheduleReader) BreaksForDate(_ context.Context, _ uuid.UUID, date time.Time) ([]Break, error) {
	var out []Break
	for _, b := range f.breaks {
		if b.AppliesTo(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func period(start, end string, days []time.Weekday, workStart, workEnd string, createdAt time.Time) SchedulePeriod {
	return SchedulePeriod{
		ID:          uuid.New(),
		StartDate:   date(start),
		EndDate:     date(end),
		WorkingDays: days,
		WorkStart:   interval.MustClock(workStart),
		WorkEnd:     interval.MustClock(workEnd),
		CreatedAt:   createdAt,
	}
}

func TestPeriodSourceNotConfigured(t *testing.T) {
	src := NewPeriodSource(&fakeScheduleReader{})

	_, err := src.WindowFor(context.Background(), uuid.New(), date("2026-09-07"))
	assert.ErrorIs(t, err, ErrSourceNotConfigured)
}

func TestPeriodSourceNoActivePeriod(t *testing.T) {
	repo := &fakeScheduleReader{
		periods: []SchedulePeriod{
			period("2026-09-01", "2026-09-30", []time.Weekday{time.Monday}, "09:00", "17:00", time.Now()),
		},
	}
	src := NewPeriodSource(repo)

	// 2026-10-05 is outside the period's date range.
	_, err := src.WindowFor(context.Background(), uuid.New(), date("2026-10-05"))
	assert.ErrorIs(t, err, ErrNoActivePeriod)

	// 2026-09-08 is a Tuesday inside the range but not a working day.
	_, err = src.WindowFor(context.Background(), uuid.New(), date("2026-09-08"))
	assert.ErrorIs(t, err, ErrNoActivePeriod)
}

func TestPeriodSourceResolvesWindow(t *testing.T) {
	brkStart := interval.MustClock("12:00")
	brkEnd := interval.MustClock("13:00")
	p := period("2026-09-01", "2026-09-30", []time.Weekday{time.Monday, time.Tuesday}, "08:00", "16:00", time.Now())
	p.BreakStart = &brkStart
	p.BreakEnd = &brkEnd

	src := NewPeriodSource(&fakeScheduleReader{periods: []SchedulePeriod{p}})

	win, err := src.WindowFor(context.Background(), uuid.New(), date("2026-09-07")) // Monday
	require.NoError(t, err)
	assert.Equal(t, interval.NewSpan(interval.MustClock("08:00"), interval.MustClock("16:00")), win.Window)
	require.Len(t, win.Breaks, 1)
	assert.Equal(t, interval.NewSpan(brkStart, brkEnd), win.Breaks[0])
}

func TestPeriodSourceBoundaryDatesInclusive(t *testing.T) {
	// 2026-09-07 and 2026-09-11 are Monday and Friday.
	p := period("2026-09-07", "2026-09-11",
		[]time.Weekday{time.Monday, time.Friday}, "09:00", "17:00", time.Now())
	src := NewPeriodSource(&fakeScheduleReader{periods: []SchedulePeriod{p}})

	for _, d := range []string{"2026-09-07", "2026-09-11"} {
		win, err := src.WindowFor(context.Background(), uuid.New(), date(d))
		require.NoError(t, err, d)
		assert.NotNil(t, win)
	}
}

func TestPeriodSourceOverlapTieBreak(t *testing.T) {
	// Two periods cover the same Monday. The repository contract orders
	// newest first, so the later-starting period must win.
	days := []time.Weekday{time.Monday}
	newer := period("2026-09-07", "2026-09-30", days, "10:00", "14:00", time.Now())
	older := period("2026-09-01", "2026-09-30", days, "09:00", "17:00", time.Now().Add(-time.Hour))

	src := NewPeriodSource(&fakeScheduleReader{periods: []SchedulePeriod{newer, older}})

	win, err := src.WindowFor(context.Background(), uuid.New(), date("2026-09-14"))
	require.NoError(t, err)
	assert.Equal(t, interval.MustClock("10:00"), win.Window.Start)
	assert.Equal(t, interval.MustClock("14:00"), win.Window.End)
}

func TestPeriodSourceIncludesAdHocBreaks(t *testing.T) {
	monday := date("2026-09-07")
	dow := time.Monday
	p := period("2026-09-01", "2026-09-30", []time.Weekday{time.Monday}, "09:00", "17:00", time.Now())

	repo := &fakeScheduleReader{
		periods: []SchedulePeriod{p},
		breaks: []Break{
			{
				StartTime:    interval.MustClock("15:00"),
				EndTime:      interval.MustClock("15:30"),
				SpecificDate: &monday,
			},
			{
				StartTime:   interval.MustClock("08:00"),
				EndTime:     interval.MustClock("08:30"),
				IsRecurring: true,
				DayOfWeek:   &dow,
			},
		},
	}
	src := NewPeriodSource(repo)

	win, err := src.WindowFor(context.Background(), uuid.New(), monday)
	require.NoError(t, err)
	assert.Len(t, win.Breaks, 2)
}

func TestWeeklySourceNotWorkingDay(t *testing.T) {
	repo := &fakeScheduleReader{
		weekly: map[time.Weekday]*WeeklyEntry{
			time.Tuesday: {DayOfWeek: time.Tuesday, IsWorking: false},
		},
	}
	src := NewWeeklySource(repo)

	// No entry at all.
	_, err := src.WindowFor(context.Background(), uuid.New(), date("2026-09-07"))
	assert.ErrorIs(t, err, ErrNotWorkingDay)

	// Entry present but flagged not working.
	_, err = src.WindowFor(context.Background(), uuid.New(), date("2026-09-08"))
	assert.ErrorIs(t, err, ErrNotWorkingDay)
}

func TestWeeklySourceResolvesWindow(t *testing.T) {
	dow := time.Monday
	repo := &fakeScheduleReader{
		weekly: map[time.Weekday]*WeeklyEntry{
			time.Monday: {
				DayOfWeek: time.Monday,
				StartTime: interval.MustClock("09:00"),
				EndTime:   interval.MustClock("17:00"),
				IsWorking: true,
			},
		},
		breaks: []Break{
			{
				StartTime:   interval.MustClock("12:00"),
				EndTime:     interval.MustClock("13:00"),
				IsRecurring: true,
				DayOfWeek:   &dow,
			},
		},
	}
	src := NewWeeklySource(repo)

	win, err := src.WindowFor(context.Background(), uuid.New(), date("2026-09-07"))
	require.NoError(t, err)
	assert.Equal(t, interval.NewSpan(interval.MustClock("09:00"), interval.MustClock("17:00")), win.Window)
	require.Len(t, win.Breaks, 1)
}

func TestBreakAppliesTo(t *testing.T) {
	monday := date("2026-09-07")
	tuesday := date("2026-09-08")
	dow := time.Monday

	oneTime := Break{SpecificDate: &monday}
	assert.True(t, oneTime.AppliesTo(monday))
	assert.False(t, oneTime.AppliesTo(tuesday))

	recurring := Break{IsRecurring: true, DayOfWeek: &dow}
	assert.True(t, recurring.AppliesTo(monday))
	assert.False(t, recurring.AppliesTo(tuesday))
}
