package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
)

type fakeDaysOff struct {
	dates map[string]bool
}

func (f *fakeDaysOff) DayOff(_ context.Context, _ uuid.UUID, date time.Time) (*schedule.DayOff, error) {
	if f.dates[date.Format("2006-01-02")] {
		return &schedule.DayOff{Date: date}, nil
	}
	return nil, schedule.ErrDayOffNotFound
}

type fakeBooked struct {
	spans []interval.Span
}

func (f *fakeBooked) BookedSpans(_ context.Context, _ uuid.UUID, _ time.Time) ([]interval.Span, error) {
	return f.spans, nil
}

// fakeSource returns a fixed window or error regardless of practitioner/date.
type fakeSource struct {
	name string
	win  *schedule.DayWindow
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) WindowFor(context.Context, uuid.UUID, time.Time) (*schedule.DayWindow, error) {
	return f.win, f.err
}

func span(start, end string) interval.Span {
	return interval.NewSpan(interval.MustClock(start), interval.MustClock(end))
}

func clocks(t *testing.T, slots []interval.TimeOfDay) []string {
	t.Helper()
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

var anyDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func TestSlotsStandardDay(t *testing.T) {
	// 09:00-17:00 with a 12:00-13:00 lunch break and one 30-minute
	// appointment at 10:00: the slot before and after the appointment both
	// survive, nothing inside the break or straddling a boundary appears.
	src := &fakeSource{
		name: "weekly",
		win: &schedule.DayWindow{
			Window: span("09:00", "17:00"),
			Breaks: []interval.Span{span("12:00", "13:00")},
		},
	}
	gen := NewGenerator(&fakeDaysOff{}, &fakeBooked{spans: []interval.Span{span("10:00", "10:30")}}, 0, src)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, []string{
		"09:00", "09:30", "10:30", "11:00", "11:30",
		"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	}, clocks(t, res.Slots))
}

func TestSlotsDurationLongerThanGap(t *testing.T) {
	// A 60-minute visit cannot fit in the 30-minute gap left between two
	// bookings even though the gap is free.
	src := &fakeSource{win: &schedule.DayWindow{Window: span("09:00", "11:00")}}
	booked := &fakeBooked{spans: []interval.Span{
		span("09:00", "09:30"),
		span("10:00", "11:00"),
	}}
	gen := NewGenerator(&fakeDaysOff{}, booked, 0, src)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 60)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, ReasonFullyBooked, res.Reason)
}

func TestSlotsCustomStep(t *testing.T) {
	src := &fakeSource{win: &schedule.DayWindow{Window: span("09:00", "10:00")}}
	gen := NewGenerator(&fakeDaysOff{}, &fakeBooked{}, 15, src)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	// 15-minute step, 30-minute duration: last start is 09:30.
	assert.Equal(t, []string{"09:00", "09:15", "09:30"}, clocks(t, res.Slots))
}

func TestSlotsDayOffWinsOverSchedule(t *testing.T) {
	src := &fakeSource{win: &schedule.DayWindow{Window: span("09:00", "17:00")}}
	daysOff := &fakeDaysOff{dates: map[string]bool{"2026-09-07": true}}
	gen := NewGenerator(daysOff, &fakeBooked{}, 0, src)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, ReasonDayOff, res.Reason)
}

func TestSlotsPeriodManagedDoesNotFallBack(t *testing.T) {
	// The practitioner has periods, just none covering this date. The weekly
	// source would produce a window, but must not be consulted.
	periodSrc := &fakeSource{name: "period", err: schedule.ErrNoActivePeriod}
	weeklySrc := &fakeSource{name: "weekly", win: &schedule.DayWindow{Window: span("09:00", "17:00")}}
	gen := NewGenerator(&fakeDaysOff{}, &fakeBooked{}, 0, periodSrc, weeklySrc)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, ReasonNoActivePeriod, res.Reason)
}

func TestSlotsFallsBackWhenSourceNotConfigured(t *testing.T) {
	periodSrc := &fakeSource{name: "period", err: schedule.ErrSourceNotConfigured}
	weeklySrc := &fakeSource{name: "weekly", win: &schedule.DayWindow{Window: span("09:00", "10:00")}}
	gen := NewGenerator(&fakeDaysOff{}, &fakeBooked{}, 0, periodSrc, weeklySrc)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, clocks(t, res.Slots))
}

func TestSlotsNoSourceConfigured(t *testing.T) {
	periodSrc := &fakeSource{name: "period", err: schedule.ErrSourceNotConfigured}
	weeklySrc := &fakeSource{name: "weekly", err: schedule.ErrSourceNotConfigured}
	gen := NewGenerator(&fakeDaysOff{}, &fakeBooked{}, 0, periodSrc, weeklySrc)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, ReasonNotWorkingDay, res.Reason)
}

func TestSlotsNotWorkingDay(t *testing.T) {
	src := &fakeSource{name: "weekly", err: schedule.ErrNotWorkingDay}
	gen := NewGenerator(&fakeDaysOff{}, &fakeBooked{}, 0, src)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotWorkingDay, res.Reason)
}

func TestSlotsFullyBooked(t *testing.T) {
	src := &fakeSource{win: &schedule.DayWindow{Window: span("09:00", "10:00")}}
	booked := &fakeBooked{spans: []interval.Span{span("09:00", "10:00")}}
	gen := NewGenerator(&fakeDaysOff{}, booked, 0, src)

	res, err := gen.Slots(context.Background(), uuid.New(), anyDate, 30)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, ReasonFullyBooked, res.Reason)
}

func TestSlotsInvalidInput(t *testing.T) {
	gen := NewGenerator(&fakeDaysOff{}, &fakeBooked{}, 0)

	_, err := gen.Slots(context.Background(), uuid.New(), anyDate, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = gen.Slots(context.Background(), uuid.New(), anyDate, -15)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = gen.Slots(context.Background(), uuid.New(), time.Time{}, 30)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
