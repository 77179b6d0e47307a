package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusScheduled, StatusCheckIn, true},
		{StatusCheckIn, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},

		// Skipping a step is not allowed.
		{StatusScheduled, StatusInProgress, false},
		{StatusScheduled, StatusCompleted, false},
		{StatusCheckIn, StatusCompleted, false},

		// No moving backwards.
		{StatusCheckIn, StatusScheduled, false},
		{StatusCompleted, StatusInProgress, false},

		// Any non-terminal status may cancel.
		{StatusScheduled, StatusCancelled, true},
		{StatusCheckIn, StatusCancelled, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},

		// Terminal statuses are dead ends.
		{StatusCancelled, StatusScheduled, false},
		{StatusCompleted, StatusCheckIn, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusScheduled.Terminal())
	assert.False(t, StatusCheckIn.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

func TestStatusActive(t *testing.T) {
	// Only cancellation frees the slot; a completed appointment still
	// occupied its interval.
	assert.False(t, StatusCancelled.Active())
	assert.True(t, StatusScheduled.Active())
	assert.True(t, StatusCompleted.Active())
}

func TestAppointmentSpan(t *testing.T) {
	a := Appointment{StartTime: interval.MustClock("10:00"), DurationMinutes: 45}
	assert.Equal(t, interval.NewSpan(interval.MustClock("10:00"), interval.MustClock("10:45")), a.Span())
}
