package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+30), got)
	assert.Equal(t, "09:30", got.String())

	_, err = ParseClock("25:00")
	assert.Error(t, err)

	_, err = ParseClock("nonsense")
	assert.Error(t, err)
}

func TestSpanOverlaps(t *testing.T) {
	a := NewSpan(MustClock("09:00"), MustClock("10:00"))

	assert.True(t, a.Overlaps(NewSpan(MustClock("09:30"), MustClock("11:00"))))
	assert.True(t, a.Overlaps(NewSpan(MustClock("08:00"), MustClock("09:01"))))
	// Touching half-open ends do not overlap.
	assert.False(t, a.Overlaps(NewSpan(MustClock("10:00"), MustClock("11:00"))))
	assert.False(t, a.Overlaps(NewSpan(MustClock("08:00"), MustClock("09:00"))))
}

func TestSubtract(t *testing.T) {
	work := NewSpan(MustClock("09:00"), MustClock("17:00"))

	t.Run("single break splits the window", func(t *testing.T) {
		open := Subtract(work, []Span{{MustClock("12:00"), MustClock("13:00")}})
		require.Len(t, open, 2)
		assert.Equal(t, NewSpan(MustClock("09:00"), MustClock("12:00")), open[0])
		assert.Equal(t, NewSpan(MustClock("13:00"), MustClock("17:00")), open[1])
	})

	t.Run("busy outside the window is ignored", func(t *testing.T) {
		open := Subtract(work, []Span{{MustClock("07:00"), MustClock("08:00")}})
		require.Len(t, open, 1)
		assert.Equal(t, work, open[0])
	})

	t.Run("busy covering the window empties it", func(t *testing.T) {
		open := Subtract(work, []Span{{MustClock("08:00"), MustClock("18:00")}})
		assert.Empty(t, open)
	})

	t.Run("unsorted overlapping busy spans", func(t *testing.T) {
		open := Subtract(work, []Span{
			{MustClock("14:00"), MustClock("15:00")},
			{MustClock("10:00"), MustClock("11:00")},
			{MustClock("10:30"), MustClock("11:30")},
		})
		require.Len(t, open, 3)
		assert.Equal(t, NewSpan(MustClock("09:00"), MustClock("10:00")), open[0])
		assert.Equal(t, NewSpan(MustClock("11:30"), MustClock("14:00")), open[1])
		assert.Equal(t, NewSpan(MustClock("15:00"), MustClock("17:00")), open[2])
	})

	t.Run("busy clipped at window edges", func(t *testing.T) {
		open := Subtract(work, []Span{{MustClock("08:00"), MustClock("09:30")}})
		require.Len(t, open, 1)
		assert.Equal(t, NewSpan(MustClock("09:30"), MustClock("17:00")), open[0])
	})
}
