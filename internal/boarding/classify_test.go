package boarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	today := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	cases := []struct {
		name     string
		checkout time.Time
		want     Bucket
	}{
		{"checkout today", day(0), BucketRed},
		{"checkout tomorrow", day(1), BucketRed},
		{"overdue checkout clamps to red", day(-5), BucketRed},
		{"two days out", day(2), BucketYellow},
		{"three days out", day(3), BucketYellow},
		{"four days out", day(4), BucketGreen},
		{"far future", day(30), BucketGreen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.checkout, today))
		})
	}
}

func TestClassifyPartialDaysRoundUp(t *testing.T) {
	today := time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)

	// 30 hours away rounds up to two days: yellow, not red.
	assert.Equal(t, BucketYellow, Classify(today.Add(30*time.Hour), today))

	// One hour away is still within a day: red.
	assert.Equal(t, BucketRed, Classify(today.Add(time.Hour), today))
}
