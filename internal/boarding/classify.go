// Package boarding derives checkout-urgency buckets for boarded pets from
// date math.
package boarding

import (
	"math"
	"time"
)

type Bucket string

const (
	BucketRed    Bucket = "RED"
	BucketYellow Bucket = "YELLOW"
	BucketGreen  Bucket = "GREEN"
)

// Classify buckets a stay by days remaining until the expected checkout:
// RED at one day or less, YELLOW at three or less, GREEN otherwise. Days
// remaining is the ceiling of the delta, clamped at zero.
func Classify(expectedCheckout, today time.Time) Bucket {
	days := int(math.Ceil(expectedCheckout.Sub(today).Hours() / 24))
	if days < 0 {
		days = 0
	}
	switch {
	case days <= 1:
		return BucketRed
	case days <= 3:
		return BucketYellow
	default:
		return BucketGreen
	}
}
