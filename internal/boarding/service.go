package boarding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service refreshes occupancy buckets for active stays. Intended to be
// called periodically by the boarding worker and on demand by the API.
type Service struct {
	repo Repository
	now  func() time.Time
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("component", "boarding").Logger(),
	}
}

// Occupancy returns active stays with buckets computed against today,
// regardless of what is persisted.
func (s *Service) Occupancy(ctx context.Context) ([]Stay, error) {
	stays, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active stays: %w", err)
	}
	today := s.now()
	for i := range stays {
		stays[i].Bucket = Classify(stays[i].ExpectedCheckout, today)
	}
	return stays, nil
}

// RefreshBuckets persists the current bucket for every active stay whose
// classification has drifted since the last run.
func (s *Service) RefreshBuckets(ctx context.Context) error {
	stays, err := s.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active stays: %w", err)
	}

	today := s.now()
	changed := 0
	counts := map[Bucket]int{}

	for _, stay := range stays {
		bucket := Classify(stay.ExpectedCheckout, today)
		counts[bucket]++
		if bucket == stay.Bucket {
			continue
		}
		if err := s.repo.UpdateBucket(ctx, stay.ID, bucket); err != nil {
			s.log.Error().Err(err).Str("stay_id", stay.ID.String()).Msg("update occupancy bucket")
			continue
		}
		changed++
	}

	s.log.Info().
		Int("active", len(stays)).
		Int("changed", changed).
		Int("red", counts[BucketRed]).
		Int("yellow", counts[BucketYellow]).
		Int("green", counts[BucketGreen]).
		Msg("occupancy buckets refreshed")
	return nil
}
