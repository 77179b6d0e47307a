package boarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStayNotFound = errors.New("boarding stay not found")

// Stay is an active boarding admission with an expected checkout date.
type Stay struct {
	ID               uuid.UUID
	PetID            uuid.UUID
	KennelName       string
	CheckInDate      time.Time
	ExpectedCheckout time.Time
	Bucket           Bucket
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Repository interface {
	ListActive(ctx context.Context) ([]Stay, error)
	UpdateBucket(ctx context.Context, id uuid.UUID, bucket Bucket) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanStay(row pgx.Row) (*Stay, error) {
	var s Stay
	err := row.Scan(&s.ID, &s.PetID, &s.KennelName, &s.CheckInDate, &s.ExpectedCheckout, &s.Bucket, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStayNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PgRepository) ListActive(ctx context.Context) ([]Stay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, pet_id, kennel_name, check_in_date, expected_checkout, bucket, created_at, updated_at
		FROM boarding_stays
		WHERE checked_out_at IS NULL
		ORDER BY expected_checkout
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Stay
	for rows.Next() {
		s, err := scanStay(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpdateBucket(ctx context.Context, id uuid.UUID, bucket Bucket) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE boarding_stays
		SET bucket = $2, updated_at = now()
		WHERE id = $1
	`, id, bucket)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStayNotFound
	}
	return nil
}
