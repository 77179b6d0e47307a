package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vetdesk/clinic-scheduling/internal/db"
	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

// slotUniqueConstraint is the partial unique index on
// (practitioner_id, date, start_time) WHERE status <> 'cancelled'. It is the
// backstop for the staff path's weaker isolation.
const slotUniqueConstraint = "appointments_slot_unique"

// dbPool is the slice of *pgxpool.Pool the store uses.
type dbPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgStore struct {
	pool dbPool
}

func NewPgStore(pool dbPool) *PgStore {
	return &PgStore{pool: pool}
}

func classifyStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, slotUniqueConstraint):
		return fmt.Errorf("%w: %v", ErrSlotTaken, err)
	case db.IsTransient(err):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	default:
		return err
	}
}

func (s *PgStore) InTx(ctx context.Context, iso pgx.TxIsoLevel, fn func(tx TxSession) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso})
	if err != nil {
		return classifyStoreErr(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTxSession{tx: tx}); err != nil {
		return classifyStoreErr(err)
	}
	return classifyStoreErr(tx.Commit(ctx))
}

type pgTxSession struct {
	tx pgx.Tx
}

func (s *pgTxSession) LockPractitioner(ctx context.Context, practitionerID uuid.UUID) error {
	var id uuid.UUID
	err := s.tx.QueryRow(ctx, `
		SELECT id FROM practitioners WHERE id = $1 FOR UPDATE
	`, practitionerID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPractitionerNotFound
	}
	return err
}

func (s *pgTxSession) PractitionerExists(ctx context.Context, practitionerID uuid.UUID) error {
	var id uuid.UUID
	err := s.tx.QueryRow(ctx, `
		SELECT id FROM practitioners WHERE id = $1
	`, practitionerID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPractitionerNotFound
	}
	return err
}

func (s *pgTxSession) PetExists(ctx context.Context, petID uuid.UUID) error {
	var id uuid.UUID
	err := s.tx.QueryRow(ctx, `
		SELECT id FROM pets WHERE id = $1
	`, petID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPetNotFound
	}
	return err
}

func (s *pgTxSession) OverlappingAppointments(ctx context.Context, practitionerID uuid.UUID, date time.Time, span interval.Span) ([]Appointment, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT id, practitioner_id, pet_id, date, start_time, duration_minutes, visit_type, status, is_confirmed, created_at, updated_at
		FROM appointments
		WHERE practitioner_id = $1
		  AND date = $2
		  AND status <> 'cancelled'
		  AND start_time < $4
		  AND (start_time + make_interval(mins => duration_minutes)) > $3
	`, practitionerID, date, toPGTime(span.Start), toPGTime(span.End))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (s *pgTxSession) InsertAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	row := s.tx.QueryRow(ctx, `
		INSERT INTO appointments (id, practitioner_id, pet_id, date, start_time, duration_minutes, visit_type, status, is_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id, practitioner_id, pet_id, date, start_time, duration_minutes, visit_type, status, is_confirmed, created_at, updated_at
	`, appt.ID, appt.PractitionerID, appt.PetID, appt.Date, toPGTime(appt.StartTime),
		appt.DurationMinutes, appt.VisitType, appt.Status, appt.IsConfirmed)
	return scanAppointment(row)
}

// Pool-scoped reads and writes

func (s *PgStore) AppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, practitioner_id, pet_id, date, start_time, duration_minutes, visit_type, status, is_confirmed, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (s *PgStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, confirm bool) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    is_confirmed = (is_confirmed OR $4),
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, practitioner_id, pet_id, date, start_time, duration_minutes, visit_type, status, is_confirmed, created_at, updated_at
	`, id, to, from, confirm)
	return scanAppointment(row)
}

func (s *PgStore) BookedSpans(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]interval.Span, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT start_time, duration_minutes
		FROM appointments
		WHERE practitioner_id = $1
		  AND date = $2
		  AND status <> 'cancelled'
		ORDER BY start_time
	`, practitionerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spans []interval.Span
	for rows.Next() {
		var start pgtype.Time
		var duration int
		if err := rows.Scan(&start, &duration); err != nil {
			return nil, err
		}
		s := fromPGTime(start)
		spans = append(spans, interval.NewSpan(s, s+interval.TimeOfDay(duration)))
	}
	return spans, rows.Err()
}

func (s *PgStore) InsertEvent(ctx context.Context, ev Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO booking_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, now())
	`, ev.EventType, ev.AppointmentID, ev.Payload)
	if err != nil {
		return fmt.Errorf("insert booking event: %w", err)
	}
	return nil
}

// Helpers

func toPGTime(t interval.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * 60 * 1_000_000, Valid: true}
}

func fromPGTime(t pgtype.Time) interval.TimeOfDay {
	return interval.TimeOfDay(t.Microseconds / 60_000_000)
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var start pgtype.Time

	err := row.Scan(&a.ID, &a.PractitionerID, &a.PetID, &a.Date, &start,
		&a.DurationMinutes, &a.VisitType, &a.Status, &a.IsConfirmed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.StartTime = fromPGTime(start)
	return &a, nil
}
