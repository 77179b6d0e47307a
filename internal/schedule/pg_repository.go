package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// TIME column helpers

func toPGTime(t interval.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * 60 * 1_000_000, Valid: true}
}

func toPGTimePtr(t *interval.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return toPGTime(*t)
}

func fromPGTime(t pgtype.Time) interval.TimeOfDay {
	return interval.TimeOfDay(t.Microseconds / 60_000_000)
}

func fromPGTimePtr(t pgtype.Time) *interval.TimeOfDay {
	if !t.Valid {
		return nil
	}
	v := fromPGTime(t)
	return &v
}

// Weekly entries

func scanWeeklyEntry(row pgx.Row) (*WeeklyEntry, error) {
	var e WeeklyEntry
	var day int16
	var start, end pgtype.Time

	err := row.Scan(&e.ID, &e.PractitionerID, &day, &start, &end, &e.IsWorking, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWeeklyEntryNotFound
		}
		return nil, err
	}

	e.DayOfWeek = time.Weekday(day)
	e.StartTime = fromPGTime(start)
	e.EndTime = fromPGTime(end)
	return &e, nil
}

func (r *PgRepository) WeeklyEntry(ctx context.Context, practitionerID uuid.UUID, day time.Weekday) (*WeeklyEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, practitioner_id, day_of_week, start_time, end_time, is_working, created_at, updated_at
		FROM weekly_schedule_entries
		WHERE practitioner_id = $1 AND day_of_week = $2
	`, practitionerID, int16(day))
	return scanWeeklyEntry(row)
}

func (r *PgRepository) WeeklyEntries(ctx context.Context, practitionerID uuid.UUID) ([]WeeklyEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, practitioner_id, day_of_week, start_time, end_time, is_working, created_at, updated_at
		FROM weekly_schedule_entries
		WHERE practitioner_id = $1
		ORDER BY day_of_week
	`, practitionerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WeeklyEntry
	for rows.Next() {
		e, err := scanWeeklyEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpsertWeeklyEntry(ctx context.Context, entry WeeklyEntry) (*WeeklyEntry, error) {
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO weekly_schedule_entries (id, practitioner_id, day_of_week, start_time, end_time, is_working, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (practitioner_id, day_of_week) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time   = EXCLUDED.end_time,
		    is_working = EXCLUDED.is_working,
		    updated_at = now()
		RETURNING id, practitioner_id, day_of_week, start_time, end_time, is_working, created_at, updated_at
	`, id, entry.PractitionerID, int16(entry.DayOfWeek), toPGTime(entry.StartTime), toPGTime(entry.EndTime), entry.IsWorking)
	return scanWeeklyEntry(row)
}

// Breaks

func scanBreak(row pgx.Row) (*Break, error) {
	var b Break
	var start, end pgtype.Time
	var day *int16

	err := row.Scan(&b.ID, &b.PractitionerID, &start, &end, &b.Description, &b.IsRecurring, &day, &b.SpecificDate, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBreakNotFound
		}
		return nil, err
	}

	b.StartTime = fromPGTime(start)
	b.EndTime = fromPGTime(end)
	if day != nil {
		d := time.Weekday(*day)
		b.DayOfWeek = &d
	}
	return &b, nil
}

func (r *PgRepository) BreaksForDate(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Break, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, practitioner_id, start_time, end_time, description, is_recurring, day_of_week, specific_date, created_at
		FROM schedule_breaks
		WHERE practitioner_id = $1
		  AND ((is_recurring AND day_of_week = $2) OR (NOT is_recurring AND specific_date = $3))
		ORDER BY start_time
	`, practitionerID, int16(date.Weekday()), date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Break
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func (r *PgRepository) AddBreak(ctx context.Context, brk Break) (*Break, error) {
	var day *int16
	if brk.DayOfWeek != nil {
		d := int16(*brk.DayOfWeek)
		day = &d
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO schedule_breaks (id, practitioner_id, start_time, end_time, description, is_recurring, day_of_week, specific_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING id, practitioner_id, start_time, end_time, description, is_recurring, day_of_week, specific_date, created_at
	`, uuid.New(), brk.PractitionerID, toPGTime(brk.StartTime), toPGTime(brk.EndTime), brk.Description, brk.IsRecurring, day, brk.SpecificDate)
	return scanBreak(row)
}

func (r *PgRepository) RemoveBreak(ctx context.Context, practitionerID, breakID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM schedule_breaks WHERE id = $1 AND practitioner_id = $2
	`, breakID, practitionerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBreakNotFound
	}
	return nil
}

// Days off

func scanDayOff(row pgx.Row) (*DayOff, error) {
	var d DayOff
	err := row.Scan(&d.ID, &d.PractitionerID, &d.Date, &d.Reason, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDayOffNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PgRepository) DayOff(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*DayOff, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, practitioner_id, date, reason, created_at
		FROM days_off
		WHERE practitioner_id = $1 AND date = $2
	`, practitionerID, date)
	return scanDayOff(row)
}

func (r *PgRepository) AddDayOff(ctx context.Context, dayOff DayOff) (*DayOff, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO days_off (id, practitioner_id, date, reason, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (practitioner_id, date) DO NOTHING
		RETURNING id, practitioner_id, date, reason, created_at
	`, uuid.New(), dayOff.PractitionerID, dayOff.Date, dayOff.Reason)

	d, err := scanDayOff(row)
	if errors.Is(err, ErrDayOffNotFound) {
		// ON CONFLICT DO NOTHING returns no row when the date is taken.
		return nil, ErrDayOffExists
	}
	return d, err
}

func (r *PgRepository) RemoveDayOff(ctx context.Context, practitionerID, dayOffID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM days_off WHERE id = $1 AND practitioner_id = $2
	`, dayOffID, practitionerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDayOffNotFound
	}
	return nil
}

// Schedule periods

func scanPeriod(row pgx.Row) (*SchedulePeriod, error) {
	var p SchedulePeriod
	var days []int16
	var workStart, workEnd, brkStart, brkEnd pgtype.Time

	err := row.Scan(&p.ID, &p.PractitionerID, &p.StartDate, &p.EndDate, &days, &workStart, &workEnd, &brkStart, &brkEnd, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}

	p.WorkingDays = make([]time.Weekday, 0, len(days))
	for _, d := range days {
		p.WorkingDays = append(p.WorkingDays, time.Weekday(d))
	}
	p.WorkStart = fromPGTime(workStart)
	p.WorkEnd = fromPGTime(workEnd)
	p.BreakStart = fromPGTimePtr(brkStart)
	p.BreakEnd = fromPGTimePtr(brkEnd)
	return &p, nil
}

func workingDaysParam(days []time.Weekday) []int16 {
	out := make([]int16, 0, len(days))
	for _, d := range days {
		out = append(out, int16(d))
	}
	return out
}

func (r *PgRepository) PeriodsFor(ctx context.Context, practitionerID uuid.UUID) ([]SchedulePeriod, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, practitioner_id, start_date, end_date, working_days, work_start, work_end, break_start, break_end, created_at
		FROM schedule_periods
		WHERE practitioner_id = $1
		ORDER BY start_date DESC, created_at DESC
	`, practitionerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SchedulePeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgRepository) CreatePeriod(ctx context.Context, period SchedulePeriod) (*SchedulePeriod, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO schedule_periods (id, practitioner_id, start_date, end_date, working_days, work_start, work_end, break_start, break_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING id, practitioner_id, start_date, end_date, working_days, work_start, work_end, break_start, break_end, created_at
	`, uuid.New(), period.PractitionerID, period.StartDate, period.EndDate,
		workingDaysParam(period.WorkingDays), toPGTime(period.WorkStart), toPGTime(period.WorkEnd),
		toPGTimePtr(period.BreakStart), toPGTimePtr(period.BreakEnd))
	return scanPeriod(row)
}

func (r *PgRepository) UpdatePeriod(ctx context.Context, period SchedulePeriod) (*SchedulePeriod, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE schedule_periods
		SET start_date = $3,
		    end_date = $4,
		    working_days = $5,
		    work_start = $6,
		    work_end = $7,
		    break_start = $8,
		    break_end = $9
		WHERE id = $1 AND practitioner_id = $2
		RETURNING id, practitioner_id, start_date, end_date, working_days, work_start, work_end, break_start, break_end, created_at
	`, period.ID, period.PractitionerID, period.StartDate, period.EndDate,
		workingDaysParam(period.WorkingDays), toPGTime(period.WorkStart), toPGTime(period.WorkEnd),
		toPGTimePtr(period.BreakStart), toPGTimePtr(period.BreakEnd))
	return scanPeriod(row)
}

func (r *PgRepository) DeletePeriod(ctx context.Context, practitionerID, periodID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM schedule_periods WHERE id = $1 AND practitioner_id = $2
	`, periodID, practitionerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}
