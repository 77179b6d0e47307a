package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/vetdesk/clinic-scheduling/internal/availability"
	"github.com/vetdesk/clinic-scheduling/internal/interval"
	redisclient "github.com/vetdesk/clinic-scheduling/internal/redis"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
)

// Actor selects the consistency policy for a booking attempt.
type Actor string

const (
	// ActorStaff books at the store's default isolation; the partial unique
	// index is the backstop. Favors throughput, double-booking is rare and
	// recoverable by a human.
	ActorStaff Actor = "STAFF"
	// ActorPortal books behind the practitioner lock at serializable
	// isolation. Exactly one concurrent request for a contested slot wins.
	ActorPortal Actor = "PORTAL"
)

var (
	ErrValidation          = errors.New("invalid booking request")
	ErrOutsideWorkingHours = errors.New("requested time is outside working hours")
	ErrInvalidTransition   = errors.New("invalid status transition")

	// ErrRetryExhausted surfaces after the bounded transient-retry budget
	// is spent. It is never silently converted into a conflict.
	ErrRetryExhausted = errors.New("booking could not complete, try again")
)

type BookingRequest struct {
	PractitionerID  uuid.UUID
	PetID           uuid.UUID
	Date            time.Time
	StartTime       interval.TimeOfDay
	DurationMinutes int
	VisitType       string
}

func (r BookingRequest) Validate() error {
	switch {
	case r.PractitionerID == uuid.Nil:
		return fmt.Errorf("%w: practitioner id is required", ErrValidation)
	case r.PetID == uuid.Nil:
		return fmt.Errorf("%w: pet id is required", ErrValidation)
	case r.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrValidation)
	case r.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidation)
	case !r.StartTime.Valid():
		return fmt.Errorf("%w: start time out of range", ErrValidation)
	case r.StartTime+interval.TimeOfDay(r.DurationMinutes) > interval.EndOfDay:
		return fmt.Errorf("%w: appointment must end within the day", ErrValidation)
	}
	return nil
}

func (r BookingRequest) span() interval.Span {
	return interval.NewSpan(r.StartTime, r.StartTime+interval.TimeOfDay(r.DurationMinutes))
}

// WindowResolver is the read-side schedule check shared with the
// availability generator.
type WindowResolver interface {
	WindowFor(ctx context.Context, practitionerID uuid.UUID, date time.Time) (*schedule.DayWindow, availability.Reason, error)
}

// Notifier receives successful bookings for downstream dispatch. Calls are
// fire-and-forget, outside the transaction.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt Appointment)
}

type Service struct {
	store      Store
	windows    WindowResolver
	locker     redisclient.Locker
	notifier   Notifier
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
}

func NewService(store Store, windows WindowResolver, locker redisclient.Locker, notifier Notifier, maxRetries int, backoff time.Duration, log zerolog.Logger) *Service {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Service{
		store:      store,
		windows:    windows,
		locker:     locker,
		notifier:   notifier,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        log.With().Str("component", "booking").Logger(),
	}
}

// Book turns a booking intent into a committed appointment or a typed error.
// Transient store failures are retried up to the bounded budget with
// backoff; conflicts are never retried.
func (s *Service) Book(ctx context.Context, req BookingRequest, actor Actor) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Availability output may be stale by now, so the working-window check
	// is repeated here before any transaction opens. Conflicts are
	// re-checked inside the transaction.
	if err := s.checkWorkingWindow(ctx, req); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}

		appt, err := s.attempt(ctx, req, actor)
		if err == nil {
			s.afterCommit(ctx, appt, actor)
			return appt, nil
		}
		if !errors.Is(err, ErrTransient) {
			return nil, err
		}

		lastErr = err
		s.log.Warn().Err(err).
			Int("attempt", attempt+1).
			Str("actor", string(actor)).
			Str("practitioner_id", req.PractitionerID.String()).
			Msg("transient booking failure, retrying")
	}

	return nil, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (s *Service) checkWorkingWindow(ctx context.Context, req BookingRequest) error {
	win, reason, err := s.windows.WindowFor(ctx, req.PractitionerID, req.Date)
	if err != nil {
		return fmt.Errorf("resolve working window: %w", err)
	}
	if win == nil {
		return fmt.Errorf("%w: %s", ErrOutsideWorkingHours, reason)
	}

	span := req.span()
	for _, open := range interval.Subtract(win.Window, win.Breaks) {
		if open.Contains(span) {
			return nil
		}
	}
	return ErrOutsideWorkingHours
}

func (s *Service) attempt(ctx context.Context, req BookingRequest, actor Actor) (*Appointment, error) {
	if actor == ActorPortal {
		return s.attemptPortal(ctx, req)
	}
	return s.attemptStaff(ctx, req)
}

// attemptStaff runs at the store's default isolation. The in-transaction
// re-check is not protected by a row lock, so two staff bookings can both
// pass it; the partial unique index settles the race at commit and the
// violation surfaces as ErrSlotTaken.
func (s *Service) attemptStaff(ctx context.Context, req BookingRequest) (*Appointment, error) {
	var created *Appointment
	err := s.store.InTx(ctx, pgx.ReadCommitted, func(tx TxSession) error {
		if err := tx.PractitionerExists(ctx, req.PractitionerID); err != nil {
			return err
		}
		appt, err := s.checkAndInsert(ctx, tx, req)
		if err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// attemptPortal serializes all portal bookings for one practitioner: the
// distributed practitioner lock queues requests across instances, and inside
// the serializable transaction the practitioner row lock anchors correctness
// before the slot re-check.
func (s *Service) attemptPortal(ctx context.Context, req BookingRequest) (*Appointment, error) {
	var created *Appointment
	err := s.locker.WithPractitionerLock(ctx, req.PractitionerID, func(lockCtx context.Context) error {
		return s.store.InTx(lockCtx, pgx.Serializable, func(tx TxSession) error {
			if err := tx.LockPractitioner(lockCtx, req.PractitionerID); err != nil {
				return err
			}
			appt, err := s.checkAndInsert(lockCtx, tx, req)
			if err != nil {
				return err
			}
			created = appt
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockWaitExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil, err
	}
	return created, nil
}

// checkAndInsert is the conflict predicate both paths share: no
// non-cancelled appointment may overlap the requested interval.
func (s *Service) checkAndInsert(ctx context.Context, tx TxSession, req BookingRequest) (*Appointment, error) {
	if err := tx.PetExists(ctx, req.PetID); err != nil {
		return nil, err
	}

	existing, err := tx.OverlappingAppointments(ctx, req.PractitionerID, req.Date, req.span())
	if err != nil {
		return nil, fmt.Errorf("check overlapping appointments: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrSlotTaken
	}

	appt := Appointment{
		ID:              uuid.New(),
		PractitionerID:  req.PractitionerID,
		PetID:           req.PetID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		VisitType:       req.VisitType,
		Status:          StatusScheduled,
		IsConfirmed:     false,
	}
	return tx.InsertAppointment(ctx, appt)
}

// afterCommit records the booking event and fires the notifier, both outside
// the transaction and best-effort.
func (s *Service) afterCommit(ctx context.Context, appt *Appointment, actor Actor) {
	bg := context.WithoutCancel(ctx)

	payload, err := json.Marshal(map[string]any{
		"practitioner_id": appt.PractitionerID.String(),
		"pet_id":          appt.PetID.String(),
		"date":            appt.Date.Format("2006-01-02"),
		"start_time":      appt.StartTime.String(),
		"actor":           string(actor),
	})
	if err != nil {
		s.log.Error().Err(err).Msg("marshal booking event payload")
	}

	id := appt.ID
	if err := s.store.InsertEvent(bg, Event{
		EventType:     EventAppointmentBooked,
		AppointmentID: &id,
		Payload:       payload,
	}); err != nil {
		s.log.Error().Err(err).Str("appointment_id", id.String()).Msg("record booking event")
	}

	if s.notifier != nil {
		go s.notifier.AppointmentBooked(bg, *appt)
	}
}

// Transition applies the status DAG to an appointment. Check-in forces the
// confirmation flag as a side effect.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	appt, err := s.store.AppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}

	confirm := to == StatusCheckIn
	updated, err := s.store.TransitionStatus(ctx, id, appt.Status, to, confirm)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Status moved between the read and the compare-and-set.
			return nil, fmt.Errorf("%w: appointment status changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("transition appointment: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{"from": string(appt.Status), "to": string(to)})
	if err := s.store.InsertEvent(context.WithoutCancel(ctx), Event{
		EventType:     EventStatusChanged,
		AppointmentID: &updated.ID,
		Payload:       payload,
	}); err != nil {
		s.log.Error().Err(err).Str("appointment_id", updated.ID.String()).Msg("record status event")
	}

	return updated, nil
}

// Get returns one appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.AppointmentByID(ctx, id)
}
