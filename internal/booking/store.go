package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

var (
	ErrPractitionerNotFound = errors.New("practitioner not found")
	ErrPetNotFound          = errors.New("pet not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")

	// ErrSlotTaken is the definitive conflict: a non-cancelled appointment
	// already occupies an overlapping interval. Never retried.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrTransient marks retryable store failures (serialization failure,
	// deadlock, lock timeout). Distinct from ErrSlotTaken.
	ErrTransient = errors.New("transient store error")
)

// TxSession is the slice of the store visible inside one booking transaction.
type TxSession interface {
	// LockPractitioner takes the exclusive practitioner row lock
	// (SELECT ... FOR UPDATE) used by the portal path.
	LockPractitioner(ctx context.Context, practitionerID uuid.UUID) error
	// PractitionerExists validates the practitioner without locking.
	PractitionerExists(ctx context.Context, practitionerID uuid.UUID) error
	PetExists(ctx context.Context, petID uuid.UUID) error
	// OverlappingAppointments is the shared conflict predicate: every
	// non-cancelled appointment for the practitioner and date whose
	// interval intersects span.
	OverlappingAppointments(ctx context.Context, practitionerID uuid.UUID, date time.Time, span interval.Span) ([]Appointment, error)
	InsertAppointment(ctx context.Context, appt Appointment) (*Appointment, error)
}

// Store is the persistence boundary of the conflict resolver. InTx runs fn
// inside a transaction at the given isolation level; commit-time unique
// violations surface as ErrSlotTaken and serialization failures as
// ErrTransient, so both paths share one conflict-handling code path whether
// uniqueness comes from a constraint or an explicit lock.
type Store interface {
	InTx(ctx context.Context, iso pgx.TxIsoLevel, fn func(tx TxSession) error) error

	AppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// TransitionStatus moves an appointment between statuses with a
	// compare-and-set on the expected current status. confirm additionally
	// forces is_confirmed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, confirm bool) (*Appointment, error)
	// BookedSpans feeds the availability generator's appointment
	// subtraction step.
	BookedSpans(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]interval.Span, error)
	InsertEvent(ctx context.Context, ev Event) error
}
