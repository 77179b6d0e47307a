package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusCheckIn    Status = "check_in"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the appointment status DAG. Any non-terminal status may
// also move to cancelled.
var transitions = map[Status]Status{
	StatusScheduled:  StatusCheckIn,
	StatusCheckIn:    StatusInProgress,
	StatusInProgress: StatusCompleted,
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the DAG allows moving from one status to
// another.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return !from.Terminal()
	}
	return transitions[from] == to
}

// Active reports whether the status still occupies its slot. Cancelled
// appointments free the slot; everything else holds it.
func (s Status) Active() bool {
	return s != StatusCancelled
}

type Appointment struct {
	ID              uuid.UUID
	PractitionerID  uuid.UUID
	PetID           uuid.UUID
	Date            time.Time
	StartTime       interval.TimeOfDay
	DurationMinutes int
	VisitType       string
	Status          Status
	IsConfirmed     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Span is the appointment's occupied interval, [start, start+duration).
func (a Appointment) Span() interval.Span {
	return interval.NewSpan(a.StartTime, a.StartTime+interval.TimeOfDay(a.DurationMinutes))
}

// Event records a booking-engine occurrence for downstream audit consumers.
type Event struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

const (
	EventAppointmentBooked = "APPOINTMENT_BOOKED"
	EventStatusChanged     = "APPOINTMENT_STATUS_CHANGED"
)
