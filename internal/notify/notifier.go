// Package notify is the boundary to the clinic's messaging collaborators
// (SMS/WhatsApp/email dispatch lives in a separate system). The engine only
// hands bookings over; delivery is fire-and-forget.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vetdesk/clinic-scheduling/internal/booking"
)

// LogNotifier records handed-over bookings in the log. It stands in for the
// real dispatch collaborator in environments without one configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) AppointmentBooked(ctx context.Context, appt booking.Appointment) {
	n.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("practitioner_id", appt.PractitionerID.String()).
		Str("pet_id", appt.PetID.String()).
		Str("date", appt.Date.Format("2006-01-02")).
		Str("start_time", appt.StartTime.String()).
		Msg("booking handed to notification dispatch")
}
