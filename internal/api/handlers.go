package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/availability"
	"github.com/vetdesk/clinic-scheduling/internal/boarding"
	"github.com/vetdesk/clinic-scheduling/internal/booking"
	"github.com/vetdesk/clinic-scheduling/internal/interval"
	"github.com/vetdesk/clinic-scheduling/internal/registry"
)

func availabilityHandler(gen *availability.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_practitioner_id", "id must be a valid UUID")
			return
		}

		date, err := parseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
		if err != nil || duration <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be a positive number of minutes")
			return
		}

		result, err := gen.Slots(r.Context(), practitionerID, date, duration)
		if err != nil {
			handleAvailabilityError(w, err)
			return
		}

		resp := AvailabilityResponse{
			PractitionerID:    practitionerID,
			Date:              date.Format(dateLayout),
			DurationMinutes:   duration,
			Slots:             make([]string, 0, len(result.Slots)),
			UnavailableReason: string(result.Reason),
		}
		for _, s := range result.Slots {
			resp.Slots = append(resp.Slots, s.String())
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func bookAppointmentHandler(svc *booking.Service, actor booking.Actor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		practitionerID, err := uuid.Parse(req.PractitionerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_practitioner_id", "practitioner_id must be a valid UUID")
			return
		}

		petID, err := uuid.Parse(req.PetID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_pet_id", "pet_id must be a valid UUID")
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		start, err := interval.ParseClock(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}

		appt, err := svc.Book(r.Context(), booking.BookingRequest{
			PractitionerID:  practitionerID,
			PetID:           petID,
			Date:            date,
			StartTime:       start,
			DurationMinutes: req.DurationMinutes,
			VisitType:       req.VisitType,
		}, actor)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func transitionAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Transition(r.Context(), id, booking.Status(req.Status))
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// Registry handlers

func createPractitionerHandler(svc *registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePractitionerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := svc.CreatePractitioner(r.Context(), req.Name, req.Specialty)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_practitioner", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, p)
	}
}

func createOwnerHandler(svc *registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		owner, err := svc.CreateOwner(r.Context(), req.Name, req.Email, req.Phone)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_owner", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toOwnerResponse(owner))
	}
}

func createPetHandler(svc *registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		ownerID, err := uuid.Parse(req.OwnerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_owner_id", "owner_id must be a valid UUID")
			return
		}

		pet, err := svc.CreatePet(r.Context(), ownerID, req.Name, req.Species, req.Breed)
		if err != nil {
			if errors.Is(err, registry.ErrOwnerNotFound) {
				writeError(w, http.StatusNotFound, "owner_not_found", err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_pet", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(pet))
	}
}

// Boarding

func boardingOccupancyHandler(svc *boarding.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stays, err := svc.Occupancy(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]StayResponse, 0, len(stays))
		for _, s := range stays {
			resp = append(resp, toStayResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Error mapping

func handleAvailabilityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidDuration), errors.Is(err, availability.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, booking.ErrPractitionerNotFound):
		writeError(w, http.StatusNotFound, "practitioner_not_found", err.Error())
	case errors.Is(err, booking.ErrPetNotFound):
		writeError(w, http.StatusNotFound, "pet_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrOutsideWorkingHours):
		writeError(w, http.StatusConflict, "outside_working_hours", err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		// Distinguished from generic failure so clients can re-fetch
		// availability and pick a different slot.
		writeError(w, http.StatusConflict, "slot_taken", "the requested slot is already booked")
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, booking.ErrRetryExhausted):
		writeError(w, http.StatusServiceUnavailable, "try_again", "the booking could not complete, retry the same request")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
