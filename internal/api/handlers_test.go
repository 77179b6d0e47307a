package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-scheduling/internal/availability"
	"github.com/vetdesk/clinic-scheduling/internal/booking"
	"github.com/vetdesk/clinic-scheduling/internal/interval"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
)

type noDaysOff struct{}

func (noDaysOff) DayOff(context.Context, uuid.UUID, time.Time) (*schedule.DayOff, error) {
	return nil, schedule.ErrDayOffNotFound
}

type noBookings struct{}

func (noBookings) BookedSpans(context.Context, uuid.UUID, time.Time) ([]interval.Span, error) {
	return nil, nil
}

type staticSource struct {
	win *schedule.DayWindow
	err error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) WindowFor(context.Context, uuid.UUID, time.Time) (*schedule.DayWindow, error) {
	return s.win, s.err
}

func availabilityRouter(src schedule.Source) http.Handler {
	gen := availability.NewGenerator(noDaysOff{}, noBookings{}, 0, src)
	r := chi.NewRouter()
	r.Get("/practitioners/{id}/availability", availabilityHandler(gen))
	return r
}

func TestAvailabilityHandler(t *testing.T) {
	src := staticSource{win: &schedule.DayWindow{
		Window: interval.NewSpan(interval.MustClock("09:00"), interval.MustClock("10:30")),
	}}
	router := availabilityRouter(src)

	url := fmt.Sprintf("/practitioners/%s/availability?date=2026-09-07&duration=30", uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, resp.Slots)
	assert.Empty(t, resp.UnavailableReason)
	assert.Equal(t, "2026-09-07", resp.Date)
	assert.Equal(t, 30, resp.DurationMinutes)
}

func TestAvailabilityHandlerUnavailableReason(t *testing.T) {
	router := availabilityRouter(staticSource{err: schedule.ErrNotWorkingDay})

	url := fmt.Sprintf("/practitioners/%s/availability?date=2026-09-07&duration=30", uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Slots)
	assert.Equal(t, string(availability.ReasonNotWorkingDay), resp.UnavailableReason)
}

func TestAvailabilityHandlerBadInput(t *testing.T) {
	router := availabilityRouter(staticSource{err: schedule.ErrNotWorkingDay})
	practID := uuid.New()

	cases := []struct {
		name string
		url  string
	}{
		{"bad uuid", "/practitioners/not-a-uuid/availability?date=2026-09-07&duration=30"},
		{"missing date", fmt.Sprintf("/practitioners/%s/availability?duration=30", practID)},
		{"bad date", fmt.Sprintf("/practitioners/%s/availability?date=07-09-2026&duration=30", practID)},
		{"missing duration", fmt.Sprintf("/practitioners/%s/availability?date=2026-09-07", practID)},
		{"zero duration", fmt.Sprintf("/practitioners/%s/availability?date=2026-09-07&duration=0", practID)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tc.url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleBookingErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{booking.ErrValidation, http.StatusBadRequest, "invalid_request"},
		{booking.ErrPractitionerNotFound, http.StatusNotFound, "practitioner_not_found"},
		{booking.ErrPetNotFound, http.StatusNotFound, "pet_not_found"},
		{booking.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{booking.ErrOutsideWorkingHours, http.StatusConflict, "outside_working_hours"},
		{booking.ErrSlotTaken, http.StatusConflict, "slot_taken"},
		{booking.ErrInvalidTransition, http.StatusConflict, "invalid_status_transition"},
		{booking.ErrRetryExhausted, http.StatusServiceUnavailable, "try_again"},
		{fmt.Errorf("wrapped: %w", booking.ErrSlotTaken), http.StatusConflict, "slot_taken"},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.wantCode, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleBookingError(rec, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Error)
		})
	}
}
