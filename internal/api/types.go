package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/boarding"
	"github.com/vetdesk/clinic-scheduling/internal/booking"
	"github.com/vetdesk/clinic-scheduling/internal/registry"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
)

const dateLayout = "2006-01-02"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Availability

type AvailabilityResponse struct {
	PractitionerID    uuid.UUID `json:"practitioner_id"`
	Date              string    `json:"date"`
	DurationMinutes   int       `json:"duration_minutes"`
	Slots             []string  `json:"slots"`
	UnavailableReason string    `json:"unavailable_reason,omitempty"`
}

// Booking

type BookAppointmentRequest struct {
	PractitionerID  string `json:"practitioner_id"`
	PetID           string `json:"pet_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	VisitType       string `json:"visit_type"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PractitionerID  uuid.UUID `json:"practitioner_id"`
	PetID           uuid.UUID `json:"pet_id"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"duration_minutes"`
	VisitType       string    `json:"visit_type,omitempty"`
	Status          string    `json:"status"`
	IsConfirmed     bool      `json:"is_confirmed"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PractitionerID:  a.PractitionerID,
		PetID:           a.PetID,
		Date:            a.Date.Format(dateLayout),
		Time:            a.StartTime.String(),
		DurationMinutes: a.DurationMinutes,
		VisitType:       a.VisitType,
		Status:          string(a.Status),
		IsConfirmed:     a.IsConfirmed,
	}
}

type TransitionRequest struct {
	Status string `json:"status"`
}

// Schedule administration

type WeeklyEntryRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsWorking bool   `json:"is_working"`
}

type WeeklyEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsWorking bool      `json:"is_working"`
}

func toWeeklyEntryResponse(e *schedule.WeeklyEntry) WeeklyEntryResponse {
	return WeeklyEntryResponse{
		ID:        e.ID,
		DayOfWeek: int(e.DayOfWeek),
		StartTime: e.StartTime.String(),
		EndTime:   e.EndTime.String(),
		IsWorking: e.IsWorking,
	}
}

type BreakRequest struct {
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Description string  `json:"description"`
	IsRecurring bool    `json:"is_recurring"`
	DayOfWeek   *int    `json:"day_of_week,omitempty"`
	Date        *string `json:"date,omitempty"`
}

type DayOffRequest struct {
	Date   string  `json:"date"`
	Reason *string `json:"reason,omitempty"`
}

type PeriodRequest struct {
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	WorkingDays []int   `json:"working_days"`
	WorkStart   string  `json:"work_start"`
	WorkEnd     string  `json:"work_end"`
	BreakStart  *string `json:"break_start,omitempty"`
	BreakEnd    *string `json:"break_end,omitempty"`
}

type PeriodResponse struct {
	ID          uuid.UUID `json:"id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	WorkingDays []int     `json:"working_days"`
	WorkStart   string    `json:"work_start"`
	WorkEnd     string    `json:"work_end"`
	BreakStart  *string   `json:"break_start,omitempty"`
	BreakEnd    *string   `json:"break_end,omitempty"`
}

func toPeriodResponse(p *schedule.SchedulePeriod) PeriodResponse {
	days := make([]int, 0, len(p.WorkingDays))
	for _, d := range p.WorkingDays {
		days = append(days, int(d))
	}
	resp := PeriodResponse{
		ID:          p.ID,
		StartDate:   p.StartDate.Format(dateLayout),
		EndDate:     p.EndDate.Format(dateLayout),
		WorkingDays: days,
		WorkStart:   p.WorkStart.String(),
		WorkEnd:     p.WorkEnd.String(),
	}
	if p.BreakStart != nil && p.BreakEnd != nil {
		bs, be := p.BreakStart.String(), p.BreakEnd.String()
		resp.BreakStart = &bs
		resp.BreakEnd = &be
	}
	return resp
}

// Registry

type CreatePractitionerRequest struct {
	Name      string  `json:"name"`
	Specialty *string `json:"specialty,omitempty"`
}

type CreateOwnerRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type CreatePetRequest struct {
	OwnerID string  `json:"owner_id"`
	Name    string  `json:"name"`
	Species string  `json:"species"`
	Breed   *string `json:"breed,omitempty"`
}

type OwnerResponse struct {
	ID    uuid.UUID `json:"id"`
	Code  string    `json:"code"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

func toOwnerResponse(o *registry.Owner) OwnerResponse {
	return OwnerResponse{ID: o.ID, Code: o.Code, Name: o.Name, Email: o.Email, Phone: o.Phone}
}

type PetResponse struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
	Species string    `json:"species"`
	Breed   *string   `json:"breed,omitempty"`
}

func toPetResponse(p *registry.Pet) PetResponse {
	return PetResponse{ID: p.ID, Code: p.Code, OwnerID: p.OwnerID, Name: p.Name, Species: p.Species, Breed: p.Breed}
}

// Boarding

type StayResponse struct {
	ID               uuid.UUID `json:"id"`
	PetID            uuid.UUID `json:"pet_id"`
	KennelName       string    `json:"kennel_name,omitempty"`
	CheckInDate      string    `json:"check_in_date"`
	ExpectedCheckout string    `json:"expected_checkout"`
	Bucket           string    `json:"bucket"`
}

func toStayResponse(s boarding.Stay) StayResponse {
	return StayResponse{
		ID:               s.ID,
		PetID:            s.PetID,
		KennelName:       s.KennelName,
		CheckInDate:      s.CheckInDate.Format(dateLayout),
		ExpectedCheckout: s.ExpectedCheckout.Format(dateLayout),
		Bucket:           string(s.Bucket),
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
