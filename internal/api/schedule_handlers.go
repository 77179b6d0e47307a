package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/interval"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
)

// Schedule administration is a thin pass-through: handlers validate shape,
// the service validates invariants, and nothing is cached between calls.

func setWeeklyEntryHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}

		var req WeeklyEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, err := interval.ParseClock(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be HH:MM")
			return
		}
		end, err := interval.ParseClock(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "end_time must be HH:MM")
			return
		}

		entry, err := svc.SetWeeklyEntry(r.Context(), schedule.WeeklyEntry{
			PractitionerID: practitionerID,
			DayOfWeek:      time.Weekday(req.DayOfWeek),
			StartTime:      start,
			EndTime:        end,
			IsWorking:      req.IsWorking,
		})
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toWeeklyEntryResponse(entry))
	}
}

func listWeeklyEntriesHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}

		entries, err := svc.WeeklyEntries(r.Context(), practitionerID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		resp := make([]WeeklyEntryResponse, 0, len(entries))
		for i := range entries {
			resp = append(resp, toWeeklyEntryResponse(&entries[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func addBreakHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}

		var req BreakRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, err := interval.ParseClock(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be HH:MM")
			return
		}
		end, err := interval.ParseClock(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "end_time must be HH:MM")
			return
		}

		brk := schedule.Break{
			PractitionerID: practitionerID,
			StartTime:      start,
			EndTime:        end,
			Description:    req.Description,
			IsRecurring:    req.IsRecurring,
		}
		if req.DayOfWeek != nil {
			d := time.Weekday(*req.DayOfWeek)
			brk.DayOfWeek = &d
		}
		if req.Date != nil {
			date, err := parseDate(*req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
				return
			}
			brk.SpecificDate = &date
		}

		saved, err := svc.AddBreak(r.Context(), brk)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, saved)
	}
}

func removeBreakHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}
		breakID, err := uuid.Parse(chi.URLParam(r, "breakID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_break_id", "breakID must be a valid UUID")
			return
		}

		if err := svc.RemoveBreak(r.Context(), practitionerID, breakID); err != nil {
			handleScheduleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addDayOffHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}

		var req DayOffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		saved, err := svc.AddDayOff(r.Context(), schedule.DayOff{
			PractitionerID: practitionerID,
			Date:           date,
			Reason:         req.Reason,
		})
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, saved)
	}
}

func removeDayOffHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}
		dayOffID, err := uuid.Parse(chi.URLParam(r, "dayOffID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_day_off_id", "dayOffID must be a valid UUID")
			return
		}

		if err := svc.RemoveDayOff(r.Context(), practitionerID, dayOffID); err != nil {
			handleScheduleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func createPeriodHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}

		period, ok := decodePeriod(w, r, practitionerID, uuid.Nil)
		if !ok {
			return
		}

		saved, err := svc.CreatePeriod(r.Context(), *period)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPeriodResponse(saved))
	}
}

func updatePeriodHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}
		periodID, err := uuid.Parse(chi.URLParam(r, "periodID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_period_id", "periodID must be a valid UUID")
			return
		}

		period, ok := decodePeriod(w, r, practitionerID, periodID)
		if !ok {
			return
		}

		saved, err := svc.UpdatePeriod(r.Context(), *period)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPeriodResponse(saved))
	}
}

func deletePeriodHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := practitionerParam(w, r)
		if !ok {
			return
		}
		periodID, err := uuid.Parse(chi.URLParam(r, "periodID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_period_id", "periodID must be a valid UUID")
			return
		}

		if err := svc.DeletePeriod(r.Context(), practitionerID, periodID); err != nil {
			handleScheduleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodePeriod(w http.ResponseWriter, r *http.Request, practitionerID, periodID uuid.UUID) (*schedule.SchedulePeriod, bool) {
	var req PeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return nil, false
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "start_date must be YYYY-MM-DD")
		return nil, false
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "end_date must be YYYY-MM-DD")
		return nil, false
	}

	workStart, err := interval.ParseClock(req.WorkStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", "work_start must be HH:MM")
		return nil, false
	}
	workEnd, err := interval.ParseClock(req.WorkEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", "work_end must be HH:MM")
		return nil, false
	}

	period := schedule.SchedulePeriod{
		ID:             periodID,
		PractitionerID: practitionerID,
		StartDate:      startDate,
		EndDate:        endDate,
		WorkStart:      workStart,
		WorkEnd:        workEnd,
	}
	for _, d := range req.WorkingDays {
		period.WorkingDays = append(period.WorkingDays, time.Weekday(d))
	}
	if req.BreakStart != nil {
		bs, err := interval.ParseClock(*req.BreakStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "break_start must be HH:MM")
			return nil, false
		}
		period.BreakStart = &bs
	}
	if req.BreakEnd != nil {
		be, err := interval.ParseClock(*req.BreakEnd)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "break_end must be HH:MM")
			return nil, false
		}
		period.BreakEnd = &be
	}

	return &period, true
}

func practitionerParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_practitioner_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidTimeRange),
		errors.Is(err, schedule.ErrInvalidDateRange),
		errors.Is(err, schedule.ErrInvalidBreakKind),
		errors.Is(err, schedule.ErrNoWorkingDays):
		writeError(w, http.StatusBadRequest, "invalid_schedule", err.Error())
	case errors.Is(err, schedule.ErrDayOffExists):
		writeError(w, http.StatusConflict, "day_off_exists", err.Error())
	case errors.Is(err, schedule.ErrWeeklyEntryNotFound),
		errors.Is(err, schedule.ErrBreakNotFound),
		errors.Is(err, schedule.ErrDayOffNotFound),
		errors.Is(err, schedule.ErrPeriodNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
