package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medisched/clinic-booking/internal/schedule"
)

func getTimingsHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := uuid.Parse(chi.URLParam(r, "providerID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "providerID must be a valid UUID")
			return
		}

		timings, err := svc.GetTimings(r.Context(), providerID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		resp := make([]TimingResponse, 0, len(timings))
		for _, t := range timings {
			resp = append(resp, toTimingResponse(t))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func updateTimingHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := uuid.Parse(chi.URLParam(r, "providerID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "providerID must be a valid UUID")
			return
		}

		day, err := schedule.ParseWeekday(chi.URLParam(r, "day"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_weekday", err.Error())
			return
		}

		var req UpdateTimingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		upd := schedule.TimingUpdate{
			Fee:         req.Fee,
			IsAvailable: req.IsAvailable,
		}
		if req.StartTime != nil {
			start, err := schedule.ParseTimeOfDay(*req.StartTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
				return
			}
			upd.Start = &start
		}
		if req.EndTime != nil {
			end, err := schedule.ParseTimeOfDay(*req.EndTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
				return
			}
			upd.End = &end
		}

		timing, err := svc.UpdateTiming(r.Context(), providerID, day, upd)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toTimingResponse(*timing))
	}
}

func generateSlotsHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timingID, err := uuid.Parse(chi.URLParam(r, "timingID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timing_id", "timingID must be a valid UUID")
			return
		}

		var req GenerateSlotsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		start, err := schedule.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		end, err := schedule.ParseTimeOfDay(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		created, err := svc.GenerateSlots(r.Context(), timingID, start, end, req.DurationMinutes)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, GenerateSlotsResponse{CreatedCount: created})
	}
}

func listSlotsHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timingID, err := uuid.Parse(chi.URLParam(r, "timingID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timing_id", "timingID must be a valid UUID")
			return
		}

		slots, err := svc.ListSlots(r.Context(), timingID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, toSlotResponse(s))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func freeSlotsHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timingID, err := uuid.Parse(chi.URLParam(r, "timingID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_timing_id", "timingID must be a valid UUID")
			return
		}

		dateStr := r.URL.Query().Get("date")
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		availability, err := svc.GetFreeSlots(r.Context(), timingID, date)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		resp := make([]FreeSlotResponse, 0, len(availability))
		for _, sa := range availability {
			resp = append(resp, FreeSlotResponse{
				SlotResponse: toSlotResponse(sa.Slot),
				IsAvailable:  sa.IsAvailable,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteSlotHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, err := uuid.Parse(chi.URLParam(r, "slotID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "slotID must be a valid UUID")
			return
		}

		slot, err := svc.DeleteSlot(r.Context(), slotID)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSlotResponse(*slot))
	}
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, schedule.ErrTimingNotFound):
		writeError(w, http.StatusNotFound, "timing_not_found", err.Error())
	case errors.Is(err, schedule.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
