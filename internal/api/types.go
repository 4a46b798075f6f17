package api

import (
	"github.com/google/uuid"

	"github.com/medisched/clinic-booking/internal/booking"
	"github.com/medisched/clinic-booking/internal/schedule"
)

// Requests

type UpdateTimingRequest struct {
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
	Fee         *float64 `json:"fee" validate:"omitempty,gte=0"`
	IsAvailable bool     `json:"is_available"`
}

type GenerateSlotsRequest struct {
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
}

type CreateAppointmentRequest struct {
	SlotID    string `json:"slot_id" validate:"required,uuid"`
	PatientID string `json:"patient_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

type TransitionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted in_progress completed cancelled"`
}

// Responses

type TimingResponse struct {
	ID          uuid.UUID           `json:"id"`
	ProviderID  uuid.UUID           `json:"provider_id"`
	Day         schedule.Weekday    `json:"day"`
	StartTime   *schedule.TimeOfDay `json:"start_time,omitempty"`
	EndTime     *schedule.TimeOfDay `json:"end_time,omitempty"`
	Fee         float64             `json:"fee"`
	IsAvailable bool                `json:"is_available"`
}

type SlotResponse struct {
	ID        uuid.UUID          `json:"id"`
	TimingID  uuid.UUID          `json:"timing_id"`
	StartTime schedule.TimeOfDay `json:"start_time"`
	EndTime   schedule.TimeOfDay `json:"end_time"`
}

type FreeSlotResponse struct {
	SlotResponse
	IsAvailable bool `json:"is_available"`
}

type GenerateSlotsResponse struct {
	CreatedCount int64 `json:"created_count"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	SlotID    uuid.UUID `json:"slot_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
}

// Mappers

func toTimingResponse(t schedule.Timing) TimingResponse {
	return TimingResponse{
		ID:          t.ID,
		ProviderID:  t.ProviderID,
		Day:         t.Day,
		StartTime:   t.Start,
		EndTime:     t.End,
		Fee:         t.Fee,
		IsAvailable: t.IsAvailable,
	}
}

func toSlotResponse(s schedule.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		TimingID:  s.TimingID,
		StartTime: s.Start,
		EndTime:   s.End,
	}
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		SlotID:    a.SlotID,
		PatientID: a.PatientID,
		Date:      a.VisitDate.Format("2006-01-02"),
		Status:    string(a.Status),
	}
}
