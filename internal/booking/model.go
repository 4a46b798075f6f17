package booking

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusAccepted   AppointmentStatus = "accepted"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

// OccupyingStatuses are the states that count as using up a slot for a
// given date. Completed visits are history; cancelled ones free the slot
// immediately.
var OccupyingStatuses = []AppointmentStatus{StatusScheduled, StatusAccepted, StatusInProgress}

func (s AppointmentStatus) Occupying() bool {
	return s == StatusScheduled || s == StatusAccepted || s == StatusInProgress
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is a booking of one weekly-recurring slot on one concrete
// calendar date.
type Appointment struct {
	ID        uuid.UUID
	SlotID    uuid.UUID
	PatientID uuid.UUID
	VisitDate time.Time
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
