package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrSlotTaken is returned when an occupying appointment already holds
	// the (slot, date) pair. The partial unique index raises it even if two
	// writers race past the read check.
	ErrSlotTaken = errors.New("slot already booked for this date")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	SlotExists(ctx context.Context, slotID uuid.UUID) (bool, error)

	// FindOccupying returns appointments holding the slot on exactly this
	// date, filtered to the occupying statuses.
	FindOccupying(ctx context.Context, slotID uuid.UUID, date time.Time) ([]Appointment, error)

	// CreateAppointment inserts a new scheduled appointment. A violation of
	// the occupying uniqueness constraint surfaces as ErrSlotTaken.
	CreateAppointment(ctx context.Context, slotID, patientID uuid.UUID, date time.Time) (*Appointment, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateAppointmentStatus is a compare-and-set: the row only changes if
	// it still has the expected from status.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)

	// FindPastOccupying returns occupying appointments whose visit date is
	// strictly before the cutoff. Used by the completion worker.
	FindPastOccupying(ctx context.Context, before time.Time) ([]Appointment, error)
}
