package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTimingNotFound = errors.New("timing not found")
	ErrSlotNotFound   = errors.New("slot not found")
	ErrValidation     = errors.New("validation failed")
)

// Repository contains all DB interactions needed by the schedule service.
type Repository interface {
	ListTimings(ctx context.Context, providerID uuid.UUID) ([]Timing, error)
	// CreateDefaultTimings inserts the missing weekday rows for a provider
	// with availability off. Rows that already exist are left alone.
	CreateDefaultTimings(ctx context.Context, providerID uuid.UUID) error
	GetTimingByID(ctx context.Context, id uuid.UUID) (*Timing, error)
	EnableTiming(ctx context.Context, providerID uuid.UUID, day Weekday, start, end TimeOfDay, fee float64) (*Timing, error)
	DisableTiming(ctx context.Context, providerID uuid.UUID, day Weekday) (*Timing, error)

	// InsertSlots bulk-inserts generated windows, skipping any
	// (timing, start, end) triple that already exists. Returns the number
	// of rows actually created.
	InsertSlots(ctx context.Context, timingID uuid.UUID, windows []Window) (int64, error)
	ListSlots(ctx context.Context, timingID uuid.UUID) ([]Slot, error)
	ListSlotAvailability(ctx context.Context, timingID uuid.UUID, date time.Time) ([]SlotAvailability, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) (*Slot, error)
}
