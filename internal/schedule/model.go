package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Timing is a provider's recurring working window for one weekday.
// Start and End are nil until the row has been enabled at least once.
type Timing struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	Day         Weekday
	Start       *TimeOfDay
	End         *TimeOfDay
	Fee         float64
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Slot is a fixed-duration bookable interval derived from a Timing. Slots
// recur weekly; they carry no calendar date.
type Slot struct {
	ID        uuid.UUID
	TimingID  uuid.UUID
	Start     TimeOfDay
	End       TimeOfDay
	CreatedAt time.Time
}

// SlotAvailability is a Slot annotated with whether it is free on the
// queried date.
type SlotAvailability struct {
	Slot
	IsAvailable bool
}
