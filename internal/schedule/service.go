package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "schedule").Logger(),
	}
}

// TimingUpdate carries the fields of a single-day update. Start, End and Fee
// are mandatory when enabling availability and ignored when disabling.
type TimingUpdate struct {
	Start       *TimeOfDay
	End         *TimeOfDay
	Fee         *float64
	IsAvailable bool
}

// GetTimings returns all seven weekday rows for a provider, creating them
// with availability off on first access. Callers never see a
// partially-initialized provider.
func (s *Service) GetTimings(ctx context.Context, providerID uuid.UUID) ([]Timing, error) {
	timings, err := s.repo.ListTimings(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list timings: %w", err)
	}
	if len(timings) == NumWeekdays {
		return timings, nil
	}

	if err := s.repo.CreateDefaultTimings(ctx, providerID); err != nil {
		return nil, fmt.Errorf("create default timings: %w", err)
	}
	s.log.Info().Str("provider_id", providerID.String()).Msg("initialized default weekday timings")

	timings, err = s.repo.ListTimings(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list timings: %w", err)
	}
	return timings, nil
}

// UpdateTiming changes one (provider, weekday) row. Disabling touches only
// the availability flag so the stored window can be restored later.
func (s *Service) UpdateTiming(ctx context.Context, providerID uuid.UUID, day Weekday, upd TimingUpdate) (*Timing, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("%w: invalid weekday", ErrValidation)
	}

	if !upd.IsAvailable {
		t, err := s.repo.DisableTiming(ctx, providerID, day)
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	switch {
	case upd.Start == nil:
		return nil, fmt.Errorf("%w: start_time is required to enable availability", ErrValidation)
	case upd.End == nil:
		return nil, fmt.Errorf("%w: end_time is required to enable availability", ErrValidation)
	case upd.Fee == nil:
		return nil, fmt.Errorf("%w: fee is required to enable availability", ErrValidation)
	case *upd.Start >= *upd.End:
		return nil, fmt.Errorf("%w: start_time must be before end_time", ErrValidation)
	case *upd.Fee < 0:
		return nil, fmt.Errorf("%w: fee must not be negative", ErrValidation)
	}

	t, err := s.repo.EnableTiming(ctx, providerID, day, *upd.Start, *upd.End, *upd.Fee)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GenerateSlots expands a working window into fixed-length slots and stores
// them for the timing. Regeneration with the same parameters is idempotent:
// existing (start, end) pairs are skipped and the returned count covers only
// the rows actually created.
func (s *Service) GenerateSlots(ctx context.Context, timingID uuid.UUID, start, end TimeOfDay, durationMinutes int) (int64, error) {
	// The full sequence is expanded before any write.
	windows, err := ExpandWindow(start, end, durationMinutes)
	if err != nil {
		return 0, err
	}

	if _, err := s.repo.GetTimingByID(ctx, timingID); err != nil {
		return 0, err
	}

	created, err := s.repo.InsertSlots(ctx, timingID, windows)
	if err != nil {
		return 0, fmt.Errorf("insert slots: %w", err)
	}

	s.log.Info().
		Str("timing_id", timingID.String()).
		Int("window_count", len(windows)).
		Int64("created", created).
		Msg("generated slots")

	return created, nil
}

// ListSlots returns every slot of a timing in ascending start order,
// independent of any calendar date.
func (s *Service) ListSlots(ctx context.Context, timingID uuid.UUID) ([]Slot, error) {
	if _, err := s.repo.GetTimingByID(ctx, timingID); err != nil {
		return nil, err
	}
	return s.repo.ListSlots(ctx, timingID)
}

// GetFreeSlots annotates each of the timing's slots with whether it is free
// on the given date. A slot is occupied when at least one appointment with
// an occupying status exists for exactly that (slot, date) pair. The result
// is a read-only snapshot; the booking service re-checks at write time.
func (s *Service) GetFreeSlots(ctx context.Context, timingID uuid.UUID, date time.Time) ([]SlotAvailability, error) {
	if _, err := s.repo.GetTimingByID(ctx, timingID); err != nil {
		return nil, err
	}
	return s.repo.ListSlotAvailability(ctx, timingID, date)
}

// DeleteSlot removes a slot by identifier. Historical appointments that
// reference it are left untouched.
func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	return s.repo.DeleteSlot(ctx, id)
}
