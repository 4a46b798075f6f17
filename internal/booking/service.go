package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/medisched/clinic-booking/internal/redis"
)

var (
	ErrBookingInProgress       = errors.New("slot is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log.With().Str("component", "booking").Logger(),
	}
}

// Book reserves a slot for a patient on a calendar date.
//
// The free-slot query is only a snapshot, so the occupancy check is redone
// here under a per-(slot, date) distributed lock, and the partial unique
// index on occupying appointments backs the whole thing at the storage
// layer. Of two concurrent bookings for the same slot and date, exactly one
// succeeds.
func (s *Service) Book(ctx context.Context, slotID, patientID uuid.UUID, date time.Time) (*Appointment, error) {
	date = normalizeDate(date)

	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	exists, err := s.repo.SlotExists(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if !exists {
		return nil, ErrSlotNotFound
	}

	var created *Appointment

	err = s.locker.WithBookingLock(ctx, slotID, date, func(lockCtx context.Context) error {
		occupying, err := s.repo.FindOccupying(lockCtx, slotID, date)
		if err != nil {
			return fmt.Errorf("check occupying appointments: %w", err)
		}
		if len(occupying) > 0 {
			return ErrSlotTaken
		}

		appt, err := s.repo.CreateAppointment(lockCtx, slotID, patientID, date)
		if err != nil {
			return err
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("slot_id", slotID.String()).
		Str("visit_date", date.Format("2006-01-02")).
		Msg("appointment booked")

	return created, nil
}

// TransitionStatus moves an appointment to a new status. The update itself
// is a compare-and-set on the current status, so a concurrent transition
// loses cleanly instead of overwriting.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, to)
	}

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, appt.Status, to)
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The row moved under us; the CAS found a different status.
			return nil, fmt.Errorf("%w: appointment changed concurrently", ErrInvalidStatusTransition)
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	return updated, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAppointmentsByPatient(ctx, patientID, limit, offset)
}

// CompletePastAppointments closes out occupying appointments whose visit
// date is before the cutoff. Called periodically by the completion worker.
func (s *Service) CompletePastAppointments(ctx context.Context, before time.Time) (int, error) {
	before = normalizeDate(before)

	stale, err := s.repo.FindPastOccupying(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("find past occupying appointments: %w", err)
	}

	completed := 0
	for _, appt := range stale {
		_, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, StatusCompleted)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				continue
			}
			s.log.Warn().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to complete past appointment")
			continue
		}
		completed++
	}

	return completed, nil
}

func transitionAllowed(from, to AppointmentStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// normalizeDate strips the time-of-day component; bookings are per calendar
// date only.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
