package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medisched/clinic-booking/internal/booking"
	"github.com/medisched/clinic-booking/internal/schedule"
)

var validate = validator.New()

// ScheduleService is the part of the schedule service the handlers need.
type ScheduleService interface {
	GetTimings(ctx context.Context, providerID uuid.UUID) ([]schedule.Timing, error)
	UpdateTiming(ctx context.Context, providerID uuid.UUID, day schedule.Weekday, upd schedule.TimingUpdate) (*schedule.Timing, error)
	GenerateSlots(ctx context.Context, timingID uuid.UUID, start, end schedule.TimeOfDay, durationMinutes int) (int64, error)
	ListSlots(ctx context.Context, timingID uuid.UUID) ([]schedule.Slot, error)
	GetFreeSlots(ctx context.Context, timingID uuid.UUID, date time.Time) ([]schedule.SlotAvailability, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) (*schedule.Slot, error)
}

// BookingService is the part of the booking service the handlers need.
type BookingService interface {
	Book(ctx context.Context, slotID, patientID uuid.UUID, date time.Time) (*booking.Appointment, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, to booking.AppointmentStatus) (*booking.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]booking.Appointment, error)
}

type RouterConfig struct {
	Schedule ScheduleService
	Booking  BookingService
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Logger   zerolog.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Weekly timings
	r.Get("/providers/{providerID}/timings", getTimingsHandler(cfg.Schedule))
	r.Put("/providers/{providerID}/timings/{day}", updateTimingHandler(cfg.Schedule))

	// Slots
	r.Post("/timings/{timingID}/slots", generateSlotsHandler(cfg.Schedule))
	r.Get("/timings/{timingID}/slots", listSlotsHandler(cfg.Schedule))
	r.Get("/timings/{timingID}/slots/free", freeSlotsHandler(cfg.Schedule))
	r.Delete("/slots/{slotID}", deleteSlotHandler(cfg.Schedule))

	// Appointments
	r.Post("/appointments", createAppointmentHandler(cfg.Booking))
	r.Get("/appointments", listAppointmentsHandler(cfg.Booking))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/status", transitionStatusHandler(cfg.Booking))

	return r
}
