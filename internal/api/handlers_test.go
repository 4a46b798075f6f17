package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/clinic-booking/internal/booking"
	"github.com/medisched/clinic-booking/internal/schedule"
)

type stubSchedule struct {
	getTimings    func(ctx context.Context, providerID uuid.UUID) ([]schedule.Timing, error)
	updateTiming  func(ctx context.Context, providerID uuid.UUID, day schedule.Weekday, upd schedule.TimingUpdate) (*schedule.Timing, error)
	generateSlots func(ctx context.Context, timingID uuid.UUID, start, end schedule.TimeOfDay, durationMinutes int) (int64, error)
	listSlots     func(ctx context.Context, timingID uuid.UUID) ([]schedule.Slot, error)
	getFreeSlots  func(ctx context.Context, timingID uuid.UUID, date time.Time) ([]schedule.SlotAvailability, error)
	deleteSlot    func(ctx context.Context, id uuid.UUID) (*schedule.Slot, error)
}

func (s *stubSchedule) GetTimings(ctx context.Context, providerID uuid.UUID) ([]schedule.Timing, error) {
	return s.getTimings(ctx, providerID)
}

func (s *stubSchedule) UpdateTiming(ctx context.Context, providerID uuid.UUID, day schedule.Weekday, upd schedule.TimingUpdate) (*schedule.Timing, error) {
	return s.updateTiming(ctx, providerID, day, upd)
}

func (s *stubSchedule) GenerateSlots(ctx context.Context, timingID uuid.UUID, start, end schedule.TimeOfDay, durationMinutes int) (int64, error) {
	return s.generateSlots(ctx, timingID, start, end, durationMinutes)
}

func (s *stubSchedule) ListSlots(ctx context.Context, timingID uuid.UUID) ([]schedule.Slot, error) {
	return s.listSlots(ctx, timingID)
}

func (s *stubSchedule) GetFreeSlots(ctx context.Context, timingID uuid.UUID, date time.Time) ([]schedule.SlotAvailability, error) {
	return s.getFreeSlots(ctx, timingID, date)
}

func (s *stubSchedule) DeleteSlot(ctx context.Context, id uuid.UUID) (*schedule.Slot, error) {
	return s.deleteSlot(ctx, id)
}

type stubBooking struct {
	book             func(ctx context.Context, slotID, patientID uuid.UUID, date time.Time) (*booking.Appointment, error)
	transitionStatus func(ctx context.Context, id uuid.UUID, to booking.AppointmentStatus) (*booking.Appointment, error)
	getAppointment   func(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	listByPatient    func(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]booking.Appointment, error)
}

func (s *stubBooking) Book(ctx context.Context, slotID, patientID uuid.UUID, date time.Time) (*booking.Appointment, error) {
	return s.book(ctx, slotID, patientID, date)
}

func (s *stubBooking) TransitionStatus(ctx context.Context, id uuid.UUID, to booking.AppointmentStatus) (*booking.Appointment, error) {
	return s.transitionStatus(ctx, id, to)
}

func (s *stubBooking) GetAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
	return s.getAppointment(ctx, id)
}

func (s *stubBooking) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]booking.Appointment, error) {
	return s.listByPatient(ctx, patientID, limit, offset)
}

func newTestRouter(sched ScheduleService, book BookingService) http.Handler {
	return NewRouter(RouterConfig{
		Schedule: sched,
		Booking:  book,
		Logger:   zerolog.Nop(),
		Env:      "test",
		Version:  "test",
	})
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetTimingsInvalidProviderID(t *testing.T) {
	router := newTestRouter(&stubSchedule{}, &stubBooking{})

	rec := doRequest(t, router, http.MethodGet, "/providers/not-a-uuid/timings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_provider_id", decodeError(t, rec).Error)
}

func TestUpdateTimingValidationError(t *testing.T) {
	sched := &stubSchedule{
		updateTiming: func(context.Context, uuid.UUID, schedule.Weekday, schedule.TimingUpdate) (*schedule.Timing, error) {
			return nil, schedule.ErrValidation
		},
	}
	router := newTestRouter(sched, &stubBooking{})

	target := "/providers/" + uuid.NewString() + "/timings/monday"
	rec := doRequest(t, router, http.MethodPut, target, `{"is_available":true,"start_time":"09:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeError(t, rec).Error)
}

func TestUpdateTimingUnknownWeekday(t *testing.T) {
	router := newTestRouter(&stubSchedule{}, &stubBooking{})

	target := "/providers/" + uuid.NewString() + "/timings/someday"
	rec := doRequest(t, router, http.MethodPut, target, `{"is_available":false}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_weekday", decodeError(t, rec).Error)
}

func TestUpdateTimingNotFound(t *testing.T) {
	sched := &stubSchedule{
		updateTiming: func(context.Context, uuid.UUID, schedule.Weekday, schedule.TimingUpdate) (*schedule.Timing, error) {
			return nil, schedule.ErrTimingNotFound
		},
	}
	router := newTestRouter(sched, &stubBooking{})

	target := "/providers/" + uuid.NewString() + "/timings/friday"
	rec := doRequest(t, router, http.MethodPut, target, `{"is_available":false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "timing_not_found", decodeError(t, rec).Error)
}

func TestGenerateSlotsRejectsBadBody(t *testing.T) {
	router := newTestRouter(&stubSchedule{}, &stubBooking{})
	target := "/timings/" + uuid.NewString() + "/slots"

	rec := doRequest(t, router, http.MethodPost, target, `{"start_time":"09:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeError(t, rec).Error)

	rec = doRequest(t, router, http.MethodPost, target, `{"start_time":"09:00","end_time":"10:00","duration_minutes":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, target, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request_body", decodeError(t, rec).Error)
}

func TestGenerateSlotsCreated(t *testing.T) {
	sched := &stubSchedule{
		generateSlots: func(_ context.Context, _ uuid.UUID, start, end schedule.TimeOfDay, duration int) (int64, error) {
			assert.Equal(t, "09:00", start.String())
			assert.Equal(t, "10:00", end.String())
			assert.Equal(t, 20, duration)
			return 3, nil
		},
	}
	router := newTestRouter(sched, &stubBooking{})

	target := "/timings/" + uuid.NewString() + "/slots"
	rec := doRequest(t, router, http.MethodPost, target, `{"start_time":"09:00","end_time":"10:00","duration_minutes":20}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp GenerateSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 3, resp.CreatedCount)
}

func TestFreeSlotsRequiresDate(t *testing.T) {
	router := newTestRouter(&stubSchedule{}, &stubBooking{})

	target := "/timings/" + uuid.NewString() + "/slots/free"
	rec := doRequest(t, router, http.MethodGet, target, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date", decodeError(t, rec).Error)

	rec = doRequest(t, router, http.MethodGet, target+"?date=01-05-2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFreeSlotsResponseShape(t *testing.T) {
	slotID := uuid.New()
	timingID := uuid.New()
	sched := &stubSchedule{
		getFreeSlots: func(_ context.Context, _ uuid.UUID, date time.Time) ([]schedule.SlotAvailability, error) {
			assert.Equal(t, "2024-05-01", date.Format("2006-01-02"))
			return []schedule.SlotAvailability{
				{
					Slot:        schedule.Slot{ID: slotID, TimingID: timingID, Start: 540, End: 560},
					IsAvailable: false,
				},
			}, nil
		},
	}
	router := newTestRouter(sched, &stubBooking{})

	rec := doRequest(t, router, http.MethodGet, "/timings/"+timingID.String()+"/slots/free?date=2024-05-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []FreeSlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, slotID, resp[0].ID)
	assert.Equal(t, "09:00", resp[0].StartTime.String())
	assert.False(t, resp[0].IsAvailable)
}

func TestDeleteSlotNotFound(t *testing.T) {
	sched := &stubSchedule{
		deleteSlot: func(context.Context, uuid.UUID) (*schedule.Slot, error) {
			return nil, schedule.ErrSlotNotFound
		},
	}
	router := newTestRouter(sched, &stubBooking{})

	rec := doRequest(t, router, http.MethodDelete, "/slots/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "slot_not_found", decodeError(t, rec).Error)
}

func TestCreateAppointmentConflict(t *testing.T) {
	book := &stubBooking{
		book: func(context.Context, uuid.UUID, uuid.UUID, time.Time) (*booking.Appointment, error) {
			return nil, booking.ErrSlotTaken
		},
	}
	router := newTestRouter(&stubSchedule{}, book)

	body := `{"slot_id":"` + uuid.NewString() + `","patient_id":"` + uuid.NewString() + `","date":"2024-05-01"}`
	rec := doRequest(t, router, http.MethodPost, "/appointments", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot_taken", decodeError(t, rec).Error)
}

func TestCreateAppointmentValidation(t *testing.T) {
	router := newTestRouter(&stubSchedule{}, &stubBooking{})

	// malformed date
	body := `{"slot_id":"` + uuid.NewString() + `","patient_id":"` + uuid.NewString() + `","date":"May 1st"}`
	rec := doRequest(t, router, http.MethodPost, "/appointments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// missing patient
	body = `{"slot_id":"` + uuid.NewString() + `","date":"2024-05-01"}`
	rec = doRequest(t, router, http.MethodPost, "/appointments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// slot_id not a uuid
	body = `{"slot_id":"abc","patient_id":"` + uuid.NewString() + `","date":"2024-05-01"}`
	rec = doRequest(t, router, http.MethodPost, "/appointments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAppointmentSuccess(t *testing.T) {
	apptID := uuid.New()
	book := &stubBooking{
		book: func(_ context.Context, slotID, patientID uuid.UUID, date time.Time) (*booking.Appointment, error) {
			return &booking.Appointment{
				ID:        apptID,
				SlotID:    slotID,
				PatientID: patientID,
				VisitDate: date,
				Status:    booking.StatusScheduled,
			}, nil
		},
	}
	router := newTestRouter(&stubSchedule{}, book)

	body := `{"slot_id":"` + uuid.NewString() + `","patient_id":"` + uuid.NewString() + `","date":"2024-05-01"}`
	rec := doRequest(t, router, http.MethodPost, "/appointments", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apptID, resp.ID)
	assert.Equal(t, "2024-05-01", resp.Date)
	assert.Equal(t, "scheduled", resp.Status)
}

func TestTransitionStatusConflict(t *testing.T) {
	book := &stubBooking{
		transitionStatus: func(context.Context, uuid.UUID, booking.AppointmentStatus) (*booking.Appointment, error) {
			return nil, booking.ErrInvalidStatusTransition
		},
	}
	router := newTestRouter(&stubSchedule{}, book)

	rec := doRequest(t, router, http.MethodPost, "/appointments/"+uuid.NewString()+"/status", `{"status":"completed"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_status_transition", decodeError(t, rec).Error)

	// scheduled is not a valid transition target
	rec = doRequest(t, router, http.MethodPost, "/appointments/"+uuid.NewString()+"/status", `{"status":"scheduled"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
