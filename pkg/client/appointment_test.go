package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic/internal/appointments/domain"
	"clinic/internal/appointments/events"
	"clinic/internal/appointments/handler"
	"clinic/internal/appointments/metrics"
	"clinic/internal/appointments/repository"
	"clinic/internal/appointments/service"
	"clinic/internal/appointments/validator"
	"clinic/pkg/client"
	"clinic/pkg/config"
	"clinic/pkg/logger"
	"clinic/pkg/middleware"
	"clinic/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointmentClient(t *testing.T) *client.AppointmentClient {
	t.Helper()
	cfg := &config.Config{
		Log:          logger.Discard(),
		Location:     time.UTC,
		SlotCapacity: 4,
		SlotLockTTL:  time.Minute,
	}
	svc := service.NewAppointmentService(
		repository.NewMemoryAppointmentRepository(cfg.SlotCapacity, cfg.Location),
		repository.NewMemorySlotLockRepository(),
		validator.NewAppointmentValidator(cfg.Log),
		events.NoopPublisher{},
		metrics.New(prometheus.NewRegistry()),
		cfg,
	)

	router := httprouter.New()
	handler.NewAppointmentHandler(svc, cfg.Log).RegisterRoutes(router)

	store := middleware.NewInMemoryIdempotencyStore(time.Minute)
	server := httptest.NewServer(middleware.Idempotency(store)(router))
	t.Cleanup(func() {
		server.Close()
		store.Stop()
	})
	return client.NewAppointmentClient(server.URL)
}

func futureDate(days int) string {
	return domain.DateKey(time.Now().UTC().AddDate(0, 0, days))
}

func TestAppointmentClient_Lifecycle(t *testing.T) {
	c := newAppointmentClient(t)
	ctx := context.Background()

	resp, err := c.Create(ctx, &model.AppointmentCreate{
		PatientID:       "patient-7",
		PatientName:     "Gabriela Silang",
		ReasonForVisit:  "Follow-up consultation",
		AppointmentDate: futureDate(6),
		AppointmentTime: "11:15",
		ContactNumber:   "09171234567",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
	created, err := c.DecodeAppointment(resp)
	require.NoError(t, err)
	assert.Equal(t, "scheduled", created.Status)

	resp, err = c.Confirm(ctx, created.ID)
	require.NoError(t, err)
	confirmed, err := c.DecodeAppointment(resp)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)

	resp, err = c.Reschedule(ctx, created.ID, &model.AppointmentReschedule{
		AppointmentDate: futureDate(7),
		AppointmentTime: "13:00",
	})
	require.NoError(t, err)
	moved, err := c.DecodeAppointment(resp)
	require.NoError(t, err)
	assert.Equal(t, futureDate(7), moved.AppointmentDate)
	assert.Equal(t, "scheduled", moved.Status)

	doctor := "Dr. Jose Cruz"
	resp, err = c.Update(ctx, created.ID, &model.AppointmentUpdate{DoctorName: &doctor})
	require.NoError(t, err)
	updated, err := c.DecodeAppointment(resp)
	require.NoError(t, err)
	assert.Equal(t, doctor, updated.DoctorName)

	resp, err = c.GetByDateRange(ctx, futureDate(7), futureDate(7))
	require.NoError(t, err)
	inRange, err := c.DecodeAppointments(resp)
	require.NoError(t, err)
	assert.Len(t, inRange, 1)

	resp, err = c.Stats(ctx)
	require.NoError(t, err)
	stats, err := c.DecodeStats(resp)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	resp, err = c.Weekly(ctx, futureDate(7))
	require.NoError(t, err)
	week, err := c.DecodeWeekly(resp)
	require.NoError(t, err)
	assert.Equal(t, 1, week.ByDate[futureDate(7)])

	resp, err = c.Cancel(ctx, created.ID)
	require.NoError(t, err)
	cancelled, err := c.DecodeAppointment(resp)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	resp, err = c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = c.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, domain.CodeAppointmentNotFound, client.GetErrorCode(resp))
	_, err = c.DecodeAppointment(resp)
	assert.Error(t, err)
}

func TestAppointmentClient_CreateIdempotent(t *testing.T) {
	c := newAppointmentClient(t)
	ctx := context.Background()
	req := &model.AppointmentCreate{
		PatientID:       "patient-8",
		PatientName:     "Melchora Aquino",
		ReasonForVisit:  "Vaccination",
		AppointmentDate: futureDate(2),
		AppointmentTime: "08:00",
	}

	first, err := c.CreateIdempotent(ctx, req, "retry-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second, err := c.CreateIdempotent(ctx, req, "retry-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(middleware.IdempotentReplayed))

	resp, err := c.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	all, err := c.DecodeAppointments(resp)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
