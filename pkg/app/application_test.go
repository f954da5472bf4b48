package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic/internal/appointments/domain"
	"clinic/internal/appointments/events"
	"clinic/internal/appointments/handler"
	"clinic/internal/appointments/metrics"
	"clinic/internal/appointments/repository"
	"clinic/internal/appointments/service"
	"clinic/internal/appointments/validator"
	"clinic/pkg/config"
	"clinic/pkg/logger"
	"clinic/pkg/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Port:            "8080",
		RequestTimeout:  5 * time.Second,
		IdempotencyTTL:  time.Minute,
		MaxRequestSize:  1024,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
		SlotCapacity:    4,
		SlotLockTTL:     time.Minute,
		Location:        time.UTC,
		Log:             logger.Discard(),
	}

	repo := repository.NewMemoryAppointmentRepository(cfg.SlotCapacity, cfg.Location)
	svc := service.NewAppointmentService(
		repo,
		repository.NewMemorySlotLockRepository(),
		validator.NewAppointmentValidator(cfg.Log),
		events.NoopPublisher{},
		metrics.New(prometheus.NewRegistry()),
		cfg,
	)

	application := NewApplication()
	application.SetApp(cfg, repo, handler.NewAppointmentHandler(svc, cfg.Log))
	t.Cleanup(application.idempotencyStore.Stop)
	return application.Handler()
}

func post(h http.Handler, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(middleware.IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bookingBody(patientID string) string {
	date := domain.DateKey(time.Now().UTC().AddDate(0, 0, 4))
	return `{"patient_id":"` + patientID + `","patient_name":"Andres Bonifacio","reason_for_visit":"Annual physical",` +
		`"appointment_date":"` + date + `","appointment_time":"14:00"}`
}

func TestApplication_ProbesAndMetrics(t *testing.T) {
	h := newTestApplication(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestApplication_RequestIDAndContentType(t *testing.T) {
	h := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(bookingBody("p1")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestApplication_IdempotentCreate(t *testing.T) {
	h := newTestApplication(t)

	first := post(h, "/api/v1/appointments", bookingBody("p1"), "booking-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	replay := post(h, "/api/v1/appointments", bookingBody("p1"), "booking-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(middleware.IdempotentReplayed))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	fresh := post(h, "/api/v1/appointments", bookingBody("p1"), "booking-2")
	assert.Equal(t, http.StatusConflict, fresh.Code)
}

func TestApplication_RejectsOversizedBodies(t *testing.T) {
	h := newTestApplication(t)

	body := `{"patient_id":"p1","reason_for_visit":"` + strings.Repeat("x", 2048) + `"}`
	rec := post(h, "/api/v1/appointments", body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
