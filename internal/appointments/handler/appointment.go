package handler

import (
	"context"
	"net/http"

	"clinic/internal/appointments/service"
	apperrors "clinic/pkg/errors"
	httputil "clinic/pkg/http"
	"clinic/pkg/logger"
	"clinic/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const basePath = "/api/v1/appointments"

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(basePath, h.Create)
	router.GET(basePath, h.GetAll)
	router.GET(basePath+"/stats", h.Stats)
	router.GET(basePath+"/weekly", h.Weekly)
	router.GET(basePath+"/range", h.GetByDateRange)
	router.GET(basePath+"/id/:id", h.GetByID)
	router.PATCH(basePath+"/id/:id", h.Update)
	router.DELETE(basePath+"/id/:id", h.Delete)
	router.POST(basePath+"/id/:id/confirm", h.Confirm)
	router.POST(basePath+"/id/:id/cancel", h.Cancel)
	router.POST(basePath+"/id/:id/complete", h.Complete)
	router.POST(basePath+"/id/:id/reschedule", h.Reschedule)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentCreate
	if !h.decode(w, r, &req) {
		return
	}

	appointment, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Location", basePath+"/id/"+appointment.ID)
	httputil.WriteCreated(w, appointment)
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, appointment)
}

func (h *AppointmentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	appointments, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, appointments, total, limit, offset)
}

func (h *AppointmentHandler) GetByDateRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	start, end := query.Get("start"), query.Get("end")
	if start == "" || end == "" {
		httputil.WriteError(w, apperrors.InvalidInput("Both 'start' and 'end' query parameters are required"))
		return
	}

	appointments, err := h.service.GetByDateRange(r.Context(), start, end)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, appointments)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.AppointmentUpdate
	if !h.decode(w, r, &req) {
		return
	}

	appointment, err := h.service.Update(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, appointment)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, h.service.Confirm)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, h.service.Cancel)
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, h.service.Complete)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.AppointmentReschedule
	if !h.decode(w, r, &req) {
		return
	}

	appointment, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, appointment)
}

func (h *AppointmentHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, stats)
}

func (h *AppointmentHandler) Weekly(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	week, err := h.service.Weekly(r.Context(), r.URL.Query().Get("week_start"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, week)
}

func (h *AppointmentHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	apply func(ctx context.Context, id string) (*model.Appointment, error),
) {
	appointment, err := apply(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, appointment)
}

func (h *AppointmentHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		h.log.Warn("Invalid request body",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err,
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}
