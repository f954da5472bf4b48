package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinic/internal/appointments/domain"
	appointmentserrors "clinic/internal/appointments/errors"
	"clinic/internal/appointments/events"
	"clinic/internal/appointments/mapper"
	"clinic/internal/appointments/metrics"
	"clinic/internal/appointments/repository"
	"clinic/internal/appointments/validator"
	"clinic/pkg/config"
	apperrors "clinic/pkg/errors"
	"clinic/pkg/model"
)

type AppointmentService interface {
	Create(ctx context.Context, req *model.AppointmentCreate) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error)
	GetByDateRange(ctx context.Context, start, end string) ([]*model.Appointment, error)
	Update(ctx context.Context, id string, req *model.AppointmentUpdate) (*model.Appointment, error)
	Confirm(ctx context.Context, id string) (*model.Appointment, error)
	Cancel(ctx context.Context, id string) (*model.Appointment, error)
	Complete(ctx context.Context, id string) (*model.Appointment, error)
	Reschedule(ctx context.Context, id string, req *model.AppointmentReschedule) (*model.Appointment, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.AppointmentStats, error)
	Weekly(ctx context.Context, weekStart string) (*model.WeeklyAppointments, error)
}

// PatientDirectory answers whether a patient id refers to a known patient.
// Patient records live outside this service.
type PatientDirectory interface {
	Exists(ctx context.Context, patientID string) (bool, error)
}

type AcceptAllPatients struct{}

func (AcceptAllPatients) Exists(context.Context, string) (bool, error) { return true, nil }

type Option func(*appointmentService)

func WithPatientDirectory(d PatientDirectory) Option {
	return func(s *appointmentService) { s.patients = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *appointmentService) { s.now = now }
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	rules     *AppointmentDomainService
	validator *validator.AppointmentValidator
	publisher events.Publisher
	metrics   *metrics.Metrics
	patients  PatientDirectory
	cfg       *config.Config
	now       func() time.Time
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	cfg *config.Config,
	opts ...Option,
) AppointmentService {
	s := &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		rules:     NewAppointmentDomainService(repo),
		validator: validator,
		publisher: publisher,
		metrics:   metrics,
		patients:  AcceptAllPatients{},
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *appointmentService) Create(ctx context.Context, req *model.AppointmentCreate) (*model.Appointment, error) {
	defer s.metrics.ObserveOperation("create", time.Now())

	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, s.invalidInput("Appointment creation validation failed", err)
	}
	date, err := domain.ParseDate(req.AppointmentDate, s.cfg.Location)
	if err != nil {
		return nil, s.reject(err)
	}
	appointment, err := domain.NewAppointment(domain.AppointmentParams{
		PatientID:       req.PatientID,
		PatientName:     req.PatientName,
		ReasonForVisit:  req.ReasonForVisit,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		ContactNumber:   req.ContactNumber,
		DoctorName:      req.DoctorName,
	})
	if err != nil {
		return nil, s.reject(err)
	}
	if err := appointment.Validate(); err != nil {
		return nil, s.reject(err)
	}
	if err := s.verifyPatient(ctx, appointment.PatientID()); err != nil {
		return nil, err
	}

	release, err := s.acquireLocks(ctx, appointment)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *domain.Appointment
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.rules.ValidateAppointmentCreation(txCtx, appointment); err != nil {
			return err
		}
		created, err = s.repo.Create(txCtx, appointment)
		if err != nil {
			return s.mapRepoError(err, "", appointment)
		}
		return nil
	})
	if err != nil {
		return nil, s.failed("Failed to create appointment", "", err)
	}

	s.metrics.IncrementBooked()
	out := mapper.ToModel(created)
	s.publish(ctx, events.AppointmentCreated, out)
	s.cfg.Log.Info("Appointment created successfully",
		"id", out.ID,
		"patient_id", out.PatientID,
		"date", out.AppointmentDate,
		"time", out.AppointmentTime,
	)
	return out, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapper.ToModel(appointment), nil
}

func (s *appointmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error) {
	var count int64
	var appointments []*domain.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return mapper.ToModels(appointments), count, nil
}

func (s *appointmentService) GetByDateRange(ctx context.Context, start, end string) ([]*model.Appointment, error) {
	from, err := domain.ParseDate(start, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseDate(end, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("end date must not be before start date")
	}

	appointments, err := s.repo.GetAppointmentsByDateRange(ctx, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to list appointments by date range", "start", start, "end", end, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return mapper.ToModels(appointments), nil
}

func (s *appointmentService) Update(ctx context.Context, id string, req *model.AppointmentUpdate) (*model.Appointment, error) {
	defer s.metrics.ObserveOperation("update", time.Now())

	if err := s.validator.ValidateUpdate(req); err != nil {
		return nil, s.invalidInput("Appointment update validation failed", err)
	}
	changes := domain.AppointmentChanges{
		PatientID:       req.PatientID,
		PatientName:     req.PatientName,
		ReasonForVisit:  req.ReasonForVisit,
		AppointmentTime: req.AppointmentTime,
		ContactNumber:   req.ContactNumber,
		DoctorName:      req.DoctorName,
	}
	if req.AppointmentDate != nil {
		date, err := domain.ParseDate(*req.AppointmentDate, s.cfg.Location)
		if err != nil {
			return nil, s.reject(err)
		}
		changes.AppointmentDate = &date
	}
	if req.PatientID != nil {
		if err := s.verifyPatient(ctx, *req.PatientID); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, id, "update", events.AppointmentUpdated, func(a *domain.Appointment) (*domain.Appointment, error) {
		return a.Update(changes)
	})
}

// Confirm asks the scheduling rules first. When they refuse, the aggregate
// is still consulted so the caller gets the precise reason.
func (s *appointmentService) Confirm(ctx context.Context, id string) (*model.Appointment, error) {
	defer s.metrics.ObserveOperation("confirm", time.Now())

	return s.mutate(ctx, id, "confirm", events.AppointmentConfirmed, func(a *domain.Appointment) (*domain.Appointment, error) {
		ok, err := s.rules.CanConfirmAppointment(ctx, a)
		if err != nil {
			return nil, apperrors.Internal("Failed to check time slot availability", err)
		}
		if !ok {
			if _, err := a.Confirm(); err != nil {
				return nil, err
			}
			return nil, domain.TimeSlotUnavailable(a.AppointmentDate(), a.AppointmentTime())
		}
		return a.Confirm()
	})
}

func (s *appointmentService) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	defer s.metrics.ObserveOperation("cancel", time.Now())

	return s.mutate(ctx, id, "cancel", events.AppointmentCancelled, func(a *domain.Appointment) (*domain.Appointment, error) {
		return a.Cancel()
	})
}

func (s *appointmentService) Complete(ctx context.Context, id string) (*model.Appointment, error) {
	defer s.metrics.ObserveOperation("complete", time.Now())

	return s.mutate(ctx, id, "complete", events.AppointmentCompleted, func(a *domain.Appointment) (*domain.Appointment, error) {
		return a.Complete()
	})
}

func (s *appointmentService) Reschedule(ctx context.Context, id string, req *model.AppointmentReschedule) (*model.Appointment, error) {
	defer s.metrics.ObserveOperation("reschedule", time.Now())

	if err := s.validator.ValidateReschedule(req); err != nil {
		return nil, s.invalidInput("Appointment reschedule validation failed", err)
	}
	date, err := domain.ParseDate(req.AppointmentDate, s.cfg.Location)
	if err != nil {
		return nil, s.reject(err)
	}

	return s.mutate(ctx, id, "reschedule", events.AppointmentRescheduled, func(a *domain.Appointment) (*domain.Appointment, error) {
		return a.Reschedule(date, req.AppointmentTime)
	})
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	defer s.metrics.ObserveOperation("delete", time.Now())

	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return s.mapRepoError(err, id, existing)
		}
		return nil
	})
	if err != nil {
		return s.failed("Failed to delete appointment", id, err)
	}

	s.publish(ctx, events.AppointmentDeleted, mapper.ToModel(existing))
	s.cfg.Log.Info("Appointment deleted successfully", "id", id)
	return nil
}

func (s *appointmentService) Stats(ctx context.Context) (*model.AppointmentStats, error) {
	stats, err := s.rules.CalculateAppointmentStats(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to calculate appointment stats", "error", err)
		return nil, apperrors.Internal("Failed to calculate appointment statistics", err)
	}
	return stats, nil
}

// Weekly defaults to the Monday of the current week in the clinic's zone.
func (s *appointmentService) Weekly(ctx context.Context, weekStart string) (*model.WeeklyAppointments, error) {
	var start time.Time
	if weekStart == "" {
		start = mondayOf(s.now().In(s.cfg.Location))
	} else {
		var err error
		start, err = domain.ParseDate(weekStart, s.cfg.Location)
		if err != nil {
			return nil, err
		}
	}

	appointments, err := s.rules.GetWeeklyAppointments(ctx, start)
	if err != nil {
		s.cfg.Log.Error("Failed to list weekly appointments", "week_start", domain.DateKey(start), "error", err)
		return nil, apperrors.Internal("Failed to retrieve weekly appointments", err)
	}

	week := &model.WeeklyAppointments{
		WeekStart:    domain.DateKey(start),
		WeekEnd:      domain.DateKey(WeekEnd(start)),
		Appointments: mapper.ToModels(appointments),
		ByDate:       make(map[string]int, DaysPerWeek),
	}
	for day := 0; day < DaysPerWeek; day++ {
		week.ByDate[domain.DateKey(start.AddDate(0, 0, day))] = 0
	}
	for _, a := range week.Appointments {
		week.ByDate[a.AppointmentDate]++
	}
	return week, nil
}

// mutate loads the appointment, applies change and persists the result.
// Active results that moved to another slot or patient day are checked
// against the scheduling rules under the same locks a create takes.
func (s *appointmentService) mutate(
	ctx context.Context,
	id, operation, eventType string,
	change func(*domain.Appointment) (*domain.Appointment, error),
) (*model.Appointment, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := change(existing)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			return nil, s.failed("Failed to "+operation+" appointment", id, err)
		}
		s.cfg.Log.Warn("Appointment "+operation+" rejected", "id", id, "error", err)
		return nil, s.reject(err)
	}
	if next.IsActive() && movedInTime(existing, next) {
		if err := next.Validate(); err != nil {
			s.cfg.Log.Warn("Appointment "+operation+" rejected", "id", id, "error", err)
			return nil, s.reject(err)
		}
	}

	recheck := next.IsActive() && movedOrReopened(existing, next)
	if recheck {
		release, err := s.acquireLocks(ctx, next)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if recheck {
			if err := s.rules.ValidateAppointmentUpdate(txCtx, next, id); err != nil {
				return err
			}
		}
		if err := s.repo.Update(txCtx, next); err != nil {
			return s.mapRepoError(err, id, next)
		}
		return nil
	})
	if err != nil {
		return nil, s.failed("Failed to "+operation+" appointment", id, err)
	}

	if next.Status() != existing.Status() {
		s.metrics.IncrementTransition(next.Status().String())
	}
	out := mapper.ToModel(next)
	s.publish(ctx, eventType, out)
	s.cfg.Log.Info("Appointment "+operation+" succeeded",
		"id", id,
		"status", out.Status,
		"date", out.AppointmentDate,
		"time", out.AppointmentTime,
	)
	return out, nil
}

func movedOrReopened(before, after *domain.Appointment) bool {
	return !before.IsActive() ||
		before.PatientID() != after.PatientID() ||
		movedInTime(before, after)
}

func movedInTime(before, after *domain.Appointment) bool {
	return !domain.SameDay(before.AppointmentDate(), after.AppointmentDate()) ||
		!before.AppointmentTime().Equals(after.AppointmentTime())
}

func (s *appointmentService) load(ctx context.Context, id string) (*domain.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		mapped := s.mapRepoError(err, id, nil)
		if apperrors.HasCode(mapped, apperrors.CodeInternal) {
			s.cfg.Log.Error("Failed to retrieve appointment", "id", id, "error", err)
		}
		return nil, mapped
	}
	return appointment, nil
}

// acquireLocks takes the patient-day lock, then the slot lock. The returned
// func releases whatever was taken, even after ctx is cancelled.
func (s *appointmentService) acquireLocks(ctx context.Context, a *domain.Appointment) (func(), error) {
	keys := []string{
		repository.PatientLockKey(a.PatientID(), a.AppointmentDate()),
		repository.SlotLockKey(a.AppointmentDate(), a.AppointmentTime()),
	}

	type heldLock struct{ key, owner string }
	var held []heldLock
	release := func() {
		releaseCtx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if err := s.lockRepo.Release(releaseCtx, held[i].key, held[i].owner); err != nil {
				s.cfg.Log.Warn("Failed to release appointment lock", "key", held[i].key, "error", err)
			}
		}
	}

	for _, key := range keys {
		owner, err := s.lockRepo.Acquire(ctx, key, s.cfg.SlotLockTTL)
		if err != nil {
			release()
			if errors.Is(err, appointmentserrors.ErrLockHeld) {
				s.metrics.IncrementLockContention()
				s.cfg.Log.Warn("Appointment lock contention", "key", key)
				return nil, apperrors.Conflict("Another request is booking this time slot, please retry").
					WithDetails(map[string]any{"lock": key, "retryable": true})
			}
			s.cfg.Log.Error("Failed to acquire appointment lock", "key", key, "error", err)
			return nil, apperrors.Internal("Failed to acquire appointment lock", err)
		}
		held = append(held, heldLock{key: key, owner: owner})
	}
	return release, nil
}

func (s *appointmentService) verifyPatient(ctx context.Context, patientID string) error {
	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		s.cfg.Log.Error("Failed to look up patient", "patient_id", patientID, "error", err)
		return apperrors.Unavailable("Patient directory")
	}
	if !ok {
		return s.reject(domain.PatientNotExists(patientID))
	}
	return nil
}

// mapRepoError turns repository sentinels into API errors. a supplies the
// slot and patient day for constraint violations and may be nil.
func (s *appointmentService) mapRepoError(err error, id string, a *domain.Appointment) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, appointmentserrors.ErrNotFound):
		return domain.AppointmentNotFound(id)
	case errors.Is(err, appointmentserrors.ErrInvalidID):
		return domain.InvalidAppointmentID(id)
	case errors.Is(err, appointmentserrors.ErrSlotTaken) && a != nil:
		return domain.TimeSlotUnavailable(a.AppointmentDate(), a.AppointmentTime())
	case errors.Is(err, appointmentserrors.ErrDuplicateBooking) && a != nil:
		return domain.DuplicateAppointment(a.PatientID(), a.AppointmentDate())
	default:
		return apperrors.Internal("Appointment storage failed", err)
	}
}

// failed logs err at the level its kind deserves and returns it as an
// AppError.
func (s *appointmentService) failed(msg, id string, err error) error {
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		s.cfg.Log.Error(msg, "id", id, "error", err)
		return appErr
	}
	s.cfg.Log.Warn(msg, "id", id, "code", appErr.Code, "error", appErr.Message)
	s.metrics.IncrementRejection(appErr.Code)
	return appErr
}

func (s *appointmentService) reject(err error) error {
	if apperrors.IsAppError(err) {
		s.metrics.IncrementRejection(apperrors.AsAppError(err).Code)
	}
	return err
}

func (s *appointmentService) invalidInput(msg string, err error) error {
	s.cfg.Log.Warn(msg, "error", err)
	s.metrics.IncrementRejection(apperrors.CodeValidation)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid appointment input", verrs.Details())
	}
	return apperrors.Validation("Invalid appointment input", map[string]any{"error": err.Error()})
}

// publish never fails the request; the change is already committed.
func (s *appointmentService) publish(ctx context.Context, eventType string, appointment *model.Appointment) {
	if err := s.publisher.Publish(ctx, eventType, appointment); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"id", appointment.ID,
			"error", err,
		)
	}
}

func mondayOf(t time.Time) time.Time {
	day := domain.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
