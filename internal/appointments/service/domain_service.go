package service

import (
	"context"
	"time"

	"clinic/internal/appointments/domain"
	"clinic/internal/appointments/repository"
	"clinic/pkg/model"

	"golang.org/x/sync/errgroup"
)

// DaysPerWeek bounds GetWeeklyAppointments to [weekStart, weekStart+6].
const DaysPerWeek = 7

// AppointmentDomainService holds the rules that need to see other
// appointments. It is stateless; every fact comes from queries.
type AppointmentDomainService struct {
	queries repository.AppointmentQueries
}

func NewAppointmentDomainService(queries repository.AppointmentQueries) *AppointmentDomainService {
	return &AppointmentDomainService{queries: queries}
}

// ValidateAppointmentCreation checks the slot first and stops at the first
// violation.
func (s *AppointmentDomainService) ValidateAppointmentCreation(ctx context.Context, a *domain.Appointment) error {
	if err := s.ValidateTimeSlotAvailability(ctx, a.AppointmentDate(), a.AppointmentTime(), ""); err != nil {
		return err
	}
	return s.ValidateNoDuplicateAppointment(ctx, a.PatientID(), a.AppointmentDate(), "")
}

// ValidateAppointmentUpdate runs the creation checks with excludeID left out
// of both counts so a record never collides with itself.
func (s *AppointmentDomainService) ValidateAppointmentUpdate(ctx context.Context, a *domain.Appointment, excludeID string) error {
	if err := s.ValidateTimeSlotAvailability(ctx, a.AppointmentDate(), a.AppointmentTime(), excludeID); err != nil {
		return err
	}
	return s.ValidateNoDuplicateAppointment(ctx, a.PatientID(), a.AppointmentDate(), excludeID)
}

func (s *AppointmentDomainService) ValidateTimeSlotAvailability(ctx context.Context, date time.Time, at domain.AppointmentTime, excludeID string) error {
	available, err := s.queries.CheckTimeSlotAvailability(ctx, date, at, excludeID)
	if err != nil {
		return err
	}
	if !available {
		return domain.TimeSlotUnavailable(date, at)
	}
	return nil
}

func (s *AppointmentDomainService) ValidateNoDuplicateAppointment(ctx context.Context, patientID string, date time.Time, excludeID string) error {
	exists, err := s.queries.CheckPatientDuplicateAppointment(ctx, patientID, date, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.DuplicateAppointment(patientID, date)
	}
	return nil
}

// CalculateAppointmentStats fetches the full set and today's subsets
// concurrently and counts them in process.
func (s *AppointmentDomainService) CalculateAppointmentStats(ctx context.Context) (*model.AppointmentStats, error) {
	var all, today, todayConfirmed []*domain.Appointment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.queries.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		today, err = s.queries.GetTodayAppointments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		todayConfirmed, err = s.queries.GetTodayConfirmedAppointments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &model.AppointmentStats{
		Total:          len(all),
		Today:          len(today),
		TodayConfirmed: len(todayConfirmed),
	}
	for _, a := range all {
		switch a.Status() {
		case domain.StatusScheduled:
			stats.Scheduled++
		case domain.StatusConfirmed:
			stats.Confirmed++
		case domain.StatusCancelled:
			stats.Cancelled++
		case domain.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

// GetWeeklyAppointments returns appointments from weekStart through the
// sixth day after it, both inclusive.
func (s *AppointmentDomainService) GetWeeklyAppointments(ctx context.Context, weekStart time.Time) ([]*domain.Appointment, error) {
	start := domain.StartOfDay(weekStart)
	return s.queries.GetAppointmentsByDateRange(ctx, start, WeekEnd(start))
}

// CanConfirmAppointment only reads. Confirmed and cancelled appointments
// are never confirmable; anything else is if its slot still has room.
func (s *AppointmentDomainService) CanConfirmAppointment(ctx context.Context, a *domain.Appointment) (bool, error) {
	if a.Status().IsConfirmed() || a.Status().IsCancelled() {
		return false, nil
	}
	return s.queries.CheckTimeSlotAvailability(ctx, a.AppointmentDate(), a.AppointmentTime(), a.ID().Value())
}

func WeekEnd(weekStart time.Time) time.Time {
	return domain.StartOfDay(weekStart).AddDate(0, 0, DaysPerWeek-1)
}
