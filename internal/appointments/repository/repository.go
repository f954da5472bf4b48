package repository

import (
	"context"
	"time"

	"clinic/internal/appointments/domain"
	mongotx "clinic/pkg/db/mongo"
)

// AppointmentQueries is everything the scheduling rules need to know about
// other appointments. Implementations decide slot availability against their
// configured capacity.
type AppointmentQueries interface {
	GetAll(ctx context.Context) ([]*domain.Appointment, error)
	GetTodayAppointments(ctx context.Context) ([]*domain.Appointment, error)
	GetTodayConfirmedAppointments(ctx context.Context) ([]*domain.Appointment, error)
	// GetAppointmentsByDateRange returns appointments whose calendar day lies
	// in [start, end], both ends inclusive.
	GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Appointment, error)
	// CheckTimeSlotAvailability reports whether fewer active appointments than
	// the slot capacity share the exact date and time, ignoring excludeID.
	CheckTimeSlotAvailability(ctx context.Context, date time.Time, at domain.AppointmentTime, excludeID string) (bool, error)
	// CheckPatientDuplicateAppointment reports whether the patient already
	// holds another active appointment on that day.
	CheckPatientDuplicateAppointment(ctx context.Context, patientID string, date time.Time, excludeID string) (bool, error)
}

type AppointmentRepository interface {
	AppointmentQueries

	// Create stores a new appointment and returns it with its assigned id.
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*domain.Appointment, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, appointment *domain.Appointment) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
	Ping(ctx context.Context) error
}

// SlotLockRepository hands out short lived advisory locks.
type SlotLockRepository interface {
	// Acquire returns ErrLockHeld when a live lock with the key exists.
	// The returned owner token must be passed back to Release.
	Acquire(ctx context.Context, key string, ttl time.Duration) (owner string, err error)
	Release(ctx context.Context, key, owner string) error
}

func SlotLockKey(date time.Time, at domain.AppointmentTime) string {
	return "slot:" + domain.DateKey(date) + ":" + at.String()
}

func PatientLockKey(patientID string, date time.Time) string {
	return "patient:" + patientID + ":" + domain.DateKey(date)
}
