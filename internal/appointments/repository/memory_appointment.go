package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"clinic/internal/appointments/domain"
	appointmentserrors "clinic/internal/appointments/errors"
	mongotx "clinic/pkg/db/mongo"

	"github.com/google/uuid"
)

// memoryAppointmentRepository keeps appointments in process. It enforces
// the same seat and patient-day constraints as the Mongo indexes, checked
// under the write lock so they hold across goroutines.
type memoryAppointmentRepository struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	appointments map[string]*domain.Appointment
	slotCapacity int
	location     *time.Location
	now          func() time.Time
}

func NewMemoryAppointmentRepository(slotCapacity int, location *time.Location) AppointmentRepository {
	if location == nil {
		location = time.UTC
	}
	return &memoryAppointmentRepository{
		appointments: make(map[string]*domain.Appointment),
		slotCapacity: slotCapacity,
		location:     location,
		now:          time.Now,
	}
}

func (r *memoryAppointmentRepository) Create(_ context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkConstraints(appointment, ""); err != nil {
		return nil, err
	}

	id, err := domain.NewAppointmentID(uuid.NewString())
	if err != nil {
		return nil, err
	}
	stored := appointment.WithID(id)
	r.appointments[id.Value()] = stored
	return stored, nil
}

func (r *memoryAppointmentRepository) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, appointmentserrors.ErrNotFound
	}
	return a, nil
}

func (r *memoryAppointmentRepository) FindAll(_ context.Context, limit int, offset int64) ([]*domain.Appointment, error) {
	all := r.filter(func(*domain.Appointment) bool { return true })
	if offset >= int64(len(all)) {
		return []*domain.Appointment{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryAppointmentRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.appointments)), nil
}

func (r *memoryAppointmentRepository) Update(_ context.Context, appointment *domain.Appointment) error {
	id := appointment.ID().Value()
	if err := validateID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return appointmentserrors.ErrNotFound
	}
	if err := r.checkConstraints(appointment, id); err != nil {
		return err
	}
	r.appointments[id] = appointment
	return nil
}

func (r *memoryAppointmentRepository) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return appointmentserrors.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *memoryAppointmentRepository) GetAll(_ context.Context) ([]*domain.Appointment, error) {
	return r.filter(func(*domain.Appointment) bool { return true }), nil
}

func (r *memoryAppointmentRepository) GetTodayAppointments(_ context.Context) ([]*domain.Appointment, error) {
	today := r.now().In(r.location)
	return r.filter(func(a *domain.Appointment) bool {
		return domain.SameDay(a.AppointmentDate(), today)
	}), nil
}

func (r *memoryAppointmentRepository) GetTodayConfirmedAppointments(_ context.Context) ([]*domain.Appointment, error) {
	today := r.now().In(r.location)
	return r.filter(func(a *domain.Appointment) bool {
		return domain.SameDay(a.AppointmentDate(), today) && a.Status().IsConfirmed()
	}), nil
}

func (r *memoryAppointmentRepository) GetAppointmentsByDateRange(_ context.Context, start, end time.Time) ([]*domain.Appointment, error) {
	from, to := domain.DateKey(start), domain.DateKey(end)
	return r.filter(func(a *domain.Appointment) bool {
		key := domain.DateKey(a.AppointmentDate())
		return key >= from && key <= to
	}), nil
}

func (r *memoryAppointmentRepository) CheckTimeSlotAvailability(_ context.Context, date time.Time, at domain.AppointmentTime, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.seatsTaken(date, at, excludeID) < r.slotCapacity, nil
}

func (r *memoryAppointmentRepository) CheckPatientDuplicateAppointment(_ context.Context, patientID string, date time.Time, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.holdsDay(patientID, date, excludeID), nil
}

// ExecuteTransaction serializes fn against other transactions. Writes made
// by fn before it fails are not rolled back.
func (r *memoryAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	return fn(ctx)
}

func (r *memoryAppointmentRepository) Ping(context.Context) error {
	return nil
}

func (r *memoryAppointmentRepository) checkConstraints(a *domain.Appointment, excludeID string) error {
	if !a.IsActive() {
		return nil
	}
	if r.seatsTaken(a.AppointmentDate(), a.AppointmentTime(), excludeID) >= r.slotCapacity {
		return fmt.Errorf("%w: %s %s", appointmentserrors.ErrSlotTaken, domain.DateKey(a.AppointmentDate()), a.AppointmentTime())
	}
	if r.holdsDay(a.PatientID(), a.AppointmentDate(), excludeID) {
		return fmt.Errorf("%w: %s %s", appointmentserrors.ErrDuplicateBooking, a.PatientID(), domain.DateKey(a.AppointmentDate()))
	}
	return nil
}

func (r *memoryAppointmentRepository) seatsTaken(date time.Time, at domain.AppointmentTime, excludeID string) int {
	taken := 0
	for id, a := range r.appointments {
		if id == excludeID || !a.IsActive() {
			continue
		}
		if domain.SameDay(a.AppointmentDate(), date) && a.AppointmentTime().Equals(at) {
			taken++
		}
	}
	return taken
}

func (r *memoryAppointmentRepository) holdsDay(patientID string, date time.Time, excludeID string) bool {
	for id, a := range r.appointments {
		if id == excludeID || !a.IsActive() {
			continue
		}
		if a.PatientID() == patientID && domain.SameDay(a.AppointmentDate(), date) {
			return true
		}
	}
	return false
}

func (r *memoryAppointmentRepository) filter(keep func(*domain.Appointment) bool) []*domain.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ak, bk := domain.DateKey(a.AppointmentDate()), domain.DateKey(b.AppointmentDate()); ak != bk {
			return ak < bk
		}
		if am, bm := a.AppointmentTime().ToMinutes(), b.AppointmentTime().ToMinutes(); am != bm {
			return am < bm
		}
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		return a.ID().Value() < b.ID().Value()
	})
	return out
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}
	return nil
}
