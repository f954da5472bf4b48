package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"clinic/internal/appointments/domain"
	"clinic/internal/appointments/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQueries answers each query from a function field; unset fields
// return zero values.
type stubQueries struct {
	getAll            func(ctx context.Context) ([]*domain.Appointment, error)
	getToday          func(ctx context.Context) ([]*domain.Appointment, error)
	getTodayConfirmed func(ctx context.Context) ([]*domain.Appointment, error)
	getRange          func(ctx context.Context, start, end time.Time) ([]*domain.Appointment, error)
	slotAvailable     func(ctx context.Context, date time.Time, at domain.AppointmentTime, excludeID string) (bool, error)
	patientDuplicate  func(ctx context.Context, patientID string, date time.Time, excludeID string) (bool, error)
}

func (s *stubQueries) GetAll(ctx context.Context) ([]*domain.Appointment, error) {
	if s.getAll == nil {
		return nil, nil
	}
	return s.getAll(ctx)
}

func (s *stubQueries) GetTodayAppointments(ctx context.Context) ([]*domain.Appointment, error) {
	if s.getToday == nil {
		return nil, nil
	}
	return s.getToday(ctx)
}

func (s *stubQueries) GetTodayConfirmedAppointments(ctx context.Context) ([]*domain.Appointment, error) {
	if s.getTodayConfirmed == nil {
		return nil, nil
	}
	return s.getTodayConfirmed(ctx)
}

func (s *stubQueries) GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Appointment, error) {
	if s.getRange == nil {
		return nil, nil
	}
	return s.getRange(ctx, start, end)
}

func (s *stubQueries) CheckTimeSlotAvailability(ctx context.Context, date time.Time, at domain.AppointmentTime, excludeID string) (bool, error) {
	if s.slotAvailable == nil {
		return true, nil
	}
	return s.slotAvailable(ctx, date, at, excludeID)
}

func (s *stubQueries) CheckPatientDuplicateAppointment(ctx context.Context, patientID string, date time.Time, excludeID string) (bool, error) {
	if s.patientDuplicate == nil {
		return false, nil
	}
	return s.patientDuplicate(ctx, patientID, date, excludeID)
}

var july1 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func stored(t *testing.T, id, patientID string, date time.Time, at string, status domain.Status) *domain.Appointment {
	t.Helper()
	a, err := domain.Reconstitute(domain.AppointmentParams{
		ID:              id,
		PatientID:       patientID,
		PatientName:     "Juan Dela Cruz",
		ReasonForVisit:  "Follow-up consultation",
		AppointmentDate: date,
		AppointmentTime: at,
		Status:          string(status),
		CreatedAt:       date.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	return a
}

func mustTime(t *testing.T, s string) domain.AppointmentTime {
	t.Helper()
	at, err := domain.NewAppointmentTime(s)
	require.NoError(t, err)
	return at
}

// seeded returns a capacity-4 memory repository holding n confirmed
// bookings at 2025-07-01 09:00 for distinct patients.
func seeded(t *testing.T, n int) repository.AppointmentRepository {
	t.Helper()
	repo := repository.NewMemoryAppointmentRepository(4, time.UTC)
	for i := 0; i < n; i++ {
		_, err := repo.Create(context.Background(), stored(t, "seed", fmt.Sprintf("p%d", i+10), july1, "09:00", domain.StatusConfirmed))
		require.NoError(t, err)
	}
	return repo
}

func TestValidateTimeSlotAvailability_Capacity(t *testing.T) {
	ctx := context.Background()
	nine := mustTime(t, "09:00")

	full := NewAppointmentDomainService(seeded(t, 4))
	err := full.ValidateTimeSlotAvailability(ctx, july1, nine, "")
	assert.ErrorIs(t, err, domain.ErrTimeSlotUnavailable)
	assert.Contains(t, err.Error(), "2025-07-01")
	assert.Contains(t, err.Error(), "09:00")

	room := NewAppointmentDomainService(seeded(t, 3))
	assert.NoError(t, room.ValidateTimeSlotAvailability(ctx, july1, nine, ""))
}

func TestValidateTimeSlotAvailability_ExactMatchOnly(t *testing.T) {
	svc := NewAppointmentDomainService(seeded(t, 4))

	assert.NoError(t, svc.ValidateTimeSlotAvailability(context.Background(), july1, mustTime(t, "09:15"), ""))
	assert.NoError(t, svc.ValidateTimeSlotAvailability(context.Background(), july1.AddDate(0, 0, 1), mustTime(t, "09:00"), ""))
}

func TestValidateNoDuplicateAppointment(t *testing.T) {
	stub := &stubQueries{
		patientDuplicate: func(_ context.Context, patientID string, date time.Time, excludeID string) (bool, error) {
			return patientID == "p1" && domain.SameDay(date, july1) && excludeID != "a1", nil
		},
	}
	svc := NewAppointmentDomainService(stub)
	ctx := context.Background()

	err := svc.ValidateNoDuplicateAppointment(ctx, "p1", july1, "")
	assert.ErrorIs(t, err, domain.ErrDuplicateAppointment)
	assert.NoError(t, svc.ValidateNoDuplicateAppointment(ctx, "p1", july1, "a1"))
	assert.NoError(t, svc.ValidateNoDuplicateAppointment(ctx, "p2", july1, ""))
}

func TestValidateAppointmentCreation_SlotCheckedFirst(t *testing.T) {
	var calls []string
	stub := &stubQueries{
		slotAvailable: func(context.Context, time.Time, domain.AppointmentTime, string) (bool, error) {
			calls = append(calls, "slot")
			return false, nil
		},
		patientDuplicate: func(context.Context, string, time.Time, string) (bool, error) {
			calls = append(calls, "duplicate")
			return true, nil
		},
	}

	err := NewAppointmentDomainService(stub).ValidateAppointmentCreation(context.Background(),
		stored(t, "a1", "p1", july1, "09:00", domain.StatusScheduled))

	assert.ErrorIs(t, err, domain.ErrTimeSlotUnavailable)
	assert.Equal(t, []string{"slot"}, calls)
}

func TestValidateAppointmentCreation_Duplicate(t *testing.T) {
	stub := &stubQueries{
		patientDuplicate: func(context.Context, string, time.Time, string) (bool, error) { return true, nil },
	}

	err := NewAppointmentDomainService(stub).ValidateAppointmentCreation(context.Background(),
		stored(t, "a1", "p1", july1, "09:00", domain.StatusScheduled))
	assert.ErrorIs(t, err, domain.ErrDuplicateAppointment)
}

func TestValidateAppointmentUpdate_ExcludesItself(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAppointmentRepository(1, time.UTC)
	saved, err := repo.Create(ctx, stored(t, "seed", "p1", july1, "09:00", domain.StatusScheduled))
	require.NoError(t, err)

	svc := NewAppointmentDomainService(repo)
	assert.NoError(t, svc.ValidateAppointmentUpdate(ctx, saved, saved.ID().Value()))

	err = svc.ValidateAppointmentUpdate(ctx, saved, "")
	assert.ErrorIs(t, err, domain.ErrTimeSlotUnavailable)
}

func TestValidate_PropagatesRepositoryErrors(t *testing.T) {
	boom := errors.New("connection reset")
	stub := &stubQueries{
		slotAvailable: func(context.Context, time.Time, domain.AppointmentTime, string) (bool, error) { return false, boom },
	}

	err := NewAppointmentDomainService(stub).ValidateTimeSlotAvailability(context.Background(), july1, mustTime(t, "09:00"), "")
	assert.Same(t, boom, err)
}

func TestCalculateAppointmentStats(t *testing.T) {
	all := []*domain.Appointment{
		stored(t, "a1", "p1", july1, "09:00", domain.StatusScheduled),
		stored(t, "a2", "p2", july1, "09:00", domain.StatusConfirmed),
		stored(t, "a3", "p3", july1, "10:00", domain.StatusConfirmed),
		stored(t, "a4", "p4", july1, "11:00", domain.StatusCancelled),
		stored(t, "a5", "p5", july1, "12:00", domain.StatusCompleted),
	}
	stub := &stubQueries{
		getAll:            func(context.Context) ([]*domain.Appointment, error) { return all, nil },
		getToday:          func(context.Context) ([]*domain.Appointment, error) { return all[:3], nil },
		getTodayConfirmed: func(context.Context) ([]*domain.Appointment, error) { return all[1:3], nil },
	}

	stats, err := NewAppointmentDomainService(stub).CalculateAppointmentStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Scheduled)
	assert.Equal(t, 2, stats.Confirmed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 3, stats.Today)
	assert.Equal(t, 2, stats.TodayConfirmed)
}

func TestCalculateAppointmentStats_FailsOnAnyQuery(t *testing.T) {
	boom := errors.New("timeout")
	stub := &stubQueries{
		getTodayConfirmed: func(context.Context) ([]*domain.Appointment, error) { return nil, boom },
	}

	stats, err := NewAppointmentDomainService(stub).CalculateAppointmentStats(context.Background())
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, boom)
}

func TestGetWeeklyAppointments_InclusiveSevenDays(t *testing.T) {
	var gotStart, gotEnd time.Time
	stub := &stubQueries{
		getRange: func(_ context.Context, start, end time.Time) ([]*domain.Appointment, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}

	_, err := NewAppointmentDomainService(stub).GetWeeklyAppointments(context.Background(), july1.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", domain.DateKey(gotStart))
	assert.Equal(t, "2025-07-07", domain.DateKey(gotEnd))
}

func TestGetWeeklyAppointments_AgainstRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAppointmentRepository(4, time.UTC)
	for i, day := range []int{0, 3, 6, 7} {
		_, err := repo.Create(ctx, stored(t, "seed", fmt.Sprintf("p%d", i), july1.AddDate(0, 0, day), "09:00", domain.StatusScheduled))
		require.NoError(t, err)
	}

	week, err := NewAppointmentDomainService(repo).GetWeeklyAppointments(ctx, july1)
	require.NoError(t, err)
	assert.Len(t, week, 3)
}

func TestCanConfirmAppointment(t *testing.T) {
	ctx := context.Background()
	var excluded string
	open := &stubQueries{
		slotAvailable: func(_ context.Context, _ time.Time, _ domain.AppointmentTime, excludeID string) (bool, error) {
			excluded = excludeID
			return true, nil
		},
	}
	full := &stubQueries{
		slotAvailable: func(context.Context, time.Time, domain.AppointmentTime, string) (bool, error) { return false, nil },
	}

	tests := []struct {
		name   string
		status domain.Status
		q      *stubQueries
		want   bool
	}{
		{"scheduled with room", domain.StatusScheduled, open, true},
		{"scheduled slot full", domain.StatusScheduled, full, false},
		{"already confirmed", domain.StatusConfirmed, open, false},
		{"cancelled", domain.StatusCancelled, open, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := stored(t, "a1", "p1", july1, "09:00", tt.status)
			ok, err := NewAppointmentDomainService(tt.q).CanConfirmAppointment(ctx, a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
	assert.Equal(t, "a1", excluded)
}
