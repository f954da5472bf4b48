package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic/internal/appointments/domain"
	"clinic/pkg/model"
)

func TestToModelAndBack(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	day := domain.StartOfDay(time.Now().In(manila)).AddDate(0, 0, 3)
	a, err := domain.Reconstitute(domain.AppointmentParams{
		ID:              "a-1",
		PatientID:       "p1",
		PatientName:     "Maria Santos",
		ReasonForVisit:  "Check-up",
		AppointmentDate: day,
		AppointmentTime: "14:30",
		Status:          "confirmed",
		ContactNumber:   "09171234567",
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	})
	require.NoError(t, err)

	m := ToModel(a)
	assert.Equal(t, domain.DateKey(day), m.AppointmentDate)
	assert.Equal(t, m.AppointmentDate, m.DateKey)
	assert.Equal(t, "14:30", m.AppointmentTime)
	assert.Equal(t, "2:30 PM", m.DisplayTime)
	assert.Equal(t, 870, m.TimeMinutes)
	assert.True(t, m.Active)
	assert.NotEmpty(t, m.DisplayContact)
	assert.Empty(t, m.DoctorName)

	// Storage hands back the instant in UTC; the day must survive.
	m.Date = m.Date.UTC()
	back, err := FromModel(m, manila)
	require.NoError(t, err)
	assert.True(t, back.IsOnDate(day))
	assert.Equal(t, a.Snapshot().CreatedAt, back.Snapshot().CreatedAt)
	assert.True(t, back.Equals(a))
}

func TestFromModel_RejectsBrokenRecords(t *testing.T) {
	_, err := FromModel(&model.Appointment{
		ID:              "a-1",
		PatientID:       "p1",
		PatientName:     "Maria Santos",
		ReasonForVisit:  "Check-up",
		AppointmentTime: "09:00",
		Status:          "scheduled",
	}, time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidAppointmentDate)

	_, err = FromModel(&model.Appointment{
		ID:              "a-1",
		PatientID:       "p1",
		PatientName:     "Maria Santos",
		ReasonForVisit:  "Check-up",
		DateKey:         "2025-07-01",
		AppointmentTime: "09:00",
		Status:          "rescheduled",
	}, time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidAppointmentStatus)
}
