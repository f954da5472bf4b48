package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "clinic/pkg/errors"
)

func TestNewAppointmentID(t *testing.T) {
	id, err := NewAppointmentID("  665f1c2e9b1d  ")
	require.NoError(t, err)
	assert.Equal(t, "665f1c2e9b1d", id.Value())
	assert.False(t, id.IsZero())

	_, err = NewAppointmentID("   ")
	assert.ErrorIs(t, err, ErrInvalidAppointmentID)

	assert.True(t, AppointmentID{}.IsZero())
}

func TestNewPatientName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "Maria Santos", want: "Maria Santos"},
		{name: "collapses spaces", input: "  Maria   Santos ", want: "Maria Santos"},
		{name: "hyphen apostrophe period", input: "Ma. O'Brien-Cruz", want: "Ma. O'Brien-Cruz"},
		{name: "non latin letters", input: "José Peña", want: "José Peña"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxPatientNameLength+1), wantErr: true},
		{name: "digits", input: "Maria 2", wantErr: true},
		{name: "symbols", input: "Maria@Santos", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPatientName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPatientName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value())
		})
	}
}

func TestNewDoctorName_AllowsLongerNames(t *testing.T) {
	long := strings.Repeat("b", MaxPatientNameLength+10)

	_, err := NewPatientName(long)
	assert.ErrorIs(t, err, ErrInvalidPatientName)

	doctor, err := NewDoctorName(long)
	require.NoError(t, err)
	assert.Equal(t, long, doctor.String())

	_, err = NewDoctorName(strings.Repeat("b", MaxDoctorNameLength+1))
	assert.ErrorIs(t, err, ErrInvalidDoctorName)
}

func TestNewReasonForVisit(t *testing.T) {
	r, err := NewReasonForVisit("  Follow-up check  ")
	require.NoError(t, err)
	assert.Equal(t, "Follow-up check", r.Value())

	for _, input := range []string{"", "  ", "ab", strings.Repeat("x", MaxReasonLength+1)} {
		_, err := NewReasonForVisit(input)
		assert.ErrorIs(t, err, ErrInvalidReasonForVisit, "input %q", input)
	}
}

func TestNewContactNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "ph mobile", input: "09171234567", want: "09171234567"},
		{name: "ph mobile with separators", input: "0917-123-4567", want: "09171234567"},
		{name: "ten digits", input: "(650) 253-0000", want: "6502530000"},
		{name: "eleven digits", input: "1 650 253 0000", want: "16502530000"},
		{name: "too short", input: "12345", wantErr: true},
		{name: "too long", input: "091712345678", wantErr: true},
		{name: "no digits", input: "call me", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewContactNumber(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidContactNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value())
		})
	}
}

func TestContactNumber_Formatted(t *testing.T) {
	mobile, err := NewContactNumber("09171234567")
	require.NoError(t, err)
	assert.Contains(t, strings.ReplaceAll(mobile.Formatted(), " ", ""), "9171234567")
	assert.Equal(t, "+639171234567", mobile.E164())

	unknown, err := NewContactNumber("1234567890")
	require.NoError(t, err)
	assert.Equal(t, "123-456-7890", unknown.Formatted())
	assert.Empty(t, unknown.E164())
}

func TestAppointmentDate(t *testing.T) {
	today := StartOfDay(time.Now())

	d, err := NewAppointmentDate(today.Add(15 * time.Hour))
	require.NoError(t, err)
	assert.True(t, d.IsToday())
	assert.False(t, d.IsFuture())
	assert.Equal(t, today, d.Value())

	tomorrow, err := NewAppointmentDate(today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, tomorrow.IsFuture())
	assert.False(t, tomorrow.IsSameDay(d))

	_, err = NewAppointmentDate(today.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrPastAppointmentDate)

	_, err = NewAppointmentDate(today.AddDate(1, 0, 0))
	assert.NoError(t, err)

	_, err = NewAppointmentDate(today.AddDate(1, 0, 1))
	assert.ErrorIs(t, err, ErrInvalidAppointmentDate)

	_, err = NewAppointmentDate(time.Time{})
	assert.ErrorIs(t, err, ErrInvalidAppointmentDate)
}

func TestAppointmentDate_WeekdayAndWeekend(t *testing.T) {
	fixed := time.Date(2025, time.June, 30, 8, 0, 0, 0, time.UTC)
	withClock(t, fixed)

	saturday, err := NewAppointmentDate(time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, saturday.Weekday())
	assert.True(t, saturday.IsWeekend())

	tuesday, err := ParseAppointmentDate("2025-07-01", time.UTC)
	require.NoError(t, err)
	assert.False(t, tuesday.IsWeekend())
	assert.Equal(t, "2025-07-01", tuesday.String())
}

func TestAppointmentDate_SameDayIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2025, time.July, 1, 7, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.July, 1, 22, 30, 0, 0, time.UTC)
	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(morning, morning.AddDate(0, 0, 1)))
}

func TestParseDate_RejectsBadLayout(t *testing.T) {
	_, err := ParseDate("07/01/2025", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidAppointmentDate)
}

func TestNewAppointmentTime(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "09:00", want: "09:00"},
		{input: "9:05", want: "09:05"},
		{input: "23:59", want: "23:59"},
		{input: "00:00", want: "00:00"},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "9am", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NewAppointmentTime(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAppointmentTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAppointmentTime_Ordering(t *testing.T) {
	nine := mustTime(t, "09:00")
	quarterPast := mustTime(t, "09:15")

	assert.True(t, nine.IsBefore(quarterPast))
	assert.False(t, nine.IsAfter(quarterPast))
	assert.True(t, quarterPast.IsAfter(nine))
	assert.Equal(t, 1439, mustTime(t, "23:59").ToMinutes())
}

func TestAppointmentTime_Format12Hour(t *testing.T) {
	cases := map[string]string{
		"00:00": "12:00 AM",
		"09:05": "9:05 AM",
		"12:30": "12:30 PM",
		"18:45": "6:45 PM",
	}
	for in, want := range cases {
		assert.Equal(t, want, mustTime(t, in).Format12Hour(), in)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses {
		got, err := ParseStatus(strings.ToUpper(string(s)))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStatus("no-show")
	assert.ErrorIs(t, err, ErrInvalidAppointmentStatus)
	for _, s := range AllStatuses {
		assert.Contains(t, err.Error(), s.String())
	}

	assert.True(t, StatusScheduled.IsActive())
	assert.True(t, StatusCompleted.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}

func TestDomainErrors_CarryStatus(t *testing.T) {
	tests := []struct {
		err    *apperrors.AppError
		status int
	}{
		{ErrInvalidAppointmentID, 400},
		{ErrAppointmentNotFound, 404},
		{ErrAlreadyConfirmed, 400},
		{ErrAlreadyCancelled, 400},
		{ErrInvalidTransition, 400},
		{ErrPastAppointmentDate, 400},
		{ErrInvalidAppointmentDate, 400},
		{ErrInvalidAppointmentTime, 400},
		{ErrInvalidAppointmentStatus, 400},
		{ErrTimeSlotUnavailable, 409},
		{ErrDuplicateAppointment, 409},
		{ErrPatientNotExists, 400},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode(), tt.err.Code)
	}

	day := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	slotErr := TimeSlotUnavailable(day, mustTime(t, "09:00"))
	assert.ErrorIs(t, slotErr, ErrTimeSlotUnavailable)
	assert.Contains(t, slotErr.Message, "2025-07-01")
	assert.Contains(t, slotErr.Message, "09:00")
}

func mustTime(t *testing.T, s string) AppointmentTime {
	t.Helper()
	at, err := NewAppointmentTime(s)
	require.NoError(t, err)
	return at
}

// withClock pins the package clock for the duration of the test.
func withClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}
