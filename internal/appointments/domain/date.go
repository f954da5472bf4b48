package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// MaxBookingHorizonYears is how far ahead an appointment may be booked.
const MaxBookingHorizonYears = 1

var now = time.Now

// AppointmentDate is a calendar day. The time of day of the input is
// discarded; "today" is evaluated in the location of the input.
type AppointmentDate struct {
	value time.Time
}

func NewAppointmentDate(t time.Time) (AppointmentDate, error) {
	if err := checkBookableDate(t); err != nil {
		return AppointmentDate{}, err
	}
	return AppointmentDate{value: StartOfDay(t)}, nil
}

// ParseAppointmentDate reads a YYYY-MM-DD string in loc.
func ParseAppointmentDate(s string, loc *time.Location) (AppointmentDate, error) {
	t, err := ParseDate(s, loc)
	if err != nil {
		return AppointmentDate{}, err
	}
	return NewAppointmentDate(t)
}

// ParseDate reads a YYYY-MM-DD string in loc without any range checks.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, invalid(ErrInvalidAppointmentDate, fmt.Sprintf("date %q must use the YYYY-MM-DD format", s))
	}
	return t, nil
}

func (d AppointmentDate) Value() time.Time      { return d.value }
func (d AppointmentDate) String() string        { return DateKey(d.value) }
func (d AppointmentDate) Weekday() time.Weekday { return d.value.Weekday() }

func (d AppointmentDate) IsWeekend() bool {
	wd := d.value.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d AppointmentDate) IsToday() bool {
	return SameDay(d.value, now().In(d.value.Location()))
}

func (d AppointmentDate) IsFuture() bool {
	return d.value.After(today(d.value.Location()))
}

func (d AppointmentDate) IsSameDay(other AppointmentDate) bool {
	return SameDay(d.value, other.value)
}

func (d AppointmentDate) Equals(other AppointmentDate) bool {
	return d.IsSameDay(other)
}

// checkBookableDate rejects dates before today and beyond the booking horizon.
func checkBookableDate(t time.Time) error {
	if t.IsZero() {
		return invalid(ErrInvalidAppointmentDate, "appointment date is required")
	}
	day := StartOfDay(t)
	start := today(t.Location())
	if day.Before(start) {
		return pastDate(day)
	}
	limit := start.AddDate(MaxBookingHorizonYears, 0, 0)
	if day.After(limit) {
		return invalid(ErrInvalidAppointmentDate,
			fmt.Sprintf("appointment date %s is more than one year ahead (latest %s)", DateKey(day), DateKey(limit)))
	}
	return nil
}

func pastDate(day time.Time) error {
	return invalid(ErrPastAppointmentDate, fmt.Sprintf("appointment date %s is in the past", DateKey(day)))
}

func today(loc *time.Location) time.Time {
	return StartOfDay(now().In(loc))
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar days, each read in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
