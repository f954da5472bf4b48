package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var appointmentTimePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// AppointmentTime is a 24-hour wall clock time, always rendered as HH:MM.
type AppointmentTime struct {
	hours   int
	minutes int
}

func NewAppointmentTime(value string) (AppointmentTime, error) {
	value = strings.TrimSpace(value)
	match := appointmentTimePattern.FindStringSubmatch(value)
	if match == nil {
		return AppointmentTime{}, invalid(ErrInvalidAppointmentTime,
			fmt.Sprintf("appointment time %q must use the 24-hour HH:MM format", value))
	}
	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	return AppointmentTime{hours: hours, minutes: minutes}, nil
}

func (t AppointmentTime) Hours() int   { return t.hours }
func (t AppointmentTime) Minutes() int { return t.minutes }
func (t AppointmentTime) Value() string {
	return t.String()
}

func (t AppointmentTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.hours, t.minutes)
}

func (t AppointmentTime) ToMinutes() int {
	return t.hours*60 + t.minutes
}

func (t AppointmentTime) IsBefore(other AppointmentTime) bool {
	return t.ToMinutes() < other.ToMinutes()
}

func (t AppointmentTime) IsAfter(other AppointmentTime) bool {
	return t.ToMinutes() > other.ToMinutes()
}

// Format12Hour renders e.g. "9:05 AM" or "12:30 PM".
func (t AppointmentTime) Format12Hour() string {
	period := "AM"
	if t.hours >= 12 {
		period = "PM"
	}
	h := t.hours % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.minutes, period)
}

func (t AppointmentTime) Equals(other AppointmentTime) bool {
	return t.hours == other.hours && t.minutes == other.minutes
}
