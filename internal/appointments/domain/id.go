package domain

import "strings"

// AppointmentID is assigned by persistence. The zero value means the
// appointment has not been saved yet.
type AppointmentID struct {
	value string
}

func NewAppointmentID(value string) (AppointmentID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return AppointmentID{}, invalid(ErrInvalidAppointmentID, "appointment id cannot be empty")
	}
	return AppointmentID{value: value}, nil
}

func (id AppointmentID) Value() string  { return id.value }
func (id AppointmentID) String() string { return id.value }
func (id AppointmentID) IsZero() bool   { return id.value == "" }

func (id AppointmentID) Equals(other AppointmentID) bool {
	return id.value == other.value
}
