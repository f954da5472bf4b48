package domain

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	apperrors "clinic/pkg/errors"
	"clinic/pkg/sanitizer"
)

const (
	MinNameLength        = 2
	MaxPatientNameLength = 50
	MaxDoctorNameLength  = 255
)

// Letters in any script, spaces, hyphens, apostrophes and periods.
var personNamePattern = regexp.MustCompile(`^[\p{L} \-'.]+$`)

type PatientName struct {
	value string
}

func NewPatientName(value string) (PatientName, error) {
	normalized, err := validatePersonName(ErrInvalidPatientName, "patient name", value, MaxPatientNameLength)
	if err != nil {
		return PatientName{}, err
	}
	return PatientName{value: normalized}, nil
}

func (n PatientName) Value() string  { return n.value }
func (n PatientName) String() string { return n.value }

func (n PatientName) Equals(other PatientName) bool {
	return n.value == other.value
}

type DoctorName struct {
	value string
}

func NewDoctorName(value string) (DoctorName, error) {
	normalized, err := validatePersonName(ErrInvalidDoctorName, "doctor name", value, MaxDoctorNameLength)
	if err != nil {
		return DoctorName{}, err
	}
	return DoctorName{value: normalized}, nil
}

func (n DoctorName) Value() string  { return n.value }
func (n DoctorName) String() string { return n.value }

func (n DoctorName) Equals(other DoctorName) bool {
	return n.value == other.value
}

func validatePersonName(sentinel *apperrors.AppError, label, value string, maxLen int) (string, error) {
	normalized := sanitizer.NormalizeName(value)
	if normalized == "" {
		return "", invalid(sentinel, label+" cannot be empty")
	}
	length := utf8.RuneCountInString(normalized)
	if length < MinNameLength {
		return "", invalid(sentinel, fmt.Sprintf("%s must be at least %d characters", label, MinNameLength))
	}
	if length > maxLen {
		return "", invalid(sentinel, fmt.Sprintf("%s must be at most %d characters", label, maxLen))
	}
	if !personNamePattern.MatchString(normalized) {
		return "", invalid(sentinel, label+" may only contain letters, spaces, hyphens, apostrophes and periods")
	}
	return normalized, nil
}
