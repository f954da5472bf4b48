package domain

import (
	"regexp"

	"clinic/pkg/sanitizer"
)

var (
	philippineMobilePattern = regexp.MustCompile(`^09\d{9}$`)
	genericNumberPattern    = regexp.MustCompile(`^\d{10,11}$`)
)

// ContactNumber keeps digits only. Accepted shapes are a Philippine mobile
// number (09XXXXXXXXX) or any 10 or 11 digit number.
type ContactNumber struct {
	value string
}

func NewContactNumber(raw string) (ContactNumber, error) {
	digits := sanitizer.DigitsOnly(raw)
	if digits == "" {
		return ContactNumber{}, invalid(ErrInvalidContactNumber, "contact number cannot be empty")
	}
	if !philippineMobilePattern.MatchString(digits) && !genericNumberPattern.MatchString(digits) {
		return ContactNumber{}, invalid(ErrInvalidContactNumber,
			"contact number must be a Philippine mobile number (09XXXXXXXXX) or have 10 to 11 digits")
	}
	return ContactNumber{value: digits}, nil
}

func (c ContactNumber) Value() string  { return c.value }
func (c ContactNumber) String() string { return c.value }

// Formatted is the display form. Numbers the phone metadata recognizes are
// rendered in their national format; anything else is grouped by hand.
func (c ContactNumber) Formatted() string {
	if national := sanitizer.FormatPhoneNational(c.value); national != "" {
		return national
	}
	switch len(c.value) {
	case 11:
		return c.value[:4] + "-" + c.value[4:7] + "-" + c.value[7:]
	case 10:
		return c.value[:3] + "-" + c.value[3:6] + "-" + c.value[6:]
	default:
		return c.value
	}
}

// E164 returns the international form, or "" if the number cannot be
// resolved to a region.
func (c ContactNumber) E164() string {
	return sanitizer.NormalizePhone(c.value)
}

func (c ContactNumber) Equals(other ContactNumber) bool {
	return c.value == other.value
}
