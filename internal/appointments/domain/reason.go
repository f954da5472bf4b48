package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinReasonLength = 3
	MaxReasonLength = 500
)

type ReasonForVisit struct {
	value string
}

func NewReasonForVisit(value string) (ReasonForVisit, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ReasonForVisit{}, invalid(ErrInvalidReasonForVisit, "reason for visit cannot be empty")
	}
	length := utf8.RuneCountInString(value)
	if length < MinReasonLength || length > MaxReasonLength {
		return ReasonForVisit{}, invalid(ErrInvalidReasonForVisit,
			fmt.Sprintf("reason for visit must be between %d and %d characters", MinReasonLength, MaxReasonLength))
	}
	return ReasonForVisit{value: value}, nil
}

func (r ReasonForVisit) Value() string  { return r.value }
func (r ReasonForVisit) String() string { return r.value }

func (r ReasonForVisit) Equals(other ReasonForVisit) bool {
	return r.value == other.value
}
