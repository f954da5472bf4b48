package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var AllStatuses = []Status{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted}

func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	names := make([]string, 0, len(AllStatuses))
	for _, known := range AllStatuses {
		if s == known {
			return s, nil
		}
		names = append(names, known.String())
	}
	return "", invalid(ErrInvalidAppointmentStatus,
		fmt.Sprintf("status %q must be one of %s", value, strings.Join(names, ", ")))
}

func (s Status) Value() string  { return string(s) }
func (s Status) String() string { return string(s) }

func (s Status) IsScheduled() bool { return s == StatusScheduled }
func (s Status) IsConfirmed() bool { return s == StatusConfirmed }
func (s Status) IsCancelled() bool { return s == StatusCancelled }
func (s Status) IsCompleted() bool { return s == StatusCompleted }

// IsActive reports whether the booking still holds its slot.
func (s Status) IsActive() bool { return s != StatusCancelled }

func (s Status) Equals(other Status) bool { return s == other }
