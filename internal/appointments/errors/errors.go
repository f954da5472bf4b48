package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrSlotTaken = errors.New("every seat of the time slot is taken")

	ErrDuplicateBooking = errors.New("patient already holds an active appointment that day")

	ErrLockHeld = errors.New("appointment lock is held by another request")
)
