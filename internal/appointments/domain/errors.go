package domain

import (
	"fmt"
	"net/http"
	"time"

	apperrors "clinic/pkg/errors"
)

// Error codes surfaced to API clients. They are stable and safe to switch on.
const (
	CodeInvalidAppointmentID     = "INVALID_APPOINTMENT_ID"
	CodeInvalidPatientID         = "INVALID_PATIENT_ID"
	CodeInvalidPatientName       = "INVALID_PATIENT_NAME"
	CodeInvalidDoctorName        = "INVALID_DOCTOR_NAME"
	CodeInvalidReasonForVisit    = "INVALID_REASON_FOR_VISIT"
	CodeInvalidContactNumber     = "INVALID_CONTACT_NUMBER"
	CodeAppointmentNotFound      = "APPOINTMENT_NOT_FOUND"
	CodeAlreadyConfirmed         = "APPOINTMENT_ALREADY_CONFIRMED"
	CodeAlreadyCancelled         = "APPOINTMENT_ALREADY_CANCELLED"
	CodeInvalidTransition        = "INVALID_APPOINTMENT_TRANSITION"
	CodePastAppointmentDate      = "PAST_APPOINTMENT_DATE"
	CodeInvalidAppointmentDate   = "INVALID_APPOINTMENT_DATE"
	CodeInvalidAppointmentTime   = "INVALID_APPOINTMENT_TIME"
	CodeInvalidAppointmentStatus = "INVALID_APPOINTMENT_STATUS"
	CodeTimeSlotUnavailable      = "TIME_SLOT_UNAVAILABLE"
	CodeDuplicateAppointment     = "DUPLICATE_APPOINTMENT"
	CodePatientNotExists         = "PATIENT_NOT_EXISTS"
)

// Sentinels for errors.Is. Matching is by code, so the concrete errors
// returned below carry specific messages and still match these.
var (
	ErrInvalidAppointmentID     = apperrors.New(CodeInvalidAppointmentID, "invalid appointment id", http.StatusBadRequest)
	ErrInvalidPatientID         = apperrors.New(CodeInvalidPatientID, "invalid patient id", http.StatusBadRequest)
	ErrInvalidPatientName       = apperrors.New(CodeInvalidPatientName, "invalid patient name", http.StatusBadRequest)
	ErrInvalidDoctorName        = apperrors.New(CodeInvalidDoctorName, "invalid doctor name", http.StatusBadRequest)
	ErrInvalidReasonForVisit    = apperrors.New(CodeInvalidReasonForVisit, "invalid reason for visit", http.StatusBadRequest)
	ErrInvalidContactNumber     = apperrors.New(CodeInvalidContactNumber, "invalid contact number", http.StatusBadRequest)
	ErrAppointmentNotFound      = apperrors.New(CodeAppointmentNotFound, "appointment not found", http.StatusNotFound)
	ErrAlreadyConfirmed         = apperrors.New(CodeAlreadyConfirmed, "appointment is already confirmed", http.StatusBadRequest)
	ErrAlreadyCancelled         = apperrors.New(CodeAlreadyCancelled, "appointment is already cancelled", http.StatusBadRequest)
	ErrInvalidTransition        = apperrors.New(CodeInvalidTransition, "invalid appointment status transition", http.StatusBadRequest)
	ErrPastAppointmentDate      = apperrors.New(CodePastAppointmentDate, "appointment date cannot be in the past", http.StatusBadRequest)
	ErrInvalidAppointmentDate   = apperrors.New(CodeInvalidAppointmentDate, "invalid appointment date", http.StatusBadRequest)
	ErrInvalidAppointmentTime   = apperrors.New(CodeInvalidAppointmentTime, "invalid appointment time", http.StatusBadRequest)
	ErrInvalidAppointmentStatus = apperrors.New(CodeInvalidAppointmentStatus, "invalid appointment status", http.StatusBadRequest)
	ErrTimeSlotUnavailable      = apperrors.New(CodeTimeSlotUnavailable, "time slot is unavailable", http.StatusConflict)
	ErrDuplicateAppointment     = apperrors.New(CodeDuplicateAppointment, "patient already has an appointment on this date", http.StatusConflict)
	ErrPatientNotExists         = apperrors.New(CodePatientNotExists, "patient does not exist", http.StatusBadRequest)
)

func invalid(sentinel *apperrors.AppError, reason string) *apperrors.AppError {
	return apperrors.New(sentinel.Code, reason, sentinel.HTTPStatus)
}

func InvalidAppointmentID(id string) *apperrors.AppError {
	return apperrors.New(CodeInvalidAppointmentID, fmt.Sprintf("appointment id %q is malformed", id), http.StatusBadRequest)
}

func AppointmentNotFound(id string) *apperrors.AppError {
	return apperrors.New(CodeAppointmentNotFound, fmt.Sprintf("appointment %s not found", id), http.StatusNotFound).
		WithDetails(map[string]any{"id": id})
}

func AlreadyConfirmed(id string) *apperrors.AppError {
	return apperrors.New(CodeAlreadyConfirmed, fmt.Sprintf("appointment %s is already confirmed", displayID(id)), http.StatusBadRequest)
}

func AlreadyCancelled(id string) *apperrors.AppError {
	return apperrors.New(CodeAlreadyCancelled, fmt.Sprintf("appointment %s is already cancelled", displayID(id)), http.StatusBadRequest)
}

func InvalidTransition(from, to Status) *apperrors.AppError {
	return apperrors.New(CodeInvalidTransition, fmt.Sprintf("cannot transition appointment from %s to %s", from, to), http.StatusBadRequest).
		WithDetails(map[string]any{"from": string(from), "to": string(to)})
}

func TimeSlotUnavailable(date time.Time, t AppointmentTime) *apperrors.AppError {
	return apperrors.New(CodeTimeSlotUnavailable,
		fmt.Sprintf("time slot %s at %s is fully booked", DateKey(date), t.String()),
		http.StatusConflict,
	).WithDetails(map[string]any{"date": DateKey(date), "time": t.String()})
}

func DuplicateAppointment(patientID string, date time.Time) *apperrors.AppError {
	return apperrors.New(CodeDuplicateAppointment,
		fmt.Sprintf("patient %s already has an appointment on %s", patientID, DateKey(date)),
		http.StatusConflict,
	).WithDetails(map[string]any{"patient_id": patientID, "date": DateKey(date)})
}

func PatientNotExists(patientID string) *apperrors.AppError {
	return apperrors.New(CodePatientNotExists, fmt.Sprintf("patient %s does not exist", patientID), http.StatusBadRequest)
}

func displayID(id string) string {
	if id == "" {
		return "(unsaved)"
	}
	return id
}
