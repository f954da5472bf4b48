package domain

import (
	"fmt"
	"strings"
	"time"
)

// Appointment is a single booking. It is immutable: every state change
// returns a new *Appointment and leaves the receiver as it was, so callers
// holding the previous instance never observe a transition.
type Appointment struct {
	id              AppointmentID
	patientID       string
	patientName     PatientName
	reasonForVisit  ReasonForVisit
	appointmentDate time.Time
	appointmentTime AppointmentTime
	status          Status
	contactNumber   *ContactNumber
	doctorName      *DoctorName
	createdAt       time.Time
	updatedAt       *time.Time
}

// AppointmentParams is the raw input for building an Appointment. Optional
// text fields are omitted by leaving them empty.
type AppointmentParams struct {
	ID              string
	PatientID       string
	PatientName     string
	ReasonForVisit  string
	AppointmentDate time.Time
	AppointmentTime string
	Status          string
	ContactNumber   string
	DoctorName      string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// AppointmentChanges lists the fields Update may replace. Nil leaves a field
// as is; a pointer to "" clears an optional field.
type AppointmentChanges struct {
	PatientID       *string
	PatientName     *string
	ReasonForVisit  *string
	AppointmentDate *time.Time
	AppointmentTime *string
	ContactNumber   *string
	DoctorName      *string
}

func (c AppointmentChanges) IsEmpty() bool {
	return c.PatientID == nil && c.PatientName == nil && c.ReasonForVisit == nil &&
		c.AppointmentDate == nil && c.AppointmentTime == nil &&
		c.ContactNumber == nil && c.DoctorName == nil
}

// Snapshot is a flat, exported copy of an Appointment for persistence and
// transport mapping.
type Snapshot struct {
	ID              string
	PatientID       string
	PatientName     string
	ReasonForVisit  string
	AppointmentDate time.Time
	AppointmentTime string
	Status          Status
	ContactNumber   string
	DoctorName      string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// NewAppointment builds a fresh booking. The status is always scheduled and
// the date must be bookable: not before today and within the horizon.
func NewAppointment(p AppointmentParams) (*Appointment, error) {
	a, err := build(p)
	if err != nil {
		return nil, err
	}
	if err := checkBookableDate(p.AppointmentDate); err != nil {
		return nil, err
	}
	if p.ID != "" {
		if a.id, err = NewAppointmentID(p.ID); err != nil {
			return nil, err
		}
	}
	a.status = StatusScheduled
	a.createdAt = p.CreatedAt
	if a.createdAt.IsZero() {
		a.createdAt = now()
	}
	a.updatedAt = copyTime(p.UpdatedAt)
	return a, nil
}

// Reconstitute rebuilds a stored appointment. Field rules are enforced, but
// the past-date rule is not: history is allowed to be in the past.
func Reconstitute(p AppointmentParams) (*Appointment, error) {
	a, err := build(p)
	if err != nil {
		return nil, err
	}
	if p.AppointmentDate.IsZero() {
		return nil, invalid(ErrInvalidAppointmentDate, "appointment date is required")
	}
	if a.id, err = NewAppointmentID(p.ID); err != nil {
		return nil, err
	}
	if a.status, err = ParseStatus(p.Status); err != nil {
		return nil, err
	}
	a.createdAt = p.CreatedAt
	a.updatedAt = copyTime(p.UpdatedAt)
	return a, nil
}

func build(p AppointmentParams) (*Appointment, error) {
	patientID := strings.TrimSpace(p.PatientID)
	if patientID == "" {
		return nil, invalid(ErrInvalidPatientID, "patient id is required")
	}
	patientName, err := NewPatientName(p.PatientName)
	if err != nil {
		return nil, err
	}
	reason, err := NewReasonForVisit(p.ReasonForVisit)
	if err != nil {
		return nil, err
	}
	apptTime, err := NewAppointmentTime(p.AppointmentTime)
	if err != nil {
		return nil, err
	}
	contact, err := optionalContact(p.ContactNumber)
	if err != nil {
		return nil, err
	}
	doctor, err := optionalDoctor(p.DoctorName)
	if err != nil {
		return nil, err
	}
	return &Appointment{
		patientID:       patientID,
		patientName:     patientName,
		reasonForVisit:  reason,
		appointmentDate: StartOfDay(p.AppointmentDate),
		appointmentTime: apptTime,
		contactNumber:   contact,
		doctorName:      doctor,
	}, nil
}

func optionalContact(raw string) (*ContactNumber, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	c, err := NewContactNumber(raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func optionalDoctor(raw string) (*DoctorName, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := NewDoctorName(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (a *Appointment) ID() AppointmentID                { return a.id }
func (a *Appointment) PatientID() string                { return a.patientID }
func (a *Appointment) PatientName() PatientName         { return a.patientName }
func (a *Appointment) ReasonForVisit() ReasonForVisit   { return a.reasonForVisit }
func (a *Appointment) AppointmentDate() time.Time       { return a.appointmentDate }
func (a *Appointment) AppointmentTime() AppointmentTime { return a.appointmentTime }
func (a *Appointment) Status() Status                   { return a.status }
func (a *Appointment) CreatedAt() time.Time             { return a.createdAt }
func (a *Appointment) IsActive() bool                   { return a.status.IsActive() }

func (a *Appointment) ContactNumber() (ContactNumber, bool) {
	if a.contactNumber == nil {
		return ContactNumber{}, false
	}
	return *a.contactNumber, true
}

func (a *Appointment) DoctorName() (DoctorName, bool) {
	if a.doctorName == nil {
		return DoctorName{}, false
	}
	return *a.doctorName, true
}

func (a *Appointment) UpdatedAt() (time.Time, bool) {
	if a.updatedAt == nil {
		return time.Time{}, false
	}
	return *a.updatedAt, true
}

// StartsAt combines the date and the time of day in the date's location.
func (a *Appointment) StartsAt() time.Time {
	y, m, d := a.appointmentDate.Date()
	return time.Date(y, m, d, a.appointmentTime.Hours(), a.appointmentTime.Minutes(), 0, 0, a.appointmentDate.Location())
}

// WithID returns a copy carrying the id assigned by storage.
func (a *Appointment) WithID(id AppointmentID) *Appointment {
	next := a.clone()
	next.id = id
	return next
}

func (a *Appointment) Snapshot() Snapshot {
	s := Snapshot{
		ID:              a.id.Value(),
		PatientID:       a.patientID,
		PatientName:     a.patientName.Value(),
		ReasonForVisit:  a.reasonForVisit.Value(),
		AppointmentDate: a.appointmentDate,
		AppointmentTime: a.appointmentTime.String(),
		Status:          a.status,
		CreatedAt:       a.createdAt,
		UpdatedAt:       copyTime(a.updatedAt),
	}
	if a.contactNumber != nil {
		s.ContactNumber = a.contactNumber.Value()
	}
	if a.doctorName != nil {
		s.DoctorName = a.doctorName.Value()
	}
	return s
}

func (a *Appointment) Confirm() (*Appointment, error) {
	switch a.status {
	case StatusScheduled:
		return a.transition(StatusConfirmed), nil
	case StatusConfirmed:
		return nil, AlreadyConfirmed(a.id.Value())
	case StatusCancelled:
		return nil, AlreadyCancelled(a.id.Value())
	default:
		return nil, InvalidTransition(a.status, StatusConfirmed)
	}
}

func (a *Appointment) Cancel() (*Appointment, error) {
	switch a.status {
	case StatusScheduled, StatusConfirmed:
		return a.transition(StatusCancelled), nil
	case StatusCancelled:
		return nil, AlreadyCancelled(a.id.Value())
	default:
		return nil, InvalidTransition(a.status, StatusCancelled)
	}
}

// Complete requires a confirmed appointment.
func (a *Appointment) Complete() (*Appointment, error) {
	if a.status != StatusConfirmed {
		return nil, InvalidTransition(a.status, StatusCompleted)
	}
	return a.transition(StatusCompleted), nil
}

// Reschedule moves an open appointment to a new date and time. The result is
// scheduled again even if it had been confirmed.
func (a *Appointment) Reschedule(date time.Time, timeOfDay string) (*Appointment, error) {
	if a.status != StatusScheduled && a.status != StatusConfirmed {
		return nil, InvalidTransition(a.status, StatusScheduled)
	}
	if err := checkBookableDate(date); err != nil {
		return nil, err
	}
	apptTime, err := NewAppointmentTime(timeOfDay)
	if err != nil {
		return nil, err
	}
	next := a.transition(StatusScheduled)
	next.appointmentDate = StartOfDay(date)
	next.appointmentTime = apptTime
	return next, nil
}

// Update replaces booking details without touching the status. Cancelled
// appointments cannot be edited. A new date must be bookable. Empty changes
// return the appointment as is, without stamping updatedAt.
func (a *Appointment) Update(changes AppointmentChanges) (*Appointment, error) {
	if a.status == StatusCancelled {
		return nil, AlreadyCancelled(a.id.Value())
	}
	if changes.IsEmpty() {
		return a, nil
	}

	next := a.clone()
	if changes.PatientID != nil {
		patientID := strings.TrimSpace(*changes.PatientID)
		if patientID == "" {
			return nil, invalid(ErrInvalidPatientID, "patient id is required")
		}
		next.patientID = patientID
	}
	if changes.PatientName != nil {
		name, err := NewPatientName(*changes.PatientName)
		if err != nil {
			return nil, err
		}
		next.patientName = name
	}
	if changes.ReasonForVisit != nil {
		reason, err := NewReasonForVisit(*changes.ReasonForVisit)
		if err != nil {
			return nil, err
		}
		next.reasonForVisit = reason
	}
	if changes.AppointmentDate != nil {
		if err := checkBookableDate(*changes.AppointmentDate); err != nil {
			return nil, err
		}
		next.appointmentDate = StartOfDay(*changes.AppointmentDate)
	}
	if changes.AppointmentTime != nil {
		apptTime, err := NewAppointmentTime(*changes.AppointmentTime)
		if err != nil {
			return nil, err
		}
		next.appointmentTime = apptTime
	}
	if changes.ContactNumber != nil {
		contact, err := optionalContact(*changes.ContactNumber)
		if err != nil {
			return nil, err
		}
		next.contactNumber = contact
	}
	if changes.DoctorName != nil {
		doctor, err := optionalDoctor(*changes.DoctorName)
		if err != nil {
			return nil, err
		}
		next.doctorName = doctor
	}
	next.touch()
	return next, nil
}

// Validate re-checks an already built appointment, for example after
// decoding it from an external source. The date combined with the time of
// day must not be in the past.
func (a *Appointment) Validate() error {
	if a.patientID == "" {
		return invalid(ErrInvalidPatientID, "patient id is required")
	}
	if a.patientName.Value() == "" {
		return invalid(ErrInvalidPatientName, "patient name is required")
	}
	if a.appointmentDate.IsZero() {
		return invalid(ErrInvalidAppointmentDate, "appointment date is required")
	}
	start := a.StartsAt()
	if start.Before(now().In(start.Location())) {
		return invalid(ErrInvalidAppointmentDate,
			fmt.Sprintf("appointment at %s %s is in the past", DateKey(a.appointmentDate), a.appointmentTime))
	}
	return nil
}

func (a *Appointment) IsToday() bool {
	return SameDay(a.appointmentDate, now().In(a.appointmentDate.Location()))
}

func (a *Appointment) IsFuture() bool {
	return a.appointmentDate.After(today(a.appointmentDate.Location()))
}

func (a *Appointment) IsOnDate(date time.Time) bool {
	return SameDay(a.appointmentDate, date)
}

// ConflictsWith reports whether both bookings belong to the same patient on
// the same day, whatever the time.
func (a *Appointment) ConflictsWith(other *Appointment) bool {
	if other == nil {
		return false
	}
	return a.patientID == other.patientID && SameDay(a.appointmentDate, other.appointmentDate)
}

// HasSameTimeSlot reports whether both bookings occupy the same date and
// time, whoever the patient.
func (a *Appointment) HasSameTimeSlot(other *Appointment) bool {
	if other == nil {
		return false
	}
	return SameDay(a.appointmentDate, other.appointmentDate) && a.appointmentTime.Equals(other.appointmentTime)
}

// Equals is identity by id. Unsaved appointments are never equal.
func (a *Appointment) Equals(other *Appointment) bool {
	if other == nil || a.id.IsZero() || other.id.IsZero() {
		return false
	}
	return a.id.Equals(other.id)
}

func (a *Appointment) transition(to Status) *Appointment {
	next := a.clone()
	next.status = to
	next.touch()
	return next
}

func (a *Appointment) touch() {
	t := now()
	a.updatedAt = &t
}

func (a *Appointment) clone() *Appointment {
	next := *a
	next.updatedAt = copyTime(a.updatedAt)
	return &next
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
