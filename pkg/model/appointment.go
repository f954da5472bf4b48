package model

import (
	"time"
)

// Appointment is the stored and transported shape of a booking. DateKey,
// TimeMinutes, Active and SlotIndex are maintained by storage for indexing
// and never accepted from clients.
type Appointment struct {
	ID              string     `json:"id,omitempty" bson:"_id,omitempty"`
	PatientID       string     `json:"patient_id" bson:"patient_id"`
	PatientName     string     `json:"patient_name" bson:"patient_name"`
	ReasonForVisit  string     `json:"reason_for_visit" bson:"reason_for_visit"`
	AppointmentDate string     `json:"appointment_date" bson:"-"`
	AppointmentTime string     `json:"appointment_time" bson:"time"`
	DisplayTime     string     `json:"display_time,omitempty" bson:"-"`
	Status          string     `json:"status" bson:"status"`
	ContactNumber   string     `json:"contact_number,omitempty" bson:"contact_number,omitempty"`
	DisplayContact  string     `json:"display_contact,omitempty" bson:"-"`
	DoctorName      string     `json:"doctor_name,omitempty" bson:"doctor_name,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`

	Date        time.Time `json:"-" bson:"appointment_date"`
	DateKey     string    `json:"-" bson:"date_key"`
	TimeMinutes int       `json:"-" bson:"time_minutes"`
	Active      bool      `json:"-" bson:"active"`
	SlotIndex   int       `json:"-" bson:"slot_index"`
}

type AppointmentCreate struct {
	PatientID       string `json:"patient_id" validate:"required,min=1,max=64"`
	PatientName     string `json:"patient_name" validate:"required,min=2,max=50"`
	ReasonForVisit  string `json:"reason_for_visit" validate:"required,min=3,max=500"`
	AppointmentDate string `json:"appointment_date" validate:"required,appt_date"`
	AppointmentTime string `json:"appointment_time" validate:"required,appt_time"`
	ContactNumber   string `json:"contact_number,omitempty" validate:"omitempty,min=7,max=20"`
	DoctorName      string `json:"doctor_name,omitempty" validate:"omitempty,min=2,max=255"`
}

// AppointmentUpdate is a partial update. Absent fields are left unchanged;
// an empty contact number or doctor name clears it.
type AppointmentUpdate struct {
	PatientID       *string `json:"patient_id,omitempty" validate:"omitempty,min=1,max=64"`
	PatientName     *string `json:"patient_name,omitempty" validate:"omitempty,min=2,max=50"`
	ReasonForVisit  *string `json:"reason_for_visit,omitempty" validate:"omitempty,min=3,max=500"`
	AppointmentDate *string `json:"appointment_date,omitempty" validate:"omitempty,appt_date"`
	AppointmentTime *string `json:"appointment_time,omitempty" validate:"omitempty,appt_time"`
	ContactNumber   *string `json:"contact_number,omitempty" validate:"omitempty,max=20"`
	DoctorName      *string `json:"doctor_name,omitempty" validate:"omitempty,max=255"`
}

type AppointmentReschedule struct {
	AppointmentDate string `json:"appointment_date" validate:"required,appt_date"`
	AppointmentTime string `json:"appointment_time" validate:"required,appt_time"`
}

type AppointmentStats struct {
	Total          int `json:"total"`
	Scheduled      int `json:"scheduled"`
	Confirmed      int `json:"confirmed"`
	Cancelled      int `json:"cancelled"`
	Completed      int `json:"completed"`
	Today          int `json:"today"`
	TodayConfirmed int `json:"today_confirmed"`
}

type WeeklyAppointments struct {
	WeekStart    string         `json:"week_start"`
	WeekEnd      string         `json:"week_end"`
	Appointments []*Appointment `json:"appointments"`
	ByDate       map[string]int `json:"by_date"`
}
