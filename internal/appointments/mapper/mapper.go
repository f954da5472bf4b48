package mapper

import (
	"time"

	"clinic/internal/appointments/domain"
	"clinic/pkg/model"
)

// ToModel flattens an appointment into its stored and transported form.
// Storage-only fields (SlotIndex) are left for the repository to fill.
func ToModel(a *domain.Appointment) *model.Appointment {
	s := a.Snapshot()
	m := &model.Appointment{
		ID:              s.ID,
		PatientID:       s.PatientID,
		PatientName:     s.PatientName,
		ReasonForVisit:  s.ReasonForVisit,
		AppointmentDate: domain.DateKey(s.AppointmentDate),
		AppointmentTime: s.AppointmentTime,
		DisplayTime:     a.AppointmentTime().Format12Hour(),
		Status:          string(s.Status),
		ContactNumber:   s.ContactNumber,
		DoctorName:      s.DoctorName,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,

		Date:        s.AppointmentDate,
		DateKey:     domain.DateKey(s.AppointmentDate),
		TimeMinutes: a.AppointmentTime().ToMinutes(),
		Active:      a.IsActive(),
	}
	if contact, ok := a.ContactNumber(); ok {
		m.DisplayContact = contact.Formatted()
	}
	return m
}

func ToModels(appointments []*domain.Appointment) []*model.Appointment {
	out := make([]*model.Appointment, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, ToModel(a))
	}
	return out
}

// FromModel rebuilds an appointment from storage. The calendar day is read
// from DateKey in loc, so the stored UTC instant never shifts the day.
func FromModel(m *model.Appointment, loc *time.Location) (*domain.Appointment, error) {
	key := m.DateKey
	if key == "" {
		key = m.AppointmentDate
	}
	date, err := domain.ParseDate(key, loc)
	if err != nil {
		return nil, err
	}
	return domain.Reconstitute(domain.AppointmentParams{
		ID:              m.ID,
		PatientID:       m.PatientID,
		PatientName:     m.PatientName,
		ReasonForVisit:  m.ReasonForVisit,
		AppointmentDate: date,
		AppointmentTime: m.AppointmentTime,
		Status:          m.Status,
		ContactNumber:   m.ContactNumber,
		DoctorName:      m.DoctorName,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	})
}
