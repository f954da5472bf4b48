package validator

import (
	"errors"
	"testing"

	"clinic/pkg/logger"
	"clinic/pkg/model"
)

func strPtr(s string) *string { return &s }

func TestValidateCreate(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())

	valid := func() *model.AppointmentCreate {
		return &model.AppointmentCreate{
			PatientID:       "p1",
			PatientName:     "Maria Santos",
			ReasonForVisit:  "Check-up",
			AppointmentDate: "2030-07-01",
			AppointmentTime: "09:00",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*model.AppointmentCreate)
		wantField string
	}{
		{name: "valid", mutate: func(*model.AppointmentCreate) {}},
		{name: "single digit hour", mutate: func(r *model.AppointmentCreate) { r.AppointmentTime = "9:30" }},
		{name: "missing patient id", mutate: func(r *model.AppointmentCreate) { r.PatientID = "" }, wantField: "patient_id"},
		{name: "short name", mutate: func(r *model.AppointmentCreate) { r.PatientName = "A" }, wantField: "patient_name"},
		{name: "short reason", mutate: func(r *model.AppointmentCreate) { r.ReasonForVisit = "no" }, wantField: "reason_for_visit"},
		{name: "bad date", mutate: func(r *model.AppointmentCreate) { r.AppointmentDate = "01/07/2030" }, wantField: "appointment_date"},
		{name: "impossible date", mutate: func(r *model.AppointmentCreate) { r.AppointmentDate = "2030-02-30" }, wantField: "appointment_date"},
		{name: "bad time", mutate: func(r *model.AppointmentCreate) { r.AppointmentTime = "24:00" }, wantField: "appointment_time"},
		{name: "short contact", mutate: func(r *model.AppointmentCreate) { r.ContactNumber = "123" }, wantField: "contact_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)

			err := v.ValidateCreate(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verrs[0].Field)
			}
			if _, ok := verrs.Details()["fields"].(map[string]any)[tt.wantField]; !ok {
				t.Errorf("details should name %s", tt.wantField)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())

	if err := v.ValidateUpdate(&model.AppointmentUpdate{}); err == nil {
		t.Error("expected an error for an empty update")
	}

	if err := v.ValidateUpdate(&model.AppointmentUpdate{DoctorName: strPtr("")}); err != nil {
		t.Errorf("clearing the doctor should be allowed, got %v", err)
	}

	if err := v.ValidateUpdate(&model.AppointmentUpdate{AppointmentTime: strPtr("7pm")}); err == nil {
		t.Error("expected an error for a malformed time")
	}
}

func TestValidateReschedule(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())

	if err := v.ValidateReschedule(&model.AppointmentReschedule{AppointmentDate: "2030-07-01", AppointmentTime: "13:45"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := v.ValidateReschedule(&model.AppointmentReschedule{AppointmentDate: "2030-07-01"}); err == nil {
		t.Error("expected an error when the time is missing")
	}
}
