package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"clinic/pkg/logger"
	"clinic/pkg/model"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	timeRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details is the shape placed into an API error's details.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

// AppointmentValidator checks request payloads for shape and format. Domain
// rules such as the booking horizon are enforced when the appointment is
// built.
type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("appt_time", validateAppointmentTime); err != nil {
		log.Fatal("Failed to register 'appt_time' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("appt_date", validateAppointmentDate); err != nil {
		log.Fatal("Failed to register 'appt_date' validator",
			"error", err,
		)
	}

	log.Debug("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateAppointmentTime(fl validator.FieldLevel) bool {
	return timeRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateAppointmentDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func (v *AppointmentValidator) ValidateCreate(req *model.AppointmentCreate) error {
	return v.check(req)
}

func (v *AppointmentValidator) ValidateUpdate(req *model.AppointmentUpdate) error {
	if err := v.check(req); err != nil {
		return err
	}

	if req.PatientID == nil && req.PatientName == nil && req.ReasonForVisit == nil &&
		req.AppointmentDate == nil && req.AppointmentTime == nil &&
		req.ContactNumber == nil && req.DoctorName == nil {
		return ValidationErrors{
			ValidationError{
				Field:   "body",
				Message: "at least one field must be provided",
			},
		}
	}

	return nil
}

func (v *AppointmentValidator) ValidateReschedule(req *model.AppointmentReschedule) error {
	return v.check(req)
}

func (v *AppointmentValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "appt_time":
			message = fmt.Sprintf("%s must be a 24-hour time in HH:MM format", err.Field())
		case "appt_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
