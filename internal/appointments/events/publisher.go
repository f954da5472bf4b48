package events

import (
	"context"
	"fmt"
	"time"

	"clinic/pkg/kafka"
	"clinic/pkg/middleware"
	"clinic/pkg/model"
)

const (
	AppointmentCreated     = "appointment.created"
	AppointmentUpdated     = "appointment.updated"
	AppointmentConfirmed   = "appointment.confirmed"
	AppointmentCancelled   = "appointment.cancelled"
	AppointmentCompleted   = "appointment.completed"
	AppointmentRescheduled = "appointment.rescheduled"
	AppointmentDeleted     = "appointment.deleted"

	SchemaVersion = "1"
)

// Publisher announces appointment lifecycle changes.
type Publisher interface {
	Publish(ctx context.Context, eventType string, appointment *model.Appointment) error
}

// MessageSender is satisfied by *kafka.Producer.
type MessageSender interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// AppointmentEvent is the JSON payload written to the events topic.
type AppointmentEvent struct {
	Type        string             `json:"type"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Appointment *model.Appointment `json:"appointment"`
}

type KafkaPublisher struct {
	sender MessageSender
	source string
	now    func() time.Time
}

func NewKafkaPublisher(sender MessageSender, source string) *KafkaPublisher {
	return &KafkaPublisher{sender: sender, source: source, now: time.Now}
}

// Publish keys the message by appointment id so every event for one
// appointment lands on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, appointment *model.Appointment) error {
	if appointment == nil || appointment.ID == "" {
		return fmt.Errorf("publish %s: appointment has no id", eventType)
	}

	msg, err := kafka.NewMessage().
		WithKey(appointment.ID).
		WithValue(AppointmentEvent{
			Type:        eventType,
			OccurredAt:  p.now().UTC(),
			Appointment: appointment,
		}).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}

	if err := p.sender.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *model.Appointment) error {
	return nil
}
