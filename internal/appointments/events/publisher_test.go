package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic/pkg/kafka"
	"clinic/pkg/middleware"
	"clinic/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	messages []kafka.Message
	err      error
}

func (s *recordingSender) Publish(_ context.Context, msg kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func TestKafkaPublisher_BuildsKeyedMessage(t *testing.T) {
	sender := &recordingSender{}
	p := NewKafkaPublisher(sender, "appointments-service")
	p.now = func() time.Time { return time.Date(2026, 11, 2, 1, 0, 0, 0, time.UTC) }

	ctx := middleware.WithRequestID(context.Background(), "req-7")
	appt := &model.Appointment{ID: "a1", PatientID: "p1", Status: "confirmed"}

	require.NoError(t, p.Publish(ctx, AppointmentConfirmed, appt))
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	assert.Equal(t, "a1", msg.Key)
	assert.Equal(t, AppointmentConfirmed, msg.GetEventType())
	assert.Equal(t, "req-7", msg.GetCorrelationID())
	assert.Equal(t, "appointments-service", msg.Headers[kafka.HeaderSource])
	assert.NotEmpty(t, msg.GetEventID())

	var event AppointmentEvent
	require.NoError(t, msg.DecodeValue(&event))
	assert.Equal(t, AppointmentConfirmed, event.Type)
	assert.Equal(t, "a1", event.Appointment.ID)
	assert.True(t, event.OccurredAt.Equal(p.now()))
}

func TestKafkaPublisher_RejectsUnsavedAppointment(t *testing.T) {
	sender := &recordingSender{}
	err := NewKafkaPublisher(sender, "svc").Publish(context.Background(), AppointmentCreated, &model.Appointment{})

	assert.Error(t, err)
	assert.Empty(t, sender.messages)
}

func TestKafkaPublisher_WrapsSendErrors(t *testing.T) {
	boom := errors.New("broker down")
	err := NewKafkaPublisher(&recordingSender{err: boom}, "svc").
		Publish(context.Background(), AppointmentCancelled, &model.Appointment{ID: "a1"})

	assert.ErrorIs(t, err, boom)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), AppointmentDeleted, nil))
}
