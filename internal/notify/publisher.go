package notify

import (
	"context"
	"fmt"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/rs/zerolog"
)

type Kind string

const (
	KindAppointmentReminder Kind = "appointment_reminder"
	KindReviewRequest       Kind = "review_request"
)

// Payload is the flat wire schema shared by both notification kinds.
type Payload struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Publisher renders notification bodies and routes them to the durable topic
// matching the kind. Publishing is fire-and-forget relative to the business
// write that preceded it.
type Publisher struct {
	producer      Producer
	reminderTopic string
	reviewTopic   string
	log           zerolog.Logger
}

func NewPublisher(producer Producer, reminderTopic, reviewTopic string, log zerolog.Logger) *Publisher {
	return &Publisher{
		producer:      producer,
		reminderTopic: reminderTopic,
		reviewTopic:   reviewTopic,
		log:           log,
	}
}

func (p *Publisher) AppointmentReminder(ctx context.Context, appt *domain.Appointment) error {
	payload := Payload{
		Email:   appt.PatientEmail,
		Message: fmt.Sprintf("Please confirm your appointment with Dr. %s on %s at %s.", appt.DoctorName, appt.Day, appt.Hour),
	}
	return p.publish(ctx, KindAppointmentReminder, appt.ID, payload)
}

func (p *Publisher) ReviewRequest(ctx context.Context, appt *domain.Appointment) error {
	payload := Payload{
		Email:   appt.PatientEmail,
		Message: fmt.Sprintf("Thank you for visiting Dr. %s. Please take a moment to rate your experience.", appt.DoctorName),
	}
	return p.publish(ctx, KindReviewRequest, appt.ID, payload)
}

func (p *Publisher) publish(ctx context.Context, kind Kind, key string, payload Payload) error {
	topic := p.topicFor(kind)
	if err := p.producer.Publish(ctx, topic, key, payload); err != nil {
		p.log.Error().Err(err).
			Str("kind", string(kind)).
			Str("topic", topic).
			Str("appointment_id", key).
			Str("recipient", payload.Email).
			Msg("publish notification failed")
		return fmt.Errorf("%w: %s: %v", domain.ErrPublishFailed, kind, err)
	}
	return nil
}

func (p *Publisher) topicFor(kind Kind) string {
	if kind == KindReviewRequest {
		return p.reviewTopic
	}
	return p.reminderTopic
}
