package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/avemarin/clinicbook/internal/domain"
	"github.com/avemarin/clinicbook/internal/notify"
	"github.com/rs/zerolog"
	kafkaGo "github.com/segmentio/kafka-go"
)

const attemptsHeader = "x-attempts"

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Source interface {
	Fetch(ctx context.Context) (kafkaGo.Message, error)
	Commit(ctx context.Context, msg kafkaGo.Message) error
}

type Redeliverer interface {
	PublishRaw(ctx context.Context, topic string, key, value []byte, headers []kafkaGo.Header) error
}

// Worker drains one notification topic with a single message in flight. A
// failed delivery is requeued with an incremented attempt header until the
// budget runs out, then parked on the dead-letter topic.
type Worker struct {
	source          Source
	redeliverer     Redeliverer
	sender          EmailSender
	topic           string
	deadLetterTopic string
	subject         string
	maxAttempts     int
	sendTimeout     time.Duration
	log             zerolog.Logger
}

func New(
	source Source,
	redeliverer Redeliverer,
	sender EmailSender,
	topic, deadLetterTopic, subject string,
	maxAttempts int,
	sendTimeout time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		source:          source,
		redeliverer:     redeliverer,
		sender:          sender,
		topic:           topic,
		deadLetterTopic: deadLetterTopic,
		subject:         subject,
		maxAttempts:     maxAttempts,
		sendTimeout:     sendTimeout,
		log:             log,
	}
}

// Run blocks until the context is canceled or the source fails. The in-flight
// message is always settled (requeued or dead-lettered) before the next fetch.
func (w *Worker) Run(ctx context.Context) error {
	for {
		msg, err := w.source.Fetch(ctx)
		if err != nil {
			return err
		}
		w.handle(ctx, msg)
	}
}

func (w *Worker) handle(ctx context.Context, msg kafkaGo.Message) {
	err := w.process(ctx, msg)
	if err == nil {
		if err := w.source.Commit(ctx, msg); err != nil {
			w.log.Error().Err(err).Str("topic", w.topic).Msg("commit failed, message will be redelivered")
		}
		return
	}

	attempts := attemptsFrom(msg.Headers)
	w.log.Error().Err(err).
		Str("topic", w.topic).
		Int("attempts", attempts).
		Str("key", string(msg.Key)).
		Msg("notification delivery failed")

	if attempts+1 >= w.maxAttempts {
		w.deadLetter(ctx, msg, err)
		return
	}
	w.requeue(ctx, msg, attempts+1)
}

func (w *Worker) process(ctx context.Context, msg kafkaGo.Message) error {
	var payload notify.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if payload.Email == "" || payload.Message == "" {
		return fmt.Errorf("%w: payload missing email or message", domain.ErrPoisonMessage)
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()
	return w.sender.Send(sendCtx, payload.Email, w.subject, payload.Message)
}

func (w *Worker) requeue(ctx context.Context, msg kafkaGo.Message, attempts int) {
	headers := withAttempts(msg.Headers, attempts)
	if err := w.redeliverer.PublishRaw(ctx, w.topic, msg.Key, msg.Value, headers); err != nil {
		// Leave the offset uncommitted; the broker redelivers the original.
		w.log.Error().Err(err).Str("topic", w.topic).Msg("requeue failed")
		return
	}
	if err := w.source.Commit(ctx, msg); err != nil {
		w.log.Error().Err(err).Str("topic", w.topic).Msg("commit after requeue failed")
	}
}

func (w *Worker) deadLetter(ctx context.Context, msg kafkaGo.Message, cause error) {
	w.log.Error().Err(fmt.Errorf("%w: %v", domain.ErrPoisonMessage, cause)).
		Str("topic", w.topic).
		Str("key", string(msg.Key)).
		Msg("retry budget exhausted, routing to dead letter topic")

	headers := append(withAttempts(msg.Headers, w.maxAttempts),
		kafkaGo.Header{Key: "x-origin-topic", Value: []byte(w.topic)},
		kafkaGo.Header{Key: "x-error", Value: []byte(cause.Error())},
	)
	if err := w.redeliverer.PublishRaw(ctx, w.deadLetterTopic, msg.Key, msg.Value, headers); err != nil {
		w.log.Error().Err(err).Str("topic", w.deadLetterTopic).Msg("dead letter publish failed")
		return
	}
	if err := w.source.Commit(ctx, msg); err != nil {
		w.log.Error().Err(err).Str("topic", w.topic).Msg("commit after dead letter failed")
	}
}

func attemptsFrom(headers []kafkaGo.Header) int {
	for _, h := range headers {
		if h.Key == attemptsHeader {
			if n, err := strconv.Atoi(string(h.Value)); err == nil {
				return n
			}
		}
	}
	return 0
}

func withAttempts(headers []kafkaGo.Header, attempts int) []kafkaGo.Header {
	out := make([]kafkaGo.Header, 0, len(headers)+1)
	for _, h := range headers {
		if h.Key != attemptsHeader {
			out = append(out, h)
		}
	}
	return append(out, kafkaGo.Header{Key: attemptsHeader, Value: []byte(strconv.Itoa(attempts))})
}
