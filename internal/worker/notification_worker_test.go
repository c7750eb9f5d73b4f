package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	committed []kafkaGo.Message
}

func (f *fakeSource) Fetch(ctx context.Context) (kafkaGo.Message, error) {
	return kafkaGo.Message{}, context.Canceled
}

func (f *fakeSource) Commit(ctx context.Context, msg kafkaGo.Message) error {
	f.committed = append(f.committed, msg)
	return nil
}

type published struct {
	topic   string
	key     []byte
	value   []byte
	headers []kafkaGo.Header
}

type fakeRedeliverer struct {
	published []published
	err       error
}

func (f *fakeRedeliverer) PublishRaw(ctx context.Context, topic string, key, value []byte, headers []kafkaGo.Header) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, published{topic: topic, key: key, value: value, headers: headers})
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func newWorker(source *fakeSource, redeliverer *fakeRedeliverer, sender *fakeSender, maxAttempts int) *Worker {
	return New(source, redeliverer, sender,
		"appointment_notifications", "notification_dead_letters", "Appointment Confirmation Reminder",
		maxAttempts, time.Second, zerolog.Nop())
}

func reminderMessage(attempts int) kafkaGo.Message {
	msg := kafkaGo.Message{
		Key:   []byte("appt-1"),
		Value: []byte(`{"email":"p@x.com","message":"Please confirm your appointment with Dr. House on 2024-05-01 at 10:00."}`),
	}
	if attempts > 0 {
		msg.Headers = withAttempts(nil, attempts)
	}
	return msg
}

func TestWorker_Handle_SuccessAcknowledges(t *testing.T) {
	source := &fakeSource{}
	redeliverer := &fakeRedeliverer{}
	sender := &fakeSender{}
	w := newWorker(source, redeliverer, sender, 5)

	w.handle(context.Background(), reminderMessage(0))

	assert.Equal(t, []string{"p@x.com"}, sender.sent)
	assert.Len(t, source.committed, 1)
	assert.Empty(t, redeliverer.published)
}

func TestWorker_Handle_SendFailureRequeuesWithAttemptHeader(t *testing.T) {
	source := &fakeSource{}
	redeliverer := &fakeRedeliverer{}
	sender := &fakeSender{err: errors.New("smtp unreachable")}
	w := newWorker(source, redeliverer, sender, 5)

	w.handle(context.Background(), reminderMessage(0))

	assert.Len(t, redeliverer.published, 1)
	assert.Equal(t, "appointment_notifications", redeliverer.published[0].topic)
	assert.Equal(t, 1, attemptsFrom(redeliverer.published[0].headers))
	// Original offset is committed once the redelivery copy is durable.
	assert.Len(t, source.committed, 1)
}

func TestWorker_Handle_ExhaustedRetriesDeadLetters(t *testing.T) {
	source := &fakeSource{}
	redeliverer := &fakeRedeliverer{}
	sender := &fakeSender{err: errors.New("smtp unreachable")}
	w := newWorker(source, redeliverer, sender, 5)

	w.handle(context.Background(), reminderMessage(4))

	assert.Len(t, redeliverer.published, 1)
	assert.Equal(t, "notification_dead_letters", redeliverer.published[0].topic)
	assert.Len(t, source.committed, 1)
}

func TestWorker_Handle_RequeueFailureLeavesOffsetUncommitted(t *testing.T) {
	source := &fakeSource{}
	redeliverer := &fakeRedeliverer{err: errors.New("broker down")}
	sender := &fakeSender{err: errors.New("smtp unreachable")}
	w := newWorker(source, redeliverer, sender, 5)

	w.handle(context.Background(), reminderMessage(0))

	assert.Empty(t, source.committed)
}

func TestWorker_Handle_MalformedPayloadDoesNotLoopForever(t *testing.T) {
	source := &fakeSource{}
	redeliverer := &fakeRedeliverer{}
	sender := &fakeSender{}
	w := newWorker(source, redeliverer, sender, 3)

	// A payload without a recipient can never be sent. Chase it through the
	// requeue chain: it must land on the dead-letter topic, not loop.
	msg := kafkaGo.Message{Key: []byte("appt-1"), Value: []byte(`{"message":"no recipient"}`)}
	hops := 0
	for {
		w.handle(context.Background(), msg)
		hops++
		assert.LessOrEqual(t, hops, 3)

		last := redeliverer.published[len(redeliverer.published)-1]
		if last.topic == "notification_dead_letters" {
			break
		}
		msg = kafkaGo.Message{Key: last.key, Value: last.value, Headers: last.headers}
	}

	assert.Equal(t, 3, hops)
	assert.Empty(t, sender.sent)
	assert.Len(t, source.committed, 3)
}

func TestWorker_Handle_UndecodablePayloadGoesToDeadLetter(t *testing.T) {
	source := &fakeSource{}
	redeliverer := &fakeRedeliverer{}
	w := newWorker(source, redeliverer, &fakeSender{}, 1)

	w.handle(context.Background(), kafkaGo.Message{Key: []byte("k"), Value: []byte("not json")})

	assert.Len(t, redeliverer.published, 1)
	assert.Equal(t, "notification_dead_letters", redeliverer.published[0].topic)
}

func TestWorker_ProcessRendersPayload(t *testing.T) {
	sender := &fakeSender{}
	w := newWorker(&fakeSource{}, &fakeRedeliverer{}, sender, 5)

	err := w.process(context.Background(), reminderMessage(0))

	assert.NoError(t, err)
	assert.Equal(t, []string{"p@x.com"}, sender.sent)
}

func TestAttemptsHeaderRoundTrip(t *testing.T) {
	headers := withAttempts(nil, 2)
	assert.Equal(t, 2, attemptsFrom(headers))

	headers = withAttempts(headers, 3)
	assert.Len(t, headers, 1)
	assert.Equal(t, 3, attemptsFrom(headers))

	assert.Equal(t, 0, attemptsFrom(nil))
}
