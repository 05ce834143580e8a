package kafkanotify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"smartqueue/backend/internal/notify"
)

type fakeWriter struct {
	writeFn func(ctx context.Context, msgs ...kafka.Message) error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.writeFn == nil {
		panic("WriteMessages not configured")
	}
	return f.writeFn(ctx, msgs...)
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestSink_WritesKeyedMessageWithHeaders(t *testing.T) {
	var got []kafka.Message
	sink := NewSink(&fakeWriter{writeFn: func(ctx context.Context, msgs ...kafka.Message) error {
		got = append(got, msgs...)
		return nil
	}})

	apptID := uuid.MustParse("00000000-0000-0000-0000-000000000009")
	eventID := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	ev := notify.Event{
		ID:         eventID,
		Topic:      notify.TurnTopic(apptID),
		Payload:    notify.TurnMessage("Ada"),
		OccurredAt: time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	if err := sink.Deliver(context.Background(), ev); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("messages = %d, want 1", len(got))
	}

	msg := got[0]
	if string(msg.Key) != ev.Topic {
		t.Fatalf("key = %q, want %q", msg.Key, ev.Topic)
	}
	if header(msg, "event_id") != eventID.String() {
		t.Fatalf("event_id = %q, want %q", header(msg, "event_id"), eventID)
	}
	if header(msg, "event_type") != "turn" {
		t.Fatalf("event_type = %q, want %q", header(msg, "event_type"), "turn")
	}

	var body message
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if body.Payload != "It is your turn, Ada!" {
		t.Fatalf("payload = %q", body.Payload)
	}
}

func TestSink_WrapsWriteErrors(t *testing.T) {
	boom := errors.New("leader not available")
	sink := NewSink(&fakeWriter{writeFn: func(ctx context.Context, msgs ...kafka.Message) error {
		return boom
	}})
	err := sink.Deliver(context.Background(), notify.Event{Topic: notify.TopicQueueUpdate, Payload: notify.PayloadRefresh})
	if !errors.Is(err, boom) {
		t.Fatalf("Deliver() error = %v, want %v", err, boom)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" a:9092, ,b:9092,")
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Fatalf("SplitBrokers() = %v", got)
	}
}
