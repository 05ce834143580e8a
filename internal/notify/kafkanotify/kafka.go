// Package kafkanotify records queue events on a Kafka topic.
package kafkanotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"smartqueue/backend/internal/notify"
)

const DefaultTopic = "smartqueue.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Sink struct {
	writer messageWriter
}

// NewWriter builds a synchronous writer keyed by event topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func NewSink(w messageWriter) *Sink {
	return &Sink{writer: w}
}

func (s *Sink) Name() string { return "kafka" }

type message struct {
	Topic      string    `json:"topic"`
	Payload    string    `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s *Sink) Deliver(ctx context.Context, ev notify.Event) error {
	value, err := json.Marshal(message{Topic: ev.Topic, Payload: ev.Payload, OccurredAt: ev.OccurredAt})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Topic),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID.String())},
			{Key: "event_type", Value: []byte(eventType(ev.Topic))},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", ev.Topic, err)
	}
	return nil
}

// eventType collapses per-appointment topics into one type.
func eventType(topic string) string {
	if strings.HasPrefix(topic, "notify/") {
		return "turn"
	}
	return topic
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func ReadyCheck(brokers []string) func(context.Context) error {
	return func(ctx context.Context) error {
		if len(brokers) == 0 {
			return errors.New("kafka brokers not configured")
		}
		dialer := kafka.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			return err
		}
		_ = conn.Close()
		return nil
	}
}
