// Package notify fans queue change events out to push channels.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// TopicQueueUpdate tells every client to re-read the queue.
	TopicQueueUpdate = "queue-update"
	PayloadRefresh   = "Refresh"

	turnTopicPrefix = "notify/"
)

// TurnTopic is the per-appointment topic used to tell a customer they are being served.
func TurnTopic(id uuid.UUID) string {
	return turnTopicPrefix + id.String()
}

func TurnMessage(name string) string {
	return "It is your turn, " + name + "!"
}

type Event struct {
	ID         uuid.UUID
	Topic      string
	Payload    string
	OccurredAt time.Time
}

// Sink delivers events to one push channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// Publisher is the fire-and-forget side of the dispatcher.
type Publisher interface {
	Publish(ctx context.Context, topic, payload string)
}

// AnnounceTurn tells the customer holding id that they are being served.
func AnnounceTurn(ctx context.Context, p Publisher, id uuid.UUID, name string) {
	p.Publish(ctx, TurnTopic(id), TurnMessage(name))
}
