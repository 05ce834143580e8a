// Package hub is an in-process topic hub that backs WebSocket subscribers.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"smartqueue/backend/internal/notify"
)

const subscriberBuffer = 16

type Subscription struct {
	C <-chan notify.Event

	ch     chan notify.Event
	topics []string
	once   sync.Once
}

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	log    *slog.Logger
}

func New(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		log:    log.With(slog.String("component", "notify.hub")),
	}
}

func (h *Hub) Name() string { return "hub" }

// Subscribe registers interest in topics. The caller must Unsubscribe.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	ch := make(chan notify.Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, topics: topics}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		subs, ok := h.topics[topic]
		if !ok {
			subs = make(map[*Subscription]struct{})
			h.topics[topic] = subs
		}
		subs[sub] = struct{}{}
	}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	sub.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, topic := range sub.topics {
			subs := h.topics[topic]
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
		close(sub.ch)
	})
}

// Deliver hands ev to every subscriber of its topic. Slow subscribers miss
// events rather than stalling the dispatcher.
func (h *Hub) Deliver(ctx context.Context, ev notify.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[ev.Topic] {
		select {
		case sub.ch <- ev:
		default:
			h.log.WarnContext(ctx, "subscriber lagging, event skipped", slog.String("topic", ev.Topic))
		}
	}
	return nil
}

// Subscribers reports how many subscriptions a topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
