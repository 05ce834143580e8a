// Package redisnotify republishes queue events on Redis pub/sub so other
// instances and external listeners can follow the queue.
package redisnotify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"smartqueue/backend/internal/notify"
)

const DefaultChannelPrefix = "smartqueue:"

type Config struct {
	Addr          string
	Password      string
	DB            int
	ChannelPrefix string
}

// NewClient connects and pings so misconfiguration fails at startup.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Sink struct {
	client publisher
	prefix string
}

func NewSink(client publisher, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &Sink{client: client, prefix: prefix}
}

func (s *Sink) Name() string { return "redis" }

// Channel is the Redis channel an event topic is published on.
func (s *Sink) Channel(topic string) string {
	return s.prefix + topic
}

func (s *Sink) Deliver(ctx context.Context, ev notify.Event) error {
	if err := s.client.Publish(ctx, s.Channel(ev.Topic), ev.Payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", ev.Topic, err)
	}
	return nil
}

// ReadyCheck pings the server.
func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
