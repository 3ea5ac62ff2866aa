package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/campuscarry/campuscarry-api/events"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis channel instances exchange events on
const DefaultChannel = "campuscarry:events"

// NewRedisClient accepts either a redis:// URL or a bare host:port
func NewRedisClient(url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	return redis.NewClient(opts)
}

// RedisBridge relays events between instances. Publish goes to Redis only; every
// instance, this one included, delivers what it receives on the channel to its local rooms.
// Publish waits on the network, so callers on a request path put it behind events.Async.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, hub: hub, logger: logger}
}

// Publish implements events.Notifier
func (b *RedisBridge) Publish(ctx context.Context, event events.Event) error {
	frame, err := event.Encode()
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, frame).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the channel and delivers frames until ctx is cancelled
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("realtime bridge subscribed", zap.String("channel", b.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.deliver(msg.Payload)
		}
	}
}

func (b *RedisBridge) deliver(payload string) {
	var envelope struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil || envelope.Room == "" {
		b.logger.Warn("dropping malformed bridge frame", zap.Error(err))
		return
	}
	b.hub.Broadcast(envelope.Room, []byte(payload))
}

// Close releases the Redis connection pool
func (b *RedisBridge) Close() error {
	return b.client.Close()
}
