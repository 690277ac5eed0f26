package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"routeplanner/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.EventPublisher = &RedisPublisher{}

const (
	routeChannelPrefix = "route:"
	// ordersChannel carries events that belong to no route.
	ordersChannel  = "orders"
	publishTimeout = 2 * time.Second
)

// RedisPublisher publishes every event as JSON on a Redis Pub/Sub channel:
// route:<id> for route events and "orders" for the rest. Relay brings them
// back into a local Broker, so every instance's websocket clients see events
// committed by any instance.
type RedisPublisher struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisPublisher connects using a redis:// URL.
func NewRedisPublisher(url string, logger *slog.Logger) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisPublisherWithClient(redis.NewClient(opt), logger), nil
}

func NewRedisPublisherWithClient(rdb *redis.Client, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{rdb: rdb, logger: logger.With("component", "RedisPublisher")}
}

func channelFor(e ports.Event) string {
	if e.RouteID == "" {
		return ordersChannel
	}
	return routeChannelPrefix + e.RouteID
}

func (p *RedisPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	var errs []error
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err = p.rdb.Publish(ctx, channelFor(e), data).Err(); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", e.Type, err))
		}
	}
	return errors.Join(errs...)
}

// Relay forwards every event published through Redis into the broker until
// ctx is done. It returns once the subscription is confirmed.
func (p *RedisPublisher) Relay(ctx context.Context, broker *Broker) error {
	ps := p.rdb.PSubscribe(ctx, routeChannelPrefix+"*", ordersChannel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribe to route events: %w", err)
	}

	go func() {
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e ports.Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					p.logger.Warn("dropping malformed event", "channel", msg.Channel, "error", err)
					continue
				}
				if e.RouteID == "" && strings.HasPrefix(msg.Channel, routeChannelPrefix) {
					e.RouteID = strings.TrimPrefix(msg.Channel, routeChannelPrefix)
				}
				_ = broker.Publish(ctx, e)
			}
		}
	}()
	return nil
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
