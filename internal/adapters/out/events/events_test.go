package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"routeplanner/internal/adapters/out/events"
	"routeplanner/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan ports.Event) ports.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return ports.Event{}
	}
}

func TestBroker_DeliversByRoute(t *testing.T) {
	// Given
	broker := events.NewBroker()
	routeA, unsubscribeA := broker.Subscribe("a")
	defer unsubscribeA()
	all, unsubscribeAll := broker.Subscribe(ports.AllRoutes)
	defer unsubscribeAll()

	// When
	require.NoError(t, broker.Publish(t.Context(),
		ports.Event{Type: ports.EventRouteUpdated, RouteID: "b"},
		ports.Event{Type: ports.EventRouteFinalized, RouteID: "a"},
	))

	// Then
	assert.Equal(t, ports.EventRouteFinalized, receive(t, routeA).Type)
	assert.Equal(t, ports.EventRouteUpdated, receive(t, all).Type)
	assert.Equal(t, ports.EventRouteFinalized, receive(t, all).Type)
	assert.Empty(t, routeA)
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := events.NewBroker()
	ch, unsubscribe := broker.Subscribe("a")
	assert.Equal(t, 1, broker.Subscribers("a"))

	unsubscribe()
	unsubscribe()

	assert.Zero(t, broker.Subscribers("a"))
	_, ok := <-ch
	assert.False(t, ok)
	require.NoError(t, broker.Publish(t.Context(), ports.Event{Type: ports.EventRouteUpdated, RouteID: "a"}))
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	broker := events.NewBroker()
	_, unsubscribe := broker.Subscribe("a")
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			_ = broker.Publish(context.Background(), ports.Event{Type: ports.EventRouteUpdated, RouteID: "a"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
}

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, ...ports.Event) error { return p.err }

func TestFanOut(t *testing.T) {
	broker := events.NewBroker()
	ch, unsubscribe := broker.Subscribe("a")
	defer unsubscribe()

	boom := errors.New("boom")
	fan := events.FanOut{failingPublisher{err: boom}, nil, broker}

	err := fan.Publish(t.Context(), ports.Event{Type: ports.EventRouteCreated, RouteID: "a"})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, ports.EventRouteCreated, receive(t, ch).Type)
}

func TestRedisPublisher_RelaysIntoBroker(t *testing.T) {
	// Given
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	publisher := events.NewRedisPublisherWithClient(client, nil)
	t.Cleanup(func() { _ = publisher.Close() })

	broker := events.NewBroker()
	routeEvents, unsubscribe := broker.Subscribe("r-1")
	defer unsubscribe()
	all, unsubscribeAll := broker.Subscribe(ports.AllRoutes)
	defer unsubscribeAll()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	require.NoError(t, publisher.Relay(ctx, broker))
	require.NoError(t, publisher.Ping(ctx))

	occurred := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// When
	require.NoError(t, publisher.Publish(ctx,
		ports.Event{
			Type:       ports.EventRouteTracking,
			RouteID:    "r-1",
			Data:       map[string]any{"delay": "7 min behind schedule"},
			OccurredAt: occurred,
		},
		ports.Event{Type: ports.EventOrderPendingAdded, OrderID: "o-1", OccurredAt: occurred},
	))

	// Then
	got := receive(t, routeEvents)
	assert.Equal(t, ports.EventRouteTracking, got.Type)
	assert.Equal(t, "7 min behind schedule", got.Data["delay"])
	assert.True(t, occurred.Equal(got.OccurredAt))

	types := []string{receive(t, all).Type, receive(t, all).Type}
	assert.ElementsMatch(t, []string{ports.EventRouteTracking, ports.EventOrderPendingAdded}, types)
}

func TestNewRedisPublisher_InvalidURL(t *testing.T) {
	_, err := events.NewRedisPublisher("not-a-url", nil)
	assert.Error(t, err)
}
