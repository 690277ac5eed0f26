// Package events delivers committed-state notifications to their listeners:
// an in-process Broker feeding websocket streams, a Redis publisher for
// multi-instance deployments and a fan-out combining publishers.
package events

import (
	"context"
	"errors"
	"sync"

	"routeplanner/internal/core/ports"
)

var (
	_ ports.EventPublisher  = &Broker{}
	_ ports.EventSubscriber = &Broker{}
)

const subscriberBuffer = 16

// Broker keeps per-route subscriber channels. A subscriber that does not
// drain its channel loses events instead of blocking the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan ports.Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan ports.Event]struct{})}
}

// Subscribe registers a listener for one route id, or ports.AllRoutes. The
// returned func unsubscribes and closes the channel; it is safe to call more
// than once.
func (b *Broker) Subscribe(routeID string) (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[routeID] == nil {
		b.subs[routeID] = make(map[chan ports.Event]struct{})
	}
	b.subs[routeID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(routeID, ch) })
	}
}

func (b *Broker) unsubscribe(routeID string, ch chan ports.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m := b.subs[routeID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, routeID)
		}
	}
	close(ch)
}

// Subscribers counts the listeners of a route id.
func (b *Broker) Subscribers(routeID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[routeID])
}

// Publish never fails; the error return satisfies ports.EventPublisher.
func (b *Broker) Publish(_ context.Context, events ...ports.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range events {
		if e.RouteID != "" {
			b.deliver(b.subs[e.RouteID], e)
		}
		b.deliver(b.subs[ports.AllRoutes], e)
	}
	return nil
}

func (b *Broker) deliver(subs map[chan ports.Event]struct{}, e ports.Event) {
	for ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// FanOut publishes to every publisher in order and joins their errors.
type FanOut []ports.EventPublisher

func (f FanOut) Publish(ctx context.Context, events ...ports.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
