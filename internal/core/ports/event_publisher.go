package ports

import (
	"context"
	"time"
)

// Event types published after a command commits.
const (
	EventOrderPendingRemoved = "order.pending_removed"
	EventOrderPendingAdded   = "order.pending_added"
	EventRouteCreated        = "route.created"
	EventRouteUpdated        = "route.updated"
	EventRouteDeleted        = "route.deleted"
	EventRouteFinalized      = "route.finalized"
	EventRouteTracking       = "route.tracking_changed"
	EventRouteCompleted      = "route.completed"
	EventRouteCancelled      = "route.cancelled"
	EventStopPhaseChanged    = "stop.phase_changed"
	EventStopConfirmed       = "stop.confirmed"
)

// Event is a notification about committed state. RouteID and OrderID are the
// canonical string forms, empty when not applicable.
type Event struct {
	Type       string         `json:"type"`
	RouteID    string         `json:"routeId,omitempty"`
	OrderID    string         `json:"orderId,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// EventPublisher delivers events to subscribers. Publishing is best effort:
// the state change is already committed when it is called.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// AllRoutes is the route id that subscribes to the events of every route.
const AllRoutes = "*"

// EventSubscriber hands out live event streams per route id, or for
// AllRoutes. The returned func ends the subscription.
type EventSubscriber interface {
	Subscribe(routeID string) (<-chan Event, func())
}
