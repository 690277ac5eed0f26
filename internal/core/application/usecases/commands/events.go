package commands

import (
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/ports"
)

func routeEvent(eventType string, r *route.Route, now time.Time) ports.Event {
	return ports.Event{
		Type:    eventType,
		RouteID: r.ID().String(),
		Data: map[string]any{
			"status":         r.Label(),
			"completedStops": r.CompletedStops(),
			"totalStops":     r.TotalStops(),
			"volume":         r.Volume(),
			"capacity":       r.Capacity(),
		},
		OccurredAt: now,
	}
}

func pendingRemoved(orderID, routeID kernel.UUID, now time.Time) ports.Event {
	return ports.Event{
		Type:       ports.EventOrderPendingRemoved,
		RouteID:    routeID.String(),
		OrderID:    orderID.String(),
		OccurredAt: now,
	}
}

func pendingAdded(orderID kernel.UUID, fromRoute *kernel.UUID, now time.Time) ports.Event {
	e := ports.Event{
		Type:       ports.EventOrderPendingAdded,
		OrderID:    orderID.String(),
		OccurredAt: now,
	}
	if fromRoute != nil {
		e.RouteID = fromRoute.String()
	}
	return e
}
