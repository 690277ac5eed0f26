package route

import (
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
)

// Stop is one order's delivery point within the route sequence. It carries
// the order attributes the route aggregates and the optimizer need, so the
// route never has to reload its orders to answer for itself.
type Stop struct {
	OrderID    kernel.UUID
	Client     string
	Volume     int
	DistanceKm float64
	// Duration is the planned time the stop adds to the route.
	Duration  time.Duration
	Priority  order.Priority
	Location  kernel.Location
	Completed bool
}

func newStop(o *order.Order, policy TravelPolicy) Stop {
	return Stop{
		OrderID:    o.ID(),
		Client:     o.Client(),
		Volume:     o.Volume(),
		DistanceKm: o.DistanceKm(),
		Duration:   policy.StopDuration(o.DistanceKm()),
		Priority:   o.Priority(),
		Location:   o.Location(),
	}
}
