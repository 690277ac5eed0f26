package ports

import (
	"context"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for route aggregates,
// including their ordered stop lists.
type RouteRepository interface {
	Add(ctx context.Context, aggregate *route.Route) error

	// Update is conditional on the loaded version, like OrderRepository.Update.
	Update(ctx context.Context, aggregate *route.Route) error

	Delete(ctx context.Context, id kernel.UUID) error

	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// GetAllByStatus returns the routes in any of the given statuses ordered
	// by date, period and plate. No statuses means every route.
	GetAllByStatus(ctx context.Context, statuses ...route.Status) ([]*route.Route, error)

	// GetBySlot returns the routes booked for a vehicle on a date and period.
	GetBySlot(ctx context.Context, vehicleID kernel.UUID, date time.Time, period order.Period) ([]*route.Route, error)
}
