package queries

import (
	"errors"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/guard"
)

var ErrGetRouteQueryIsNotConstructed = errors.New(
	"GetRouteQuery must be created via NewGetRouteQuery constructor",
)

// GetRouteQuery reads one route with its stops in sequence.
type GetRouteQuery struct {
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetRouteQuery(routeID kernel.UUID) (GetRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetRouteQuery{}, err
	}
	return GetRouteQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

func (q GetRouteQuery) RouteID() kernel.UUID { return q.routeID }

// GetRouteQueryResponse is the route snapshot: the board card plus the stop
// list, the next stop to serve and dispatch times.
type GetRouteQueryResponse struct {
	RouteSummary
	Stops        []StopView
	NextStop     *StopView
	DispatchedAt *time.Time
	ClosedAt     *time.Time
	Version      int
}
