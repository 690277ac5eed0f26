package queries

import (
	"errors"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/guard"
)

var ErrOptimizeRouteQueryIsNotConstructed = errors.New(
	"OptimizeRouteQuery must be created via NewOptimizeRouteQuery constructor",
)

// OptimizeRouteQuery previews a shorter stop sequence for an assembling
// route. Nothing is stored; the dispatcher applies the sequence with
// ConfirmOptimizationCommand.
//
// Example:
//
//	query, _ := NewOptimizeRouteQuery(routeID)
//	plan, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	cmd, _ := commands.NewConfirmOptimizationCommand(routeID, plan.Sequence)
type OptimizeRouteQuery struct {
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewOptimizeRouteQuery(routeID kernel.UUID) (OptimizeRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return OptimizeRouteQuery{}, err
	}
	return OptimizeRouteQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (q OptimizeRouteQuery) Validate() error {
	return q.guard.Validate(ErrOptimizeRouteQueryIsNotConstructed)
}

func (q OptimizeRouteQuery) RouteID() kernel.UUID { return q.routeID }

type OptimizeRouteQueryResponse struct {
	RouteID        kernel.UUID
	Sequence       []kernel.UUID
	Stops          []StopView
	DistanceBefore float64
	DistanceAfter  float64
	Improvement    float64
}
