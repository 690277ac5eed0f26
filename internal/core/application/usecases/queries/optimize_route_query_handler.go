package queries

import (
	"context"

	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
)

type OptimizeRouteQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	optimizer  services.RouteOptimizer
}

func NewOptimizeRouteQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	optimizer services.RouteOptimizer,
) OptimizeRouteQueryHandler {
	return OptimizeRouteQueryHandler{uowFactory: uowFactory, optimizer: optimizer}
}

// Handle fails with InvalidState unless the route is assembling.
func (h OptimizeRouteQueryHandler) Handle(ctx context.Context, query OptimizeRouteQuery) (OptimizeRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return OptimizeRouteQueryResponse{}, err
	}

	r, err := h.uowFactory.Create().RouteRepository().Get(ctx, query.RouteID())
	if err != nil {
		return OptimizeRouteQueryResponse{}, err
	}

	plan, err := h.optimizer.Optimize(r)
	if err != nil {
		return OptimizeRouteQueryResponse{}, err
	}

	resp := OptimizeRouteQueryResponse{
		RouteID:        plan.RouteID,
		Sequence:       plan.Sequence,
		Stops:          make([]StopView, 0, len(plan.Sequence)),
		DistanceBefore: plan.DistanceBefore,
		DistanceAfter:  plan.DistanceAfter,
		Improvement:    plan.Improvement(),
	}
	for i, orderID := range plan.Sequence {
		if s, ok := r.Stop(orderID); ok {
			resp.Stops = append(resp.Stops, stopView(i+1, s))
		}
	}
	return resp, nil
}
