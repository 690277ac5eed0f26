package queries

import (
	"context"

	"routeplanner/internal/core/ports"
)

type GetRoutesByStatusQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetRoutesByStatusQueryHandler(uowFactory ports.UnitOfWorkFactory) GetRoutesByStatusQueryHandler {
	return GetRoutesByStatusQueryHandler{uowFactory: uowFactory}
}

// Handle returns the matching routes ordered by date, period and plate.
func (h GetRoutesByStatusQueryHandler) Handle(ctx context.Context, query GetRoutesByStatusQuery) ([]RouteSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	routes, err := h.uowFactory.Create().RouteRepository().GetAllByStatus(ctx, query.Statuses()...)
	if err != nil {
		return nil, err
	}

	summaries := make([]RouteSummary, 0, len(routes))
	for _, r := range routes {
		summaries = append(summaries, summarize(r))
	}
	return summaries, nil
}
