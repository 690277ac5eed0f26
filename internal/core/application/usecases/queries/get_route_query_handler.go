package queries

import (
	"context"
	"errors"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

type GetRouteQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetRouteQueryHandler(uowFactory ports.UnitOfWorkFactory) GetRouteQueryHandler {
	return GetRouteQueryHandler{uowFactory: uowFactory}
}

// Handle returns errs.ObjectNotFoundError for unknown routes.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetRouteQueryResponse{}, err
	}

	uow := h.uowFactory.Create()
	r, err := uow.RouteRepository().Get(ctx, query.RouteID())
	if err != nil {
		return GetRouteQueryResponse{}, err
	}

	resp := GetRouteQueryResponse{
		RouteSummary: summarize(r),
		DispatchedAt: r.DispatchedAt(),
		ClosedAt:     r.ClosedAt(),
		Version:      r.Version(),
	}

	attempts := uow.DeliveryAttemptRepository()
	for i, s := range r.Stops() {
		view := stopView(i+1, s)
		if s.Completed {
			view.Phase = delivery.Confirmed.String()
		} else {
			a, attemptErr := attempts.GetByStop(ctx, r.ID(), s.OrderID)
			switch {
			case attemptErr == nil:
				view.Phase = a.Phase().String()
			case !errors.Is(attemptErr, errs.ErrObjectNotFound):
				return GetRouteQueryResponse{}, attemptErr
			}
		}
		resp.Stops = append(resp.Stops, view)
	}

	if next, ok := r.NextStop(); ok {
		for i := range resp.Stops {
			if resp.Stops[i].OrderID == next.OrderID {
				resp.NextStop = &resp.Stops[i]
				break
			}
		}
	}
	return resp, nil
}
