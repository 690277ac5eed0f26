package queries

import (
	"context"

	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/ports"
)

type GetPendingOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetPendingOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory) GetPendingOrdersQueryHandler {
	return GetPendingOrdersQueryHandler{uowFactory: uowFactory}
}

func (h GetPendingOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetPendingOrdersQuery,
) (GetPendingOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPendingOrdersQueryResponse{}, err
	}

	pending, err := h.uowFactory.Create().OrderRepository().GetAllPending(ctx)
	if err != nil {
		return GetPendingOrdersQueryResponse{}, err
	}

	resp := GetPendingOrdersQueryResponse{
		Orders: make([]PendingOrder, 0, len(pending)),
		ByPeriod: map[string]int{
			order.Morning.String():   0,
			order.Afternoon.String(): 0,
		},
	}
	for _, o := range pending {
		if query.Period() != order.PeriodUnknown && o.Period() != query.Period() {
			continue
		}

		resp.Orders = append(resp.Orders, PendingOrder{
			ID:          o.ID(),
			Client:      o.Client(),
			Address:     o.Address(),
			Items:       o.Items(),
			Returnables: o.Returnables(),
			Volume:      o.Volume(),
			Period:      o.Period().String(),
			Priority:    o.Priority().String(),
			DistanceKm:  o.DistanceKm(),
			Location:    o.Location(),
		})
		resp.ByPeriod[o.Period().String()]++
		resp.TotalVolume += o.Volume()
		if o.Priority() == order.Urgent {
			resp.Urgent++
		}
	}
	return resp, nil
}
