package queries

import (
	"context"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/ports"
)

type GetDeliveryRecordsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetDeliveryRecordsQueryHandler(uowFactory ports.UnitOfWorkFactory) GetDeliveryRecordsQueryHandler {
	return GetDeliveryRecordsQueryHandler{uowFactory: uowFactory}
}

func (h GetDeliveryRecordsQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryRecordsQuery,
) ([]DeliveryRecordView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	records, err := h.uowFactory.Create().DeliveryRecordRepository().GetByRoute(ctx, query.RouteID())
	if err != nil {
		return nil, err
	}

	views := make([]DeliveryRecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, DeliveryRecordView{
			OrderID:       rec.OrderID,
			Lines:         rec.Annotation.Lines,
			Returnables:   rec.Annotation.Returnables,
			RecipientName: rec.Annotation.RecipientName,
			ProofRef:      rec.Annotation.ProofRef,
			StartedAt:     rec.StartedAt,
			ConfirmedAt:   rec.ConfirmedAt,
			Shortfall:     hasShortfall(rec),
		})
	}
	return views, nil
}

func hasShortfall(rec delivery.Record) bool {
	for _, l := range rec.Annotation.Lines {
		if l.Delivered < l.Ordered {
			return true
		}
	}
	for _, r := range rec.Annotation.Returnables {
		if r.Counted < r.Expected {
			return true
		}
	}
	return false
}
