package queries

import (
	"errors"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/pkg/guard"
)

var ErrGetDeliveryRecordsQueryIsNotConstructed = errors.New(
	"GetDeliveryRecordsQuery must be created via NewGetDeliveryRecordsQuery constructor",
)

// GetDeliveryRecordsQuery reads the audit trail of confirmed stops of a route.
type GetDeliveryRecordsQuery struct {
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetDeliveryRecordsQuery(routeID kernel.UUID) (GetDeliveryRecordsQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetDeliveryRecordsQuery{}, err
	}
	return GetDeliveryRecordsQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryRecordsQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryRecordsQueryIsNotConstructed)
}

func (q GetDeliveryRecordsQuery) RouteID() kernel.UUID { return q.routeID }

type DeliveryRecordView struct {
	OrderID       kernel.UUID
	Lines         []order.DeliveredLine
	Returnables   []order.CollectedAsset
	RecipientName string
	ProofRef      string
	StartedAt     time.Time
	ConfirmedAt   time.Time
	// Shortfall is true when any product was delivered short or any
	// returnable was collected short.
	Shortfall bool
}
