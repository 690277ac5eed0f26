package delivery

import (
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
)

// Record is the audit entry kept for every confirmed stop.
type Record struct {
	AttemptID   kernel.UUID
	RouteID     kernel.UUID
	OrderID     kernel.UUID
	Annotation  order.DeliveryAnnotation
	StartedAt   time.Time
	ConfirmedAt time.Time
}

// NewRecord builds the audit entry of a confirmed attempt.
func NewRecord(a *Attempt, annotation order.DeliveryAnnotation, confirmedAt time.Time) Record {
	return Record{
		AttemptID:   a.id,
		RouteID:     a.routeID,
		OrderID:     a.orderID,
		Annotation:  annotation,
		StartedAt:   a.startedAt,
		ConfirmedAt: confirmedAt,
	}
}
