package ports

import (
	"context"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/domain/model/kernel"
)

// DeliveryAttemptRepository stores the open attempt of each stop.
type DeliveryAttemptRepository interface {
	Add(ctx context.Context, attempt *delivery.Attempt) error
	Update(ctx context.Context, attempt *delivery.Attempt) error
	Delete(ctx context.Context, id kernel.UUID) error

	// GetByStop returns the open attempt of a stop, errs.ObjectNotFoundError
	// when the driver has not begun it.
	GetByStop(ctx context.Context, routeID, orderID kernel.UUID) (*delivery.Attempt, error)

	// DeleteByRoute drops every open attempt of a route.
	DeleteByRoute(ctx context.Context, routeID kernel.UUID) error
}

// DeliveryRecordRepository keeps the audit trail of confirmed stops.
type DeliveryRecordRepository interface {
	Add(ctx context.Context, record delivery.Record) error
	GetByRoute(ctx context.Context, routeID kernel.UUID) ([]delivery.Record, error)
}
