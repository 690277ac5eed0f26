package ports

import (
	"context"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// The orders in Pending status form the order catalog.
type OrderRepository interface {
	// Add persists a newly confirmed order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order. The write is conditional
	// on the version the aggregate was loaded with; a concurrent change makes
	// it fail with errs.VersionIsInvalidError.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id, errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllPending returns the order catalog, urgent orders first, then by
	// period and client.
	GetAllPending(ctx context.Context) ([]*order.Order, error)
}
