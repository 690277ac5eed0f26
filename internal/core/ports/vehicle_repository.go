package ports

import (
	"context"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/vehicle"
)

// VehicleRepository reads vehicle/driver pairings from fleet master data.
// The planner never writes them.
type VehicleRepository interface {
	Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error)
	GetAll(ctx context.Context) ([]*vehicle.Vehicle, error)
}
