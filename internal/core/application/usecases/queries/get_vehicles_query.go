package queries

import (
	"context"
	"errors"
	"slices"
	"strings"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/guard"
)

var ErrGetVehiclesQueryIsNotConstructed = errors.New(
	"GetVehiclesQuery must be created via NewGetVehiclesQuery constructor",
)

// GetVehiclesQuery lists the fleet for the route creation form.
type GetVehiclesQuery struct {
	guard guard.ConstructorGuard
}

func NewGetVehiclesQuery() GetVehiclesQuery {
	return GetVehiclesQuery{guard: guard.NewConstructorGuard()}
}

func (q GetVehiclesQuery) Validate() error {
	return q.guard.Validate(ErrGetVehiclesQueryIsNotConstructed)
}

type VehicleView struct {
	ID             kernel.UUID
	Plate          string
	DriverName     string
	CapacityLiters int
}

type GetVehiclesQueryHandler struct {
	vehicles ports.VehicleRepository
}

func NewGetVehiclesQueryHandler(vehicles ports.VehicleRepository) GetVehiclesQueryHandler {
	return GetVehiclesQueryHandler{vehicles: vehicles}
}

// Handle returns the fleet sorted by plate.
func (h GetVehiclesQueryHandler) Handle(ctx context.Context, query GetVehiclesQuery) ([]VehicleView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	vehicles, err := h.vehicles.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]VehicleView, 0, len(vehicles))
	for _, v := range vehicles {
		views = append(views, VehicleView{
			ID:             v.ID(),
			Plate:          v.Plate(),
			DriverName:     v.DriverName(),
			CapacityLiters: v.CapacityLiters(),
		})
	}
	slices.SortFunc(views, func(a, b VehicleView) int { return strings.Compare(a.Plate, b.Plate) })
	return views, nil
}
