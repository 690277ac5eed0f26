// Package vehiclerepo reads fleet master data from the vehicles table.
// Save exists for seeding; the planner itself never writes vehicles.
package vehiclerepo

import (
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/vehicle"

	"github.com/google/uuid"
)

type VehicleDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Plate          string    `gorm:"not null;uniqueIndex"`
	DriverName     string    `gorm:"not null"`
	CapacityLiters int       `gorm:"not null"`
}

func (VehicleDTO) TableName() string {
	return "vehicles"
}

func fromDomain(v *vehicle.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:             v.ID().Bytes(),
		Plate:          v.Plate(),
		DriverName:     v.DriverName(),
		CapacityLiters: v.CapacityLiters(),
	}
}

func toDomain(dto VehicleDTO) (*vehicle.Vehicle, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return vehicle.NewVehicle(id, dto.Plate, dto.DriverName, dto.CapacityLiters)
}
