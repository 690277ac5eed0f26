package vehiclerepo

import (
	"context"
	"errors"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/vehicle"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.VehicleRepository = &GormVehicleRepository{}

type GormVehicleRepository struct {
	db *gorm.DB
}

func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// Save upserts vehicles by id.
func (r *GormVehicleRepository) Save(ctx context.Context, vehicles ...*vehicle.Vehicle) error {
	if len(vehicles) == 0 {
		return nil
	}

	dtos := make([]VehicleDTO, 0, len(vehicles))
	for _, v := range vehicles {
		if err := v.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(v))
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plate", "driver_name", "capacity_liters"}),
		}).
		Create(&dtos).Error
	if err != nil {
		return errs.NewUnavailableError(err)
	}
	return nil
}

func (r *GormVehicleRepository) Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto VehicleDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("vehicle", id.String())
		}
		return nil, errs.NewUnavailableError(err)
	}
	return toDomain(dto)
}

func (r *GormVehicleRepository) GetAll(ctx context.Context) ([]*vehicle.Vehicle, error) {
	var dtos []VehicleDTO
	if err := r.db.WithContext(ctx).Order("plate").Find(&dtos).Error; err != nil {
		return nil, errs.NewUnavailableError(err)
	}

	vehicles := make([]*vehicle.Vehicle, 0, len(dtos))
	for _, dto := range dtos {
		v, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}
