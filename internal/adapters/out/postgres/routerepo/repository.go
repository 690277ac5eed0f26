package routerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.RouteRepository = &GormRouteRepository{}

type GormRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&dto).Error; err != nil {
			return err
		}
		return insertStops(tx, dto.Stops)
	})
	if err != nil {
		return errs.NewUnavailableError(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update bumps the route version and rewrites its stop list, provided the
// stored version still matches the loaded one.
func (r *GormRouteRepository) Update(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	var stale bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RouteDTO{}).
			Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
			Select("*").Omit("id", clause.Associations).
			Updates(&dto)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			stale = true
			return nil
		}

		if err := tx.Where("route_id = ?", dto.ID).Delete(&StopDTO{}).Error; err != nil {
			return err
		}
		return insertStops(tx, dto.Stops)
	})
	if err != nil {
		return errs.NewUnavailableError(err)
	}
	if stale {
		return r.missingOrStale(ctx, aggregate)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormRouteRepository) missingOrStale(ctx context.Context, aggregate *route.Route) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&RouteDTO{}).Where("id = ?", aggregate.ID().Bytes()).Count(&count).Error; err != nil {
		return errs.NewUnavailableError(err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("route", aggregate.ID().String())
	}
	return errs.NewVersionIsInvalidErrorWithCause("route",
		fmt.Errorf("route %s changed after version %d was loaded", aggregate.ID(), aggregate.Version()))
}

func (r *GormRouteRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", id.Bytes()).Delete(&StopDTO{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id.Bytes()).Delete(&RouteDTO{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return errs.NewUnavailableError(err)
	}
	if affected == 0 {
		return errs.NewObjectNotFoundError("route", id.String())
	}
	return nil
}

func (r *GormRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RouteDTO
	err := r.withStops(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, errs.NewUnavailableError(err)
	}

	return toDomain(dto)
}

func (r *GormRouteRepository) GetAllByStatus(ctx context.Context, statuses ...route.Status) ([]*route.Route, error) {
	query := r.withStops(ctx)
	if len(statuses) > 0 {
		values := make([]int, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, int(s))
		}
		query = query.Where("status IN ?", values)
	}

	return r.find(query)
}

func (r *GormRouteRepository) GetBySlot(
	ctx context.Context,
	vehicleID kernel.UUID,
	date time.Time,
	period order.Period,
) ([]*route.Route, error) {
	query := r.withStops(ctx).Where("vehicle_id = ? AND date = ? AND period = ?",
		vehicleID.Bytes(), date.UTC().Format(time.DateOnly), int(period))

	return r.find(query)
}

func (r *GormRouteRepository) withStops(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func (r *GormRouteRepository) find(query *gorm.DB) ([]*route.Route, error) {
	var dtos []RouteDTO
	if err := query.Order("date").Order("period").Order("plate").Order("id").Find(&dtos).Error; err != nil {
		return nil, errs.NewUnavailableError(err)
	}

	routes := make([]*route.Route, 0, len(dtos))
	for _, dto := range dtos {
		rt, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, nil
}

func insertStops(tx *gorm.DB, stops []StopDTO) error {
	if len(stops) == 0 {
		return nil
	}
	return tx.Create(&stops).Error
}
