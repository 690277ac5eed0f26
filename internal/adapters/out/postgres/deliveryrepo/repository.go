package deliveryrepo

import (
	"context"
	"errors"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"

	"gorm.io/gorm"
)

var (
	_ ports.DeliveryAttemptRepository = &GormAttemptRepository{}
	_ ports.DeliveryRecordRepository  = &GormRecordRepository{}
)

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormAttemptRepository stores at most one open attempt per stop; the
// unique index on (route_id, order_id) backs that up.
type GormAttemptRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormAttemptRepository(db *gorm.DB, tracker aggregateTracker) *GormAttemptRepository {
	return &GormAttemptRepository{db: db, tracker: tracker}
}

func (r *GormAttemptRepository) Add(ctx context.Context, attempt *delivery.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}

	dto := attemptFromDomain(attempt)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewUnavailableError(err)
	}

	r.tracker.TrackAggregate(attempt.ID(), attempt)
	return nil
}

func (r *GormAttemptRepository) Update(ctx context.Context, attempt *delivery.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}

	dto := attemptFromDomain(attempt)
	result := r.db.WithContext(ctx).Model(&AttemptDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return errs.NewUnavailableError(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("attempt", attempt.ID().String())
	}

	r.tracker.TrackAggregate(attempt.ID(), attempt)
	return nil
}

func (r *GormAttemptRepository) Delete(ctx context.Context, id kernel.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.Bytes()).Delete(&AttemptDTO{})
	if result.Error != nil {
		return errs.NewUnavailableError(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("attempt", id.String())
	}
	return nil
}

func (r *GormAttemptRepository) GetByStop(ctx context.Context, routeID, orderID kernel.UUID) (*delivery.Attempt, error) {
	var dto AttemptDTO
	err := r.db.WithContext(ctx).
		Where("route_id = ? AND order_id = ?", routeID.Bytes(), orderID.Bytes()).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("attempt", orderID.String())
		}
		return nil, errs.NewUnavailableError(err)
	}
	return attemptToDomain(dto)
}

func (r *GormAttemptRepository) DeleteByRoute(ctx context.Context, routeID kernel.UUID) error {
	if err := r.db.WithContext(ctx).Where("route_id = ?", routeID.Bytes()).Delete(&AttemptDTO{}).Error; err != nil {
		return errs.NewUnavailableError(err)
	}
	return nil
}

// GormRecordRepository is append-only.
type GormRecordRepository struct {
	db *gorm.DB
}

func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

func (r *GormRecordRepository) Add(ctx context.Context, record delivery.Record) error {
	dto := recordFromDomain(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewUnavailableError(err)
	}
	return nil
}

func (r *GormRecordRepository) GetByRoute(ctx context.Context, routeID kernel.UUID) ([]delivery.Record, error) {
	var dtos []RecordDTO
	if err := r.db.WithContext(ctx).Where("route_id = ?", routeID.Bytes()).Order("seq").Find(&dtos).Error; err != nil {
		return nil, errs.NewUnavailableError(err)
	}

	records := make([]delivery.Record, 0, len(dtos))
	for _, dto := range dtos {
		rec, err := recordToDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
