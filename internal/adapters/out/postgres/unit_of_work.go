// Package postgres is the GORM-backed Unit of Work for the route planner.
// One GormUnitOfWork spans one command: every repository it hands out after
// Begin writes inside the same database transaction, so a stop confirmation
// touching the order, the route, the attempt and the audit record either
// lands completely or not at all.
//
// Concurrency:
//   - Orders and routes carry a version column; updates are conditional on
//     it and report errs.VersionIsInvalidError when another writer got there
//     first
//   - Each UnitOfWork instance belongs to a single goroutine
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.RouteRepository().Update(ctx, r); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
package postgres

import (
	"context"

	"routeplanner/internal/adapters/out/postgres/deliveryrepo"
	"routeplanner/internal/adapters/out/postgres/orderrepo"
	"routeplanner/internal/adapters/out/postgres/routerepo"
	"routeplanner/internal/adapters/out/postgres/vehiclerepo"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the planner owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&routerepo.RouteDTO{},
		&routerepo.StopDTO{},
		&deliveryrepo.AttemptDTO{},
		&deliveryrepo.RecordDTO{},
		&vehiclerepo.VehicleDTO{},
	)
}

// TrackedAggregate is an aggregate written through the unit of work.
type TrackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory hands out a fresh unit of work per command.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return f.create()
}

func (f *GormUnitOfWorkFactory) create() *GormUnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]TrackedAggregate, 0),
	}
}

// GormUnitOfWork wraps one optional database transaction. Without Begin the
// repositories run against the plain connection and every write commits on
// its own, which is what the read side uses.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []TrackedAggregate
}

// Begin opens the transaction. Calling it twice keeps the first one.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errs.NewUnavailableError(tx.Error)
	}
	uow.tx = tx
	return nil
}

// Commit returns gorm.ErrInvalidTransaction when no transaction is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		return errs.NewUnavailableError(err)
	}
	return nil
}

// Rollback discards the open transaction. After Commit it reports
// gorm.ErrInvalidTransaction, which callers deferring it ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) RouteRepository() ports.RouteRepository {
	return routerepo.NewGormRouteRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DeliveryAttemptRepository() ports.DeliveryAttemptRepository {
	return deliveryrepo.NewGormAttemptRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DeliveryRecordRepository() ports.DeliveryRecordRepository {
	return deliveryrepo.NewGormRecordRepository(uow.conn())
}

// TrackAggregate is called by the repositories after each successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, TrackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedAggregates lists the aggregates written since Begin, in write order.
func (uow *GormUnitOfWork) TrackedAggregates() []TrackedAggregate {
	return append([]TrackedAggregate(nil), uow.trackedAggregates...)
}
