package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary. Repositories obtained
// after Begin write inside the transaction; without Begin they read directly.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	RouteRepository() RouteRepository
	DeliveryAttemptRepository() DeliveryAttemptRepository
	DeliveryRecordRepository() DeliveryRecordRepository
}
