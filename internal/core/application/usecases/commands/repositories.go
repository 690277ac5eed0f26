// Package commands contains the operations that change planner state.
// Every command follows the same pattern: a validated command value, a
// handler that runs it inside a unit of work, and events published after
// the commit.
package commands

import (
	"context"
	"time"

	"routeplanner/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles the transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	RouteRepoFactory interface {
		RouteRepository() ports.RouteRepository
	}

	DeliveryRepoFactory interface {
		DeliveryAttemptRepository() ports.DeliveryAttemptRepository
		DeliveryRecordRepository() ports.DeliveryRecordRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW manages transactions across orders, routes and delivery attempts.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   r, err := uow.RouteRepository().Get(ctx, routeID)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		RouteRepoFactory
		DeliveryRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)

// Clock returns the current time. Handlers take it as a dependency so tests
// can pin dispatch and tracking times.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...ports.Event) error { return nil }

// NopPublisher discards every event.
func NopPublisher() ports.EventPublisher {
	return nopPublisher{}
}
