package commands

import (
	"context"
	"log/slog"

	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/ports"
)

// CreateOrderCommandHandler adds confirmed sales orders to the pending
// catalog and announces them.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  announcer
	clock      Clock
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	if clock == nil {
		clock = SystemClock
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		announcer:  newAnnouncer(publisher, logger),
		clock:      clock,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Details())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.announcer.announce(ctx, pendingAdded(o.ID(), nil, h.clock()))
	return nil
}
