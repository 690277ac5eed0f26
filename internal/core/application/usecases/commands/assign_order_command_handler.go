package commands

import (
	"context"
	"errors"
	"log/slog"

	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

// AssignOrderCommandHandler claims a pending order for a route.
//
// Capacity is checked against the route as committed by the previous holder
// of the route lock. The order claim itself is an optimistic write, so two
// routes racing for the same order end with one success and one
// AlreadyAssigned.
//
// Example:
//
//	cmd, _ := NewAssignOrderCommand(routeID, orderID)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrCapacityExceeded):
//	    // route is full
//	case errors.Is(err, errs.ErrAlreadyAssigned):
//	    // another route took the order
//	}
type AssignOrderCommandHandler struct {
	runner routeRunner
	policy route.TravelPolicy
	clock  Clock
}

func NewAssignOrderCommandHandler(
	uowFactory UoWFactory,
	locks *services.RouteLocks,
	publisher ports.EventPublisher,
	policy route.TravelPolicy,
	clock Clock,
	logger *slog.Logger,
) AssignOrderCommandHandler {
	if clock == nil {
		clock = SystemClock
	}
	return AssignOrderCommandHandler{
		runner: newRouteRunner(uowFactory, locks, publisher, logger),
		policy: policy,
		clock:  clock,
	}
}

func (h AssignOrderCommandHandler) Handle(ctx context.Context, cmd AssignOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
		if err != nil {
			return nil, err
		}

		if err = r.AssignOrder(o, h.policy); err != nil {
			return nil, err
		}

		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return nil, err
		}
		if err = uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}

		now := h.clock()
		return []ports.Event{
			pendingRemoved(o.ID(), r.ID(), now),
			routeEvent(ports.EventRouteUpdated, r, now),
		}, nil
	})
	if isOrderConflict(err) {
		return errs.NewAlreadyAssignedError(cmd.OrderID().String(), "")
	}
	return err
}

// UnassignOrderCommandHandler returns a stop's order to the pending catalog
// and drops the stop's open delivery attempt, if any.
type UnassignOrderCommandHandler struct {
	runner routeRunner
	clock  Clock
}

func NewUnassignOrderCommandHandler(
	uowFactory UoWFactory,
	locks *services.RouteLocks,
	publisher ports.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) UnassignOrderCommandHandler {
	if clock == nil {
		clock = SystemClock
	}
	return UnassignOrderCommandHandler{
		runner: newRouteRunner(uowFactory, locks, publisher, logger),
		clock:  clock,
	}
}

func (h UnassignOrderCommandHandler) Handle(ctx context.Context, cmd UnassignOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
		if err != nil {
			return nil, err
		}

		if err = r.UnassignOrder(o); err != nil {
			return nil, err
		}

		// a stop begun while the route was still assembling leaves with its order
		attempts := uow.DeliveryAttemptRepository()
		open, err := attempts.GetByStop(ctx, r.ID(), o.ID())
		switch {
		case err == nil:
			if err = attempts.Delete(ctx, open.ID()); err != nil {
				return nil, err
			}
		case !errors.Is(err, errs.ErrObjectNotFound):
			return nil, err
		}

		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return nil, err
		}
		if err = uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}

		now := h.clock()
		routeID := r.ID()
		return []ports.Event{
			pendingAdded(o.ID(), &routeID, now),
			routeEvent(ports.EventRouteUpdated, r, now),
		}, nil
	})
}
