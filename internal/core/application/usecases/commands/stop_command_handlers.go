package commands

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

// DeliveryCommandHandler runs the driver-side workflow of a stop. All steps
// hold the route lock, so a stop confirmation and a route cancellation never
// interleave.
type DeliveryCommandHandler struct {
	runner routeRunner
	clock  Clock
}

func NewDeliveryCommandHandler(
	uowFactory UoWFactory,
	locks *services.RouteLocks,
	publisher ports.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) DeliveryCommandHandler {
	if clock == nil {
		clock = SystemClock
	}
	return DeliveryCommandHandler{
		runner: newRouteRunner(uowFactory, locks, publisher, logger),
		clock:  clock,
	}
}

// Begin opens the attempt of a stop in EN_ROUTE. The stop must belong to a
// route that is still running and must not be delivered or already begun.
func (h DeliveryCommandHandler) Begin(ctx context.Context, cmd BeginStopCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		if r.Status().IsTerminal() {
			return nil, errs.NewInvalidStateError("route", "begin stop", r.Status().String())
		}

		stop, ok := r.Stop(cmd.OrderID())
		if !ok {
			return nil, errs.NewObjectNotFoundError("stop", cmd.OrderID().String())
		}
		if stop.Completed {
			return nil, errs.NewInvalidStateError("stop", "begin stop", delivery.Confirmed.String())
		}

		attempts := uow.DeliveryAttemptRepository()
		open, err := attempts.GetByStop(ctx, r.ID(), cmd.OrderID())
		switch {
		case err == nil:
			return nil, errs.NewInvalidStateError("stop", "begin stop", open.Phase().String())
		case !errors.Is(err, errs.ErrObjectNotFound):
			return nil, err
		}

		o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
		if err != nil {
			return nil, err
		}

		now := h.clock()
		a, err := delivery.NewAttempt(cmd.AttemptID(), r.ID(), o, now)
		if err != nil {
			return nil, err
		}
		if err = attempts.Add(ctx, a); err != nil {
			return nil, err
		}
		return []ports.Event{phaseEvent(a, now)}, nil
	})
}

// Advance applies one phase step. Arriving requires the route to be ACTIVE
// (NotYetDeparted otherwise); reconciling fails with QuantityExceedsOrder on
// over-delivery and leaves the attempt ARRIVED.
func (h DeliveryCommandHandler) Advance(ctx context.Context, cmd AdvanceStopCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		a, err := uow.DeliveryAttemptRepository().GetByStop(ctx, r.ID(), cmd.OrderID())
		if err != nil {
			return nil, err
		}

		switch cmd.Action() {
		case Arrive:
			err = a.Arrive(r.Status())
		case Reconcile:
			err = a.Reconcile()
		case Reopen:
			err = a.Reopen()
		case Abandon:
			err = a.Abandon()
		default:
			err = errs.NewValueIsInvalidError("stop action")
		}
		if err != nil {
			return nil, err
		}

		if err = uow.DeliveryAttemptRepository().Update(ctx, a); err != nil {
			return nil, err
		}
		return []ports.Event{phaseEvent(a, h.clock())}, nil
	})
}

// RecordQuantities stores what the driver handed over and collected. The
// attempt must be ARRIVED; negative values are rejected immediately.
func (h DeliveryCommandHandler) RecordQuantities(ctx context.Context, cmd RecordStopQuantitiesCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		a, err := uow.DeliveryAttemptRepository().GetByStop(ctx, r.ID(), cmd.OrderID())
		if err != nil {
			return nil, err
		}

		delivered := cmd.Delivered()
		for _, productID := range sortedKeys(delivered) {
			if err = a.RecordDelivered(productID, delivered[productID]); err != nil {
				return nil, err
			}
		}
		counted := cmd.Counted()
		for _, assetType := range sortedKeys(counted) {
			if err = a.RecordCounted(assetType, counted[assetType]); err != nil {
				return nil, err
			}
		}

		if err = uow.DeliveryAttemptRepository().Update(ctx, a); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// Confirm closes the stop: the final quantities are written onto the order,
// an audit record is kept, the attempt is discarded and the route progress
// advances. Confirming the last stop completes the route.
func (h DeliveryCommandHandler) Confirm(ctx context.Context, cmd ConfirmStopCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		attempts := uow.DeliveryAttemptRepository()
		a, err := attempts.GetByStop(ctx, r.ID(), cmd.OrderID())
		if err != nil {
			return nil, err
		}

		annotation, err := a.Confirm(cmd.RecipientName(), cmd.ProofRef())
		if err != nil {
			return nil, err
		}

		o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
		if err != nil {
			return nil, err
		}
		if err = o.RecordDelivery(r.ID(), annotation); err != nil {
			return nil, err
		}

		now := h.clock()
		if err = r.CompleteStop(o.ID(), now); err != nil {
			return nil, err
		}

		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return nil, err
		}
		if err = uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}
		if err = uow.DeliveryRecordRepository().Add(ctx, delivery.NewRecord(a, annotation, now)); err != nil {
			return nil, err
		}
		if err = attempts.Delete(ctx, a.ID()); err != nil {
			return nil, err
		}

		events := []ports.Event{
			{
				Type:       ports.EventStopConfirmed,
				RouteID:    r.ID().String(),
				OrderID:    o.ID().String(),
				Data:       map[string]any{"recipientName": annotation.RecipientName},
				OccurredAt: now,
			},
			routeEvent(ports.EventRouteUpdated, r, now),
		}
		if r.Status() == route.Completed {
			events = append(events, routeEvent(ports.EventRouteCompleted, r, now))
		}
		return events, nil
	})
}

func phaseEvent(a *delivery.Attempt, now time.Time) ports.Event {
	return ports.Event{
		Type:       ports.EventStopPhaseChanged,
		RouteID:    a.RouteID().String(),
		OrderID:    a.OrderID().String(),
		Data:       map[string]any{"phase": a.Phase().String()},
		OccurredAt: now,
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
