package commands

import (
	"context"
	"log/slog"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
)

// RouteLifecycleCommandHandler moves routes through their lifecycle:
// finalize, explicit completion, cancellation, deletion and progress reports.
type RouteLifecycleCommandHandler struct {
	runner routeRunner
	clock  Clock
}

func NewRouteLifecycleCommandHandler(
	uowFactory UoWFactory,
	locks *services.RouteLocks,
	publisher ports.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) RouteLifecycleCommandHandler {
	if clock == nil {
		clock = SystemClock
	}
	return RouteLifecycleCommandHandler{
		runner: newRouteRunner(uowFactory, locks, publisher, logger),
		clock:  clock,
	}
}

// Finalize dispatches the route. Empty routes fail with EmptyRoute, routes
// past assembly with InvalidTransition.
func (h RouteLifecycleCommandHandler) Finalize(ctx context.Context, cmd FinalizeRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		now := h.clock()
		if err := r.Finalize(now); err != nil {
			return nil, err
		}
		if err := uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}
		return []ports.Event{routeEvent(ports.EventRouteFinalized, r, now)}, nil
	})
}

// Complete fails with InvalidTransition unless nothing is left to deliver;
// routes normally complete with their last confirmed stop.
func (h RouteLifecycleCommandHandler) Complete(ctx context.Context, cmd CompleteRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		now := h.clock()
		if err := r.Complete(now); err != nil {
			return nil, err
		}
		if err := uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}
		return []ports.Event{routeEvent(ports.EventRouteCompleted, r, now)}, nil
	})
}

// Cancel stops the route. Orders of stops not yet delivered go back to the
// pending catalog and open delivery attempts are dropped.
func (h RouteLifecycleCommandHandler) Cancel(ctx context.Context, cmd CancelRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		now := h.clock()
		released, err := r.Cancel(now)
		if err != nil {
			return nil, err
		}

		events, err := releaseOrders(ctx, uow, r.ID(), released, now)
		if err != nil {
			return nil, err
		}
		if err = uow.DeliveryAttemptRepository().DeleteByRoute(ctx, r.ID()); err != nil {
			return nil, err
		}
		if err = uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}
		return append(events, routeEvent(ports.EventRouteCancelled, r, now)), nil
	})
}

// Delete removes an assembling route after returning all its stops to the
// pending catalog.
func (h RouteLifecycleCommandHandler) Delete(ctx context.Context, cmd DeleteRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		orderIDs, err := r.Discard()
		if err != nil {
			return nil, err
		}

		now := h.clock()
		events, err := releaseOrders(ctx, uow, r.ID(), orderIDs, now)
		if err != nil {
			return nil, err
		}
		if err = uow.DeliveryAttemptRepository().DeleteByRoute(ctx, r.ID()); err != nil {
			return nil, err
		}
		if err = uow.RouteRepository().Delete(ctx, r.ID()); err != nil {
			return nil, err
		}
		return append(events, ports.Event{
			Type:       ports.EventRouteDeleted,
			RouteID:    r.ID().String(),
			OccurredAt: now,
		}), nil
	})
}

// ReportProgress relabels an active route against its plan and returns the
// resulting label.
func (h RouteLifecycleCommandHandler) ReportProgress(ctx context.Context, cmd ReportProgressCommand) (route.Tracking, error) {
	if err := cmd.Validate(); err != nil {
		return route.NotTracked, err
	}

	var tracking route.Tracking
	err := h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		now := h.clock()
		changed, err := r.ReportProgress(now)
		if err != nil {
			return nil, err
		}
		tracking = r.Tracking()

		if err = uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}
		if !changed {
			return nil, nil
		}
		e := routeEvent(ports.EventRouteTracking, r, now)
		e.Data["delay"] = r.DelayAnnotation()
		return []ports.Event{e}, nil
	})
	if err != nil {
		return route.NotTracked, err
	}
	return tracking, nil
}

func releaseOrders(
	ctx context.Context,
	uow UoW,
	routeID kernel.UUID,
	orderIDs []kernel.UUID,
	now time.Time,
) ([]ports.Event, error) {
	events := make([]ports.Event, 0, len(orderIDs))
	for _, id := range orderIDs {
		o, err := uow.OrderRepository().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err = o.Release(routeID); err != nil {
			return nil, err
		}
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return nil, err
		}
		events = append(events, pendingAdded(id, &routeID, now))
	}
	return events, nil
}
