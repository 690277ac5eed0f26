package commands

import (
	"context"
	"errors"
	"log/slog"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

// routeMutation changes one route (and whatever it drags along) inside an
// open unit of work and returns the events to publish after commit.
type routeMutation func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error)

// routeRunner serializes all commands on one route. The route is loaded after
// the lock is taken, so a caller that waited validates against the state the
// previous holder committed.
type routeRunner struct {
	uowFactory UoWFactory
	locks      *services.RouteLocks
	announcer
}

func newRouteRunner(
	uowFactory UoWFactory,
	locks *services.RouteLocks,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) routeRunner {
	if locks == nil {
		locks = services.NewRouteLocks()
	}
	return routeRunner{uowFactory: uowFactory, locks: locks, announcer: newAnnouncer(publisher, logger)}
}

func (rr routeRunner) run(ctx context.Context, routeID kernel.UUID, mutate routeMutation) error {
	unlock := rr.locks.Lock(routeID)
	defer unlock()

	uow := rr.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	r, err := uow.RouteRepository().Get(ctx, routeID)
	if err != nil {
		return err
	}

	events, err := mutate(ctx, uow, r)
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	rr.announce(ctx, events...)
	return nil
}

// announcer publishes the events of a committed change. The change stays
// committed when publishing fails; the failure is logged.
type announcer struct {
	publisher ports.EventPublisher
	logger    *slog.Logger
}

func newAnnouncer(publisher ports.EventPublisher, logger *slog.Logger) announcer {
	if publisher == nil {
		publisher = NopPublisher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return announcer{publisher: publisher, logger: logger.With("component", "commands")}
}

func (a announcer) announce(ctx context.Context, events ...ports.Event) {
	if len(events) == 0 {
		return
	}
	if err := a.publisher.Publish(ctx, events...); err != nil {
		a.logger.WarnContext(ctx, "publishing events failed",
			"event_type", events[0].Type,
			"route_id", events[0].RouteID,
			"events", len(events),
			"error", err)
	}
}

// isOrderConflict reports whether err is a lost optimistic-concurrency race
// on an order: someone else committed a change to it after it was loaded here.
func isOrderConflict(err error) bool {
	var versionErr *errs.VersionIsInvalidError
	return errors.As(err, &versionErr) && versionErr.ParamName == "order"
}
