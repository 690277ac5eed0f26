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

// CreateRouteCommandHandler opens routes. A vehicle runs at most one
// non-cancelled route per date and period.
type CreateRouteCommandHandler struct {
	uowFactory UoWFactory
	vehicles   ports.VehicleRepository
	locks      *services.RouteLocks
	announcer  announcer
	clock      Clock
}

func NewCreateRouteCommandHandler(
	uowFactory UoWFactory,
	vehicles ports.VehicleRepository,
	locks *services.RouteLocks,
	publisher ports.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) CreateRouteCommandHandler {
	rr := newRouteRunner(uowFactory, locks, publisher, logger)
	if clock == nil {
		clock = SystemClock
	}
	return CreateRouteCommandHandler{
		uowFactory: uowFactory,
		vehicles:   vehicles,
		locks:      rr.locks,
		announcer:  rr.announcer,
		clock:      clock,
	}
}

func (h CreateRouteCommandHandler) Handle(ctx context.Context, cmd CreateRouteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	v, err := h.vehicles.Get(ctx, cmd.VehicleID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return errs.NewInvalidVehicleError(cmd.VehicleID().String(), "unknown vehicle")
	}
	if err != nil {
		return err
	}

	r, err := route.NewRoute(cmd.RouteID(), v, cmd.Date(), cmd.Period())
	if err != nil {
		return err
	}

	// the vehicle id keys the booking of its slots
	unlock := h.locks.Lock(v.ID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()

	booked, err := routeRepo.GetBySlot(ctx, v.ID(), r.Date(), r.Period())
	if err != nil {
		return err
	}
	for _, other := range booked {
		if other.Status() != route.Cancelled {
			return errs.NewInvalidVehicleError(v.ID().String(),
				"already booked for "+r.Date().Format("2006-01-02")+" "+r.Period().String()+" by route "+other.ID().String())
		}
	}

	if err = routeRepo.Add(ctx, r); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.announcer.announce(ctx, routeEvent(ports.EventRouteCreated, r, h.clock()))
	return nil
}
