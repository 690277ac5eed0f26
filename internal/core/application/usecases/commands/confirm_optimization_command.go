package commands

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

var ErrConfirmOptimizationCommandIsNotConstructed = errors.New(
	"ConfirmOptimizationCommand must be created via NewConfirmOptimizationCommand constructor",
)

// ConfirmOptimizationCommand applies a previewed stop sequence.
type ConfirmOptimizationCommand struct { //nolint:recvcheck //using for validation
	routeID  kernel.UUID
	sequence []kernel.UUID

	guard guard.ConstructorGuard
}

func NewConfirmOptimizationCommand(routeID kernel.UUID, sequence []kernel.UUID) (ConfirmOptimizationCommand, error) {
	problems := []error{routeID.Validate()}
	for _, id := range sequence {
		problems = append(problems, id.Validate())
	}
	if sequence == nil {
		problems = append(problems, errs.NewValueIsRequiredError("sequence"))
	}
	if err := errors.Join(problems...); err != nil {
		return ConfirmOptimizationCommand{}, err
	}

	return ConfirmOptimizationCommand{
		routeID:  routeID,
		sequence: slices.Clone(sequence),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmOptimizationCommand) Validate() error {
	return c.guard.Validate(ErrConfirmOptimizationCommandIsNotConstructed)
}

func (c ConfirmOptimizationCommand) RouteID() kernel.UUID { return c.routeID }

func (c ConfirmOptimizationCommand) Sequence() []kernel.UUID { return slices.Clone(c.sequence) }

// ConfirmOptimizationCommandHandler resequences an assembling route. Volume,
// distance and time are per-stop sums and stay as they are.
type ConfirmOptimizationCommandHandler struct {
	runner routeRunner
	clock  Clock
}

func NewConfirmOptimizationCommandHandler(
	uowFactory UoWFactory,
	locks *services.RouteLocks,
	publisher ports.EventPublisher,
	clock Clock,
	logger *slog.Logger,
) ConfirmOptimizationCommandHandler {
	if clock == nil {
		clock = SystemClock
	}
	return ConfirmOptimizationCommandHandler{
		runner: newRouteRunner(uowFactory, locks, publisher, logger),
		clock:  clock,
	}
}

func (h ConfirmOptimizationCommandHandler) Handle(ctx context.Context, cmd ConfirmOptimizationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.runner.run(ctx, cmd.RouteID(), func(ctx context.Context, uow UoW, r *route.Route) ([]ports.Event, error) {
		if err := r.Resequence(cmd.Sequence()); err != nil {
			return nil, err
		}
		if err := uow.RouteRepository().Update(ctx, r); err != nil {
			return nil, err
		}
		return []ports.Event{routeEvent(ports.EventRouteUpdated, r, h.clock())}, nil
	})
}
