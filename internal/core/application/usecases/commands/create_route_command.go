package commands

import (
	"errors"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

var ErrCreateRouteCommandIsNotConstructed = errors.New(
	"CreateRouteCommand must be created via NewCreateRouteCommand constructor",
)

// CreateRouteCommand books a vehicle for a date and period and opens an
// empty route for assembly.
type CreateRouteCommand struct { //nolint:recvcheck //using for validation
	routeID   kernel.UUID
	vehicleID kernel.UUID
	date      time.Time
	period    order.Period

	guard guard.ConstructorGuard
}

func NewCreateRouteCommand(
	routeID, vehicleID kernel.UUID,
	date time.Time,
	period order.Period,
) (CreateRouteCommand, error) {
	var dateErr error
	if date.IsZero() {
		dateErr = errs.NewValueIsRequiredError("date")
	}

	if err := errors.Join(
		routeID.Validate(),
		vehicleID.Validate(),
		dateErr,
		period.Validate(),
	); err != nil {
		return CreateRouteCommand{}, err
	}

	return CreateRouteCommand{
		routeID:   routeID,
		vehicleID: vehicleID,
		date:      date,
		period:    period,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreateRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteCommandIsNotConstructed)
}

func (c CreateRouteCommand) RouteID() kernel.UUID { return c.routeID }

func (c CreateRouteCommand) VehicleID() kernel.UUID { return c.vehicleID }

func (c CreateRouteCommand) Date() time.Time { return c.date }

func (c CreateRouteCommand) Period() order.Period { return c.period }
