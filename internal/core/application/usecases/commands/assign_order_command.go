package commands

import (
	"errors"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/guard"
)

var (
	ErrAssignOrderCommandIsNotConstructed = errors.New(
		"AssignOrderCommand must be created via NewAssignOrderCommand constructor",
	)
	ErrUnassignOrderCommandIsNotConstructed = errors.New(
		"UnassignOrderCommand must be created via NewUnassignOrderCommand constructor",
	)
)

// AssignOrderCommand adds a pending order as the last stop of an assembling route.
type AssignOrderCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignOrderCommand(routeID, orderID kernel.UUID) (AssignOrderCommand, error) {
	if err := errors.Join(routeID.Validate(), orderID.Validate()); err != nil {
		return AssignOrderCommand{}, err
	}
	return AssignOrderCommand{routeID: routeID, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AssignOrderCommand) Validate() error {
	return c.guard.Validate(ErrAssignOrderCommandIsNotConstructed)
}

func (c AssignOrderCommand) RouteID() kernel.UUID { return c.routeID }

func (c AssignOrderCommand) OrderID() kernel.UUID { return c.orderID }

// UnassignOrderCommand removes a stop from an assembling route and returns
// the order to the catalog.
type UnassignOrderCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewUnassignOrderCommand(routeID, orderID kernel.UUID) (UnassignOrderCommand, error) {
	if err := errors.Join(routeID.Validate(), orderID.Validate()); err != nil {
		return UnassignOrderCommand{}, err
	}
	return UnassignOrderCommand{routeID: routeID, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c UnassignOrderCommand) Validate() error {
	return c.guard.Validate(ErrUnassignOrderCommandIsNotConstructed)
}

func (c UnassignOrderCommand) RouteID() kernel.UUID { return c.routeID }

func (c UnassignOrderCommand) OrderID() kernel.UUID { return c.orderID }
