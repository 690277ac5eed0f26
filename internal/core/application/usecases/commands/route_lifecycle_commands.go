package commands

import (
	"errors"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/guard"
)

var (
	ErrFinalizeRouteCommandIsNotConstructed = errors.New(
		"FinalizeRouteCommand must be created via NewFinalizeRouteCommand constructor",
	)
	ErrCompleteRouteCommandIsNotConstructed = errors.New(
		"CompleteRouteCommand must be created via NewCompleteRouteCommand constructor",
	)
	ErrCancelRouteCommandIsNotConstructed = errors.New(
		"CancelRouteCommand must be created via NewCancelRouteCommand constructor",
	)
	ErrDeleteRouteCommandIsNotConstructed = errors.New(
		"DeleteRouteCommand must be created via NewDeleteRouteCommand constructor",
	)
	ErrReportProgressCommandIsNotConstructed = errors.New(
		"ReportProgressCommand must be created via NewReportProgressCommand constructor",
	)
)

// routeCommand is the common shape of commands that address a whole route.
type routeCommand struct {
	routeID kernel.UUID
	guard   guard.ConstructorGuard
}

func newRouteCommand(routeID kernel.UUID) (routeCommand, error) {
	if err := routeID.Validate(); err != nil {
		return routeCommand{}, err
	}
	return routeCommand{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (c routeCommand) RouteID() kernel.UUID { return c.routeID }

// FinalizeRouteCommand closes assembly and dispatches the route.
type FinalizeRouteCommand struct{ routeCommand }

func NewFinalizeRouteCommand(routeID kernel.UUID) (FinalizeRouteCommand, error) {
	c, err := newRouteCommand(routeID)
	return FinalizeRouteCommand{c}, err
}

func (c FinalizeRouteCommand) Validate() error {
	return c.guard.Validate(ErrFinalizeRouteCommandIsNotConstructed)
}

// CompleteRouteCommand asks for explicit completion of an active route.
type CompleteRouteCommand struct{ routeCommand }

func NewCompleteRouteCommand(routeID kernel.UUID) (CompleteRouteCommand, error) {
	c, err := newRouteCommand(routeID)
	return CompleteRouteCommand{c}, err
}

func (c CompleteRouteCommand) Validate() error {
	return c.guard.Validate(ErrCompleteRouteCommandIsNotConstructed)
}

// CancelRouteCommand cancels an assembling or active route.
type CancelRouteCommand struct{ routeCommand }

func NewCancelRouteCommand(routeID kernel.UUID) (CancelRouteCommand, error) {
	c, err := newRouteCommand(routeID)
	return CancelRouteCommand{c}, err
}

func (c CancelRouteCommand) Validate() error {
	return c.guard.Validate(ErrCancelRouteCommandIsNotConstructed)
}

// DeleteRouteCommand removes an assembling route, returning its stops to the catalog.
type DeleteRouteCommand struct{ routeCommand }

func NewDeleteRouteCommand(routeID kernel.UUID) (DeleteRouteCommand, error) {
	c, err := newRouteCommand(routeID)
	return DeleteRouteCommand{c}, err
}

func (c DeleteRouteCommand) Validate() error {
	return c.guard.Validate(ErrDeleteRouteCommandIsNotConstructed)
}

// ReportProgressCommand relabels an active route ON_TIME or DELAYED.
type ReportProgressCommand struct{ routeCommand }

func NewReportProgressCommand(routeID kernel.UUID) (ReportProgressCommand, error) {
	c, err := newRouteCommand(routeID)
	return ReportProgressCommand{c}, err
}

func (c ReportProgressCommand) Validate() error {
	return c.guard.Validate(ErrReportProgressCommandIsNotConstructed)
}
