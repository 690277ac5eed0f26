package commands

import (
	"errors"
	"maps"
	"strings"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

var (
	ErrBeginStopCommandIsNotConstructed = errors.New(
		"BeginStopCommand must be created via NewBeginStopCommand constructor",
	)
	ErrAdvanceStopCommandIsNotConstructed = errors.New(
		"AdvanceStopCommand must be created via NewAdvanceStopCommand constructor",
	)
	ErrRecordStopQuantitiesCommandIsNotConstructed = errors.New(
		"RecordStopQuantitiesCommand must be created via NewRecordStopQuantitiesCommand constructor",
	)
	ErrConfirmStopCommandIsNotConstructed = errors.New(
		"ConfirmStopCommand must be created via NewConfirmStopCommand constructor",
	)
)

// stopRef addresses one stop of one route.
type stopRef struct {
	routeID kernel.UUID
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func newStopRef(routeID, orderID kernel.UUID) (stopRef, error) {
	if err := errors.Join(routeID.Validate(), orderID.Validate()); err != nil {
		return stopRef{}, err
	}
	return stopRef{routeID: routeID, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (s stopRef) RouteID() kernel.UUID { return s.routeID }

func (s stopRef) OrderID() kernel.UUID { return s.orderID }

// BeginStopCommand opens the delivery attempt of a stop.
type BeginStopCommand struct {
	stopRef
	attemptID kernel.UUID
}

func NewBeginStopCommand(attemptID, routeID, orderID kernel.UUID) (BeginStopCommand, error) {
	ref, err := newStopRef(routeID, orderID)
	if err = errors.Join(err, attemptID.Validate()); err != nil {
		return BeginStopCommand{}, err
	}
	return BeginStopCommand{stopRef: ref, attemptID: attemptID}, nil
}

func (c BeginStopCommand) Validate() error {
	return c.guard.Validate(ErrBeginStopCommandIsNotConstructed)
}

func (c BeginStopCommand) AttemptID() kernel.UUID { return c.attemptID }

// StopAction is a phase step the driver takes at a stop.
type StopAction int

const (
	StopActionUnknown StopAction = iota
	// Arrive moves EN_ROUTE to ARRIVED.
	Arrive
	// Reconcile moves ARRIVED to ITEMS_RECONCILED after checking quantities.
	Reconcile
	// Reopen moves ITEMS_RECONCILED back to ARRIVED.
	Reopen
	// Abandon drops recorded data and returns to EN_ROUTE.
	Abandon
)

func (a StopAction) String() string {
	switch a {
	case Arrive:
		return "arrive"
	case Reconcile:
		return "reconcile"
	case Reopen:
		return "reopen"
	case Abandon:
		return "abandon"
	default:
		return "unknown"
	}
}

func ParseStopAction(s string) (StopAction, error) {
	for _, a := range []StopAction{Arrive, Reconcile, Reopen, Abandon} {
		if strings.EqualFold(a.String(), s) {
			return a, nil
		}
	}
	return StopActionUnknown, errs.NewValueIsInvalidError("stop action " + s)
}

// AdvanceStopCommand moves the attempt of a stop through its phases.
type AdvanceStopCommand struct {
	stopRef
	action StopAction
}

func NewAdvanceStopCommand(routeID, orderID kernel.UUID, action StopAction) (AdvanceStopCommand, error) {
	ref, err := newStopRef(routeID, orderID)
	var actionErr error
	if action <= StopActionUnknown || action > Abandon {
		actionErr = errs.NewValueIsInvalidError("stop action")
	}
	if err = errors.Join(err, actionErr); err != nil {
		return AdvanceStopCommand{}, err
	}
	return AdvanceStopCommand{stopRef: ref, action: action}, nil
}

func (c AdvanceStopCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceStopCommandIsNotConstructed)
}

func (c AdvanceStopCommand) Action() StopAction { return c.action }

// RecordStopQuantitiesCommand records delivered quantities per product and
// counted empties per asset type. Either map may be empty.
type RecordStopQuantitiesCommand struct {
	stopRef
	delivered map[string]int
	counted   map[string]int
}

func NewRecordStopQuantitiesCommand(
	routeID, orderID kernel.UUID,
	delivered, counted map[string]int,
) (RecordStopQuantitiesCommand, error) {
	ref, err := newStopRef(routeID, orderID)
	if err != nil {
		return RecordStopQuantitiesCommand{}, err
	}
	return RecordStopQuantitiesCommand{
		stopRef:   ref,
		delivered: maps.Clone(delivered),
		counted:   maps.Clone(counted),
	}, nil
}

func (c RecordStopQuantitiesCommand) Validate() error {
	return c.guard.Validate(ErrRecordStopQuantitiesCommandIsNotConstructed)
}

func (c RecordStopQuantitiesCommand) Delivered() map[string]int { return maps.Clone(c.delivered) }

func (c RecordStopQuantitiesCommand) Counted() map[string]int { return maps.Clone(c.counted) }

// ConfirmStopCommand closes a stop with its proof of delivery. Missing proof
// is reported by the attempt as MissingProof, not at construction.
type ConfirmStopCommand struct {
	stopRef
	recipientName string
	proofRef      string
}

func NewConfirmStopCommand(routeID, orderID kernel.UUID, recipientName, proofRef string) (ConfirmStopCommand, error) {
	ref, err := newStopRef(routeID, orderID)
	if err != nil {
		return ConfirmStopCommand{}, err
	}
	return ConfirmStopCommand{stopRef: ref, recipientName: recipientName, proofRef: proofRef}, nil
}

func (c ConfirmStopCommand) Validate() error {
	return c.guard.Validate(ErrConfirmStopCommandIsNotConstructed)
}

func (c ConfirmStopCommand) RecipientName() string { return c.recipientName }

func (c ConfirmStopCommand) ProofRef() string { return c.proofRef }
