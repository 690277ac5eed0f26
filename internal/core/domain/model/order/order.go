package order

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

// ErrOrderIsNotConstructed is returned when an Order was not created through
// NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Details are the immutable attributes of a confirmed sales order.
type Details struct {
	Client      string
	Address     string
	Items       []LineItem
	Returnables []ReturnableAsset
	// Volume in liters.
	Volume   int
	Period   Period
	Priority Priority
	// DistanceKm is the estimated drive distance from the depot.
	DistanceKm float64
	Location   kernel.Location
}

// Order is a confirmed sales order waiting for, or travelling on, a route.
//
// Invariants:
//   - the details never change after construction
//   - routeID is set exactly while the status is Assigned or Delivered
//   - delivery annotations are written once; a delivered order rejects every mutation
type Order struct {
	id       kernel.UUID
	details  Details
	status   Status
	routeID  *kernel.UUID
	delivery *DeliveryAnnotation
	version  int
	guard    guard.ConstructorGuard
}

// NewOrder creates a pending order.
//
//	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
//	    Client:   "Bar do Zé",
//	    Volume:   45,
//	    Period:   order.Morning,
//	    Priority: order.Urgent,
//	    ...
//	})
func NewOrder(id kernel.UUID, details Details) (*Order, error) {
	o := &Order{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setDetails(details),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order from storage. version is the optimistic
// concurrency token read alongside the row.
func RestoreOrder(
	id kernel.UUID,
	details Details,
	status Status,
	routeID *kernel.UUID,
	delivery *DeliveryAnnotation,
	version int,
) (*Order, error) {
	o := &Order{
		guard:   guard.NewConstructorGuard(),
		version: version,
	}

	if err := errors.Join(
		o.setID(id),
		o.setDetails(details),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if (routeID == nil) != (status == Pending) {
		return nil, errs.NewValueIsInvalidErrorWithCause("route id",
			fmt.Errorf("%s order cannot have route %v", status, routeID))
	}

	o.status = status
	o.routeID = routeID
	o.delivery = delivery
	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }

func (o *Order) Client() string { return o.details.Client }

func (o *Order) Address() string { return o.details.Address }

// Items returns a copy of the ordered line items.
func (o *Order) Items() []LineItem { return slices.Clone(o.details.Items) }

// Returnables returns a copy of the expected empties.
func (o *Order) Returnables() []ReturnableAsset { return slices.Clone(o.details.Returnables) }

func (o *Order) Volume() int { return o.details.Volume }

func (o *Order) Period() Period { return o.details.Period }

func (o *Order) Priority() Priority { return o.details.Priority }

func (o *Order) DistanceKm() float64 { return o.details.DistanceKm }

func (o *Order) Location() kernel.Location { return o.details.Location }

// Details returns a copy of the immutable order attributes.
func (o *Order) Details() Details {
	d := o.details
	d.Items = slices.Clone(d.Items)
	d.Returnables = slices.Clone(d.Returnables)
	return d
}

func (o *Order) Status() Status { return o.status }

// RouteID is the route the order is currently a stop of, nil while pending.
func (o *Order) RouteID() *kernel.UUID { return o.routeID }

// Delivery returns the annotation written at confirmation, nil before.
func (o *Order) Delivery() *DeliveryAnnotation { return o.delivery }

func (o *Order) Version() int { return o.version }

func (o *Order) IsPending() bool { return o.status == Pending }

// Assign claims the order for a route. An order that already has a route
// fails with AlreadyAssigned; a delivered order fails with InvalidState.
func (o *Order) Assign(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}

	if o.routeID != nil && o.status == Assigned {
		return errs.NewAlreadyAssignedError(o.id.String(), o.routeID.String())
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return errs.NewInvalidStateError("order", "assign order", o.status.String())
	}

	o.status = newStatus
	o.routeID = &routeID
	return nil
}

// Release returns the order to the pending catalog. The caller must name the
// route that currently owns it.
func (o *Order) Release(routeID kernel.UUID) error {
	if o.routeID == nil || !o.routeID.IsEqual(routeID) {
		return errs.NewInvalidStateError("order", "release from route "+routeID.String(), o.status.String())
	}

	newStatus, err := o.status.Release()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.routeID = nil
	return nil
}

// RecordDelivery writes the final quantities and closes the order.
func (o *Order) RecordDelivery(routeID kernel.UUID, annotation DeliveryAnnotation) error {
	if o.routeID == nil || !o.routeID.IsEqual(routeID) {
		return errs.NewInvalidStateError("order", "record delivery for route "+routeID.String(), o.status.String())
	}

	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	annotation.Lines = slices.Clone(annotation.Lines)
	annotation.Returnables = slices.Clone(annotation.Returnables)
	o.status = newStatus
	o.delivery = &annotation
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setDetails(d Details) error {
	var problems []error

	if d.Client == "" {
		problems = append(problems, errs.NewValueIsRequiredError("client"))
	}
	if d.Volume <= 0 {
		problems = append(problems,
			errs.NewValueIsInvalidErrorWithCause("volume is invalid", fmt.Errorf("%d is not greater than 0", d.Volume)))
	}
	if d.DistanceKm < 0 || math.IsNaN(d.DistanceKm) || math.IsInf(d.DistanceKm, 0) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("distance km", d.DistanceKm, 0, "unbounded"))
	}
	if len(d.Items) == 0 {
		problems = append(problems, errs.NewValueIsRequiredError("items"))
	}

	seen := make(map[string]struct{}, len(d.Items))
	for _, item := range d.Items {
		if err := item.validate(); err != nil {
			problems = append(problems, err)
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			problems = append(problems,
				errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("product %s listed twice", item.ProductID)))
		}
		seen[item.ProductID] = struct{}{}
	}

	assets := make(map[string]struct{}, len(d.Returnables))
	for _, r := range d.Returnables {
		if err := r.validate(); err != nil {
			problems = append(problems, err)
			continue
		}
		if _, dup := assets[r.AssetType]; dup {
			problems = append(problems,
				errs.NewValueIsInvalidErrorWithCause("returnables", fmt.Errorf("asset %s listed twice", r.AssetType)))
		}
		assets[r.AssetType] = struct{}{}
	}

	problems = append(problems,
		d.Period.Validate(),
		d.Priority.Validate(),
		d.Location.Validate(),
	)

	if err := errors.Join(problems...); err != nil {
		return err
	}

	d.Items = slices.Clone(d.Items)
	d.Returnables = slices.Clone(d.Returnables)
	o.details = d
	return nil
}
