package delivery

import (
	"errors"
	"slices"
	"strings"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

var ErrAttemptIsNotConstructed = errors.New("Attempt must be created via NewAttempt constructor")

// Attempt is the driver's working copy of one stop: the quantities handed
// over, the empties collected and the proof of delivery. It lives from
// BeginStop until the stop is confirmed.
type Attempt struct {
	id            kernel.UUID
	routeID       kernel.UUID
	orderID       kernel.UUID
	phase         Phase
	ordered       []order.LineItem
	expected      []order.ReturnableAsset
	lines         []order.DeliveredLine
	returnables   []order.CollectedAsset
	recipientName string
	proofRef      string
	startedAt     time.Time
	guard         guard.ConstructorGuard
}

// NewAttempt begins a stop in EnRoute. Delivered quantities default to the
// ordered ones and counted empties to the expected ones.
func NewAttempt(id, routeID kernel.UUID, o *order.Order, now time.Time) (*Attempt, error) {
	if err := errors.Join(id.Validate(), routeID.Validate(), o.Validate()); err != nil {
		return nil, err
	}

	a := &Attempt{
		id:        id,
		routeID:   routeID,
		orderID:   o.ID(),
		phase:     EnRoute,
		ordered:   o.Items(),
		expected:  o.Returnables(),
		startedAt: now,
		guard:     guard.NewConstructorGuard(),
	}
	a.reset()
	return a, nil
}

// State is the persisted form of an open attempt.
type State struct {
	ID            kernel.UUID
	RouteID       kernel.UUID
	OrderID       kernel.UUID
	Phase         Phase
	Ordered       []order.LineItem
	Expected      []order.ReturnableAsset
	Lines         []order.DeliveredLine
	Returnables   []order.CollectedAsset
	RecipientName string
	ProofRef      string
	StartedAt     time.Time
}

func RestoreAttempt(s State) (*Attempt, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.RouteID.Validate(),
		s.OrderID.Validate(),
		s.Phase.Validate(),
	); err != nil {
		return nil, err
	}

	return &Attempt{
		id:            s.ID,
		routeID:       s.RouteID,
		orderID:       s.OrderID,
		phase:         s.Phase,
		ordered:       slices.Clone(s.Ordered),
		expected:      slices.Clone(s.Expected),
		lines:         slices.Clone(s.Lines),
		returnables:   slices.Clone(s.Returnables),
		recipientName: s.RecipientName,
		proofRef:      s.ProofRef,
		startedAt:     s.StartedAt,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Snapshot exports the persisted form of the attempt.
func (a *Attempt) Snapshot() State {
	return State{
		ID:            a.id,
		RouteID:       a.routeID,
		OrderID:       a.orderID,
		Phase:         a.phase,
		Ordered:       slices.Clone(a.ordered),
		Expected:      slices.Clone(a.expected),
		Lines:         slices.Clone(a.lines),
		Returnables:   slices.Clone(a.returnables),
		RecipientName: a.recipientName,
		ProofRef:      a.proofRef,
		StartedAt:     a.startedAt,
	}
}

func (a *Attempt) Validate() error {
	if a == nil {
		return ErrAttemptIsNotConstructed
	}
	return a.guard.Validate(ErrAttemptIsNotConstructed)
}

func (a *Attempt) ID() kernel.UUID { return a.id }

func (a *Attempt) RouteID() kernel.UUID { return a.routeID }

func (a *Attempt) OrderID() kernel.UUID { return a.orderID }

func (a *Attempt) Phase() Phase { return a.phase }

func (a *Attempt) StartedAt() time.Time { return a.startedAt }

func (a *Attempt) RecipientName() string { return a.recipientName }

func (a *Attempt) ProofRef() string { return a.proofRef }

func (a *Attempt) Ordered() []order.LineItem { return slices.Clone(a.ordered) }

func (a *Attempt) Expected() []order.ReturnableAsset { return slices.Clone(a.expected) }

func (a *Attempt) Lines() []order.DeliveredLine { return slices.Clone(a.lines) }

func (a *Attempt) Returnables() []order.CollectedAsset { return slices.Clone(a.returnables) }

// Arrive marks the driver at the client. The route must have been dispatched.
func (a *Attempt) Arrive(routeStatus route.Status) error {
	if routeStatus != route.Active {
		return errs.NewNotYetDepartedError(a.routeID.String(), routeStatus.String())
	}

	next, err := a.phase.Arrive()
	if err != nil {
		return err
	}
	a.phase = next
	return nil
}

// RecordDelivered sets the quantity handed over for one ordered product.
// Over-delivery is accepted here and rejected by Reconcile.
func (a *Attempt) RecordDelivered(productID string, quantity int) error {
	if a.phase != Arrived {
		return errs.NewInvalidStateError("delivery attempt", "record delivered quantity", a.phase.String())
	}
	if quantity < 0 {
		return errs.NewValueIsOutOfRangeError("delivered quantity", quantity, 0, "ordered quantity")
	}

	i := slices.IndexFunc(a.lines, func(l order.DeliveredLine) bool { return l.ProductID == productID })
	if i < 0 {
		return errs.NewObjectNotFoundError("product", productID)
	}
	a.lines[i].Delivered = quantity
	return nil
}

// RecordCounted sets the number of empties collected of one asset type. A
// type the client was not expected to return is added with zero expected.
func (a *Attempt) RecordCounted(assetType string, counted int) error {
	if a.phase != Arrived {
		return errs.NewInvalidStateError("delivery attempt", "record returnable count", a.phase.String())
	}
	assetType = strings.TrimSpace(assetType)
	if assetType == "" {
		return errs.NewValueIsRequiredError("asset type")
	}
	if counted < 0 {
		return errs.NewValueIsOutOfRangeError("counted returnables", counted, 0, "unbounded")
	}

	i := slices.IndexFunc(a.returnables, func(r order.CollectedAsset) bool { return r.AssetType == assetType })
	if i < 0 {
		a.returnables = append(a.returnables, order.CollectedAsset{AssetType: assetType, Counted: counted})
		return nil
	}
	a.returnables[i].Counted = counted
	return nil
}

// Reconcile checks the recorded quantities against the order. On failure the
// attempt stays Arrived.
func (a *Attempt) Reconcile() error {
	next, err := a.phase.Reconcile()
	if err != nil {
		return err
	}

	for _, l := range a.lines {
		if l.Delivered < 0 {
			return errs.NewValueIsOutOfRangeError("delivered quantity", l.Delivered, 0, l.Ordered)
		}
		if l.Delivered > l.Ordered {
			return errs.NewQuantityExceedsOrderError(l.ProductID, l.Ordered, l.Delivered)
		}
	}
	for _, r := range a.returnables {
		if r.Counted < 0 {
			return errs.NewValueIsOutOfRangeError("counted returnables", r.Counted, 0, "unbounded")
		}
	}

	a.phase = next
	return nil
}

// Reopen takes a reconciled attempt back to Arrived so the driver can fix a
// quantity. Recorded values are kept.
func (a *Attempt) Reopen() error {
	next, err := a.phase.Reopen()
	if err != nil {
		return err
	}
	a.phase = next
	return nil
}

// Confirm closes the stop with the proof of delivery and returns the
// annotation to write onto the order.
func (a *Attempt) Confirm(recipientName, proofRef string) (order.DeliveryAnnotation, error) {
	next, err := a.phase.Confirm()
	if err != nil {
		return order.DeliveryAnnotation{}, err
	}

	recipientName = strings.TrimSpace(recipientName)
	proofRef = strings.TrimSpace(proofRef)
	if recipientName == "" {
		return order.DeliveryAnnotation{}, errs.NewMissingProofError("recipient name")
	}
	if proofRef == "" {
		return order.DeliveryAnnotation{}, errs.NewMissingProofError("proof of delivery")
	}

	a.phase = next
	a.recipientName = recipientName
	a.proofRef = proofRef
	return order.DeliveryAnnotation{
		Lines:         slices.Clone(a.lines),
		Returnables:   slices.Clone(a.returnables),
		RecipientName: recipientName,
		ProofRef:      proofRef,
	}, nil
}

// Abandon drops the recorded data and puts the driver back en route. Not
// possible once the items are reconciled.
func (a *Attempt) Abandon() error {
	if !a.phase.CanAbandon() {
		return errs.NewInvalidStateError("delivery attempt", "abandon stop", a.phase.String())
	}
	a.phase = EnRoute
	a.reset()
	return nil
}

func (a *Attempt) reset() {
	a.lines = make([]order.DeliveredLine, 0, len(a.ordered))
	for _, item := range a.ordered {
		a.lines = append(a.lines, order.DeliveredLine{
			ProductID: item.ProductID,
			Ordered:   item.Quantity,
			Delivered: item.Quantity,
		})
	}

	a.returnables = make([]order.CollectedAsset, 0, len(a.expected))
	for _, r := range a.expected {
		a.returnables = append(a.returnables, order.CollectedAsset{
			AssetType: r.AssetType,
			Expected:  r.Expected,
			Counted:   r.Expected,
		})
	}
	a.recipientName = ""
	a.proofRef = ""
}
