package errs

import (
	"errors"
	"fmt"
)

// Sentinels for the route planning failure kinds. Every typed error below
// unwraps to exactly one of them so callers can classify with errors.Is.
var (
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrInvalidState         = errors.New("invalid state")
	ErrAlreadyAssigned      = errors.New("already assigned")
	ErrEmptyRoute           = errors.New("empty route")
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrQuantityExceedsOrder = errors.New("quantity exceeds order")
	ErrMissingProof         = errors.New("missing proof")
	ErrInvalidVehicle       = errors.New("invalid vehicle")
	ErrNotYetDeparted       = errors.New("not yet departed")
	ErrUnavailable          = errors.New("unavailable")
)

// CapacityExceededError is returned when adding a stop would push the route's
// cumulative volume over the vehicle ceiling.
type CapacityExceededError struct {
	RouteID   string
	Capacity  int
	Attempted int
}

func NewCapacityExceededError(routeID string, capacity, attempted int) *CapacityExceededError {
	return &CapacityExceededError{RouteID: routeID, Capacity: capacity, Attempted: attempted}
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: route %s capacity %dL, attempted %dL",
		ErrCapacityExceeded, e.RouteID, e.Capacity, e.Attempted)
}

func (e *CapacityExceededError) Unwrap() error {
	return ErrCapacityExceeded
}

// InvalidStateError reports an operation requested while its subject is in a
// state that does not allow it.
type InvalidStateError struct {
	Subject   string
	Operation string
	State     string
}

func NewInvalidStateError(subject, operation, state string) *InvalidStateError {
	return &InvalidStateError{Subject: subject, Operation: operation, State: state}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: cannot %s while %s is %s", ErrInvalidState, e.Operation, e.Subject, e.State)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

type AlreadyAssignedError struct {
	OrderID string
	RouteID string
}

func NewAlreadyAssignedError(orderID, routeID string) *AlreadyAssignedError {
	return &AlreadyAssignedError{OrderID: orderID, RouteID: routeID}
}

func (e *AlreadyAssignedError) Error() string {
	if e.RouteID == "" {
		return fmt.Sprintf("%s: order %s was claimed by another route", ErrAlreadyAssigned, e.OrderID)
	}
	return fmt.Sprintf("%s: order %s belongs to route %s", ErrAlreadyAssigned, e.OrderID, e.RouteID)
}

func (e *AlreadyAssignedError) Unwrap() error {
	return ErrAlreadyAssigned
}

type EmptyRouteError struct {
	RouteID string
}

func NewEmptyRouteError(routeID string) *EmptyRouteError {
	return &EmptyRouteError{RouteID: routeID}
}

func (e *EmptyRouteError) Error() string {
	return fmt.Sprintf("%s: route %s has no stops", ErrEmptyRoute, e.RouteID)
}

func (e *EmptyRouteError) Unwrap() error {
	return ErrEmptyRoute
}

// InvalidTransitionError is returned by lifecycle state machines when the
// requested edge is not part of the transition graph.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func NewInvalidTransitionErrorWithReason(from, to, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Reason: reason}
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s -> %s (%s)", ErrInvalidTransition, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type QuantityExceedsOrderError struct {
	ProductID string
	Ordered   int
	Delivered int
}

func NewQuantityExceedsOrderError(productID string, ordered, delivered int) *QuantityExceedsOrderError {
	return &QuantityExceedsOrderError{ProductID: productID, Ordered: ordered, Delivered: delivered}
}

func (e *QuantityExceedsOrderError) Error() string {
	return fmt.Sprintf("%s: product %s ordered %d, delivered %d",
		ErrQuantityExceedsOrder, e.ProductID, e.Ordered, e.Delivered)
}

func (e *QuantityExceedsOrderError) Unwrap() error {
	return ErrQuantityExceedsOrder
}

type MissingProofError struct {
	Field string
}

func NewMissingProofError(field string) *MissingProofError {
	return &MissingProofError{Field: field}
}

func (e *MissingProofError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrMissingProof, e.Field)
}

func (e *MissingProofError) Unwrap() error {
	return ErrMissingProof
}

type InvalidVehicleError struct {
	VehicleID string
	Reason    string
}

func NewInvalidVehicleError(vehicleID, reason string) *InvalidVehicleError {
	return &InvalidVehicleError{VehicleID: vehicleID, Reason: reason}
}

func (e *InvalidVehicleError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrInvalidVehicle, e.VehicleID, e.Reason)
}

func (e *InvalidVehicleError) Unwrap() error {
	return ErrInvalidVehicle
}

type NotYetDepartedError struct {
	RouteID string
	Status  string
}

func NewNotYetDepartedError(routeID, status string) *NotYetDepartedError {
	return &NotYetDepartedError{RouteID: routeID, Status: status}
}

func (e *NotYetDepartedError) Error() string {
	return fmt.Sprintf("%s: route %s is %s", ErrNotYetDeparted, e.RouteID, e.Status)
}

func (e *NotYetDepartedError) Unwrap() error {
	return ErrNotYetDeparted
}

// UnavailableError wraps infrastructure failures (storage, transport) at the
// boundary so that callers only ever see the documented kinds.
type UnavailableError struct {
	Cause error
}

func NewUnavailableError(cause error) *UnavailableError {
	return &UnavailableError{Cause: cause}
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", ErrUnavailable, e.Cause)
	}
	return ErrUnavailable.Error()
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}
