package order

import (
	"fmt"

	"routeplanner/internal/pkg/errs"
)

// Status tracks an order from the pending catalog to delivery.
//
//	Pending ──> Assigned ──> Delivered
//	   ^            │
//	   └────────────┘
//	(released by unassign, route deletion or cancellation)
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	// Pending orders sit in the catalog waiting for a route.
	Pending
	// Assigned orders are a stop of exactly one route.
	Assigned
	// Delivered is final; the order carries its delivered-quantity annotations.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Pending:   "PENDING",
		Assigned:  "ASSIGNED",
		Delivered: "DELIVERED",
	}
}

// Validate rejects Unknown and out-of-range values read from storage or the API.
func (s Status) Validate() error {
	if s <= Unknown || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Assign moves a pending order onto a route.
func (s Status) Assign() (Status, error) {
	if s != Pending {
		return 0, errs.NewInvalidTransitionError(s.String(), Assigned.String())
	}
	return Assigned, nil
}

// Release returns an assigned order to the pending catalog.
func (s Status) Release() (Status, error) {
	if s != Assigned {
		return 0, errs.NewInvalidTransitionError(s.String(), Pending.String())
	}
	return Pending, nil
}

// Deliver closes an assigned order.
func (s Status) Deliver() (Status, error) {
	if s != Assigned {
		return 0, errs.NewInvalidTransitionError(s.String(), Delivered.String())
	}
	return Delivered, nil
}
