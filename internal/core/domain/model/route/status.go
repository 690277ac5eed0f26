package route

import (
	"fmt"

	"routeplanner/internal/pkg/errs"
)

// Status is the lifecycle state of a route.
//
//	Assembling ──> Active ──> Completed
//	     │            │
//	     └────────────┴──> Cancelled
//
// Completed and Cancelled are terminal. While Active the route additionally
// carries a Tracking label which does not take part in the transition graph.
type Status int

const (
	Unknown Status = iota
	// Assembling is the only state in which stops may be added, removed or resequenced.
	Assembling
	Active
	Completed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Assembling: "ASSEMBLING",
		Active:     "ACTIVE",
		Completed:  "COMPLETED",
		Cancelled:  "CANCELLED",
	}
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// ParseStatus accepts the upper-case names produced by String.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// Finalize closes assembly and dispatches the route.
func (s Status) Finalize() (Status, error) {
	if s != Assembling {
		return 0, errs.NewInvalidTransitionError(s.String(), Active.String())
	}
	return Active, nil
}

func (s Status) Complete() (Status, error) {
	if s != Active {
		return 0, errs.NewInvalidTransitionError(s.String(), Completed.String())
	}
	return Completed, nil
}

func (s Status) Cancel() (Status, error) {
	if s != Assembling && s != Active {
		return 0, errs.NewInvalidTransitionError(s.String(), Cancelled.String())
	}
	return Cancelled, nil
}

// Tracking is the ON_TIME/DELAYED label of an active route.
type Tracking int

const (
	// NotTracked is the label of every route that is not Active.
	NotTracked Tracking = iota
	OnTime
	Delayed
)

func (t Tracking) String() string {
	switch t {
	case OnTime:
		return "ON_TIME"
	case Delayed:
		return "DELAYED"
	default:
		return ""
	}
}

func (t Tracking) Validate() error {
	if t < NotTracked || t > Delayed {
		return errs.NewValueIsInvalidErrorWithCause("tracking", fmt.Errorf("%d is not a valid tracking label", t))
	}
	return nil
}
