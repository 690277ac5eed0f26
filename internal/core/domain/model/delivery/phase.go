package delivery

import (
	"fmt"

	"routeplanner/internal/pkg/errs"
)

// Phase is the driver's progress through one stop.
//
//	EnRoute ──> Arrived ──> ItemsReconciled ──> Confirmed
//	               ^               │
//	               └───────────────┘ (reopen to correct a quantity)
type Phase int

const (
	PhaseUnknown Phase = iota
	EnRoute
	Arrived
	ItemsReconciled
	// Confirmed is terminal; the attempt is folded into the order and discarded.
	Confirmed
)

func getPhaseStrings() map[Phase]string {
	return map[Phase]string{
		PhaseUnknown:    "UNKNOWN",
		EnRoute:         "EN_ROUTE",
		Arrived:         "ARRIVED",
		ItemsReconciled: "ITEMS_RECONCILED",
		Confirmed:       "CONFIRMED",
	}
}

func (p Phase) String() string {
	if str, ok := getPhaseStrings()[p]; ok {
		return str
	}
	return "UNKNOWN"
}

func (p Phase) Validate() error {
	if p <= PhaseUnknown || p > Confirmed {
		return errs.NewValueIsInvalidErrorWithCause("phase is invalid", fmt.Errorf("%d is not a valid phase", p))
	}
	return nil
}

func ParsePhase(s string) (Phase, error) {
	for phase, str := range getPhaseStrings() {
		if phase != PhaseUnknown && str == s {
			return phase, nil
		}
	}
	return PhaseUnknown, errs.NewValueIsInvalidErrorWithCause("phase", fmt.Errorf("%q is not a valid phase", s))
}

func (p Phase) Arrive() (Phase, error) {
	if p != EnRoute {
		return 0, errs.NewInvalidTransitionError(p.String(), Arrived.String())
	}
	return Arrived, nil
}

func (p Phase) Reconcile() (Phase, error) {
	if p != Arrived {
		return 0, errs.NewInvalidTransitionError(p.String(), ItemsReconciled.String())
	}
	return ItemsReconciled, nil
}

func (p Phase) Reopen() (Phase, error) {
	if p != ItemsReconciled {
		return 0, errs.NewInvalidTransitionError(p.String(), Arrived.String())
	}
	return Arrived, nil
}

func (p Phase) Confirm() (Phase, error) {
	if p != ItemsReconciled {
		return 0, errs.NewInvalidTransitionError(p.String(), Confirmed.String())
	}
	return Confirmed, nil
}

// CanAbandon reports whether the driver may drop the stop without losing
// reconciled counts.
func (p Phase) CanAbandon() bool {
	return p == EnRoute || p == Arrived
}
