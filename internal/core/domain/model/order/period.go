package order

import (
	"fmt"
	"strings"

	"routeplanner/internal/pkg/errs"
)

// Period is the half-day delivery window requested by the client.
type Period int

const (
	PeriodUnknown Period = iota
	Morning
	Afternoon
)

func (p Period) String() string {
	switch p {
	case Morning:
		return "MORNING"
	case Afternoon:
		return "AFTERNOON"
	default:
		return "UNKNOWN"
	}
}

func (p Period) Validate() error {
	if p != Morning && p != Afternoon {
		return errs.NewValueIsInvalidErrorWithCause("period", fmt.Errorf("%d is not a valid period", p))
	}
	return nil
}

// ParsePeriod is case-insensitive.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MORNING":
		return Morning, nil
	case "AFTERNOON":
		return Afternoon, nil
	default:
		return PeriodUnknown, errs.NewValueIsInvalidErrorWithCause("period", fmt.Errorf("%q is not a valid period", s))
	}
}

// Priority flags orders that must be served first.
type Priority int

const (
	PriorityUnknown Priority = iota
	Urgent
	Normal
)

func (p Priority) String() string {
	switch p {
	case Urgent:
		return "URGENT"
	case Normal:
		return "NORMAL"
	default:
		return "UNKNOWN"
	}
}

func (p Priority) Validate() error {
	if p != Urgent && p != Normal {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

// Outranks reports whether p is served before other when everything else ties.
func (p Priority) Outranks(other Priority) bool {
	return p == Urgent && other != Urgent
}

func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "URGENT":
		return Urgent, nil
	case "NORMAL", "":
		return Normal, nil
	default:
		return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", s))
	}
}
