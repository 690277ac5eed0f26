package errs_test

import (
	"errors"
	"testing"

	"routeplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingErrors_Messages(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "capacity exceeded names ceiling and attempted total",
			err:      errs.NewCapacityExceededError("R1", 500, 530),
			sentinel: errs.ErrCapacityExceeded,
			message:  "capacity exceeded: route R1 capacity 500L, attempted 530L",
		},
		{
			name:     "invalid state",
			err:      errs.NewInvalidStateError("route", "assign order", "ACTIVE"),
			sentinel: errs.ErrInvalidState,
			message:  "invalid state: cannot assign order while route is ACTIVE",
		},
		{
			name:     "already assigned with owner",
			err:      errs.NewAlreadyAssignedError("O1", "R2"),
			sentinel: errs.ErrAlreadyAssigned,
			message:  "already assigned: order O1 belongs to route R2",
		},
		{
			name:     "already assigned lost race",
			err:      errs.NewAlreadyAssignedError("O1", ""),
			sentinel: errs.ErrAlreadyAssigned,
			message:  "already assigned: order O1 was claimed by another route",
		},
		{
			name:     "empty route",
			err:      errs.NewEmptyRouteError("R1"),
			sentinel: errs.ErrEmptyRoute,
			message:  "empty route: route R1 has no stops",
		},
		{
			name:     "invalid transition",
			err:      errs.NewInvalidTransitionError("ASSEMBLING", "COMPLETED"),
			sentinel: errs.ErrInvalidTransition,
			message:  "invalid transition: ASSEMBLING -> COMPLETED",
		},
		{
			name:     "invalid transition with reason",
			err:      errs.NewInvalidTransitionErrorWithReason("ACTIVE", "COMPLETED", "1 of 2 stops completed"),
			sentinel: errs.ErrInvalidTransition,
			message:  "invalid transition: ACTIVE -> COMPLETED (1 of 2 stops completed)",
		},
		{
			name:     "quantity exceeds order",
			err:      errs.NewQuantityExceedsOrderError("PILSEN-30L", 5, 6),
			sentinel: errs.ErrQuantityExceedsOrder,
			message:  "quantity exceeds order: product PILSEN-30L ordered 5, delivered 6",
		},
		{
			name:     "missing proof",
			err:      errs.NewMissingProofError("recipient name"),
			sentinel: errs.ErrMissingProof,
			message:  "missing proof: recipient name is required",
		},
		{
			name:     "invalid vehicle",
			err:      errs.NewInvalidVehicleError("V1", "unknown vehicle"),
			sentinel: errs.ErrInvalidVehicle,
			message:  "invalid vehicle: V1 (unknown vehicle)",
		},
		{
			name:     "not yet departed",
			err:      errs.NewNotYetDepartedError("R1", "ASSEMBLING"),
			sentinel: errs.ErrNotYetDeparted,
			message:  "not yet departed: route R1 is ASSEMBLING",
		},
		{
			name:     "unavailable",
			err:      errs.NewUnavailableError(errors.New("connection refused")),
			sentinel: errs.ErrUnavailable,
			message:  "unavailable (cause: connection refused)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.message, tc.err.Error())
			require.ErrorIs(t, tc.err, tc.sentinel)
		})
	}
}

func TestRoutingErrors_As(t *testing.T) {
	t.Run("capacity details survive wrapping", func(t *testing.T) {
		// Given
		wrapped := errors.Join(errors.New("assign order"), errs.NewCapacityExceededError("R1", 500, 550))

		// When
		var capErr *errs.CapacityExceededError
		ok := errors.As(wrapped, &capErr)

		// Then
		require.True(t, ok)
		assert.Equal(t, 500, capErr.Capacity)
		assert.Equal(t, 550, capErr.Attempted)
	})

	t.Run("kinds are distinct", func(t *testing.T) {
		err := errs.NewEmptyRouteError("R1")

		assert.NotErrorIs(t, err, errs.ErrInvalidTransition)
		assert.NotErrorIs(t, err, errs.ErrInvalidState)
	})
}
