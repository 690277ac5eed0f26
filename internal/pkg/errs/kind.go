package errs

import "errors"

// Kind names the failure class of err for transport layers and metrics:
// "" for nil, "INTERNAL" for errors outside this package.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.name
		}
	}
	return "INTERNAL"
}

var kinds = []struct {
	sentinel error
	name     string
}{
	{ErrCapacityExceeded, "CAPACITY_EXCEEDED"},
	{ErrAlreadyAssigned, "ALREADY_ASSIGNED"},
	{ErrInvalidState, "INVALID_STATE"},
	{ErrEmptyRoute, "EMPTY_ROUTE"},
	{ErrInvalidTransition, "INVALID_TRANSITION"},
	{ErrQuantityExceedsOrder, "QUANTITY_EXCEEDS_ORDER"},
	{ErrMissingProof, "MISSING_PROOF"},
	{ErrInvalidVehicle, "INVALID_VEHICLE"},
	{ErrNotYetDeparted, "NOT_YET_DEPARTED"},
	{ErrUnavailable, "UNAVAILABLE"},
	{ErrObjectNotFound, "NOT_FOUND"},
	{ErrVersionIsInvalid, "VERSION_CONFLICT"},
	{ErrValueIsRequired, "VALUE_REQUIRED"},
	{ErrValueIsOutOfRange, "VALUE_OUT_OF_RANGE"},
	{ErrValueIsInvalid, "VALUE_INVALID"},
}
