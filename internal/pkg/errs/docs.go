// Package errs provides the typed errors shared by the route planning core.
//
// Generic validation failures:
//   - ObjectNotFoundError, ValueIsInvalidError, ValueIsOutOfRangeError,
//     ValueIsRequiredError, VersionIsInvalidError
//
// Route planning failure kinds, each returned atomically with no partial mutation:
//   - CapacityExceededError, InvalidStateError, AlreadyAssignedError,
//     EmptyRouteError, InvalidTransitionError, QuantityExceedsOrderError,
//     MissingProofError, InvalidVehicleError, NotYetDepartedError
//   - UnavailableError for storage or transport failures mapped at the boundary
//
// Each type has a sentinel (ErrXxx), a constructor, an Error method that names
// the violated constraint, and an Unwrap method returning the sentinel, so
// errors.Is classifies and errors.As recovers the details.
package errs
