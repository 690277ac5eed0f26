// Package kernel provides the shared value objects of the route planning
// domain: UUID identifiers, validated geocoordinates (Location) and the
// DistanceMetric used by the optimizer.
//
// Values are immutable and guarded: zero values fail Validate, so aggregates
// can reject uninitialized input at construction time.
package kernel
