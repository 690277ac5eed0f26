// Package services provides domain services that work across aggregates.
//
// The package includes:
//   - RouteOptimizer: nearest-neighbor resequencing of an assembling route
//   - RouteLocks: per-route exclusive access for commands that mutate routes
package services
