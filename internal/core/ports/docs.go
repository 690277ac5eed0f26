// Package ports defines the contracts between the route planning core and
// its adapters: repositories, the unit of work and the event publisher.
package ports
