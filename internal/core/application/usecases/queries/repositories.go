// Package queries contains the read models of the planner: the pending
// order board, route snapshots and boards, optimization previews and the
// delivery audit trail.
//
// Query handlers read committed state through the repositories of a unit
// of work that is never begun, so they work unchanged over every storage
// adapter.
package queries

import (
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
)

// StopView is one stop of a route as shown to dispatchers and drivers.
type StopView struct {
	Position   int
	OrderID    kernel.UUID
	Client     string
	Volume     int
	DistanceKm float64
	Duration   time.Duration
	Priority   string
	Location   kernel.Location
	Completed  bool
	// Phase is the delivery phase of the open attempt, CONFIRMED once the
	// stop is completed and empty when the driver has not begun it.
	Phase string
}

// RouteSummary is one card of the assembling and active boards.
type RouteSummary struct {
	ID             kernel.UUID
	VehicleID      kernel.UUID
	Plate          string
	DriverName     string
	Date           time.Time
	Period         string
	Status         string
	Capacity       int
	Volume         int
	Occupancy      float64
	DistanceKm     float64
	Estimated      time.Duration
	CompletedStops int
	TotalStops     int
	Progress       float64
	Delay          string
}

func summarize(r *route.Route) RouteSummary {
	return RouteSummary{
		ID:             r.ID(),
		VehicleID:      r.VehicleID(),
		Plate:          r.Plate(),
		DriverName:     r.DriverName(),
		Date:           r.Date(),
		Period:         r.Period().String(),
		Status:         r.Label(),
		Capacity:       r.Capacity(),
		Volume:         r.Volume(),
		Occupancy:      r.Occupancy(),
		DistanceKm:     r.DistanceKm(),
		Estimated:      r.EstimatedDuration(),
		CompletedStops: r.CompletedStops(),
		TotalStops:     r.TotalStops(),
		Progress:       r.Progress(),
		Delay:          r.DelayAnnotation(),
	}
}

func stopView(position int, s route.Stop) StopView {
	return StopView{
		Position:   position,
		OrderID:    s.OrderID,
		Client:     s.Client,
		Volume:     s.Volume,
		DistanceKm: s.DistanceKm,
		Duration:   s.Duration,
		Priority:   s.Priority.String(),
		Location:   s.Location,
		Completed:  s.Completed,
	}
}
