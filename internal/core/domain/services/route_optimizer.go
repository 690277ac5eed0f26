package services

import (
	"math"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/pkg/errs"
)

// tieEpsilon treats two candidate distances as equal.
const tieEpsilon = 1e-9

// Plan is the outcome of an optimization preview.
type Plan struct {
	RouteID        kernel.UUID
	Sequence       []kernel.UUID
	DistanceBefore float64
	DistanceAfter  float64
}

// Improvement is the relative distance saved by the plan, in percent.
func (p Plan) Improvement() float64 {
	if p.DistanceBefore == 0 {
		return 0
	}
	return (p.DistanceBefore - p.DistanceAfter) * 100 / p.DistanceBefore
}

// RouteOptimizer is a domain service that proposes a shorter stop sequence
// for an assembling route.
//
// Business rules:
//   - only assembling routes can be optimized
//   - the route itself is never modified; the plan is applied separately
//   - the same stops always produce the same plan
//
// Example usage:
//
//	optimizer := services.NewRouteOptimizer(depot, kernel.Euclidean)
//	plan, err := optimizer.Optimize(r)
//	if err != nil {
//	    return err
//	}
//	// show plan.DistanceBefore / plan.DistanceAfter, then r.Resequence(plan.Sequence)
type RouteOptimizer struct {
	depot  kernel.Location
	metric kernel.DistanceMetric
}

// NewRouteOptimizer creates an optimizer starting every route at depot.
func NewRouteOptimizer(depot kernel.Location, metric kernel.DistanceMetric) RouteOptimizer {
	return RouteOptimizer{depot: depot, metric: metric}
}

func (o RouteOptimizer) Depot() kernel.Location { return o.depot }

func (o RouteOptimizer) Metric() kernel.DistanceMetric { return o.metric }

// Optimize reorders the stops with the nearest-neighbor heuristic.
//
// Returns:
//   - Plan: the proposed sequence with the open-path distance (depot through
//     every stop, no return leg) of the current and of the proposed order
//   - error: InvalidState unless the route is assembling, or a distance error
//
// Selection algorithm:
//   - start at the depot
//   - repeatedly pick the unvisited stop closest to the current position
//   - on equal distance prefer URGENT over NORMAL, then the earlier stop
//   - keep the current sequence when the greedy one is longer, so a plan
//     never reports a negative improvement
func (o RouteOptimizer) Optimize(r *route.Route) (Plan, error) {
	if err := r.Validate(); err != nil {
		return Plan{}, err
	}
	if r.Status() != route.Assembling {
		return Plan{}, errs.NewInvalidStateError("route", "optimize", r.Status().String())
	}

	stops := r.Stops()

	before, err := o.pathLength(stops)
	if err != nil {
		return Plan{}, err
	}

	ordered, err := o.nearestNeighbor(stops)
	if err != nil {
		return Plan{}, err
	}

	after, err := o.pathLength(ordered)
	if err != nil {
		return Plan{}, err
	}
	// the greedy path can be longer than the current one; never propose it
	if after > before+tieEpsilon {
		ordered, after = stops, before
	}

	sequence := make([]kernel.UUID, 0, len(ordered))
	for _, s := range ordered {
		sequence = append(sequence, s.OrderID)
	}

	return Plan{
		RouteID:        r.ID(),
		Sequence:       sequence,
		DistanceBefore: before,
		DistanceAfter:  after,
	}, nil
}

func (o RouteOptimizer) nearestNeighbor(stops []route.Stop) ([]route.Stop, error) {
	visited := make([]bool, len(stops))
	ordered := make([]route.Stop, 0, len(stops))
	current := o.depot

	for len(ordered) < len(stops) {
		best := -1
		bestDistance := math.MaxFloat64

		for i, s := range stops {
			if visited[i] {
				continue
			}

			d, err := o.metric.Distance(current, s.Location)
			if err != nil {
				return nil, err
			}

			switch {
			case best < 0 || d < bestDistance-tieEpsilon:
				best, bestDistance = i, d
			case math.Abs(d-bestDistance) <= tieEpsilon && s.Priority.Outranks(stops[best].Priority):
				best, bestDistance = i, d
			}
		}

		visited[best] = true
		ordered = append(ordered, stops[best])
		current = stops[best].Location
	}

	return ordered, nil
}

func (o RouteOptimizer) pathLength(stops []route.Stop) (float64, error) {
	total := 0.0
	current := o.depot
	for _, s := range stops {
		d, err := o.metric.Distance(current, s.Location)
		if err != nil {
			return 0, err
		}
		total += d
		current = s.Location
	}
	return total, nil
}
