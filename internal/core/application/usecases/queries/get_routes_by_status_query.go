package queries

import (
	"errors"
	"slices"

	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/pkg/guard"
)

var ErrGetRoutesByStatusQueryIsNotConstructed = errors.New(
	"GetRoutesByStatusQuery must be created via NewGetRoutesByStatusQuery constructor",
)

// GetRoutesByStatusQuery feeds the route boards: assembling routes with
// their occupancy, active routes with their progress. No statuses lists
// every route.
//
// Example:
//
//	query, _ := NewGetRoutesByStatusQuery(route.Active)
//	board, err := handler.Handle(ctx, query)
type GetRoutesByStatusQuery struct {
	statuses []route.Status

	guard guard.ConstructorGuard
}

func NewGetRoutesByStatusQuery(statuses ...route.Status) (GetRoutesByStatusQuery, error) {
	problems := make([]error, 0, len(statuses))
	for _, s := range statuses {
		problems = append(problems, s.Validate())
	}
	if err := errors.Join(problems...); err != nil {
		return GetRoutesByStatusQuery{}, err
	}
	return GetRoutesByStatusQuery{statuses: slices.Clone(statuses), guard: guard.NewConstructorGuard()}, nil
}

func (q GetRoutesByStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetRoutesByStatusQueryIsNotConstructed)
}

func (q GetRoutesByStatusQuery) Statuses() []route.Status { return slices.Clone(q.statuses) }
