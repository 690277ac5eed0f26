package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

var _ ports.RouteRepository = &RouteRepository{}

type RouteRepository struct {
	uow *UnitOfWork
}

func (r *RouteRepository) Add(_ context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	r.uow.routes[aggregate.ID()] = &stagedRoute{state: aggregate.Snapshot(), isNew: true}
	return r.uow.autoCommit()
}

func (r *RouteRepository) Update(_ context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if staged, ok := r.uow.routes[aggregate.ID()]; ok {
		if staged.deleted {
			return errs.NewObjectNotFoundError("route", aggregate.ID().String())
		}
		staged.state = aggregate.Snapshot()
		return r.uow.autoCommit()
	}
	r.uow.routes[aggregate.ID()] = &stagedRoute{state: aggregate.Snapshot(), expected: aggregate.Version()}
	return r.uow.autoCommit()
}

func (r *RouteRepository) Delete(_ context.Context, id kernel.UUID) error {
	if staged, ok := r.uow.routes[id]; ok {
		if staged.isNew {
			delete(r.uow.routes, id)
			return nil
		}
		staged.deleted = true
		return r.uow.autoCommit()
	}

	s := r.uow.store
	s.mu.RLock()
	current, ok := s.routes[id]
	s.mu.RUnlock()
	if !ok {
		return errs.NewObjectNotFoundError("route", id.String())
	}
	r.uow.routes[id] = &stagedRoute{state: current, expected: current.Version, deleted: true}
	return r.uow.autoCommit()
}

func (r *RouteRepository) Get(_ context.Context, id kernel.UUID) (*route.Route, error) {
	if staged, ok := r.uow.routes[id]; ok {
		if staged.deleted {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return route.RestoreRoute(cloneRouteState(staged.state))
	}

	s := r.uow.store
	s.mu.RLock()
	state, ok := s.routes[id]
	if ok {
		state = cloneRouteState(state)
	}
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("route", id.String())
	}
	return route.RestoreRoute(state)
}

func (r *RouteRepository) GetAllByStatus(_ context.Context, statuses ...route.Status) ([]*route.Route, error) {
	return r.filter(func(s route.State) bool {
		return len(statuses) == 0 || slices.Contains(statuses, s.Status)
	})
}

func (r *RouteRepository) GetBySlot(
	_ context.Context,
	vehicleID kernel.UUID,
	date time.Time,
	period order.Period,
) ([]*route.Route, error) {
	return r.filter(func(s route.State) bool {
		return s.VehicleID == vehicleID && s.Period == period && sameDay(s.Date, date.UTC())
	})
}

func (r *RouteRepository) filter(keep func(route.State) bool) ([]*route.Route, error) {
	states := r.view()
	matched := make([]route.State, 0, len(states))
	for _, s := range states {
		if keep(s) {
			matched = append(matched, s)
		}
	}

	slices.SortFunc(matched, func(a, b route.State) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if a.Period != b.Period {
			return int(a.Period) - int(b.Period)
		}
		if c := strings.Compare(a.Plate, b.Plate); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	result := make([]*route.Route, 0, len(matched))
	var errList []error
	for _, s := range matched {
		aggregate, err := route.RestoreRoute(s)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		result = append(result, aggregate)
	}
	return result, errors.Join(errList...)
}

func (r *RouteRepository) view() []route.State {
	s := r.uow.store
	s.mu.RLock()
	states := make(map[kernel.UUID]route.State, len(s.routes)+len(r.uow.routes))
	for id, state := range s.routes {
		states[id] = cloneRouteState(state)
	}
	s.mu.RUnlock()

	for id, staged := range r.uow.routes {
		if staged.deleted {
			delete(states, id)
			continue
		}
		states[id] = cloneRouteState(staged.state)
	}

	list := make([]route.State, 0, len(states))
	for _, state := range states {
		list = append(list, state)
	}
	return list
}
