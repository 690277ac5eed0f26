package memory

import (
	"context"
	"slices"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

var (
	_ ports.DeliveryAttemptRepository = &DeliveryAttemptRepository{}
	_ ports.DeliveryRecordRepository  = &DeliveryRecordRepository{}
)

type DeliveryAttemptRepository struct {
	uow *UnitOfWork
}

func (r *DeliveryAttemptRepository) Add(_ context.Context, attempt *delivery.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}
	r.uow.attempts[attempt.ID()] = &stagedAttempt{state: attempt.Snapshot(), isNew: true}
	return r.uow.autoCommit()
}

func (r *DeliveryAttemptRepository) Update(ctx context.Context, attempt *delivery.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return err
	}
	staged, ok := r.uow.attempts[attempt.ID()]
	if ok && staged.deleted {
		return errs.NewObjectNotFoundError("attempt", attempt.ID().String())
	}
	if !ok {
		if _, err := r.get(attempt.ID()); err != nil {
			return err
		}
		staged = &stagedAttempt{}
		r.uow.attempts[attempt.ID()] = staged
	}
	staged.state = attempt.Snapshot()
	return r.uow.autoCommit()
}

func (r *DeliveryAttemptRepository) Delete(_ context.Context, id kernel.UUID) error {
	if staged, ok := r.uow.attempts[id]; ok {
		if staged.isNew {
			delete(r.uow.attempts, id)
			return nil
		}
		staged.deleted = true
		return r.uow.autoCommit()
	}
	if _, err := r.get(id); err != nil {
		return err
	}
	r.uow.attempts[id] = &stagedAttempt{deleted: true}
	return r.uow.autoCommit()
}

func (r *DeliveryAttemptRepository) GetByStop(_ context.Context, routeID, orderID kernel.UUID) (*delivery.Attempt, error) {
	for _, state := range r.view() {
		if state.RouteID == routeID && state.OrderID == orderID {
			return delivery.RestoreAttempt(state)
		}
	}
	return nil, errs.NewObjectNotFoundError("attempt", orderID.String())
}

func (r *DeliveryAttemptRepository) DeleteByRoute(_ context.Context, routeID kernel.UUID) error {
	for _, state := range r.view() {
		if state.RouteID != routeID {
			continue
		}
		if staged, ok := r.uow.attempts[state.ID]; ok && staged.isNew {
			delete(r.uow.attempts, state.ID)
			continue
		}
		r.uow.attempts[state.ID] = &stagedAttempt{deleted: true}
	}
	return r.uow.autoCommit()
}

func (r *DeliveryAttemptRepository) get(id kernel.UUID) (delivery.State, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.attempts[id]
	if !ok {
		return delivery.State{}, errs.NewObjectNotFoundError("attempt", id.String())
	}
	return cloneAttemptState(state), nil
}

func (r *DeliveryAttemptRepository) view() []delivery.State {
	s := r.uow.store
	s.mu.RLock()
	states := make(map[kernel.UUID]delivery.State, len(s.attempts)+len(r.uow.attempts))
	for id, state := range s.attempts {
		states[id] = cloneAttemptState(state)
	}
	s.mu.RUnlock()

	for id, staged := range r.uow.attempts {
		if staged.deleted {
			delete(states, id)
			continue
		}
		states[id] = cloneAttemptState(staged.state)
	}

	list := make([]delivery.State, 0, len(states))
	for _, state := range states {
		list = append(list, state)
	}
	return list
}

type DeliveryRecordRepository struct {
	uow *UnitOfWork
}

func (r *DeliveryRecordRepository) Add(_ context.Context, record delivery.Record) error {
	r.uow.records = append(r.uow.records, record)
	return r.uow.autoCommit()
}

// GetByRoute returns the confirmed deliveries of a route in confirmation order.
func (r *DeliveryRecordRepository) GetByRoute(_ context.Context, routeID kernel.UUID) ([]delivery.Record, error) {
	s := r.uow.store
	s.mu.RLock()
	all := slices.Concat(s.records, r.uow.records)
	s.mu.RUnlock()

	var result []delivery.Record
	for _, record := range all {
		if record.RouteID == routeID {
			result = append(result, record)
		}
	}
	return result, nil
}
