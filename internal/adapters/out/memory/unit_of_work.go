package memory

import (
	"context"
	"fmt"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return newUnitOfWork(f.store)
}

type stagedOrder struct {
	row      orderRow
	expected int
	isNew    bool
}

type stagedRoute struct {
	state    route.State
	expected int
	isNew    bool
	deleted  bool
}

type stagedAttempt struct {
	state   delivery.State
	isNew   bool
	deleted bool
}

// UnitOfWork stages writes until Commit. Outside Begin every write is
// committed on its own.
type UnitOfWork struct {
	store    *Store
	active   bool
	orders   map[kernel.UUID]*stagedOrder
	routes   map[kernel.UUID]*stagedRoute
	attempts map[kernel.UUID]*stagedAttempt
	records  []delivery.Record
}

func newUnitOfWork(store *Store) *UnitOfWork {
	uow := &UnitOfWork{store: store}
	uow.reset()
	return uow
}

func (uow *UnitOfWork) reset() {
	uow.orders = make(map[kernel.UUID]*stagedOrder)
	uow.routes = make(map[kernel.UUID]*stagedRoute)
	uow.attempts = make(map[kernel.UUID]*stagedAttempt)
	uow.records = nil
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	uow.active = true
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoActiveTransaction
	}
	uow.active = false
	defer uow.reset()
	return uow.flush()
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoActiveTransaction
	}
	uow.active = false
	uow.reset()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: uow}
}

func (uow *UnitOfWork) RouteRepository() ports.RouteRepository {
	return &RouteRepository{uow: uow}
}

func (uow *UnitOfWork) DeliveryAttemptRepository() ports.DeliveryAttemptRepository {
	return &DeliveryAttemptRepository{uow: uow}
}

func (uow *UnitOfWork) DeliveryRecordRepository() ports.DeliveryRecordRepository {
	return &DeliveryRecordRepository{uow: uow}
}

// autoCommit applies staged writes right away when no transaction is open.
func (uow *UnitOfWork) autoCommit() error {
	if uow.active {
		return nil
	}
	defer uow.reset()
	return uow.flush()
}

func (uow *UnitOfWork) flush() error {
	s := uow.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := uow.check(); err != nil {
		return err
	}

	for id, o := range uow.orders {
		row := o.row
		if o.isNew {
			s.seq++
			row.Seq = s.seq
			row.Version = 1
		} else {
			row.Seq = s.orders[id].Seq
			row.Version = o.expected + 1
		}
		s.orders[id] = row
	}

	for id, r := range uow.routes {
		if r.deleted {
			delete(s.routes, id)
			continue
		}
		state := cloneRouteState(r.state)
		if r.isNew {
			state.Version = 1
		} else {
			state.Version = r.expected + 1
		}
		s.routes[id] = state
	}

	for id, a := range uow.attempts {
		if a.deleted {
			delete(s.attempts, id)
			continue
		}
		s.attempts[id] = cloneAttemptState(a.state)
	}

	s.records = append(s.records, uow.records...)
	return nil
}

// check validates every staged write against committed state. Callers hold
// the store lock.
func (uow *UnitOfWork) check() error {
	s := uow.store

	for id, o := range uow.orders {
		current, exists := s.orders[id]
		switch {
		case o.isNew && exists:
			return errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("order %s already exists", id))
		case !o.isNew && !exists:
			return errs.NewObjectNotFoundError("order", id.String())
		case !o.isNew && current.Version != o.expected:
			return errs.NewVersionIsInvalidErrorWithCause("order",
				fmt.Errorf("order %s is at version %d, loaded %d", id, current.Version, o.expected))
		}
	}

	for id, r := range uow.routes {
		current, exists := s.routes[id]
		switch {
		case r.isNew && exists:
			return errs.NewValueIsInvalidErrorWithCause("route", fmt.Errorf("route %s already exists", id))
		case r.isNew:
		case !exists:
			return errs.NewObjectNotFoundError("route", id.String())
		case current.Version != r.expected:
			return errs.NewVersionIsInvalidErrorWithCause("route",
				fmt.Errorf("route %s is at version %d, loaded %d", id, current.Version, r.expected))
		}
	}

	for id, a := range uow.attempts {
		if _, exists := s.attempts[id]; a.isNew && exists {
			return errs.NewValueIsInvalidErrorWithCause("attempt", fmt.Errorf("attempt %s already exists", id))
		}
	}
	return nil
}
