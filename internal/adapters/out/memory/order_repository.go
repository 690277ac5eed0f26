package memory

import (
	"context"
	"errors"
	"slices"
	"strings"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"
)

var _ ports.OrderRepository = &OrderRepository{}

type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	r.uow.orders[aggregate.ID()] = &stagedOrder{row: orderRowFromDomain(aggregate), isNew: true}
	return r.uow.autoCommit()
}

func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	row := orderRowFromDomain(aggregate)
	if staged, ok := r.uow.orders[aggregate.ID()]; ok {
		staged.row = row
		return r.uow.autoCommit()
	}
	r.uow.orders[aggregate.ID()] = &stagedOrder{row: row, expected: aggregate.Version()}
	return r.uow.autoCommit()
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if staged, ok := r.uow.orders[id]; ok {
		return staged.row.toDomain()
	}

	s := r.uow.store
	s.mu.RLock()
	row, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return row.toDomain()
}

func (r *OrderRepository) GetAllPending(_ context.Context) ([]*order.Order, error) {
	rows := r.view()
	pending := make([]orderRow, 0, len(rows))
	for _, row := range rows {
		if row.Status == order.Pending {
			pending = append(pending, row)
		}
	}

	slices.SortFunc(pending, func(a, b orderRow) int {
		switch {
		case a.Details.Priority.Outranks(b.Details.Priority):
			return -1
		case b.Details.Priority.Outranks(a.Details.Priority):
			return 1
		case a.Details.Period != b.Details.Period:
			return int(a.Details.Period) - int(b.Details.Period)
		case a.Details.Client != b.Details.Client:
			return strings.Compare(a.Details.Client, b.Details.Client)
		default:
			return compareSeq(a.Seq, b.Seq)
		}
	})

	result := make([]*order.Order, 0, len(pending))
	var errList []error
	for _, row := range pending {
		o, err := row.toDomain()
		if err != nil {
			errList = append(errList, err)
			continue
		}
		result = append(result, o)
	}
	return result, errors.Join(errList...)
}

// view merges committed rows with the writes staged in this unit of work.
func (r *OrderRepository) view() []orderRow {
	s := r.uow.store
	s.mu.RLock()
	rows := make(map[kernel.UUID]orderRow, len(s.orders)+len(r.uow.orders))
	for id, row := range s.orders {
		rows[id] = row
	}
	s.mu.RUnlock()

	for id, staged := range r.uow.orders {
		row := staged.row
		row.Seq = rows[id].Seq
		if staged.isNew {
			row.Seq = 1 << 62
		}
		rows[id] = row
	}

	list := make([]orderRow, 0, len(rows))
	for _, row := range rows {
		list = append(list, row)
	}
	return list
}

func compareSeq(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
