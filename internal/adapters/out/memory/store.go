// Package memory keeps the planner state in process memory. It is the
// default storage when no database is configured and the backing store of
// the command tests.
//
// Writes made inside a unit of work are staged and applied at Commit under
// the store lock, after every optimistic version check passed; a failed
// check applies nothing.
package memory

import (
	"errors"
	"slices"
	"sync"
	"time"

	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
)

var ErrNoActiveTransaction = errors.New("memory: no active transaction")

type orderRow struct {
	ID       kernel.UUID
	Details  order.Details
	Status   order.Status
	RouteID  *kernel.UUID
	Delivery *order.DeliveryAnnotation
	Version  int
	Seq      int64
}

func orderRowFromDomain(o *order.Order) orderRow {
	row := orderRow{
		ID:      o.ID(),
		Details: o.Details(),
		Status:  o.Status(),
		Version: o.Version(),
	}
	if id := o.RouteID(); id != nil {
		routeID := *id
		row.RouteID = &routeID
	}
	if d := o.Delivery(); d != nil {
		annotation := *d
		annotation.Lines = slices.Clone(d.Lines)
		annotation.Returnables = slices.Clone(d.Returnables)
		row.Delivery = &annotation
	}
	return row
}

func (r orderRow) toDomain() (*order.Order, error) {
	return order.RestoreOrder(r.ID, r.Details, r.Status, r.RouteID, r.Delivery, r.Version)
}

// Store holds committed state. Share one Store between all units of work of
// a process.
type Store struct {
	mu       sync.RWMutex
	orders   map[kernel.UUID]orderRow
	routes   map[kernel.UUID]route.State
	attempts map[kernel.UUID]delivery.State
	records  []delivery.Record
	seq      int64
}

func NewStore() *Store {
	return &Store{
		orders:   make(map[kernel.UUID]orderRow),
		routes:   make(map[kernel.UUID]route.State),
		attempts: make(map[kernel.UUID]delivery.State),
	}
}

// Stats reports committed row counts, used by the health endpoint.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"orders":   len(s.orders),
		"routes":   len(s.routes),
		"attempts": len(s.attempts),
		"records":  len(s.records),
	}
}

func cloneRouteState(s route.State) route.State {
	s.Stops = slices.Clone(s.Stops)
	if s.DispatchedAt != nil {
		t := *s.DispatchedAt
		s.DispatchedAt = &t
	}
	if s.ClosedAt != nil {
		t := *s.ClosedAt
		s.ClosedAt = &t
	}
	return s
}

func cloneAttemptState(s delivery.State) delivery.State {
	s.Ordered = slices.Clone(s.Ordered)
	s.Expected = slices.Clone(s.Expected)
	s.Lines = slices.Clone(s.Lines)
	s.Returnables = slices.Clone(s.Returnables)
	return s
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
