package queries

import (
	"errors"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/pkg/guard"
)

var ErrGetPendingOrdersQueryIsNotConstructed = errors.New(
	"GetPendingOrdersQuery must be created via NewGetPendingOrdersQuery constructor",
)

// GetPendingOrdersQuery reads the order catalog: confirmed orders that no
// route holds.
//
// Example:
//
//	query := NewGetPendingOrdersQuery(order.PeriodUnknown)
//	board, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d pending, %d urgent\n", len(board.Orders), board.Urgent)
type GetPendingOrdersQuery struct {
	period order.Period

	guard guard.ConstructorGuard
}

// NewGetPendingOrdersQuery narrows the board to one period; PeriodUnknown
// returns every pending order.
func NewGetPendingOrdersQuery(period order.Period) GetPendingOrdersQuery {
	return GetPendingOrdersQuery{period: period, guard: guard.NewConstructorGuard()}
}

func (q GetPendingOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingOrdersQueryIsNotConstructed)
}

func (q GetPendingOrdersQuery) Period() order.Period { return q.period }

type PendingOrder struct {
	ID          kernel.UUID
	Client      string
	Address     string
	Items       []order.LineItem
	Returnables []order.ReturnableAsset
	Volume      int
	Period      string
	Priority    string
	DistanceKm  float64
	Location    kernel.Location
}

// GetPendingOrdersQueryResponse lists pending orders urgent first, with the
// counters shown above the board.
type GetPendingOrdersQueryResponse struct {
	Orders      []PendingOrder
	ByPeriod    map[string]int
	Urgent      int
	TotalVolume int
}
