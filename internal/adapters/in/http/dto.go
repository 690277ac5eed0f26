package http

import (
	"time"

	"routeplanner/internal/core/application/usecases/queries"
	"routeplanner/internal/core/domain/model/order"
)

// Error is the body of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type LineItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
}

type Returnable struct {
	AssetType string `json:"assetType"`
	Expected  int    `json:"expected"`
}

type NewOrder struct {
	ID          string       `json:"id,omitempty"`
	Client      string       `json:"client"`
	Address     string       `json:"address"`
	Items       []LineItem   `json:"items"`
	Returnables []Returnable `json:"returnables"`
	Volume      int          `json:"volume"`
	Period      string       `json:"period"`
	Priority    string       `json:"priority"`
	DistanceKm  float64      `json:"distanceKm"`
	Location    Location     `json:"location"`
}

type NewRoute struct {
	ID        string `json:"id,omitempty"`
	VehicleID string `json:"vehicleId"`
	// Date is the service day, YYYY-MM-DD.
	Date   string `json:"date"`
	Period string `json:"period"`
}

type Created struct {
	ID string `json:"id"`
}

type Assignment struct {
	OrderID string `json:"orderId"`
}

type Sequence struct {
	Sequence []string `json:"sequence"`
}

type BeginStop struct {
	AttemptID string `json:"attemptId,omitempty"`
}

type StopAction struct {
	Action string `json:"action"`
}

type StopQuantities struct {
	Delivered map[string]int `json:"delivered"`
	Counted   map[string]int `json:"counted"`
}

type StopConfirmation struct {
	RecipientName string `json:"recipientName"`
	ProofRef      string `json:"proofRef"`
}

type Progress struct {
	Tracking string `json:"tracking"`
}

type PendingOrder struct {
	ID          string       `json:"id"`
	Client      string       `json:"client"`
	Address     string       `json:"address"`
	Items       []LineItem   `json:"items"`
	Returnables []Returnable `json:"returnables"`
	Volume      int          `json:"volume"`
	Period      string       `json:"period"`
	Priority    string       `json:"priority"`
	DistanceKm  float64      `json:"distanceKm"`
	Location    Location     `json:"location"`
}

type PendingBoard struct {
	Orders      []PendingOrder `json:"orders"`
	ByPeriod    map[string]int `json:"byPeriod"`
	Urgent      int            `json:"urgent"`
	TotalVolume int            `json:"totalVolume"`
}

type Vehicle struct {
	ID             string `json:"id"`
	Plate          string `json:"plate"`
	DriverName     string `json:"driverName"`
	CapacityLiters int    `json:"capacityLiters"`
}

type Stop struct {
	Position        int      `json:"position"`
	OrderID         string   `json:"orderId"`
	Client          string   `json:"client"`
	Volume          int      `json:"volume"`
	DistanceKm      float64  `json:"distanceKm"`
	DurationMinutes float64  `json:"durationMinutes"`
	Priority        string   `json:"priority"`
	Location        Location `json:"location"`
	Completed       bool     `json:"completed"`
	Phase           string   `json:"phase,omitempty"`
}

type RouteSummary struct {
	ID               string  `json:"id"`
	VehicleID        string  `json:"vehicleId"`
	Plate            string  `json:"plate"`
	DriverName       string  `json:"driverName"`
	Date             string  `json:"date"`
	Period           string  `json:"period"`
	Status           string  `json:"status"`
	Capacity         int     `json:"capacity"`
	Volume           int     `json:"volume"`
	Occupancy        float64 `json:"occupancy"`
	DistanceKm       float64 `json:"distanceKm"`
	EstimatedMinutes float64 `json:"estimatedMinutes"`
	CompletedStops   int     `json:"completedStops"`
	TotalStops       int     `json:"totalStops"`
	Progress         float64 `json:"progress"`
	Delay            string  `json:"delay,omitempty"`
}

type Route struct {
	RouteSummary
	Stops        []Stop     `json:"stops"`
	NextStop     *Stop      `json:"nextStop,omitempty"`
	DispatchedAt *time.Time `json:"dispatchedAt,omitempty"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	Version      int        `json:"version"`
}

type Optimization struct {
	RouteID        string   `json:"routeId"`
	Sequence       []string `json:"sequence"`
	Stops          []Stop   `json:"stops"`
	DistanceBefore float64  `json:"distanceBefore"`
	DistanceAfter  float64  `json:"distanceAfter"`
	Improvement    float64  `json:"improvement"`
}

type DeliveredLine struct {
	ProductID string `json:"productId"`
	Ordered   int    `json:"ordered"`
	Delivered int    `json:"delivered"`
}

type CollectedAsset struct {
	AssetType string `json:"assetType"`
	Expected  int    `json:"expected"`
	Counted   int    `json:"counted"`
}

type DeliveryRecord struct {
	OrderID       string           `json:"orderId"`
	Lines         []DeliveredLine  `json:"lines"`
	Returnables   []CollectedAsset `json:"returnables"`
	RecipientName string           `json:"recipientName"`
	ProofRef      string           `json:"proofRef"`
	StartedAt     time.Time        `json:"startedAt"`
	ConfirmedAt   time.Time        `json:"confirmedAt"`
	Shortfall     bool             `json:"shortfall"`
}

func (o NewOrder) details(period order.Period, priority order.Priority) order.Details {
	d := order.Details{
		Client:     o.Client,
		Address:    o.Address,
		Volume:     o.Volume,
		Period:     period,
		Priority:   priority,
		DistanceKm: o.DistanceKm,
	}
	for _, item := range o.Items {
		d.Items = append(d.Items, order.LineItem(item))
	}
	for _, r := range o.Returnables {
		d.Returnables = append(d.Returnables, order.ReturnableAsset(r))
	}
	return d
}

func minutes(d time.Duration) float64 {
	return d.Minutes()
}

func toPendingBoard(resp queries.GetPendingOrdersQueryResponse) PendingBoard {
	board := PendingBoard{
		Orders:      make([]PendingOrder, 0, len(resp.Orders)),
		ByPeriod:    resp.ByPeriod,
		Urgent:      resp.Urgent,
		TotalVolume: resp.TotalVolume,
	}
	for _, o := range resp.Orders {
		view := PendingOrder{
			ID:          o.ID.String(),
			Client:      o.Client,
			Address:     o.Address,
			Items:       make([]LineItem, 0, len(o.Items)),
			Returnables: make([]Returnable, 0, len(o.Returnables)),
			Volume:      o.Volume,
			Period:      o.Period,
			Priority:    o.Priority,
			DistanceKm:  o.DistanceKm,
			Location:    Location{Lat: o.Location.Lat(), Lng: o.Location.Lng()},
		}
		for _, item := range o.Items {
			view.Items = append(view.Items, LineItem(item))
		}
		for _, r := range o.Returnables {
			view.Returnables = append(view.Returnables, Returnable(r))
		}
		board.Orders = append(board.Orders, view)
	}
	return board
}

func toStop(s queries.StopView) Stop {
	return Stop{
		Position:        s.Position,
		OrderID:         s.OrderID.String(),
		Client:          s.Client,
		Volume:          s.Volume,
		DistanceKm:      s.DistanceKm,
		DurationMinutes: minutes(s.Duration),
		Priority:        s.Priority,
		Location:        Location{Lat: s.Location.Lat(), Lng: s.Location.Lng()},
		Completed:       s.Completed,
		Phase:           s.Phase,
	}
}

func toStops(views []queries.StopView) []Stop {
	stops := make([]Stop, 0, len(views))
	for _, s := range views {
		stops = append(stops, toStop(s))
	}
	return stops
}

func toRouteSummary(s queries.RouteSummary) RouteSummary {
	return RouteSummary{
		ID:               s.ID.String(),
		VehicleID:        s.VehicleID.String(),
		Plate:            s.Plate,
		DriverName:       s.DriverName,
		Date:             s.Date.Format(time.DateOnly),
		Period:           s.Period,
		Status:           s.Status,
		Capacity:         s.Capacity,
		Volume:           s.Volume,
		Occupancy:        s.Occupancy,
		DistanceKm:       s.DistanceKm,
		EstimatedMinutes: minutes(s.Estimated),
		CompletedStops:   s.CompletedStops,
		TotalStops:       s.TotalStops,
		Progress:         s.Progress,
		Delay:            s.Delay,
	}
}

func toRoute(resp queries.GetRouteQueryResponse) Route {
	r := Route{
		RouteSummary: toRouteSummary(resp.RouteSummary),
		Stops:        toStops(resp.Stops),
		DispatchedAt: resp.DispatchedAt,
		ClosedAt:     resp.ClosedAt,
		Version:      resp.Version,
	}
	if resp.NextStop != nil {
		next := toStop(*resp.NextStop)
		r.NextStop = &next
	}
	return r
}

func toOptimization(resp queries.OptimizeRouteQueryResponse) Optimization {
	o := Optimization{
		RouteID:        resp.RouteID.String(),
		Sequence:       make([]string, 0, len(resp.Sequence)),
		Stops:          toStops(resp.Stops),
		DistanceBefore: resp.DistanceBefore,
		DistanceAfter:  resp.DistanceAfter,
		Improvement:    resp.Improvement,
	}
	for _, id := range resp.Sequence {
		o.Sequence = append(o.Sequence, id.String())
	}
	return o
}

func toDeliveryRecord(v queries.DeliveryRecordView) DeliveryRecord {
	rec := DeliveryRecord{
		OrderID:       v.OrderID.String(),
		Lines:         make([]DeliveredLine, 0, len(v.Lines)),
		Returnables:   make([]CollectedAsset, 0, len(v.Returnables)),
		RecipientName: v.RecipientName,
		ProofRef:      v.ProofRef,
		StartedAt:     v.StartedAt,
		ConfirmedAt:   v.ConfirmedAt,
		Shortfall:     v.Shortfall,
	}
	for _, l := range v.Lines {
		rec.Lines = append(rec.Lines, DeliveredLine(l))
	}
	for _, r := range v.Returnables {
		rec.Returnables = append(rec.Returnables, CollectedAsset(r))
	}
	return rec
}
