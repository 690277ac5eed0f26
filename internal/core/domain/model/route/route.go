package route

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/vehicle"
	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

var ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute constructor")

// Route is one vehicle/driver pairing working one date and period.
//
// Invariants:
//   - volume, distance and estimated time always equal the sums over the stops
//   - volume never exceeds the capacity ceiling copied from the vehicle
//   - the stop list changes only while Assembling
//   - completed stops never exceed total stops; all of them completed means Completed
type Route struct {
	id           kernel.UUID
	vehicleID    kernel.UUID
	plate        string
	driverName   string
	date         time.Time
	period       order.Period
	capacity     int
	status       Status
	tracking     Tracking
	stops        []Stop
	volume       int
	distanceKm   float64
	estimated    time.Duration
	completed    int
	dispatchedAt *time.Time
	closedAt     *time.Time
	delay        time.Duration
	version      int
	guard        guard.ConstructorGuard
}

// NewRoute starts an empty route in Assembling. The capacity ceiling is
// copied from the vehicle and never follows later fleet changes.
func NewRoute(id kernel.UUID, v *vehicle.Vehicle, date time.Time, period order.Period) (*Route, error) {
	if err := v.Validate(); err != nil {
		return nil, errs.NewInvalidVehicleError("<nil>", "vehicle is required")
	}

	r := &Route{
		vehicleID:  v.ID(),
		plate:      v.Plate(),
		driverName: v.DriverName(),
		capacity:   v.CapacityLiters(),
		status:     Assembling,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setDate(date),
		period.Validate(),
	); err != nil {
		return nil, err
	}
	r.period = period

	return r, nil
}

// State is the persisted form of a route.
type State struct {
	ID           kernel.UUID
	VehicleID    kernel.UUID
	Plate        string
	DriverName   string
	Date         time.Time
	Period       order.Period
	Capacity     int
	Status       Status
	Tracking     Tracking
	Stops        []Stop
	DispatchedAt *time.Time
	ClosedAt     *time.Time
	Delay        time.Duration
	Version      int
}

// RestoreRoute rebuilds a route from storage. Aggregates and progress
// counters are recomputed from the stops.
func RestoreRoute(s State) (*Route, error) {
	r := &Route{
		vehicleID:    s.VehicleID,
		plate:        s.Plate,
		driverName:   s.DriverName,
		capacity:     s.Capacity,
		period:       s.Period,
		status:       s.Status,
		tracking:     s.Tracking,
		stops:        slices.Clone(s.Stops),
		dispatchedAt: s.DispatchedAt,
		closedAt:     s.ClosedAt,
		delay:        s.Delay,
		version:      s.Version,
		guard:        guard.NewConstructorGuard(),
	}

	var capacityErr error
	if s.Capacity <= 0 {
		capacityErr = errs.NewValueIsInvalidErrorWithCause("capacity is invalid",
			fmt.Errorf("%d is not greater than 0", s.Capacity))
	}

	if err := errors.Join(
		r.setID(s.ID),
		s.VehicleID.Validate(),
		r.setDate(s.Date),
		s.Period.Validate(),
		s.Status.Validate(),
		s.Tracking.Validate(),
		capacityErr,
	); err != nil {
		return nil, err
	}

	r.recalculate()
	return r, nil
}

// Snapshot exports the persisted form of the route.
func (r *Route) Snapshot() State {
	return State{
		ID:           r.id,
		VehicleID:    r.vehicleID,
		Plate:        r.plate,
		DriverName:   r.driverName,
		Date:         r.date,
		Period:       r.period,
		Capacity:     r.capacity,
		Status:       r.status,
		Tracking:     r.tracking,
		Stops:        slices.Clone(r.stops),
		DispatchedAt: r.dispatchedAt,
		ClosedAt:     r.closedAt,
		Delay:        r.delay,
		Version:      r.version,
	}
}

func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

func (r *Route) ID() kernel.UUID { return r.id }

func (r *Route) VehicleID() kernel.UUID { return r.vehicleID }

func (r *Route) Plate() string { return r.plate }

func (r *Route) DriverName() string { return r.driverName }

func (r *Route) Date() time.Time { return r.date }

func (r *Route) Period() order.Period { return r.period }

func (r *Route) Capacity() int { return r.capacity }

func (r *Route) Status() Status { return r.status }

func (r *Route) Tracking() Tracking { return r.tracking }

func (r *Route) Volume() int { return r.volume }

func (r *Route) DistanceKm() float64 { return r.distanceKm }

func (r *Route) EstimatedDuration() time.Duration { return r.estimated }

func (r *Route) CompletedStops() int { return r.completed }

func (r *Route) TotalStops() int { return len(r.stops) }

func (r *Route) DispatchedAt() *time.Time { return r.dispatchedAt }

// ClosedAt is set when the route reaches Completed or Cancelled.
func (r *Route) ClosedAt() *time.Time { return r.closedAt }

// Delay is how far behind plan the route was at the last progress report.
func (r *Route) Delay() time.Duration { return r.delay }

func (r *Route) Version() int { return r.version }

// Stops returns a copy of the stop sequence.
func (r *Route) Stops() []Stop { return slices.Clone(r.stops) }

func (r *Route) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(r.stops))
	for _, s := range r.stops {
		ids = append(ids, s.OrderID)
	}
	return ids
}

// Stop looks up the stop of an order.
func (r *Route) Stop(orderID kernel.UUID) (Stop, bool) {
	if i := r.indexOf(orderID); i >= 0 {
		return r.stops[i], true
	}
	return Stop{}, false
}

// NextStop is the first stop in sequence that is not completed.
func (r *Route) NextStop() (Stop, bool) {
	for _, s := range r.stops {
		if !s.Completed {
			return s, true
		}
	}
	return Stop{}, false
}

// Label is the status shown to dispatchers: the tracking label while Active.
func (r *Route) Label() string {
	if r.status == Active && r.tracking != NotTracked {
		return r.tracking.String()
	}
	return r.status.String()
}

// DelayAnnotation is empty unless the route is Delayed.
func (r *Route) DelayAnnotation() string {
	if r.status != Active || r.tracking != Delayed {
		return ""
	}
	return fmt.Sprintf("%d min behind schedule", int(r.delay.Round(time.Minute)/time.Minute))
}

// Occupancy is the share of the capacity ceiling in use, in percent.
func (r *Route) Occupancy() float64 {
	return float64(r.volume) * 100 / float64(r.capacity)
}

// Progress is the share of completed stops, in percent.
func (r *Route) Progress() float64 {
	if len(r.stops) == 0 {
		return 0
	}
	return float64(r.completed) * 100 / float64(len(r.stops))
}

// CanAssign reports why the order cannot be added, or nil.
func (r *Route) CanAssign(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if r.status != Assembling {
		return errs.NewInvalidStateError("route", "assign order", r.status.String())
	}
	if o.RouteID() != nil || !o.IsPending() {
		if o.Status() == order.Delivered {
			return errs.NewInvalidStateError("order", "assign order", o.Status().String())
		}
		owner := ""
		if o.RouteID() != nil {
			owner = o.RouteID().String()
		}
		return errs.NewAlreadyAssignedError(o.ID().String(), owner)
	}
	if r.indexOf(o.ID()) >= 0 {
		return errs.NewAlreadyAssignedError(o.ID().String(), r.id.String())
	}
	if attempted := r.volume + o.Volume(); attempted > r.capacity {
		return errs.NewCapacityExceededError(r.id.String(), r.capacity, attempted)
	}
	return nil
}

// AssignOrder appends the order as the last stop and claims it for this route.
func (r *Route) AssignOrder(o *order.Order, policy TravelPolicy) error {
	if err := r.CanAssign(o); err != nil {
		return err
	}

	if err := o.Assign(r.id); err != nil {
		return err
	}

	r.stops = append(r.stops, newStop(o, policy))
	r.recalculate()
	return nil
}

// UnassignOrder removes the order's stop and returns it to the pending catalog.
func (r *Route) UnassignOrder(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if r.status != Assembling {
		return errs.NewInvalidStateError("route", "unassign order", r.status.String())
	}

	i := r.indexOf(o.ID())
	if i < 0 {
		return errs.NewObjectNotFoundError("stop", o.ID().String())
	}

	if err := o.Release(r.id); err != nil {
		return err
	}

	r.stops = slices.Delete(r.stops, i, i+1)
	r.recalculate()
	return nil
}

// Resequence applies a new stop order. The sequence must be a permutation of
// the current stops.
func (r *Route) Resequence(sequence []kernel.UUID) error {
	if r.status != Assembling {
		return errs.NewInvalidStateError("route", "resequence stops", r.status.String())
	}
	if len(sequence) != len(r.stops) {
		return errs.NewValueIsInvalidErrorWithCause("sequence",
			fmt.Errorf("%d stops given, route has %d", len(sequence), len(r.stops)))
	}

	reordered := make([]Stop, 0, len(r.stops))
	used := make(map[kernel.UUID]struct{}, len(sequence))
	for _, id := range sequence {
		i := r.indexOf(id)
		if i < 0 {
			return errs.NewValueIsInvalidErrorWithCause("sequence",
				fmt.Errorf("order %s is not a stop of route %s", id, r.id))
		}
		if _, dup := used[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("order %s listed twice", id))
		}
		used[id] = struct{}{}
		reordered = append(reordered, r.stops[i])
	}

	r.stops = reordered
	return nil
}

// Finalize closes assembly and dispatches the route at now.
func (r *Route) Finalize(now time.Time) error {
	if r.status == Assembling && len(r.stops) == 0 {
		return errs.NewEmptyRouteError(r.id.String())
	}

	newStatus, err := r.status.Finalize()
	if err != nil {
		return err
	}

	r.status = newStatus
	r.tracking = OnTime
	r.delay = 0
	r.dispatchedAt = &now
	return nil
}

// ReportProgress compares the time elapsed since dispatch with the planned
// arrival offset of the next pending stop and relabels the route. It reports
// whether the label changed. Progress counters are untouched.
func (r *Route) ReportProgress(now time.Time) (bool, error) {
	if r.status != Active || r.dispatchedAt == nil {
		return false, errs.NewInvalidStateError("route", "report progress", r.status.String())
	}

	elapsed := now.Sub(*r.dispatchedAt)
	planned := time.Duration(0)
	for _, s := range r.stops {
		planned += s.Duration
		if !s.Completed {
			break
		}
	}

	previous := r.tracking
	if elapsed > planned {
		r.tracking = Delayed
		r.delay = elapsed - planned
	} else {
		r.tracking = OnTime
		r.delay = 0
	}
	return previous != r.tracking, nil
}

// CompleteStop records a confirmed delivery. Completing the last stop moves
// the route to Completed.
func (r *Route) CompleteStop(orderID kernel.UUID, now time.Time) error {
	if r.status != Active {
		return errs.NewInvalidStateError("route", "complete stop", r.status.String())
	}

	i := r.indexOf(orderID)
	if i < 0 {
		return errs.NewObjectNotFoundError("stop", orderID.String())
	}
	if r.stops[i].Completed {
		return errs.NewInvalidStateError("stop", "complete stop", "CONFIRMED")
	}

	r.stops[i].Completed = true
	r.recalculate()

	if r.completed == len(r.stops) {
		newStatus, err := r.status.Complete()
		if err != nil {
			return err
		}
		r.status = newStatus
		r.tracking = NotTracked
		r.closedAt = &now
	}
	return nil
}

// Complete is an explicit completion request. Routes complete on their own
// when the last stop is confirmed, so this only succeeds for an active route
// with no stops left.
func (r *Route) Complete(now time.Time) error {
	if r.status == Active && r.completed < len(r.stops) {
		return errs.NewInvalidTransitionErrorWithReason(r.status.String(), Completed.String(),
			fmt.Sprintf("%d of %d stops remain", len(r.stops)-r.completed, len(r.stops)))
	}

	newStatus, err := r.status.Complete()
	if err != nil {
		return err
	}

	r.status = newStatus
	r.tracking = NotTracked
	r.closedAt = &now
	return nil
}

// Cancel stops the route and drops every stop that was not delivered yet.
// It returns the dropped order ids; the caller releases those orders back to
// the pending catalog.
func (r *Route) Cancel(now time.Time) ([]kernel.UUID, error) {
	newStatus, err := r.status.Cancel()
	if err != nil {
		return nil, err
	}

	var released []kernel.UUID
	kept := r.stops[:0:0]
	for _, s := range r.stops {
		if s.Completed {
			kept = append(kept, s)
			continue
		}
		released = append(released, s.OrderID)
	}

	r.stops = kept
	r.recalculate()
	r.status = newStatus
	r.tracking = NotTracked
	r.delay = 0
	r.closedAt = &now
	return released, nil
}

// Discard prepares the route for deletion and returns every order it holds.
// Only assembling routes can be deleted.
func (r *Route) Discard() ([]kernel.UUID, error) {
	if r.status != Assembling {
		return nil, errs.NewInvalidStateError("route", "delete route", r.status.String())
	}
	return r.OrderIDs(), nil
}

func (r *Route) indexOf(orderID kernel.UUID) int {
	return slices.IndexFunc(r.stops, func(s Stop) bool { return s.OrderID.IsEqual(orderID) })
}

func (r *Route) recalculate() {
	r.volume, r.distanceKm, r.estimated, r.completed = 0, 0, 0, 0
	for _, s := range r.stops {
		r.volume += s.Volume
		r.distanceKm += s.DistanceKm
		r.estimated += s.Duration
		if s.Completed {
			r.completed++
		}
	}
}

func (r *Route) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Route) setDate(date time.Time) error {
	if date.IsZero() {
		return errs.NewValueIsRequiredError("date")
	}
	y, m, d := date.Date()
	r.date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nil
}
