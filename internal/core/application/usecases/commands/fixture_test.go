package commands_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"routeplanner/internal/adapters/out/memory"
	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/model/vehicle"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

var dispatchTime = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) commands.Clock {
	return func() time.Time { return t }
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type vehicleRepository struct {
	vehicles map[kernel.UUID]*vehicle.Vehicle
}

func (r *vehicleRepository) Get(_ context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("vehicle", id.String())
	}
	return v, nil
}

func (r *vehicleRepository) GetAll(_ context.Context) ([]*vehicle.Vehicle, error) {
	all := make([]*vehicle.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		all = append(all, v)
	}
	return all, nil
}

type uowFactory struct{ factory *memory.UnitOfWorkFactory }

func (f uowFactory) Create() commands.UoW { return f.factory.Create() }

type orderUoWFactory struct{ factory *memory.UnitOfWorkFactory }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.factory.Create() }

// planner wires every command handler over one in-memory store.
type planner struct {
	store    *memory.Store
	factory  *memory.UnitOfWorkFactory
	vehicles *vehicleRepository
	events   *recordingPublisher
	now      time.Time

	createOrder  commands.CreateOrderCommandHandler
	createRoute  commands.CreateRouteCommandHandler
	assign       commands.AssignOrderCommandHandler
	unassign     commands.UnassignOrderCommandHandler
	lifecycle    commands.RouteLifecycleCommandHandler
	optimization commands.ConfirmOptimizationCommandHandler
	delivery     commands.DeliveryCommandHandler
}

func newPlanner(t *testing.T) *planner {
	t.Helper()
	p := &planner{
		store:    memory.NewStore(),
		vehicles: &vehicleRepository{vehicles: make(map[kernel.UUID]*vehicle.Vehicle)},
		events:   &recordingPublisher{},
		now:      dispatchTime,
	}
	p.factory = memory.NewUnitOfWorkFactory(p.store)

	uows := uowFactory{factory: p.factory}
	locks := services.NewRouteLocks()
	clock := func() time.Time { return p.now }

	p.createOrder = commands.NewCreateOrderCommandHandler(orderUoWFactory{factory: p.factory}, p.events, clock, nil)
	p.createRoute = commands.NewCreateRouteCommandHandler(uows, p.vehicles, locks, p.events, clock, nil)
	p.assign = commands.NewAssignOrderCommandHandler(uows, locks, p.events, route.DefaultTravelPolicy(), clock, nil)
	p.unassign = commands.NewUnassignOrderCommandHandler(uows, locks, p.events, clock, nil)
	p.lifecycle = commands.NewRouteLifecycleCommandHandler(uows, locks, p.events, clock, nil)
	p.optimization = commands.NewConfirmOptimizationCommandHandler(uows, locks, p.events, clock, nil)
	p.delivery = commands.NewDeliveryCommandHandler(uows, locks, p.events, clock, nil)
	return p
}

func (p *planner) addVehicle(t *testing.T, plate string, capacity int) kernel.UUID {
	t.Helper()
	v, err := vehicle.NewVehicle(kernel.NewUUID(), plate, "Carlos", capacity)
	require.NoError(t, err)
	p.vehicles.vehicles[v.ID()] = v
	return v.ID()
}

func (p *planner) addRoute(t *testing.T, capacity int) kernel.UUID {
	t.Helper()
	vehicleID := p.addVehicle(t, "ABC-1234", capacity)
	routeID := kernel.NewUUID()
	cmd, err := commands.NewCreateRouteCommand(routeID, vehicleID, dispatchTime, order.Morning)
	require.NoError(t, err)
	require.NoError(t, p.createRoute.Handle(t.Context(), cmd))
	return routeID
}

func (p *planner) addOrder(t *testing.T, volume int, x, y float64) kernel.UUID {
	t.Helper()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, order.Details{
		Client:      "Bar do Zé",
		Address:     "Rua das Flores, 10",
		Items:       []order.LineItem{{ProductID: "chopp-30", ProductName: "Chopp 30L", Quantity: 2}},
		Returnables: []order.ReturnableAsset{{AssetType: "KEG_30L", Expected: 2}},
		Volume:      volume,
		Period:      order.Morning,
		Priority:    order.Normal,
		DistanceKm:  4,
		Location:    kernel.MustNewLocation(x, y),
	})
	require.NoError(t, err)
	require.NoError(t, p.createOrder.Handle(t.Context(), cmd))
	return orderID
}

func (p *planner) assignOrder(t *testing.T, routeID, orderID kernel.UUID) error {
	t.Helper()
	cmd, err := commands.NewAssignOrderCommand(routeID, orderID)
	require.NoError(t, err)
	return p.assign.Handle(t.Context(), cmd)
}

func (p *planner) finalize(t *testing.T, routeID kernel.UUID) error {
	t.Helper()
	cmd, err := commands.NewFinalizeRouteCommand(routeID)
	require.NoError(t, err)
	return p.lifecycle.Finalize(t.Context(), cmd)
}

func (p *planner) advance(t *testing.T, routeID, orderID kernel.UUID, action commands.StopAction) error {
	t.Helper()
	cmd, err := commands.NewAdvanceStopCommand(routeID, orderID, action)
	require.NoError(t, err)
	return p.delivery.Advance(t.Context(), cmd)
}

// deliver walks a stop through every phase with the ordered quantities.
func (p *planner) deliver(t *testing.T, routeID, orderID kernel.UUID) {
	t.Helper()
	begin, err := commands.NewBeginStopCommand(kernel.NewUUID(), routeID, orderID)
	require.NoError(t, err)
	require.NoError(t, p.delivery.Begin(t.Context(), begin))
	require.NoError(t, p.advance(t, routeID, orderID, commands.Arrive))
	require.NoError(t, p.advance(t, routeID, orderID, commands.Reconcile))
	confirm, err := commands.NewConfirmStopCommand(routeID, orderID, "Maria", "photo-001")
	require.NoError(t, err)
	require.NoError(t, p.delivery.Confirm(t.Context(), confirm))
}

func (p *planner) route(t *testing.T, id kernel.UUID) *route.Route {
	t.Helper()
	r, err := p.factory.Create().RouteRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return r
}

func (p *planner) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := p.factory.Create().OrderRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return o
}

func (p *planner) pendingIDs(t *testing.T) []kernel.UUID {
	t.Helper()
	pending, err := p.factory.Create().OrderRepository().GetAllPending(t.Context())
	require.NoError(t, err)
	ids := make([]kernel.UUID, 0, len(pending))
	for _, o := range pending {
		ids = append(ids, o.ID())
	}
	return ids
}

func containsID(ids []kernel.UUID, id kernel.UUID) bool {
	return slices.Contains(ids, id)
}
