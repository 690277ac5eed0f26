package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpin "routeplanner/internal/adapters/in/http"
	"routeplanner/internal/adapters/out/events"
	"routeplanner/internal/adapters/out/fleetfile"
	"routeplanner/internal/adapters/out/memory"
	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/application/usecases/queries"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const (
	vehicleID = "0b8f4a52-3c0e-4a3a-8f59-2d5b0a7e6c01"
	fleet     = `
vehicles:
  - id: 0b8f4a52-3c0e-4a3a-8f59-2d5b0a7e6c01
    plate: ABC-1234
    driver: Carlos
    capacityLiters: 500
`
)

type uowFactory struct{ factory *memory.UnitOfWorkFactory }

func (f uowFactory) Create() commands.UoW { return f.factory.Create() }

type orderUoWFactory struct{ factory *memory.UnitOfWorkFactory }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.factory.Create() }

// testClock is advanced by tests that check tracking labels.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	echo   *echo.Echo
	broker *events.Broker
	clock  *testClock
	spans  *tracetest.SpanRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	vehicles, err := fleetfile.Parse(strings.NewReader(fleet))
	require.NoError(t, err)

	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	uows := uowFactory{factory: factory}
	locks := services.NewRouteLocks()
	broker := events.NewBroker()
	clock := &testClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	optimizer := services.NewRouteOptimizer(kernel.MustNewLocation(0, 0), kernel.Euclidean)

	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:  commands.NewCreateOrderCommandHandler(orderUoWFactory{factory: factory}, broker, clock.Now, nil),
		CreateRoute:  commands.NewCreateRouteCommandHandler(uows, vehicles, locks, broker, clock.Now, nil),
		Assign:       commands.NewAssignOrderCommandHandler(uows, locks, broker, route.DefaultTravelPolicy(), clock.Now, nil),
		Unassign:     commands.NewUnassignOrderCommandHandler(uows, locks, broker, clock.Now, nil),
		Lifecycle:    commands.NewRouteLifecycleCommandHandler(uows, locks, broker, clock.Now, nil),
		Optimization: commands.NewConfirmOptimizationCommandHandler(uows, locks, broker, clock.Now, nil),
		Delivery:     commands.NewDeliveryCommandHandler(uows, locks, broker, clock.Now, nil),

		PendingOrders:   queries.NewGetPendingOrdersQueryHandler(factory),
		Route:           queries.NewGetRouteQueryHandler(factory),
		RoutesByStatus:  queries.NewGetRoutesByStatusQueryHandler(factory),
		OptimizeRoute:   queries.NewOptimizeRouteQueryHandler(factory, optimizer),
		DeliveryRecords: queries.NewGetDeliveryRecordsQueryHandler(factory),
		Vehicles:        queries.NewGetVehiclesQueryHandler(vehicles),
	}, broker, nil)

	spans := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	doc, err := httpin.OpenAPI(t.Context())
	require.NoError(t, err)
	validator, err := httpin.RequestValidator(doc)
	require.NoError(t, err)

	e := echo.New()
	e.Use(httpin.Metrics(), httpin.Tracing(provider.Tracer("test")))
	httpin.RegisterHandlers(e, server, validator)
	require.NoError(t, httpin.RegisterDocs(e, doc))

	return &fixture{echo: e, broker: broker, clock: clock, spans: spans}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func newOrder(volume int, x, y float64) httpin.NewOrder {
	return httpin.NewOrder{
		Client:      "Bar do Zé",
		Address:     "Rua das Flores, 10",
		Items:       []httpin.LineItem{{ProductID: "chopp-30", ProductName: "Chopp 30L", Quantity: 2}},
		Returnables: []httpin.Returnable{{AssetType: "KEG_30L", Expected: 2}},
		Volume:      volume,
		Period:      "morning",
		DistanceKm:  4,
		Location:    httpin.Location{Lat: x, Lng: y},
	}
}

func (f *fixture) createOrder(t *testing.T, volume int, x, y float64) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/orders", newOrder(volume, x, y))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[httpin.Created](t, rec).ID
}

func (f *fixture) createRoute(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/routes", httpin.NewRoute{
		VehicleID: vehicleID,
		Date:      "2026-03-02",
		Period:    "MORNING",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[httpin.Created](t, rec).ID
}

func (f *fixture) assign(t *testing.T, routeID, orderID string) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/v1/routes/"+routeID+"/orders", httpin.Assignment{OrderID: orderID})
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	t.Run("created orders show on the pending board", func(t *testing.T) {
		id := f.createOrder(t, 60, 1, 1)

		rec := f.do(t, http.MethodGet, "/api/v1/orders/pending?period=MORNING", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		board := decode[httpin.PendingBoard](t, rec)
		require.Len(t, board.Orders, 1)
		assert.Equal(t, id, board.Orders[0].ID)
		assert.Equal(t, "MORNING", board.Orders[0].Period)
		assert.Equal(t, 60, board.TotalVolume)
	})

	t.Run("other periods are filtered out", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/orders/pending?period=afternoon", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[httpin.PendingBoard](t, rec).Orders)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		f.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BAD_REQUEST", decode[httpin.Error](t, rec).Kind)
	})

	t.Run("unknown period", func(t *testing.T) {
		body := newOrder(60, 1, 1)
		body.Period = "midnight"
		rec := f.do(t, http.MethodPost, "/api/v1/orders", body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "VALUE_INVALID", decode[httpin.Error](t, rec).Kind)
	})
}

func TestGetVehicles(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/vehicles", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	vehicles := decode[[]httpin.Vehicle](t, rec)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "ABC-1234", vehicles[0].Plate)
	assert.Equal(t, 500, vehicles[0].CapacityLiters)
}

func TestRoutePlanning(t *testing.T) {
	f := newFixture(t)
	routeID := f.createRoute(t)

	t.Run("vehicle slot is taken once", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/routes", httpin.NewRoute{
			VehicleID: vehicleID,
			Date:      "2026-03-02",
			Period:    "MORNING",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "INVALID_VEHICLE", decode[httpin.Error](t, rec).Kind)
	})

	t.Run("assignment fills the route", func(t *testing.T) {
		near := f.createOrder(t, 100, 1, 0)
		far := f.createOrder(t, 100, 5, 0)
		require.Equal(t, http.StatusNoContent, f.assign(t, routeID, far).Code)
		require.Equal(t, http.StatusNoContent, f.assign(t, routeID, near).Code)

		rec := f.do(t, http.MethodGet, "/api/v1/routes/"+routeID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		r := decode[httpin.Route](t, rec)
		assert.Equal(t, "ASSEMBLING", r.Status)
		assert.Equal(t, 200, r.Volume)
		require.Len(t, r.Stops, 2)
		assert.Equal(t, far, r.Stops[0].OrderID)
	})

	t.Run("capacity is enforced", func(t *testing.T) {
		big := f.createOrder(t, 400, 2, 2)
		rec := f.assign(t, routeID, big)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "CAPACITY_EXCEEDED", decode[httpin.Error](t, rec).Kind)
	})

	t.Run("optimization is previewed then confirmed", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/routes/"+routeID+"/optimization", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		plan := decode[httpin.Optimization](t, rec)
		require.Len(t, plan.Sequence, 2)
		assert.Less(t, plan.DistanceAfter, plan.DistanceBefore)

		rec = f.do(t, http.MethodPost, "/api/v1/routes/"+routeID+"/optimization", httpin.Sequence{Sequence: plan.Sequence})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		r := decode[httpin.Route](t, f.do(t, http.MethodGet, "/api/v1/routes/"+routeID, nil))
		assert.Equal(t, plan.Sequence[0], r.Stops[0].OrderID)
	})

	t.Run("routes are listed by status", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/routes?status=assembling,active", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]httpin.RouteSummary](t, rec), 1)

		rec = f.do(t, http.MethodGet, "/api/v1/routes?status=COMPLETED", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]httpin.RouteSummary](t, rec))
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/routes?status=PARKED", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRouteNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/routes/"+kernel.NewUUID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[httpin.Error](t, rec).Kind)

	rec = f.do(t, http.MethodGet, "/api/v1/routes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRoute(t *testing.T) {
	f := newFixture(t)
	routeID := f.createRoute(t)
	orderID := f.createOrder(t, 60, 1, 1)
	require.Equal(t, http.StatusNoContent, f.assign(t, routeID, orderID).Code)

	rec := f.do(t, http.MethodDelete, "/api/v1/routes/"+routeID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/routes/"+routeID, nil).Code)
	board := decode[httpin.PendingBoard](t, f.do(t, http.MethodGet, "/api/v1/orders/pending", nil))
	require.Len(t, board.Orders, 1)
	assert.Equal(t, orderID, board.Orders[0].ID)
}

func TestFinalizeEmptyRoute(t *testing.T) {
	f := newFixture(t)
	routeID := f.createRoute(t)

	rec := f.do(t, http.MethodPost, "/api/v1/routes/"+routeID+"/finalize", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_ROUTE", decode[httpin.Error](t, rec).Kind)
}

func TestDeliveryWorkflow(t *testing.T) {
	f := newFixture(t)
	routeID := f.createRoute(t)
	orderID := f.createOrder(t, 60, 1, 1)
	require.Equal(t, http.StatusNoContent, f.assign(t, routeID, orderID).Code)

	stop := "/api/v1/routes/" + routeID + "/stops/" + orderID
	advance := func(action string) *httptest.ResponseRecorder {
		return f.do(t, http.MethodPost, stop+"/advance", httpin.StopAction{Action: action})
	}

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, stop+"/begin", httpin.BeginStop{}).Code)

	rec := advance("arrive")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NOT_YET_DEPARTED", decode[httpin.Error](t, rec).Kind)

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/v1/routes/"+routeID+"/finalize", nil).Code)

	f.clock.Advance(6 * time.Hour)
	rec = f.do(t, http.MethodPost, "/api/v1/routes/"+routeID+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DELAYED", decode[httpin.Progress](t, rec).Tracking)

	require.Equal(t, http.StatusNoContent, advance("arrive").Code)

	rec = f.do(t, http.MethodPut, stop+"/quantities", httpin.StopQuantities{
		Delivered: map[string]int{"chopp-30": 3},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = advance("reconcile")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "QUANTITY_EXCEEDS_ORDER", decode[httpin.Error](t, rec).Kind)

	rec = f.do(t, http.MethodPut, stop+"/quantities", httpin.StopQuantities{
		Delivered: map[string]int{"chopp-30": 2},
		Counted:   map[string]int{"KEG_30L": 1},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, http.StatusNoContent, advance("reconcile").Code)

	rec = f.do(t, http.MethodPost, stop+"/confirm", httpin.StopConfirmation{RecipientName: "Maria"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MISSING_PROOF", decode[httpin.Error](t, rec).Kind)

	rec = f.do(t, http.MethodPost, stop+"/confirm", httpin.StopConfirmation{RecipientName: "Maria", ProofRef: "photo-001"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	r := decode[httpin.Route](t, f.do(t, http.MethodGet, "/api/v1/routes/"+routeID, nil))
	assert.Equal(t, "COMPLETED", r.Status)
	assert.Equal(t, 1, r.CompletedStops)
	assert.Nil(t, r.NextStop)

	rec = f.do(t, http.MethodGet, "/api/v1/routes/"+routeID+"/deliveries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]httpin.DeliveryRecord](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, "Maria", records[0].RecipientName)
	assert.True(t, records[0].Shortfall)
}

func TestUnknownStopAction(t *testing.T) {
	f := newFixture(t)
	routeID := f.createRoute(t)

	rec := f.do(t, http.MethodPost, "/api/v1/routes/"+routeID+"/stops/"+kernel.NewUUID().String()+"/advance",
		httpin.StopAction{Action: "teleport"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALUE_INVALID", decode[httpin.Error](t, rec).Kind)
}

func TestTracingRecordsRoutePattern(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodGet, "/api/v1/routes/"+kernel.NewUUID().String(), nil)

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /api/v1/routes/:routeId", ended[0].Name())
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/metrics", nil).Code)
}

func TestStreamRouteEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.echo)
	defer srv.Close()

	routeID := f.createRoute(t)
	orderID := f.createOrder(t, 60, 1, 1)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/routes/" + routeID + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	read := func() ports.Event {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var e ports.Event
		require.NoError(t, conn.ReadJSON(&e))
		return e
	}

	snapshot := read()
	assert.Equal(t, httpin.EventRouteSnapshot, snapshot.Type)
	assert.Equal(t, routeID, snapshot.RouteID)
	assert.Equal(t, 1, f.broker.Subscribers(routeID))

	require.Equal(t, http.StatusNoContent, f.assign(t, routeID, orderID).Code)

	removed := read()
	assert.Equal(t, ports.EventOrderPendingRemoved, removed.Type)
	assert.Equal(t, orderID, removed.OrderID)
	assert.Equal(t, ports.EventRouteUpdated, read().Type)
}

func TestStreamAllEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.echo)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	assert.Equal(t, 1, f.broker.Subscribers(ports.AllRoutes))

	orderID := f.createOrder(t, 60, 1, 1)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var added ports.Event
	require.NoError(t, conn.ReadJSON(&added))
	assert.Equal(t, ports.EventOrderPendingAdded, added.Type)
	assert.Equal(t, orderID, added.OrderID)
}

func TestStreamUnknownRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/routes/"+kernel.NewUUID().String()+"/events", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
