// Package http exposes the route planner over JSON/HTTP with echo: one
// endpoint per command, the read models, and a websocket stream of route
// events.
package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/application/usecases/queries"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers are the use cases the server dispatches to.
type Handlers struct {
	CreateOrder  commands.CreateOrderCommandHandler
	CreateRoute  commands.CreateRouteCommandHandler
	Assign       commands.AssignOrderCommandHandler
	Unassign     commands.UnassignOrderCommandHandler
	Lifecycle    commands.RouteLifecycleCommandHandler
	Optimization commands.ConfirmOptimizationCommandHandler
	Delivery     commands.DeliveryCommandHandler

	PendingOrders   queries.GetPendingOrdersQueryHandler
	Route           queries.GetRouteQueryHandler
	RoutesByStatus  queries.GetRoutesByStatusQueryHandler
	OptimizeRoute   queries.OptimizeRouteQueryHandler
	DeliveryRecords queries.GetDeliveryRecordsQueryHandler
	Vehicles        queries.GetVehiclesQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h      Handlers
	events ports.EventSubscriber
	logger *slog.Logger
	clock  func() time.Time
}

func NewServer(h Handlers, events ports.EventSubscriber, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		h:      h,
		events: events,
		logger: logger.With("component", "HTTPServer"),
		clock:  time.Now,
	}
}

// RegisterHandlers mounts every endpoint under /api/v1 next to /health and
// /metrics. The middlewares wrap the /api/v1 group only.
func RegisterHandlers(e *echo.Echo, s *Server, middlewares ...echo.MiddlewareFunc) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := e.Group("/api/v1", middlewares...)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/pending", s.GetPendingOrders)
	api.GET("/vehicles", s.GetVehicles)
	api.GET("/events", s.StreamEvents)

	api.POST("/routes", s.CreateRoute)
	api.GET("/routes", s.GetRoutes)
	api.GET("/routes/:routeId", s.GetRoute)
	api.DELETE("/routes/:routeId", s.DeleteRoute)
	api.POST("/routes/:routeId/orders", s.AssignOrder)
	api.DELETE("/routes/:routeId/orders/:orderId", s.UnassignOrder)
	api.POST("/routes/:routeId/finalize", s.FinalizeRoute)
	api.POST("/routes/:routeId/complete", s.CompleteRoute)
	api.POST("/routes/:routeId/cancel", s.CancelRoute)
	api.POST("/routes/:routeId/progress", s.ReportProgress)
	api.GET("/routes/:routeId/optimization", s.PreviewOptimization)
	api.POST("/routes/:routeId/optimization", s.ConfirmOptimization)
	api.GET("/routes/:routeId/deliveries", s.GetDeliveryRecords)
	api.GET("/routes/:routeId/events", s.StreamRouteEvents)

	api.POST("/routes/:routeId/stops/:orderId/begin", s.BeginStop)
	api.POST("/routes/:routeId/stops/:orderId/advance", s.AdvanceStop)
	api.PUT("/routes/:routeId/stops/:orderId/quantities", s.RecordStopQuantities)
	api.POST("/routes/:routeId/stops/:orderId/confirm", s.ConfirmStop)
}

// command records the outcome and writes either the failure or status.
func (s *Server) command(c echo.Context, name string, err error, status int, body any) error {
	metrics.ObserveCommand(name, err)
	if err != nil {
		return s.fail(c, err)
	}
	if body == nil {
		return c.NoContent(status)
	}
	return c.JSON(status, body)
}

func optionalID(raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.NewUUID(), nil
	}
	return kernel.UUIDFromString(raw)
}

func (s *Server) pathIDs(c echo.Context, names ...string) ([]kernel.UUID, bool) {
	ids := make([]kernel.UUID, 0, len(names))
	for _, name := range names {
		id, err := kernel.UUIDFromString(c.Param(name))
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var body NewOrder
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	id, err := optionalID(body.ID)
	if err != nil {
		return s.fail(c, err)
	}
	period, err := order.ParsePeriod(body.Period)
	if err != nil {
		return s.fail(c, err)
	}
	priority := order.Normal
	if body.Priority != "" {
		if priority, err = order.ParsePriority(body.Priority); err != nil {
			return s.fail(c, err)
		}
	}
	location, err := kernel.NewLocation(body.Location.Lat, body.Location.Lng)
	if err != nil {
		return s.fail(c, err)
	}

	details := body.details(period, priority)
	details.Location = location
	cmd, err := commands.NewCreateOrderCommand(id, details)
	if err != nil {
		return s.fail(c, err)
	}

	err = s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	return s.command(c, "create_order", err, http.StatusCreated, Created{ID: id.String()})
}

// GetPendingOrders handles GET /api/v1/orders/pending[?period=MORNING].
func (s *Server) GetPendingOrders(c echo.Context) error {
	period := order.PeriodUnknown
	if raw := c.QueryParam("period"); raw != "" {
		var err error
		if period, err = order.ParsePeriod(raw); err != nil {
			return s.fail(c, err)
		}
	}

	board, err := s.h.PendingOrders.Handle(c.Request().Context(), queries.NewGetPendingOrdersQuery(period))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toPendingBoard(board))
}

func (s *Server) GetVehicles(c echo.Context) error {
	views, err := s.h.Vehicles.Handle(c.Request().Context(), queries.NewGetVehiclesQuery())
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]Vehicle, 0, len(views))
	for _, v := range views {
		response = append(response, Vehicle{
			ID:             v.ID.String(),
			Plate:          v.Plate,
			DriverName:     v.DriverName,
			CapacityLiters: v.CapacityLiters,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// CreateRoute handles POST /api/v1/routes.
func (s *Server) CreateRoute(c echo.Context) error {
	var body NewRoute
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	id, err := optionalID(body.ID)
	if err != nil {
		return s.fail(c, err)
	}
	vehicleID, err := kernel.UUIDFromString(body.VehicleID)
	if err != nil {
		return s.fail(c, err)
	}
	date, err := time.Parse(time.DateOnly, body.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	period, err := order.ParsePeriod(body.Period)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateRouteCommand(id, vehicleID, date, period)
	if err != nil {
		return s.fail(c, err)
	}

	err = s.h.CreateRoute.Handle(c.Request().Context(), cmd)
	return s.command(c, "create_route", err, http.StatusCreated, Created{ID: id.String()})
}

// GetRoutes handles GET /api/v1/routes[?status=ASSEMBLING,ACTIVE].
func (s *Server) GetRoutes(c echo.Context) error {
	var raw []string
	if err := runtime.BindQueryParameter("form", false, false, "status", c.QueryParams(), &raw); err != nil {
		return badRequest(c, "Invalid status filter")
	}

	statuses := make([]route.Status, 0, len(raw))
	for _, part := range raw {
		status, err := route.ParseStatus(strings.ToUpper(strings.TrimSpace(part)))
		if err != nil {
			return s.fail(c, err)
		}
		statuses = append(statuses, status)
	}

	query, err := queries.NewGetRoutesByStatusQuery(statuses...)
	if err != nil {
		return s.fail(c, err)
	}
	summaries, err := s.h.RoutesByStatus.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]RouteSummary, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, toRouteSummary(summary))
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) GetRoute(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}

	query, err := queries.NewGetRouteQuery(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	resp, err := s.h.Route.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toRoute(resp))
}

func (s *Server) DeleteRoute(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	cmd, err := commands.NewDeleteRouteCommand(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Lifecycle.Delete(c.Request().Context(), cmd)
	return s.command(c, "delete_route", err, http.StatusNoContent, nil)
}

// AssignOrder handles POST /api/v1/routes/:routeId/orders.
func (s *Server) AssignOrder(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	var body Assignment
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	orderID, err := kernel.UUIDFromString(body.OrderID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAssignOrderCommand(ids[0], orderID)
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Assign.Handle(c.Request().Context(), cmd)
	return s.command(c, "assign_order", err, http.StatusNoContent, nil)
}

func (s *Server) UnassignOrder(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId", "orderId")
	if !ok {
		return badRequest(c, "Invalid route or order id")
	}
	cmd, err := commands.NewUnassignOrderCommand(ids[0], ids[1])
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Unassign.Handle(c.Request().Context(), cmd)
	return s.command(c, "unassign_order", err, http.StatusNoContent, nil)
}

func (s *Server) FinalizeRoute(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	cmd, err := commands.NewFinalizeRouteCommand(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Lifecycle.Finalize(c.Request().Context(), cmd)
	return s.command(c, "finalize_route", err, http.StatusNoContent, nil)
}

func (s *Server) CompleteRoute(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	cmd, err := commands.NewCompleteRouteCommand(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Lifecycle.Complete(c.Request().Context(), cmd)
	return s.command(c, "complete_route", err, http.StatusNoContent, nil)
}

func (s *Server) CancelRoute(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	cmd, err := commands.NewCancelRouteCommand(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Lifecycle.Cancel(c.Request().Context(), cmd)
	return s.command(c, "cancel_route", err, http.StatusNoContent, nil)
}

// ReportProgress handles POST /api/v1/routes/:routeId/progress and answers
// with the resulting ON_TIME/DELAYED label.
func (s *Server) ReportProgress(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	cmd, err := commands.NewReportProgressCommand(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	tracking, err := s.h.Lifecycle.ReportProgress(c.Request().Context(), cmd)
	return s.command(c, "report_progress", err, http.StatusOK, Progress{Tracking: tracking.String()})
}

// PreviewOptimization handles GET /api/v1/routes/:routeId/optimization.
// Nothing is changed until the sequence is POSTed back.
func (s *Server) PreviewOptimization(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	query, err := queries.NewOptimizeRouteQuery(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	resp, err := s.h.OptimizeRoute.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toOptimization(resp))
}

func (s *Server) ConfirmOptimization(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	var body Sequence
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	sequence := make([]kernel.UUID, 0, len(body.Sequence))
	for _, raw := range body.Sequence {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return s.fail(c, err)
		}
		sequence = append(sequence, id)
	}

	cmd, err := commands.NewConfirmOptimizationCommand(ids[0], sequence)
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Optimization.Handle(c.Request().Context(), cmd)
	return s.command(c, "confirm_optimization", err, http.StatusNoContent, nil)
}

func (s *Server) GetDeliveryRecords(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}
	query, err := queries.NewGetDeliveryRecordsQuery(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	views, err := s.h.DeliveryRecords.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]DeliveryRecord, 0, len(views))
	for _, v := range views {
		response = append(response, toDeliveryRecord(v))
	}
	return c.JSON(http.StatusOK, response)
}

// BeginStop handles POST /api/v1/routes/:routeId/stops/:orderId/begin.
func (s *Server) BeginStop(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId", "orderId")
	if !ok {
		return badRequest(c, "Invalid route or order id")
	}
	var body BeginStop
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	attemptID, err := optionalID(body.AttemptID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewBeginStopCommand(attemptID, ids[0], ids[1])
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Delivery.Begin(c.Request().Context(), cmd)
	return s.command(c, "begin_stop", err, http.StatusCreated, Created{ID: attemptID.String()})
}

// AdvanceStop handles POST .../advance with action arrive, reconcile,
// reopen or abandon.
func (s *Server) AdvanceStop(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId", "orderId")
	if !ok {
		return badRequest(c, "Invalid route or order id")
	}
	var body StopAction
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	action, err := commands.ParseStopAction(body.Action)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAdvanceStopCommand(ids[0], ids[1], action)
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Delivery.Advance(c.Request().Context(), cmd)
	return s.command(c, "advance_stop", err, http.StatusNoContent, nil)
}

func (s *Server) RecordStopQuantities(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId", "orderId")
	if !ok {
		return badRequest(c, "Invalid route or order id")
	}
	var body StopQuantities
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewRecordStopQuantitiesCommand(ids[0], ids[1], body.Delivered, body.Counted)
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Delivery.RecordQuantities(c.Request().Context(), cmd)
	return s.command(c, "record_stop_quantities", err, http.StatusNoContent, nil)
}

func (s *Server) ConfirmStop(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId", "orderId")
	if !ok {
		return badRequest(c, "Invalid route or order id")
	}
	var body StopConfirmation
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewConfirmStopCommand(ids[0], ids[1], body.RecipientName, body.ProofRef)
	if err != nil {
		return s.fail(c, err)
	}
	err = s.h.Delivery.Confirm(c.Request().Context(), cmd)
	return s.command(c, "confirm_stop", err, http.StatusNoContent, nil)
}
