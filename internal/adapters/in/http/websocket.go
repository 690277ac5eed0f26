package http

import (
	"net/http"
	"time"

	"routeplanner/internal/core/application/usecases/queries"
	"routeplanner/internal/core/ports"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	// EventRouteSnapshot is the first message of a route stream.
	EventRouteSnapshot = "route.snapshot"

	pingInterval = 20 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StreamRouteEvents handles GET /api/v1/routes/:routeId/events. The stream
// opens with the current route view, then carries every committed change of
// that route until the client goes away.
func (s *Server) StreamRouteEvents(c echo.Context) error {
	ids, ok := s.pathIDs(c, "routeId")
	if !ok {
		return badRequest(c, "Invalid route id")
	}

	query, err := queries.NewGetRouteQuery(ids[0])
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.h.Route.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	events, unsubscribe := s.events.Subscribe(ids[0].String())
	defer unsubscribe()

	first := ports.Event{
		Type:       EventRouteSnapshot,
		RouteID:    ids[0].String(),
		Data:       map[string]any{"route": toRoute(snapshot)},
		OccurredAt: s.clock(),
	}
	return s.stream(c, events, &first)
}

// StreamEvents handles GET /api/v1/events, the feed of every route and of
// the pending catalog.
func (s *Server) StreamEvents(c echo.Context) error {
	events, unsubscribe := s.events.Subscribe(ports.AllRoutes)
	defer unsubscribe()
	return s.stream(c, events, nil)
}

func (s *Server) stream(c echo.Context, events <-chan ports.Event, first *ports.Event) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already answered the client
		s.logger.Warn("websocket upgrade failed", "path", c.Path(), "error", err)
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(e ports.Event) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(e)
	}

	if first != nil {
		if err = write(*first); err != nil {
			return nil
		}
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err = write(e); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return nil
			}
		case <-ping.C:
			deadline := time.Now().Add(writeTimeout)
			if err = conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
