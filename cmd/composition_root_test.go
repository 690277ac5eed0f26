package cmd_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"routeplanner/cmd"
	httpin "routeplanner/internal/adapters/in/http"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fleet = `
vehicles:
  - id: 0b8f4a52-3c0e-4a3a-8f59-2d5b0a7e6c01
    plate: ABC-1234
    driver: Carlos
    capacityLiters: 500
`

func writeFleet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fleet), 0o600))
	return path
}

func newApp(t *testing.T, configs cmd.Config) *echo.Echo {
	t.Helper()
	app, err := cmd.NewCompositionRoot(t.Context(), configs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	e := echo.New()
	httpin.RegisterHandlers(e, app.CreateHTTPServer())
	return e
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, echo.MIMEApplicationJSON, bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func TestCompositionRoot_MemoryStorage(t *testing.T) {
	e := newApp(t, cmd.Config{FleetFile: writeFleet(t)})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var vehicles []httpin.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vehicles))
	require.Len(t, vehicles, 1)
	assert.Equal(t, "Carlos", vehicles[0].DriverName)
}

func TestCompositionRoot_MissingFleet(t *testing.T) {
	_, err := cmd.NewCompositionRoot(t.Context(), cmd.Config{FleetFile: filepath.Join(t.TempDir(), "none.yaml")},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Error(t, err)
}

func TestCompositionRoot_UnreachableRedis(t *testing.T) {
	_, err := cmd.NewCompositionRoot(t.Context(), cmd.Config{FleetFile: writeFleet(t), RedisURL: "redis://127.0.0.1:1"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Error(t, err)
}

func TestCompositionRoot_EventsTravelThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := httptest.NewServer(newApp(t, cmd.Config{FleetFile: writeFleet(t), RedisURL: "redis://" + mr.Addr()}))
	defer srv.Close()

	resp := post(t, srv.URL+"/api/v1/routes", httpin.NewRoute{
		VehicleID: "0b8f4a52-3c0e-4a3a-8f59-2d5b0a7e6c01",
		Date:      "2026-03-02",
		Period:    "MORNING",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created httpin.Created
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()

	url := "ws" + srv.URL[len("http"):] + "/api/v1/routes/" + created.ID + "/events"
	conn, wsResp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer wsResp.Body.Close()
	defer conn.Close()

	read := func() map[string]any {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var e map[string]any
		require.NoError(t, conn.ReadJSON(&e))
		return e
	}
	assert.Equal(t, httpin.EventRouteSnapshot, read()["type"])

	resp = post(t, srv.URL+"/api/v1/routes/"+created.ID+"/cancel", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	assert.Equal(t, "route.cancelled", read()["type"])
}
