package http_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	httpin "routeplanner/internal/adapters/in/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPI_DescribesEveryEndpoint(t *testing.T) {
	doc, err := httpin.OpenAPI(t.Context())
	require.NoError(t, err)

	e := echo.New()
	httpin.RegisterHandlers(e, httpin.NewServer(httpin.Handlers{}, nil, nil))

	param := regexp.MustCompile(`:(\w+)`)
	for _, r := range e.Routes() {
		if !strings.HasPrefix(r.Path, "/api/v1/") || strings.HasSuffix(r.Path, "/events") {
			continue
		}
		path := param.ReplaceAllString(r.Path, "{$1}")
		item := doc.Paths.Find(path)
		if assert.NotNil(t, item, path) {
			assert.NotNil(t, item.GetOperation(r.Method), r.Method+" "+path)
		}
	}
}

func TestRequestValidator(t *testing.T) {
	f := newFixture(t)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		f.echo.ServeHTTP(rec, req)
		return rec
	}

	t.Run("wrong field type is a bad request", func(t *testing.T) {
		rec := send(http.MethodPost, "/api/v1/orders", `{"client":"Bar do Zé","volume":"sixty"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[httpin.Error](t, rec)
		assert.Equal(t, "BAD_REQUEST", body.Kind)
		assert.Contains(t, body.Message, "request body")
	})

	t.Run("malformed path id is a bad request", func(t *testing.T) {
		rec := send(http.MethodPost, "/api/v1/routes/R-1/stops/O-1/confirm", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[httpin.Error](t, rec).Message, "routeId")
	})

	t.Run("negative quantity passes to the domain", func(t *testing.T) {
		rec := send(http.MethodPut,
			"/api/v1/routes/"+vehicleID+"/stops/"+vehicleID+"/quantities",
			`{"delivered":{"chopp-30":-1}}`)

		// the shape is valid, the unknown route is what fails
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("description is served for the docs UI", func(t *testing.T) {
		rec := send(http.MethodGet, "/swagger/doc.json", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Route Planner API")
		assert.Contains(t, rec.Body.String(), "/api/v1/routes/{routeId}/optimization")
	})

	t.Run("paths outside the description pass through", func(t *testing.T) {
		rec := send(http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
