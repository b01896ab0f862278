package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLogged(t *testing.T, req *http.Request, pre ...echo.MiddlewareFunc) (*bytes.Buffer, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(append(pre, RequestLogger(logger))...)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return &buf, rec
}

func TestRequestLogger_InboundRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-from-client")

	buf, rec := runLogged(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"request_id":"rid-from-client"`)
	assert.Equal(t, "rid-from-client", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger_GeneratedRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	// no inbound id; the id generated upstream must still reach the logs
	buf, rec := runLogged(t, req, echomw.RequestID())
	assert.Equal(t, http.StatusOK, rec.Code)

	generated := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, generated)
	assert.Contains(t, buf.String(), `"request_id":"`+generated+`"`)
}
