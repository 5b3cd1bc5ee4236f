package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(t *testing.T, handler *Handler) (int, Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var response Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return rec.Code, response
}

func TestHandlerAggregatesChecks(t *testing.T) {
	handler := NewHandler("v1.2.3")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error { return nil }))
	handler.RegisterChecker("redis", NewSimpleChecker("redis", func() error { return nil }))

	code, response := serveHealth(t, handler)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "v1.2.3", response.Version)
	assert.Len(t, response.Checks, 2)
	assert.Equal(t, StatusHealthy, response.Checks["postgres"].Status)
}

func TestHandlerUnhealthyDependencyGives503(t *testing.T) {
	handler := NewHandler("v1.2.3")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error { return nil }))
	handler.RegisterChecker("redis", NewSimpleChecker("redis", func() error {
		return errors.New("connection refused")
	}))

	code, response := serveHealth(t, handler)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusUnhealthy, response.Status)
	assert.Equal(t, "connection refused", response.Checks["redis"].Message)
	// Здоровая зависимость всё равно попадает в отчёт.
	assert.Equal(t, StatusHealthy, response.Checks["postgres"].Status)
}

func TestHandlerNoCheckersIsHealthy(t *testing.T) {
	code, response := serveHealth(t, NewHandler(""))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, response.Status)
	assert.Empty(t, response.Checks)
}

func TestLivenessAlwaysOK(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadinessFollowsCheckers(t *testing.T) {
	handler := NewHandler("v1.2.3")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error { return nil }))

	rec := httptest.NewRecorder()
	handler.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	handler.RegisterChecker("redis", NewSimpleChecker("redis", func() error {
		return errors.New("down")
	}))

	rec = httptest.NewRecorder()
	handler.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", rec.Body.String())
}

func TestSimpleCheckerReportsErrorAndDuration(t *testing.T) {
	ok := NewSimpleChecker("slow", func() error {
		time.Sleep(5 * time.Millisecond)
		return nil
	}).Check()
	assert.Equal(t, StatusHealthy, ok.Status)
	assert.Empty(t, ok.Message)
	assert.GreaterOrEqual(t, ok.Duration, 5*time.Millisecond)

	failed := NewSimpleChecker("broken", func() error {
		return errors.New("ping failed")
	}).Check()
	assert.Equal(t, StatusUnhealthy, failed.Status)
	assert.Equal(t, "ping failed", failed.Message)
}
