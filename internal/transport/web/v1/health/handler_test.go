package health

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	ok   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestReadiness(t *testing.T) {
	testCases := []struct {
		name   string
		h      Handler
		status int
	}{
		{name: "all_up", h: Handler{DB: ok, Storage: ok, Cache: ok}, status: http.StatusOK},
		{name: "cache_disabled", h: Handler{DB: ok, Storage: ok}, status: http.StatusOK},
		{name: "db_down", h: Handler{DB: down, Storage: ok}, status: http.StatusInternalServerError},
		{name: "storage_down", h: Handler{DB: ok, Storage: down}, status: http.StatusInternalServerError},
		{name: "cache_down", h: Handler{DB: ok, Storage: ok, Cache: down}, status: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.h.Log = log.New(io.Discard, "", 0)
			rec := httptest.NewRecorder()
			tc.h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/api/readyz", nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestLiveness_IgnoresDependencies(t *testing.T) {
	h := Handler{Log: log.New(io.Discard, "", 0), DB: down, Storage: down}
	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
