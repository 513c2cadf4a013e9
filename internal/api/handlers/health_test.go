package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikhilbhutani/ttsbridge/internal/api/handlers"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handlers.NewHealthHandler(nil).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	bad := func(context.Context) error { return errors.New("piper not found in PATH") }

	t.Run("all ok", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h := handlers.NewHealthHandler(map[string]handlers.Check{"engine": ok, "delivery": ok})
		h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"engine":"ok","delivery":"ok"}}`, rec.Body.String())
	})

	t.Run("one failing", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h := handlers.NewHealthHandler(map[string]handlers.Check{"engine": bad, "delivery": ok})
		h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"engine":"unhealthy: piper not found in PATH","delivery":"ok"}}`, rec.Body.String())
	})
}
