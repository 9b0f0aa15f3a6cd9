package health

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHealthAggregatesCheckers(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	t.Run("healthy when nothing fetched yet", func(t *testing.T) {
		h := NewHandler(slog.New(slog.DiscardHandler), nil)
		h.AddChecker(NewGenerationHealthChecker(5*time.Minute, func() (LastFetch, bool) { return LastFetch{}, false }))

		rec := get(t, newRouter(h), "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, StatusHealthy, resp.Status)
		assert.True(t, resp.Ready)
		require.Len(t, resp.Components, 1)
		assert.Equal(t, "generation", resp.Components[0].Name)
		assert.Nil(t, resp.Components[0].FetchedAt)
		assert.Equal(t, 300.0, resp.Components[0].TTLSeconds)
	})

	t.Run("degraded on status error and empty news", func(t *testing.T) {
		gen := NewGenerationHealthChecker(5*time.Minute, func() (LastFetch, bool) {
			return LastFetch{Err: errors.New("upstream failure: 401"), At: at}, true
		})
		gen.now = fixedClock(at.Add(time.Minute))
		news := NewNewsHealthChecker(2*time.Hour, func() (LastFetch, bool) {
			return LastFetch{At: at}, true
		})
		news.now = fixedClock(at.Add(time.Minute))

		h := NewHandler(slog.New(slog.DiscardHandler), func() bool { return false })
		h.AddChecker(gen)
		h.AddChecker(news)

		rec := get(t, newRouter(h), "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, StatusDegraded, resp.Status)
		assert.False(t, resp.Ready)
		require.Len(t, resp.Components, 2)

		assert.Equal(t, StatusDegraded, resp.Components[0].Status)
		assert.Contains(t, resp.Components[0].Message, "401")
		require.NotNil(t, resp.Components[0].FetchedAt)
		assert.True(t, at.Equal(*resp.Components[0].FetchedAt))
		assert.Equal(t, 60.0, resp.Components[0].AgeSeconds)

		assert.Equal(t, StatusDegraded, resp.Components[1].Status)
		assert.Equal(t, "no items", resp.Components[1].Message)
	})

	t.Run("reports age against ttl", func(t *testing.T) {
		c := NewNewsHealthChecker(2*time.Hour, func() (LastFetch, bool) { return LastFetch{At: at, Items: 3}, true })

		c.now = fixedClock(at.Add(90 * time.Minute))
		fresh := c.Check(t.Context())
		assert.Equal(t, StatusHealthy, fresh.Status)
		assert.Empty(t, fresh.Message)
		assert.Equal(t, 3, fresh.Items)
		assert.Equal(t, 5400.0, fresh.AgeSeconds)
		assert.False(t, fresh.Expired)

		c.now = fixedClock(at.Add(2 * time.Hour))
		assert.True(t, c.Check(t.Context()).Expired)
	})
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, StatusHealthy, overall(nil))
	assert.Equal(t, StatusDegraded, overall([]ComponentHealth{{Status: StatusHealthy}, {Status: StatusDegraded}}))
	assert.Equal(t, StatusUnhealthy, overall([]ComponentHealth{{Status: StatusUnhealthy}, {Status: StatusDegraded}}))
}

func TestReadiness(t *testing.T) {
	ready := false
	h := NewHandler(slog.New(slog.DiscardHandler), func() bool { return ready })
	router := newRouter(h)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, router, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/livez").Code)

	ready = true
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)
}
