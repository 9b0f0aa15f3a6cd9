package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/plantwatch/internal/dashboard"
	"github.com/speedwagon-io/plantwatch/internal/health"
	"github.com/speedwagon-io/plantwatch/internal/http-server/render"
	"github.com/speedwagon-io/plantwatch/internal/model"
)

type staticLoader struct {
	snap dashboard.Snapshot
}

func (l staticLoader) Load(context.Context) dashboard.Snapshot {
	return l.snap
}

func newTestRouter(snap dashboard.Snapshot) http.Handler {
	log := slog.New(slog.DiscardHandler)
	return NewRouter(log, staticLoader{snap: snap}, render.MustNewPage(time.UTC), health.NewHandler(log, func() bool { return true }))
}

func TestPageRoute(t *testing.T) {
	router := newTestRouter(dashboard.Snapshot{
		PlantName:  "Auvere",
		FetchError: "upstream failure: unexpected status code: 401",
		News:       []model.NewsItem{},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "unexpected status code: 401")
	assert.Contains(t, rec.Body.String(), `id="no-news"`)
}

func TestStatusRoute(t *testing.T) {
	reading := model.NewGenerationReading("Auvere", "Auvere 1",
		model.Point{Time: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), Value: 42}, true, nil)

	router := newTestRouter(dashboard.Snapshot{
		PlantName: "Auvere",
		Reading:   reading,
		News:      []model.NewsItem{{Title: "t", Link: "https://news.example/t", Published: "Sat, 17 Oct 2026"}},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got dashboard.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Reading)
	assert.Equal(t, reading.FetchID, got.Reading.FetchID)
	assert.Equal(t, 42.0, got.Reading.CurrentOutputMW)
	assert.Nil(t, got.Reading.Stats)
	assert.Empty(t, got.FetchError)
	assert.Len(t, got.News, 1)
}

func TestHealthRoutesMounted(t *testing.T) {
	router := newTestRouter(dashboard.Snapshot{})

	for _, path := range []string{"/healthz", "/readyz", "/livez"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
