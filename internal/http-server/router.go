package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/speedwagon-io/plantwatch/internal/health"
	"github.com/speedwagon-io/plantwatch/internal/http-server/handlers/page"
	"github.com/speedwagon-io/plantwatch/internal/http-server/handlers/status"
	mwLogger "github.com/speedwagon-io/plantwatch/internal/http-server/middleware/logger"
	"github.com/speedwagon-io/plantwatch/internal/http-server/render"
)

func NewRouter(log *slog.Logger, loader page.SnapshotLoader, pg *render.Page, healthHandler *health.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)

	router.Get("/", page.New(log, loader, pg))
	router.Get("/api/status", status.New(log, loader))

	healthHandler.Mount(router)

	return router
}
