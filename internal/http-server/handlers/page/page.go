package page

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/speedwagon-io/plantwatch/internal/dashboard"
	"github.com/speedwagon-io/plantwatch/internal/http-server/render"
	"github.com/speedwagon-io/plantwatch/internal/lib/logger/sl"
)

type SnapshotLoader interface {
	Load(ctx context.Context) dashboard.Snapshot
}

func New(log *slog.Logger, loader SnapshotLoader, page *render.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.page.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		snap := loader.Load(r.Context())
		if snap.FetchError != "" {
			log.Warn("rendering status error", slog.String("fetch_error", snap.FetchError))
		}

		var buf bytes.Buffer
		err := page.Render(&buf, render.PageData{
			PlantName:   snap.PlantName,
			Reading:     snap.Reading,
			FetchError:  snap.FetchError,
			News:        snap.News,
			GeneratedAt: snap.GeneratedAt,
		})
		if err != nil {
			log.Error("failed to render page", sl.Err(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
	}
}
