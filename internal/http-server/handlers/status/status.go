package status

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/speedwagon-io/plantwatch/internal/http-server/handlers/page"
	"github.com/speedwagon-io/plantwatch/internal/lib/logger/sl"
)

// New serves the snapshot as JSON. A status fetch error is part of the
// payload, not an HTTP error.
func New(log *slog.Logger, loader page.SnapshotLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		snap := loader.Load(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			log.Error("failed to encode snapshot", sl.Err(err))
		}
	}
}
