package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/speedwagon-io/plantwatch/internal/lib/logger/sl"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

var severity = map[Status]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// ComponentHealth describes one memoized result of the dashboard.
type ComponentHealth struct {
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	Message    string     `json:"message,omitempty"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
	AgeSeconds float64    `json:"age_seconds"`
	TTLSeconds float64    `json:"ttl_seconds"`
	Expired    bool       `json:"expired"`
	Items      int        `json:"items,omitempty"`
}

type HealthResponse struct {
	Status     Status            `json:"status"`
	Ready      bool              `json:"ready"`
	Components []ComponentHealth `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

type HealthChecker interface {
	Check(ctx context.Context) ComponentHealth
}

// Handler serves liveness, readiness and component health on a chi router.
type Handler struct {
	log      *slog.Logger
	ready    func() bool
	checkers []HealthChecker
	mu       sync.RWMutex
}

func NewHandler(log *slog.Logger, ready func() bool) *Handler {
	return &Handler{
		log:      log,
		ready:    ready,
		checkers: make([]HealthChecker, 0),
	}
}

func (h *Handler) AddChecker(checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

func (h *Handler) Mount(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Get("/livez", h.handleLive)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checkers := append([]HealthChecker(nil), h.checkers...)
	h.mu.RUnlock()

	components := make([]ComponentHealth, 0, len(checkers))
	for _, checker := range checkers {
		components = append(components, checker.Check(r.Context()))
	}

	response := HealthResponse{
		Status:     overall(components),
		Ready:      h.isReady(),
		Components: components,
		Timestamp:  time.Now().UTC(),
	}

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode health response", sl.Err(err))
	}
}

// overall is the worst status among components.
func overall(components []ComponentHealth) Status {
	worst := StatusHealthy
	for _, c := range components {
		if severity[c.Status] > severity[worst] {
			worst = c.Status
		}
	}
	return worst
}

func (h *Handler) isReady() bool {
	return h.ready == nil || h.ready()
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.isReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
