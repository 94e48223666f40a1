package api

import (
	"context"
	"net/http"
	"time"
)

// StorePinger reports whether the counter store backend is reachable.
// Satisfied by ratelimit.RedisStore; file and memory stores need no check.
type StorePinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	hasAPIKey bool
	store     StorePinger
	version   string
	startTime time.Time
}

// NewHealthHandler creates the /healthz handler. store may be nil when the
// counter store has no remote backend.
func NewHealthHandler(hasAPIKey bool, store StorePinger, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		hasAPIKey: hasAPIKey,
		store:     store,
		version:   version,
		startTime: startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	if h.hasAPIKey {
		checks["openai_credential"] = "ok"
	} else {
		checks["openai_credential"] = "missing"
		status = "degraded"
	}

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			checks["rate_store"] = "error"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["rate_store"] = "ok"
		}
	} else {
		checks["rate_store"] = "local"
	}

	WriteJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
