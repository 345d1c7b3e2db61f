package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// HealthHandler answers /healthz
type HealthHandler struct {
	database HealthCheck
	redis    HealthCheck
}

// NewHealthHandler creates a health handler. redis may be nil when no Redis is configured.
func NewHealthHandler(database, redis HealthCheck) *HealthHandler {
	return &HealthHandler{database: database, redis: redis}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

func runCheck(ctx context.Context, name string, check HealthCheck) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := check(ctx); err != nil {
		log.Printf("Warning: health check %s failed: %v", name, err)
		return "unavailable", false
	}
	return "ok", true
}

// Healthz checks the database and, when configured, Redis
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	healthy := true

	var ok bool
	resp.Database, ok = runCheck(r.Context(), "database", h.database)
	healthy = healthy && ok
	if h.redis != nil {
		resp.Redis, ok = runCheck(r.Context(), "redis", h.redis)
		healthy = healthy && ok
	}

	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	respondWithJSON(w, status, resp)
}
