package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthChecks reports the liveness of each backing dependency.
type HealthChecks struct {
	TokenStore func(ctx context.Context) error
	GraphDB    func(ctx context.Context) bool
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	checks HealthChecks
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checks HealthChecks, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

type healthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Timestamp time.Time       `json:"timestamp"`
	Checks    map[string]bool `json:"checks"`
}

// Health handles GET /health. Degraded dependencies turn the status to
// unhealthy with a 503 so load balancers stop routing here.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	storeOK := h.checks.TokenStore(ctx) == nil
	graphOK := h.checks.GraphDB(ctx)

	resp := healthResponse{
		Status:    "healthy",
		Service:   "embedgraph-backend",
		Timestamp: time.Now().UTC(),
		Checks: map[string]bool{
			"tokenStore": storeOK,
			"graphdb":    graphOK,
		},
	}

	status := http.StatusOK
	if !storeOK || !graphOK {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
		h.logger.Warn("health check failed",
			zap.Bool("tokenStore", storeOK),
			zap.Bool("graphdb", graphOK),
		)
	}

	// Small fixed payload; the uniform API envelope is for /api routes only.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
