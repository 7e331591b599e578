package rest

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy HealthStatus = "healthy"
	HealthEmpty   HealthStatus = "empty"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// StoreStats is what health needs from the object store.
type StoreStats interface {
	IsEmpty() bool
	Sizes() map[string]int
}

type HealthHandler struct {
	store StoreStats
}

func NewHealthHandler(store StoreStats) *HealthHandler {
	return &HealthHandler{store: store}
}

// pingHandler says the process is up.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// healthCheckHandler reports collection sizes. An empty store is still
// healthy from the outside; it only means first-run setup has not happened.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sizes := h.store.Sizes()

	details := make(map[string]any, len(sizes))
	for name, n := range sizes {
		details[name] = n
	}

	entry := CheckEntry{
		Status:     HealthHealthy,
		Details:    details,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if h.store.IsEmpty() {
		entry.Status = HealthEmpty
		entry.Message = "no data yet"
	}

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{"database": entry},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
