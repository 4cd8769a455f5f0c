// Package health provides health and readiness check functionality for
// container HEALTHCHECK and orchestrator probes.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Status represents the overall health/readiness status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// HealthResponse represents the liveness check response.
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Ready     bool      `json:"ready"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Manager manages health and readiness state.
type Manager struct {
	version string
	ready   atomic.Bool
}

// NewManager creates a new health check manager.
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// SetReady marks the service as ready to serve traffic.
func (m *Manager) SetReady(ready bool) {
	m.ready.Store(ready)
}

// ServeHealth handles the liveness probe. A live process is always healthy.
func (m *Manager) ServeHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// ServeReady handles the readiness probe. Returns 503 until SetReady(true).
func (m *Manager) ServeReady(w http.ResponseWriter, _ *http.Request) {
	ready := m.ready.Load()
	resp := ReadinessResponse{
		Ready:     ready,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}
	code := http.StatusOK
	if !ready {
		resp.Status = StatusUnhealthy
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
