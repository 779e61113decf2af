package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ejci/tado-data-capture/internal/poller"
)

// AuthStatus reports whether a vendor session is held
type AuthStatus interface {
	IsAuthenticated() bool
}

// PollerState exposes a read-only snapshot of the poll loop
type PollerState interface {
	State() poller.State
}

// SinkHealth probes the metric sink
type SinkHealth interface {
	CheckHealth(ctx context.Context) bool
}

// HealthHandler serves the service status snapshot
type HealthHandler struct {
	session AuthStatus
	poller  PollerState
	sink    SinkHealth
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(session AuthStatus, pollerState PollerState, sink SinkHealth) *HealthHandler {
	return &HealthHandler{
		session: session,
		poller:  pollerState,
		sink:    sink,
	}
}

// GetHealth returns the health status of the service
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	state := h.poller.State()

	var lastUpdate interface{}
	if state.LastUpdate != nil {
		lastUpdate = state.LastUpdate.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "UP",
		"authenticated":   h.session.IsAuthenticated(),
		"influxConnected": h.sink.CheckHealth(c.Request.Context()),
		"lastUpdate":      lastUpdate,
		"apiCalls24h":     state.APICalls,
		"intervals":       state.Intervals,
		"lastRun":         state.LastRun,
	})
}
