package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// MonitoringHandler feeds the polling dashboard.
type MonitoringHandler struct {
	monitoring service.MonitoringService
}

// NewMonitoringHandler wires the monitoring service into a handler.
func NewMonitoringHandler(monitoring service.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{monitoring: monitoring}
}

// Metrics handles GET /monitoring/metrics.
func (h *MonitoringHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.monitoring == nil {
		respondError(w, http.StatusServiceUnavailable, "monitoring.metrics", errServiceUnavailable)
		return
	}
	metrics, err := h.monitoring.Metrics(r.Context())
	if err != nil {
		respondServiceError(w, "monitoring.metrics", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": metrics})
}

// History handles GET /monitoring/history. The minutes query parameter sets
// how far back the series goes; the default is one hour.
func (h *MonitoringHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.monitoring == nil {
		respondError(w, http.StatusServiceUnavailable, "monitoring.history", errServiceUnavailable)
		return
	}
	window := time.Hour
	if raw := r.URL.Query().Get("minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			respondError(w, http.StatusBadRequest, "monitoring.history", errInvalidMinutes)
			return
		}
		window = time.Duration(minutes) * time.Minute
	}
	samples, err := h.monitoring.History(r.Context(), window)
	if err != nil {
		respondServiceError(w, "monitoring.history", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  samples,
		"count": len(samples),
	})
}
