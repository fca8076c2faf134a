package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/api/requestctx"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// DisconnectionHandler exposes the cut-off history endpoints.
type DisconnectionHandler struct {
	disconnections service.DisconnectionService
}

// NewDisconnectionHandler wires the disconnection service into a handler.
func NewDisconnectionHandler(disconnections service.DisconnectionService) *DisconnectionHandler {
	return &DisconnectionHandler{disconnections: disconnections}
}

// List handles GET /disconnection-logs.
func (h *DisconnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	input := service.DisconnectionFetchInput{
		UserID: queryInt64Ptr(r, "user_id"),
		Reason: r.URL.Query().Get("reason"),
		Limit:  limit,
		Offset: offset,
	}
	if active := queryBoolPtr(r, "active"); active != nil && *active {
		input.ActiveOnly = true
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			input.Since = v
		}
	}
	result, err := h.disconnections.Fetch(r.Context(), input)
	if err != nil {
		respondServiceError(w, "disconnection.list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  result.Logs,
		"total": result.Total,
	})
}

// Stats handles GET /disconnection-logs/stats. The window query parameter is
// a Go duration string; empty means all time.
func (h *DisconnectionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var window time.Duration
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "disconnection.stats", err)
			return
		}
		window = parsed
	}
	stats, err := h.disconnections.Stats(r.Context(), window)
	if err != nil {
		respondServiceError(w, "disconnection.stats", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": stats})
}

// Reactivate handles POST /disconnection-logs/{id}/reactivate.
func (h *DisconnectionHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "disconnection.reactivate", err)
		return
	}
	actor := requestctx.AdminFromContext(r.Context()).Username
	log, err := h.disconnections.Reactivate(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, "disconnection.reactivate", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": log})
}
