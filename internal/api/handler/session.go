package handler

import (
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/api/requestctx"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// SessionHandler exposes live session endpoints.
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler wires the session service into a handler.
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// ListActive handles GET /sessions.
func (h *SessionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	result, err := h.sessions.ListActive(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, "session.list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  result.Sessions,
		"total": result.Total,
	})
}

// Disconnect handles POST /sessions/{id}/disconnect.
func (h *SessionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "session.disconnect", err)
		return
	}
	actor := requestctx.AdminFromContext(r.Context()).Username
	if err := h.sessions.Disconnect(r.Context(), id, actor); err != nil {
		respondServiceError(w, "session.disconnect", err)
		return
	}
	respondMessage(w, "session disconnected", nil)
}
