package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// UserHandler exposes account management endpoints.
type UserHandler struct {
	users    service.UserService
	sessions service.SessionService
}

// NewUserHandler wires the user service into a handler.
func NewUserHandler(users service.UserService, sessions service.SessionService) *UserHandler {
	return &UserHandler{users: users, sessions: sessions}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	result, err := h.users.Fetch(r.Context(), service.UserFetchInput{
		Query:           r.URL.Query().Get("q"),
		PromotionID:     queryInt64Ptr(r, "promotion_id"),
		Active:          queryBoolPtr(r, "active"),
		RadiusActivated: queryBoolPtr(r, "radius_activated"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		respondServiceError(w, "user.list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  result.Users,
		"total": result.Total,
	})
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "user.get", err)
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, "user.get", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload service.UserCreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "user.create", err)
		return
	}
	user, err := h.users.Create(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "user.create", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": user})
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "user.update", err)
		return
	}
	var payload service.UserUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "user.update", err)
		return
	}
	payload.ID = id
	user, err := h.users.Update(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "user.update", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "user.delete", err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		respondServiceError(w, "user.delete", err)
		return
	}
	respondMessage(w, "user deleted", nil)
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword handles POST /users/{id}/reset-password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "user.reset_password", err)
		return
	}
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "user.reset_password", err)
		return
	}
	if err := h.users.ResetPassword(r.Context(), id, payload.Password); err != nil {
		respondServiceError(w, "user.reset_password", err)
		return
	}
	respondMessage(w, "password reset", nil)
}

// ActivateRadius handles POST /users/{id}/activate-radius.
func (h *UserHandler) ActivateRadius(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "user.activate_radius", err)
		return
	}
	user, err := h.users.ActivateRadius(r.Context(), id)
	if err != nil {
		respondServiceError(w, "user.activate_radius", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}

// DeactivateRadius handles POST /users/{id}/deactivate-radius.
func (h *UserHandler) DeactivateRadius(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "user.deactivate_radius", err)
		return
	}
	user, err := h.users.DeactivateRadius(r.Context(), id)
	if err != nil {
		respondServiceError(w, "user.deactivate_radius", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}

// Sessions handles GET /users/{id}/sessions.
func (h *UserHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		respondError(w, http.StatusServiceUnavailable, "user.sessions", errServiceUnavailable)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "user.sessions", err)
		return
	}
	limit, offset := pagination(r)
	sessions, err := h.sessions.ListByUser(r.Context(), id, limit, offset)
	if err != nil {
		respondServiceError(w, "user.sessions", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": sessions})
}
