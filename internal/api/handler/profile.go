package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// ProfileHandler exposes bandwidth/quota policy endpoints.
type ProfileHandler struct {
	profiles service.ProfileService
}

// NewProfileHandler wires the profile service into a handler.
func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// List handles GET /profiles.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		respondServiceError(w, "profile.list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  profiles,
		"total": len(profiles),
	})
}

// Get handles GET /profiles/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "profile.get", err)
		return
	}
	profile, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, "profile.get", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": profile})
}

// Create handles POST /profiles.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload service.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "profile.create", err)
		return
	}
	profile, err := h.profiles.Create(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "profile.create", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": profile})
}

// Update handles PUT /profiles/{id}.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "profile.update", err)
		return
	}
	var payload service.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "profile.update", err)
		return
	}
	profile, err := h.profiles.Update(r.Context(), id, payload)
	if err != nil {
		respondServiceError(w, "profile.update", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": profile})
}

// Delete handles DELETE /profiles/{id}.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "profile.delete", err)
		return
	}
	if err := h.profiles.Delete(r.Context(), id); err != nil {
		respondServiceError(w, "profile.delete", err)
		return
	}
	respondMessage(w, "profile deleted", nil)
}
