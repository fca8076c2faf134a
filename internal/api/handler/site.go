package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// SiteHandler exposes the blacklist and whitelist endpoints.
type SiteHandler struct {
	sites service.SiteService
}

// NewSiteHandler wires the site service into a handler.
func NewSiteHandler(sites service.SiteService) *SiteHandler {
	return &SiteHandler{sites: sites}
}

// List handles GET /sites.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	result, err := h.sites.Fetch(r.Context(), service.SiteFetchInput{
		ListType: r.URL.Query().Get("list_type"),
		Query:    r.URL.Query().Get("q"),
		Active:   queryBoolPtr(r, "active"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondServiceError(w, "site.list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  result.Sites,
		"total": result.Total,
	})
}

// Get handles GET /sites/{id}.
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "site.get", err)
		return
	}
	site, err := h.sites.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, "site.get", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": site})
}

// Create handles POST /sites.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload service.SiteCreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "site.create", err)
		return
	}
	site, err := h.sites.Create(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "site.create", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": site})
}

// Update handles PUT /sites/{id}.
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "site.update", err)
		return
	}
	var payload service.SiteUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "site.update", err)
		return
	}
	payload.ID = id
	site, err := h.sites.Update(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "site.update", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": site})
}

// Delete handles DELETE /sites/{id}.
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "site.delete", err)
		return
	}
	if err := h.sites.Delete(r.Context(), id); err != nil {
		respondServiceError(w, "site.delete", err)
		return
	}
	respondMessage(w, "site deleted", nil)
}

type siteToggleRequest struct {
	Active bool `json:"active"`
}

// Toggle handles POST /sites/{id}/toggle.
func (h *SiteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "site.toggle", err)
		return
	}
	var payload siteToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "site.toggle", err)
		return
	}
	site, err := h.sites.Toggle(r.Context(), id, payload.Active)
	if err != nil {
		respondServiceError(w, "site.toggle", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": site})
}

type siteImportRequest struct {
	Entries []service.SiteCreateInput `json:"entries"`
}

// Import handles POST /sites/import.
func (h *SiteHandler) Import(w http.ResponseWriter, r *http.Request) {
	var payload siteImportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "site.import", err)
		return
	}
	result, err := h.sites.Import(r.Context(), payload.Entries)
	if err != nil {
		respondServiceError(w, "site.import", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}
