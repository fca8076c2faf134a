package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// PromotionHandler exposes cohort management endpoints.
type PromotionHandler struct {
	promotions service.PromotionService
}

// NewPromotionHandler wires the promotion service into a handler.
func NewPromotionHandler(promotions service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

// List handles GET /promotions.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotions.List(r.Context())
	if err != nil {
		respondServiceError(w, "promotion.list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  promotions,
		"total": len(promotions),
	})
}

// Get handles GET /promotions/{id}.
func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "promotion.get", err)
		return
	}
	promotion, err := h.promotions.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, "promotion.get", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": promotion})
}

// Create handles POST /promotions.
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload service.PromotionCreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "promotion.create", err)
		return
	}
	promotion, err := h.promotions.Create(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "promotion.create", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": promotion})
}

// Update handles PUT /promotions/{id}.
func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "promotion.update", err)
		return
	}
	var payload service.PromotionUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "promotion.update", err)
		return
	}
	payload.ID = id
	promotion, err := h.promotions.Update(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "promotion.update", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": promotion})
}

// Delete handles DELETE /promotions/{id}.
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "promotion.delete", err)
		return
	}
	if err := h.promotions.Delete(r.Context(), id); err != nil {
		respondServiceError(w, "promotion.delete", err)
		return
	}
	respondMessage(w, "promotion deleted", nil)
}
