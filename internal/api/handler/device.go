package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// DeviceHandler exposes device management endpoints.
type DeviceHandler struct {
	devices service.DeviceService
}

// NewDeviceHandler wires the device service into a handler.
func NewDeviceHandler(devices service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// List handles GET /devices.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	result, err := h.devices.Fetch(r.Context(), service.DeviceFetchInput{
		UserID: queryInt64Ptr(r, "user_id"),
		Query:  r.URL.Query().Get("q"),
		Active: queryBoolPtr(r, "active"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondServiceError(w, "device.list", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  result.Devices,
		"total": result.Total,
	})
}

// Get handles GET /devices/{id}.
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "device.get", err)
		return
	}
	device, err := h.devices.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, "device.get", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": device})
}

// Create handles POST /devices.
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload service.DeviceCreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "device.create", err)
		return
	}
	device, err := h.devices.Create(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "device.create", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": device})
}

// Update handles PUT /devices/{id}.
func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "device.update", err)
		return
	}
	var payload service.DeviceUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "device.update", err)
		return
	}
	payload.ID = id
	device, err := h.devices.Update(r.Context(), payload)
	if err != nil {
		respondServiceError(w, "device.update", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": device})
}

// Delete handles DELETE /devices/{id}.
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "device.delete", err)
		return
	}
	if err := h.devices.Delete(r.Context(), id); err != nil {
		respondServiceError(w, "device.delete", err)
		return
	}
	respondMessage(w, "device deleted", nil)
}

type deviceToggleRequest struct {
	Active bool `json:"active"`
}

// Toggle handles POST /devices/{id}/toggle.
func (h *DeviceHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "device.toggle", err)
		return
	}
	var payload deviceToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "device.toggle", err)
		return
	}
	device, err := h.devices.Toggle(r.Context(), id, payload.Active)
	if err != nil {
		respondServiceError(w, "device.toggle", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": device})
}
