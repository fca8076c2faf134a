// Package handler implements the HTTP endpoints of the admin console API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// Helper to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, action string, err error) {
	respondJSON(w, status, map[string]any{
		"error":  err.Error(),
		"action": action,
	})
}

func respondMessage(w http.ResponseWriter, message string, data any) {
	resp := map[string]any{
		"message": message,
	}
	if data != nil {
		resp["data"] = data
	}
	respondJSON(w, http.StatusOK, resp)
}

// respondServiceError maps service sentinels to HTTP status codes so every
// handler reports the same way.
func respondServiceError(w http.ResponseWriter, action string, err error) {
	respondError(w, statusForError(err), action, err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrUserBlocked):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrProfileInUse),
		errors.Is(err, service.ErrPromotionInUse),
		errors.Is(err, service.ErrAlreadyReactivated):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidMAC),
		errors.Is(err, service.ErrInvalidListType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
