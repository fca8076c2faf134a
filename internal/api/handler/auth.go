package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/api/middleware"
	"github.com/Valerdy/captive-portal-sub000/internal/api/requestctx"
	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// AuthHandler exposes the console authentication endpoints.
type AuthHandler struct {
	auth service.AuthService
}

// NewAuthHandler wires the auth service into a handler.
func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		respondError(w, http.StatusServiceUnavailable, "auth.login", errServiceUnavailable)
		return
	}
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "auth.login", err)
		return
	}
	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username:  payload.Username,
		Password:  payload.Password,
		IP:        middleware.ClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
	if err != nil {
		respondServiceError(w, "auth.login", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		respondError(w, http.StatusServiceUnavailable, "auth.refresh", errServiceUnavailable)
		return
	}
	var payload refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "auth.refresh", err)
		return
	}
	result, err := h.auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		respondServiceError(w, "auth.refresh", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		respondError(w, http.StatusServiceUnavailable, "auth.me", errServiceUnavailable)
		return
	}
	claims := requestctx.AdminFromContext(r.Context())
	if claims.ID == 0 {
		respondServiceError(w, "auth.me", service.ErrUnauthorized)
		return
	}
	user, err := h.auth.Me(r.Context(), claims.ID)
	if err != nil {
		respondServiceError(w, "auth.me", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}
