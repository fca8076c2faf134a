package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Valerdy/captive-portal-sub000/internal/api/requestctx"
	"github.com/Valerdy/captive-portal-sub000/internal/auth/token"
)

// AdminGuard ensures requests carry a valid admin access token.
func AdminGuard(tokens *token.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				writeUnauthorized(w, "auth unavailable")
				return
			}
			bearer := extractBearer(r.Header.Get("Authorization"))
			if bearer == "" {
				writeUnauthorized(w, "missing authorization header")
				return
			}
			claims, err := tokens.Parse(bearer)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}
			if claims.TokenType != "access" {
				writeUnauthorized(w, "access token required")
				return
			}
			id, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				writeUnauthorized(w, "invalid token subject")
				return
			}
			username, _ := claims.Attributes["username"].(string)
			ctx := requestctx.WithAdminClaims(r.Context(), requestctx.AdminClaims{ID: id, Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountingGuard protects the NAS accounting webhook with a shared token.
func AccountingGuard(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				writeUnauthorized(w, "accounting ingest disabled")
				return
			}
			bearer := extractBearer(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare([]byte(bearer), []byte(expected)) != 1 {
				writeUnauthorized(w, "invalid accounting token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return trimmed
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
