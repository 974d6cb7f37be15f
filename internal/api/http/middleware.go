package http

import (
	"context"
	"net/http"
	"strings"

	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "user_claims"

// ClaimsFromContext returns the authenticated caller's claims, if any.
func ClaimsFromContext(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.UserClaims)
	return claims, ok
}

// Authenticate validates the Bearer access token and stores its claims
// on the request context.
func Authenticate(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required.")
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authorization header must be a Bearer token.")
				return
			}

			claims, err := tokens.ValidateTyped(raw, security.TokenTypeAccess)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers that do not hold the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required.")
				return
			}
			for _, held := range claims.Roles {
				if held == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.Warn("Role check failed", "user_id", claims.UserID, "required_role", role)
			writeError(w, http.StatusForbidden, "You do not have permission to perform this action.")
		})
	}
}

// RequestLogging logs each request at debug level.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
