package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rogerio-castellano/school-inventory/internal/http/handlers"
	"github.com/rs/zerolog/log"
)

// RequestID tags each request with the caller's X-Request-Id or a fresh uuid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware accepts a valid bearer token that has not been revoked.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, "missing or invalid token", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(auth, "Bearer ")
		claims, err := handlers.Tokens().ParseToken(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		revoked, err := handlers.Revoker().Revoked(r.Context(), claims.ID)
		if err != nil {
			log.Error().Err(err).Msg("failed to check token revocation")
			http.Error(w, "could not verify token", http.StatusServiceUnavailable)
			return
		}
		if revoked {
			http.Error(w, "token revoked", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
	})
}

// RequireRole lets through only callers whose token carries one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := handlers.GetRoleFromContext(r)
			if err != nil {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
