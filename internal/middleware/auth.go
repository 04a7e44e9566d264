package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"diagnoease-backend/internal/auth"
	"diagnoease-backend/internal/transport"
)

type claimsKey struct{}

// RoleLookup resolves the stored role for an authenticated email. An empty
// role means the user record does not exist.
type RoleLookup interface {
	RoleByEmail(ctx context.Context, email string) (string, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// attaches the decoded claims to the request context. Every failure mode
// (missing header, malformed header, bad signature, expired token) is a 401.
func Authenticate(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "auth not configured", nil)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized access", nil)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized access", nil)
				return
			}

			claims, err := manager.Parse(parts[1])
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized access", nil)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin runs after Authenticate and denies with 403 unless the stored
// role for the token's email is admin. One store read per request.
func RequireAdmin(roles RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized access", nil)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			role, err := roles.RoleByEmail(ctx, claims.Email)
			if err != nil {
				transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
				return
			}
			if role != "admin" {
				transport.WriteError(w, http.StatusForbidden, "forbidden access", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrAdmin allows the request when the named URL parameter matches
// the token's email, and otherwise falls back to the admin role check.
func RequireSelfOrAdmin(param string, roles RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized access", nil)
				return
			}

			if chi.URLParam(r, param) == claims.Email {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			role, err := roles.RoleByEmail(ctx, claims.Email)
			if err != nil {
				transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
				return
			}
			if role != "admin" {
				transport.WriteError(w, http.StatusForbidden, "forbidden access", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if v := ctx.Value(claimsKey{}); v != nil {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
