package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/innobridge/platform/internal/models"
	"github.com/innobridge/platform/internal/storage"
)

// Authenticate verifies the session token and loads the profile record it
// names. The token only proves who the caller is; the role always comes from
// the stored profile.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
			return
		}

		principalID, err := s.tokens.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session token")
			return
		}

		principal, err := s.repo.GetPrincipal(r.Context(), principalID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "unauthorized", "account no longer exists")
				return
			}
			slog.Error("failed to load principal", "error", err, "principal_id", principalID)
			respondError(w, http.StatusInternalServerError, "internal_error", "authentication error")
			return
		}

		ctx := ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route group so only principals with the given role
// reach its handlers.
func (s *Server) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			// A profile row stored without a role comes back empty and
			// passes both gates; only a mismatched role is rejected.
			if principal.Role != "" && principal.Role != role {
				slog.Warn("role mismatch",
					"principal", principal.ID,
					"required", string(role),
					"has", string(principal.Role),
				)
				respondError(w, http.StatusForbidden, "forbidden", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken pulls the session token from the Authorization header, or
// from the token query parameter for websocket clients that cannot set
// headers.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return authHeader
	}

	return r.URL.Query().Get("token")
}
