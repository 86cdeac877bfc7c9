package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/loophq/go-chat-server/identity"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified credential claims
	ContextKeyClaims ContextKey = "claims"
)

// ClaimsFromContext returns the verified claims injected by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*identity.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*identity.Claims)
	return claims, ok
}

// RequireAuth is middleware that validates a Bearer token in the
// Authorization header with the same verifier the websocket handshake uses,
// and injects the claims into the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				http.Error(w, `{"success":false,"message":"missing or invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := s.verifier.Verify(r.Context(), rawToken)
			if err != nil || claims.UserID == "" || claims.TenantID == "" {
				http.Error(w, `{"success":false,"message":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header. Returns false when the header is absent or not bearer-shaped.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
