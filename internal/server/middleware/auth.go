package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/leap-ai/ozone/internal/service"
)

type contextKeyAuth string

const (
	// KeyPrincipalKey is the context key for the API-key principal on
	// gateway requests.
	KeyPrincipalKey contextKeyAuth = "key_principal"
	// SessionPrincipalKey is the context key for the dashboard session
	// principal.
	SessionPrincipalKey contextKeyAuth = "session_principal"
)

// APIKeyHeader is the well-known header external callers present their
// key in.
const APIKeyHeader = "x-api-key"

// APIKeyAuth returns a middleware that authenticates gateway requests via
// the x-api-key header. A missing, unknown, revoked, or expired key ends
// the request with a 401 JSON error; on success the resolved principal is
// attached to the request context.
func APIKeyAuth(keys *service.KeyService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawKey := r.Header.Get(APIKeyHeader)
			if rawKey == "" {
				writeAuthError(w, http.StatusUnauthorized, "API key required")
				return
			}

			principal, err := keys.Authenticate(r.Context(), rawKey)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), KeyPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// KeyPrincipal extracts the API-key principal from the context. Returns
// nil on unauthenticated requests.
func KeyPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(KeyPrincipalKey).(*service.Principal); ok {
		return p
	}
	return nil
}

// SessionAuth returns a middleware that authenticates dashboard requests
// via an Authorization: Bearer JWT issued at login.
func SessionAuth(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			principal, err := authSvc.ValidateJWT(r.Context(), token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), SessionPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Session extracts the dashboard session principal from the context.
// Returns nil on unauthenticated requests.
func Session(ctx context.Context) *service.SessionPrincipal {
	if p, ok := ctx.Value(SessionPrincipalKey).(*service.SessionPrincipal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid an import cycle with handler.
	w.Write([]byte(`{"error":"` + message + `"}`))
}
