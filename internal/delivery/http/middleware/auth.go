package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// SetClaims returns a context carrying the caller's claims. Used by auth middleware.
func SetClaims(ctx context.Context, claims domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the caller's claims, or guest claims when the request
// carried no session.
func ClaimsFromContext(ctx context.Context) domain.Claims {
	if c, ok := ctx.Value(claimsKey).(domain.Claims); ok {
		return c
	}
	return domain.GuestClaims()
}

// Authenticate resolves the Bearer token into claims stored in the request context.
// A request without an Authorization header proceeds as a guest. A malformed,
// invalid or expired token is answered with 401 and next is not called.
func Authenticate(verifier domain.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r.WithContext(SetClaims(r.Context(), domain.GuestClaims())))
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(SetClaims(r.Context(), claims)))
		})
	}
}
