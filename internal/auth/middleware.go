package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type userKey struct{}

// RequireUser rejects requests without a valid bearer token and stores the
// token's subject on the request context.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, reason := bearerToken(r)
		if reason == "" {
			userID, err := s.ValidateToken(token)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
				return
			}
			reason = "invalid token"
		}
		slog.Debug("unauthenticated request", "path", r.URL.Path, "reason", reason)
		writeError(w, http.StatusUnauthorized, reason)
	})
}

// bearerToken extracts the token from an Authorization header. A non-empty
// reason means the header is absent or uses another scheme.
func bearerToken(r *http.Request) (token, reason string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", "expected a bearer token"
	}
	return strings.TrimSpace(token), ""
}

// WithUserID returns ctx carrying an authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserIDFromContext returns the id stored by WithUserID, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}
