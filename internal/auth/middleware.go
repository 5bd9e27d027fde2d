package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ledgerlane/ledgerlane/internal/platform/httpx"
)

type contextKey struct{}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok
}

// RequireAuth rejects requests that do not carry a valid bearer token.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}

		sess, err := s.Resolve(r.Context(), token)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
