package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/logging"
)

// TokenVerifier resolves a bearer token to the user it identifies.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type viewerKey struct{}

// WithViewerID stores the authenticated user's identifier on the context.
func WithViewerID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, viewerKey{}, userID)
}

// ViewerID returns the authenticated user's identifier, or empty when the
// request is anonymous.
func ViewerID(ctx context.Context) string {
	if id, ok := ctx.Value(viewerKey{}).(string); ok {
		return id
	}
	return ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved viewer identity on the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, true)
}

// OptionalAuth resolves a bearer token when one is presented but lets
// anonymous requests through untouched. A malformed or expired token is still
// rejected so callers never mistake a failed login for anonymity.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, false)
}

func authenticate(verifier TokenVerifier, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if required {
					unauthorized(w, "missing bearer token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rejected bearer token", "error", err)
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewerID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
