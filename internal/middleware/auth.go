package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"nodereg/internal/auth"
	"nodereg/internal/logging"
)

type contextKey string

const usernameKey contextKey = "username"

// TokenVerifier validates session tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// FailureRecorder counts rejected requests
type FailureRecorder interface {
	RecordAuthFailure()
}

// Authenticator rejects requests without a valid session token.
// Paths in the skip set are passed through untouched.
type Authenticator struct {
	verifier  TokenVerifier
	header    string
	skipPaths map[string]bool
	logger    logrus.FieldLogger
	recorder  FailureRecorder
}

// NewAuthenticator creates the authentication filter. The token is read
// from header.
func NewAuthenticator(verifier TokenVerifier, header string, skipPaths []string, logger logrus.FieldLogger) *Authenticator {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &Authenticator{
		verifier:  verifier,
		header:    header,
		skipPaths: skip,
		logger:    logger,
	}
}

// SetRecorder sets the rejection counter
func (a *Authenticator) SetRecorder(r FailureRecorder) {
	a.recorder = r
}

// Handler returns the middleware handler
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(a.header))
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := a.verifier.Verify(token)
		if err != nil {
			logging.FromContext(r.Context(), a.logger).WithError(err).WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Debug("Authentication failed")
			if a.recorder != nil {
				a.recorder.RecordAuthFailure()
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Username returns the authenticated username, or "" for unauthenticated requests
func Username(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey).(string); ok {
		return v
	}
	return ""
}
