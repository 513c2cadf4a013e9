// Package auth guards the synthesis endpoint with a static bearer secret.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/ttsbridge/internal/apperr"
)

// Readiness is satisfied by anything that can report missing settings,
// such as a delivery strategy.
type Readiness interface {
	Ready() error
}

type Middleware struct {
	secret string
	deps   []Readiness
	logger *slog.Logger
}

func NewMiddleware(secret string, logger *slog.Logger, deps ...Readiness) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{secret: secret, deps: deps, logger: logger}
}

// RequireConfigured answers 500 while the secret or any dependency is
// missing. It is evaluated on every request and never caches the outcome.
func (m *Middleware) RequireConfigured(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.configured(); err != nil {
			e := apperr.New(apperr.KindConfiguration, "server misconfiguration: "+err.Error(), err)
			m.logger.Error("rejecting request", "path", r.URL.Path, "error", e)
			writeError(w, e.Status(), e.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) configured() error {
	var errs []error
	if m.secret == "" {
		errs = append(errs, errors.New("API secret is not set"))
	}
	for _, d := range m.deps {
		if d == nil {
			continue
		}
		if err := d.Ready(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Authenticate requires "Authorization: Bearer <secret>".
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if m.secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(m.secret)) != 1 {
			e := apperr.New(apperr.KindAuthorization, "Unauthorized", nil)
			m.logger.Warn("unauthorized request", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeError(w, e.Status(), e.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
