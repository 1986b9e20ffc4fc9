package sandbox

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sagarc03/sfs/filesystem"
)

// Realm is sent in the WWW-Authenticate challenge.
const Realm = "sfs"

// Authenticator verifies a username and password.
type Authenticator interface {
	Verify(username, password string) error
}

// BasicAuthMiddleware enforces HTTP basic authentication.
// Pass nil to disable authentication (public access).
func BasicAuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	if auth == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`"`)
				HandleError(w, fmt.Errorf("%w: missing credentials", ErrUnauthorized))
				return
			}

			if err := auth.Verify(user, password); err != nil {
				slog.Debug("authentication failed", "user", user, "err", err)
				w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`"`)
				HandleError(w, fmt.Errorf("%w: %w", ErrUnauthorized, err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SegmentValidationMiddleware rejects org and context segments that cannot
// be stored.
func SegmentValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, key := range []string{"org", "context"} {
			if !filesystem.IsValidName(chi.URLParam(r, key)) {
				WriteError(w, http.StatusBadRequest, "invalid_name", "Invalid "+key)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs every request at debug level once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
