package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

type ownerKey struct{}

// WithOwner returns a copy of ctx carrying the authenticated profile.
func WithOwner(ctx context.Context, p *model.Profile) context.Context {
	return context.WithValue(ctx, ownerKey{}, p)
}

// OwnerFromContext returns the profile resolved by the identity middleware.
func OwnerFromContext(ctx context.Context) (*model.Profile, bool) {
	p, ok := ctx.Value(ownerKey{}).(*model.Profile)
	return p, ok && p != nil
}

// OwnerResolver maps an authenticated email to a profile.
type OwnerResolver interface {
	Resolve(ctx context.Context, email string) (*model.Profile, error)
}

// ApplyMiddleware wraps next with identity resolution, panic recovery, and
// request logging. Recovery sits inside logging so panics are logged with a
// 500 status.
func ApplyMiddleware(next http.Handler, logger *slog.Logger, resolver OwnerResolver, identityHeader string) http.Handler {
	wrapped := identityMiddleware(resolver, identityHeader, logger, next)
	wrapped = recoveryMiddleware(logger, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)
	return wrapped
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// identityMiddleware resolves the email in the trusted identity header set by
// the upstream auth proxy. Requests without a resolvable identity pass through
// anonymously; handlers that need an owner reject them.
func identityMiddleware(resolver OwnerResolver, header string, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get(header)
		if email == "" {
			next.ServeHTTP(w, r)
			return
		}

		profile, err := resolver.Resolve(r.Context(), email)
		if errors.Is(err, application.ErrNotAuthenticated) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			logger.Error("identity resolution failed", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), profile)))
	})
}
