package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/metric"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/pkg/logger"
)

// AuthMiddleware attaches the shopper's session to the request context.
// Requests without a token are sent to the login page.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromRequest(r)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:    "please log in to continue",
				Code:     "unauthorized",
				Redirect: loginRedirect,
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

// OptionalAuthMiddleware attaches a session when the request carries one.
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, err := session.FromRequest(r); err == nil {
			r = r.WithContext(session.WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request and records its latency.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metric.ObserveRequest(time.Since(start), status)
			logger.For(r.Context(), log).Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func sessionFrom(r *http.Request) *session.Session {
	return session.FromContext(r.Context())
}
