package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/VoidMesh/noisemap/internal/logging"
)

func SetupMiddleware(timeout time.Duration) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// Request ID for tracing
		middleware.RequestID,

		// Structured request logging
		RequestLogger,

		// Recovery middleware
		middleware.Recoverer,

		// CORS middleware for public API
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{SeedHeader, "Content-Length"},
			AllowCredentials: false,
			MaxAge:           300,
		}),

		// JSON unless a handler says otherwise
		middleware.SetHeader("Content-Type", "application/json"),

		// Timeout middleware
		middleware.Timeout(timeout),
	}
}

// RenderLimitMiddleware bounds concurrent renders. Requests beyond the limit
// queue in a backlog of the same size and fail with 429 once that is full.
func RenderLimitMiddleware(limit int, backlogTimeout time.Duration) func(http.Handler) http.Handler {
	return middleware.ThrottleBacklog(limit, limit, backlogTimeout)
}

// RequestLogger logs one line per request through the global logger.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			logging.WithFields(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
			).Debug("Request served", "duration", time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}
