package middlewares

import (
	"net/http"

	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds JSON payloads; no endpoint accepts uploads
const DefaultMaxBodyBytes int64 = 1 << 20

// RequestSizeLimitMiddleware rejects bodies that declare more than limit bytes
// and caps the reader for bodies sent without a Content-Length.
func RequestSizeLimitMiddleware(limit int64, logger *zap.Logger) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				logger.Warn("request body too large",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("limit", limit),
				)
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
