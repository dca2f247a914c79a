package middleware

import (
	"net/http"

	"github.com/careertodo/platform/pkg/logger"

	"github.com/google/uuid"
)

// RequestID assigns every request a trace ID, honoring one supplied by
// the caller. Downstream middleware and handlers pick it up through the
// context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
