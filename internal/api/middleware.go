package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rshade/energyscope/internal/engine"
	"github.com/rshade/energyscope/internal/logging"
)

// TraceHeader carries the request trace ID in both directions.
const TraceHeader = "X-Trace-ID"

// TraceMiddleware gives every request a trace ID, taken from TraceHeader when the
// client sent one, and a request-scoped logger carrying it.
func TraceMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = logging.GenerateTraceID()
			}

			ctx := logging.ContextWithTraceID(r.Context(), traceID)
			ctx = logger.WithContext(ctx)

			w.Header().Set(TraceHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireLoaded answers 503 until the engine has a dataset.
func (s *Server) requireLoaded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.engine.Loaded() {
			writeError(w, http.StatusServiceUnavailable, engine.ErrNotLoaded)
			return
		}
		next.ServeHTTP(w, r)
	})
}
