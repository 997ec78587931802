// Package api serves the engine's views over HTTP as JSON.
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rshade/energyscope/internal/engine"
	"github.com/rshade/energyscope/internal/logging"
)

// Options configures the middleware stack around the router.
type Options struct {
	// AccessLog receives Apache-style access lines. Nil disables access logging.
	AccessLog io.Writer

	// AllowedOrigins lists the origins allowed by CORS. Empty disables CORS headers.
	AllowedOrigins []string
}

// Server holds what the handlers need.
type Server struct {
	engine *engine.Engine
	logger zerolog.Logger
}

// NewRouter registers every route on a fresh mux.Router.
func NewRouter(eng *engine.Engine, logger zerolog.Logger) *mux.Router {
	s := &Server{engine: eng, logger: logging.ComponentLogger(logger, "api")}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(s.requireLoaded)
	v1.HandleFunc("/years", s.years).Methods(http.MethodGet)
	v1.HandleFunc("/energy-types", s.energyTypes).Methods(http.MethodGet)
	v1.HandleFunc("/stack/{year:-?[0-9]+}", s.stack).Methods(http.MethodGet)
	v1.HandleFunc("/average", s.average).Methods(http.MethodGet)
	v1.HandleFunc("/series", s.series).Methods(http.MethodGet)
	v1.HandleFunc("/consumption", s.consumption).Methods(http.MethodGet)
	v1.HandleFunc("/selection", s.putSelection).Methods(http.MethodPut)
	v1.HandleFunc("/map", s.mapData).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no route for %s", req.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", req.Method))
	})

	return r
}

// NewHandler wraps the router with tracing, panic recovery, CORS and access logging.
func NewHandler(eng *engine.Engine, logger zerolog.Logger, opts Options) http.Handler {
	var h http.Handler = NewRouter(eng, logger)

	if len(opts.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(opts.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", TraceHeader}),
			handlers.ExposedHeaders([]string{TraceHeader}),
		)(h)
	}

	h = recoveryHandlerFor(logger)(h)

	if opts.AccessLog != nil {
		h = handlers.LoggingHandler(opts.AccessLog, h)
	}

	return TraceMiddleware(logger)(h)
}

// recoveryHandlerFor turns handler panics into 500 responses logged through logger.
func recoveryHandlerFor(logger zerolog.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logging.ComponentLogger(logger, "api")}),
	)
}

// recoveryLogger adapts zerolog to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Str("operation", "recover").Msg(fmt.Sprint(v...))
}
