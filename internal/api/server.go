// Package api exposes the service's HTTP surface: the service descriptor,
// metadata lookup, audio extraction, and a health probe.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ytaudio/ytaudio/internal/scratch"
)

// ServiceName identifies the service in the descriptor payload.
const ServiceName = "ytaudio"

// Server wires the extraction adapter and scratch manager into HTTP handlers.
type Server struct {
	logger    *zap.Logger
	extractor Extractor
	scratch   *scratch.Manager
	started   time.Time
	active    atomic.Int64
}

// NewServer returns a Server serving requests with the given collaborators.
func NewServer(extractor Extractor, scratchMgr *scratch.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:    logger,
		extractor: extractor,
		scratch:   scratchMgr,
		started:   time.Now(),
	}
}

// Routes builds the router. CORS headers are attached to every response,
// including 404s and 405s, and OPTIONS preflights are answered for any path.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.Methods(http.MethodGet, http.MethodOptions).Path("/").Handler(s.handle(s.handleIndex))
	r.Methods(http.MethodGet, http.MethodOptions).Path("/info").Handler(s.handle(s.handleInfo))
	r.Methods(http.MethodGet, http.MethodOptions).Path("/audio").Handler(s.handle(s.handleAudio))
	r.Methods(http.MethodGet, http.MethodOptions).Path("/health").Handler(s.handle(s.handleHealth))

	// Router middleware only wraps matched routes, so the fallback handlers
	// carry the CORS wrap themselves.
	r.NotFoundHandler = corsMiddleware(errorHandler(http.StatusNotFound, "Not Found"))
	r.MethodNotAllowedHandler = corsMiddleware(errorHandler(http.StatusMethodNotAllowed, "Method Not Allowed"))

	return r
}

// errorHandler answers every request with a fixed JSON detail body.
func errorHandler(code int, detail string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		replyJSON(w, &apiError{Code: code, Detail: detail}, code)
	})
}

// handle adapts an error-returning handler. The error is logged once here at
// the boundary and mapped to the caller-facing JSON body; anything that is
// not an *apiError becomes an opaque 500.
func (s *Server) handle(fn func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var apiErr *apiError
		if !errors.As(err, &apiErr) {
			apiErr = &apiError{Code: http.StatusInternalServerError, Detail: "internal server error"}
		}

		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", apiErr.Code),
			zap.Error(err),
		)
		if err := replyJSON(w, apiErr, apiErr.Code); err != nil {
			s.logger.Warn("writing error response", zap.Error(err))
		}
	})
}

// respond writes the success payload. A failed write means the client went
// away; the status is already on the wire and cannot be amended, so the
// failure is logged instead of returned.
func (s *Server) respond(w http.ResponseWriter, data any, code int) error {
	if err := replyJSON(w, data, code); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
	return nil
}

// replyJSON writes data as the JSON response body with the given status.
func replyJSON(w http.ResponseWriter, data any, code int) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
