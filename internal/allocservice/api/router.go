// Package api exposes the allocation service's seven RPC methods over a
// chi-routed REST surface, following standard control-plane API
// conventions (RFC 7807 problem responses, request-ID middleware,
// panic recovery).
package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/stackhaus/internal/allocservice/store"
	"github.com/marmos91/stackhaus/internal/logger"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// NewRouter wires the allocation service's REST surface:
//
//	POST   /v1/stacks/next_id
//	PUT    /v1/stacks/{stack_id}/source
//	DELETE /v1/stacks/{stack_id}/source
//	GET    /v1/stacks/{stack_id}/source
//	GET    /v1/stacks/{stack_id}/preloads
//	POST   /v1/stacks/{stack_id}/preloads
//	DELETE /v1/stacks/{stack_id}/preloads
//	PATCH  /v1/preloads/{assignment_id}/state
//	GET    /healthz
//	GET    /healthz/ready
func NewRouter(st *store.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	hh := newHealthHandler(st)
	r.Get("/healthz", hh.liveness)
	r.Get("/healthz/ready", hh.readiness)

	h := &handler{store: st}

	r.Route("/v1/stacks", func(r chi.Router) {
		r.Post("/next_id", h.nextStackID)

		r.Route("/{stack_id}", func(r chi.Router) {
			r.Put("/source", h.registerSource)
			r.Delete("/source", h.deregisterSource)
			r.Get("/source", h.querySource)
			r.Get("/preloads", h.locateStack)
			r.Post("/preloads", h.preLoad)
			r.Delete("/preloads", h.unPreLoad)
		})
	})

	r.Route("/v1/preloads/{assignment_id}", func(r chi.Router) {
		r.Patch("/state", h.updateAssignmentState)
	})

	return r
}

// requestLogger attaches a logger.LogContext to the request so handlers
// further down the chain can pull it via logger.FromContext, and emits
// one DebugCtx line per request carrying operation, duration, and
// request ID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lc := logger.NewLogContext(clientIP(r)).
			WithOperation(r.Method + " " + r.URL.Path).
			WithRequestID(middleware.GetReqID(r.Context()))
		ctx := logger.WithContext(r.Context(), lc)

		next.ServeHTTP(w, r.WithContext(ctx))

		logger.DebugCtx(ctx, "allocservice request", logger.DurationMs(lc.DurationMs()))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseStackID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "stack_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, stackerr.Wrap(stackerr.InvalidArgument, err, "parse stack_id path parameter")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeJSONOK(w http.ResponseWriter, data any) { writeJSON(w, http.StatusOK, data) }

// writeProblem writes an RFC 7807 problem response whose status is
// derived from err's stackerr.Kind.
func writeProblem(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch stackerr.KindOf(err) {
	case stackerr.InvalidArgument:
		status = http.StatusBadRequest
	case stackerr.ConfigError:
		status = http.StatusBadRequest
	case stackerr.ControllerError:
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "about:blank",
		"title":  http.StatusText(status),
		"status": status,
		"detail": err.Error(),
	})
}
