package api

import (
	"net/http"
	"time"

	"github.com/marmos91/stackhaus/internal/allocservice/store"
	"github.com/marmos91/stackhaus/internal/cli/health"
)

// healthHandler serves the allocation daemon's liveness and readiness
// probes.
type healthHandler struct {
	store     *store.Store
	startTime time.Time
}

func newHealthHandler(st *store.Store) *healthHandler {
	return &healthHandler{store: st, startTime: time.Now()}
}

// liveness handles GET /healthz: always 200 while the process is up.
func (h *healthHandler) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSONOK(w, h.response("ok", ""))
}

// readiness handles GET /healthz/ready: 503 if the database connection
// fails a ping.
func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.store.DB().DB()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, h.response("unhealthy", err.Error()))
		return
	}
	if err := sqlDB.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, h.response("unhealthy", err.Error()))
		return
	}
	writeJSONOK(w, h.response("ok", ""))
}

func (h *healthHandler) response(status, errMsg string) health.Response {
	uptime := time.Since(h.startTime)
	resp := health.Response{Status: status, Timestamp: time.Now().UTC().Format(time.RFC3339), Error: errMsg}
	resp.Data.Service = "stackhaus-allocd"
	resp.Data.StartedAt = h.startTime.UTC().Format(time.RFC3339)
	resp.Data.Uptime = uptime.Round(time.Second).String()
	resp.Data.UptimeSec = int64(uptime.Seconds())
	return resp
}
