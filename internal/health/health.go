// Package health serves the liveness and readiness probes for the interview
// server.
//
//   - GET /healthz reports liveness; a process that can answer HTTP is alive.
//   - GET /readyz runs every registered [Checker] and fails with 503 when any
//     dependency is unhealthy.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// probeTimeout bounds a single readiness check.
const probeTimeout = 5 * time.Second

// Checker probes one dependency of the server. Check returns nil when the
// dependency is healthy; it must respect context cancellation.
type Checker struct {
	// Name keys the check in the /readyz response body
	// (e.g. "tts_catalogue").
	Name string

	Check func(ctx context.Context) error
}

// checkResult is the per-dependency entry in the readiness response.
type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// response is the JSON body shared by both probes.
type response struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks,omitempty"`
}

// Handler answers the probe endpoints. The checker list is fixed at
// construction time, so the handler is safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New creates a [Handler] evaluating the given checkers, in order, on every
// readiness request.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Register adds the probe routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz always answers 200.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// Readyz answers 200 when every checker passes and 503 otherwise, with a
// per-check breakdown in the body.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	body := response{
		Status: "ok",
		Checks: make(map[string]checkResult, len(h.checkers)),
	}
	code := http.StatusOK

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			body.Checks[c.Name] = checkResult{Status: "fail", Error: err.Error()}
			body.Status = "fail"
			code = http.StatusServiceUnavailable
			continue
		}
		body.Checks[c.Name] = checkResult{Status: "ok"}
	}

	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
