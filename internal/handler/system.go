package handler

import (
	"net/http"

	"github.com/leap-ai/ozone/internal/store"
)

// System serves liveness and readiness probes.
type System struct {
	st *store.Store
}

func NewSystem(st *store.Store) *System {
	return &System{st: st}
}

// Healthz reports process liveness.
func (s *System) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness: the process is up and the database answers.
func (s *System) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.st.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
