package httpapi

import (
	"context"
	"net/http"

	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
)

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Preferences(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, p)
}

func (s *Server) putPreferences(w http.ResponseWriter, r *http.Request) {
	var p prefs.Preferences
	if err := decode(r, &p); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := s.store.SetPreferences(r.Context(), p); err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, p)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports readiness. Backends with external connections expose a Ready
// method; everything else is ready once constructed.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if probe, ok := s.store.(interface{ Ready(context.Context) error }); ok {
		if err := probe.Ready(r.Context()); err != nil {
			s.log.Warn("readiness probe failed", "error", err)
			toJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	toJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
