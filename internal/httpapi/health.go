package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/tinoosan/fintrack/internal/dictionary"
)

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz pings every backend; any failure answers 503.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	for _, c := range s.ready {
		if err := c.Ready(ctx); err != nil {
			s.log.Warn("readiness check failed", "err", err)
			writeErr(w, http.StatusServiceUnavailable, "not ready", "unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) getCategoriesDictionary(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, dictionary.Categories())
}

func (s *Server) getCurrenciesDictionary(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, dictionary.Currencies())
}
