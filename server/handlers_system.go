package server

import (
	"context"
	"net/http"
	"time"
)

// HealthzHandler reports liveness, plus store reachability when a pinger is
// wired.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}

		if s.pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := s.pinger.Ping(ctx); err != nil {
				s.log.Warn().Err(err).Msg("store ping failed")
				status["status"] = "degraded"
				status["store"] = "unreachable"
				writeJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["store"] = "ok"
		}

		writeJSON(w, http.StatusOK, status)
	}
}
