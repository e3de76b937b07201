package http

import (
	"net/http"
	"time"

	"conti/internal/log"
)

// handleDashboard returns the assembled overview. The service caches
// per user and month; any section failing fails the whole request.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	session := s.session(r)
	dashboard, err := s.deps.Dashboard.Summary(r.Context(), session.UserID, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard assembly failed",
			log.FieldUserID, session.UserID, "error", err)
		WriteError(w, err)
		return
	}
	NewJSONResponse().Body(dashboard).Write(w)
}
