package api

import "net/http"

// handleAdminSessionList lists every session with client counts. The route is
// wrapped by requireAdmin; no token handling happens here.
func (s *Server) handleAdminSessionList(w http.ResponseWriter, r *http.Request) {
	summaries := s.deps.Sessions.ListSessions()
	out := make([]sessionInfo, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, sessionInfo{
			SessionID:      sum.ID,
			ClientCount:    sum.ClientCount,
			CreatedAt:      sum.CreatedAt,
			DefaultSession: sum.Default,
		})
	}
	writeJSON(w, http.StatusOK, adminSessionListResponse{
		Sessions:      out,
		TotalSessions: len(out),
		QueriedAt:     s.clock(),
	})
}
