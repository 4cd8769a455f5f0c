package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pubtunnel/relayd/internal/presence"
)

// handlePresenceUpdate records an explicit last-seen timestamp for a client,
// registering it in the session as a side effect.
func (s *Server) handlePresenceUpdate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	clientID := chi.URLParam(r, "clientID")

	var req presenceUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.ClientID != "" && req.ClientID != clientID {
		writeConflict(w, fmt.Sprintf(
			"client id mismatch: path has %q, request body has %q", clientID, req.ClientID))
		return
	}
	if req.LastSeenTimestamp.IsZero() {
		writeBadRequest(w, "last_seen_timestamp is required")
		return
	}

	previous := presence.StatusUnknown
	if rec, ok := s.deps.Presence.Get(clientID, sessionID); ok {
		previous = rec.Status
	}

	s.deps.Sessions.AddClient(sessionID, clientID)
	rec := s.deps.Presence.RecordSeen(clientID, sessionID, req.LastSeenTimestamp)

	writeJSON(w, http.StatusOK, presenceUpdateResponse{
		ClientID:          clientID,
		SessionID:         sessionID,
		PreviousStatus:    previous,
		CurrentStatus:     rec.Status,
		LastSeenTimestamp: rec.LastSeen,
		UpdatedAt:         s.clock(),
	})
}

// handlePresenceQuery reads the current presence classification.
func (s *Server) handlePresenceQuery(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	clientID := chi.URLParam(r, "clientID")

	rec, ok := s.deps.Presence.Get(clientID, sessionID)
	if !ok {
		writeNotFound(w, fmt.Sprintf("client %q not found in session %q", clientID, sessionID))
		return
	}

	resp := presenceQueryResponse{
		ClientID:       clientID,
		SessionID:      sessionID,
		PresenceStatus: rec.Status,
	}
	if !rec.LastSeen.IsZero() {
		lastSeen := rec.LastSeen
		resp.LastSeenTimestamp = &lastSeen
	}
	if rec.Status == presence.StatusOnline && !rec.FirstSeen.IsZero() {
		dur := int64(s.clock().Sub(rec.FirstSeen) / time.Second)
		resp.OnlineDurationSeconds = &dur
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleForceOfflineCheck runs a forced re-evaluation for one session. This is
// the only path that stamps or clears went-offline timestamps.
func (s *Server) handleForceOfflineCheck(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	summary := s.deps.Offline.ForceCheck(sessionID)
	offlineSweepsTotal.Inc()
	clientsMarkedOfflineTotal.Add(float64(summary.NewlyOffline))

	writeJSON(w, http.StatusOK, offlineCheckResponse{
		CheckedClientsCount:        summary.Checked,
		NewlyOfflineClientsCount:   summary.NewlyOffline,
		AlreadyOfflineClientsCount: summary.AlreadyOffline,
		SessionID:                  &sessionID,
		CheckTimestamp:             summary.CheckedAt,
	})
}

// handleAdminForceOfflineCheck sweeps every session. Admin-gated.
func (s *Server) handleAdminForceOfflineCheck(w http.ResponseWriter, r *http.Request) {
	summary := s.deps.Offline.ForceCheck("")
	offlineSweepsTotal.Inc()
	clientsMarkedOfflineTotal.Add(float64(summary.NewlyOffline))

	writeJSON(w, http.StatusOK, offlineCheckResponse{
		CheckedClientsCount:        summary.Checked,
		NewlyOfflineClientsCount:   summary.NewlyOffline,
		AlreadyOfflineClientsCount: summary.AlreadyOffline,
		CheckTimestamp:             summary.CheckedAt,
	})
}

// handleOfflineStatus lists detailed per-client status for a session.
func (s *Server) handleOfflineStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	statuses := s.deps.Offline.DetailedStatus(sessionID)
	out := make([]clientOfflineStatusInfo, 0, len(statuses))
	for _, st := range statuses {
		info := clientOfflineStatusInfo{
			ClientID:                st.ClientID,
			SessionID:               st.SessionID,
			PresenceStatus:          st.Status,
			LastSeenTimestamp:       st.LastSeen,
			SecondsSinceLastSeen:    st.SecondsSinceLastSeen,
			OfflineThresholdSeconds: st.ThresholdSeconds,
			EligibleForCommands:     st.EligibleForCommands,
		}
		if !st.WentOfflineAt.IsZero() {
			wentOffline := st.WentOfflineAt
			info.WentOfflineAt = &wentOffline
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleThresholdGet returns the live offline classification configuration.
func (s *Server) handleThresholdGet(w http.ResponseWriter, r *http.Request) {
	cfg := s.deps.Offline.Threshold()
	writeJSON(w, http.StatusOK, thresholdConfigResponse{
		OfflineThresholdSeconds:   cfg.OfflineThresholdSeconds,
		StaleCleanupWindowSeconds: cfg.StaleCleanupWindowSeconds,
	})
}

// handleThresholdUpdate swaps the process-wide offline threshold. The new
// value applies to every session immediately.
func (s *Server) handleThresholdUpdate(w http.ResponseWriter, r *http.Request) {
	var req thresholdUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.OfflineThresholdSeconds <= 0 {
		writeBadRequest(w, "offline_threshold_seconds must be positive")
		return
	}

	update := s.deps.Offline.UpdateThreshold(req.OfflineThresholdSeconds)
	s.logger.Info().
		Int("previous", update.PreviousSeconds).
		Int("current", update.CurrentSeconds).
		Int("affected_sessions", update.AffectedSessions).
		Msg("offline threshold updated")

	writeJSON(w, http.StatusOK, thresholdUpdateResponse{
		PreviousThresholdSeconds: update.PreviousSeconds,
		CurrentThresholdSeconds:  update.CurrentSeconds,
		UpdatedAt:                update.UpdatedAt,
		AffectedSessionsCount:    update.AffectedSessions,
	})
}
