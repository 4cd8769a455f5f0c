package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pubtunnel/relayd/internal/session"
)

// registerAndPoll is the shared registration-poll flow: join the session,
// bump presence, and hand over at most one queued command.
func (s *Server) registerAndPoll(w http.ResponseWriter, r *http.Request, sessionID, clientID string, lastSeen time.Time) {
	isNew := s.deps.Sessions.AddClient(sessionID, clientID)
	s.deps.Presence.RecordSeen(clientID, sessionID, lastSeen)

	commands := make([]commandPayload, 0, 1)
	if cmd, ok := s.deps.Queues.Dequeue(sessionID, clientID); ok {
		commands = append(commands, commandToPayload(cmd))
		commandsDeliveredTotal.Inc()
	}

	status := "existing"
	if isNew {
		status = "new"
		s.logger.Info().
			Str("session_id", sessionID).
			Str("client_id", clientID).
			Msg("client registered")
	}

	writeJSON(w, http.StatusOK, pollResponse{
		SessionID:          sessionID,
		ClientID:           clientID,
		Commands:           commands,
		RegistrationStatus: status,
	})
}

// handleDefaultPoll auto-joins the client into the default session and polls.
func (s *Server) handleDefaultPoll(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeBadRequest(w, "client_id query parameter is required")
		return
	}
	s.registerAndPoll(w, r, session.DefaultSessionID, clientID, time.Time{})
}

// handleSessionPoll joins the client into a named session, creating the
// session lazily on first use.
func (s *Server) handleSessionPoll(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req sessionPollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.ClientID == "" {
		writeBadRequest(w, "client_id is required")
		return
	}

	lastSeen := time.Time{}
	if req.LastSeen != nil {
		lastSeen = *req.LastSeen
	}
	s.registerAndPoll(w, r, sessionID, req.ClientID, lastSeen)
}

// handleFIFOPoll pops the head of the client's queue. The remaining size is
// taken in the same critical section as the removal.
func (s *Server) handleFIFOPoll(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	clientID := chi.URLParam(r, "clientID")

	s.deps.Presence.RecordSeen(clientID, sessionID, time.Time{})

	cmd, ok, remaining := s.deps.Queues.DequeueWithRemaining(sessionID, clientID)
	resp := fifoPollResponse{
		SessionID: sessionID,
		ClientID:  clientID,
	}
	if ok {
		payload := commandToPayload(cmd)
		resp.Command = &payload
		resp.TotalQueueSize = remaining
		commandsDeliveredTotal.Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSingleCommand retrieves one command together with a has-more flag so
// clients can pace their own execution loop.
func (s *Server) handleSingleCommand(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	clientID := chi.URLParam(r, "clientID")

	s.deps.Presence.RecordSeen(clientID, sessionID, time.Time{})

	cmd, ok, remaining := s.deps.Queues.DequeueWithRemaining(sessionID, clientID)
	resp := singleCommandResponse{
		SessionID:       sessionID,
		ClientID:        clientID,
		HasMoreCommands: remaining > 0,
		QueueSize:       remaining,
	}
	if ok {
		payload := commandToPayload(cmd)
		resp.Command = &payload
		commandsDeliveredTotal.Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}
