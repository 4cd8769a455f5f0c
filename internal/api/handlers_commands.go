package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pubtunnel/relayd/internal/result"
)

// handleSubmitCommand queues a command for a specific target client. Clients
// that never registered are rejected with 404; registered-but-offline clients
// with 422. The eligibility check and the enqueue are not atomic: a client can
// go offline between them and the command still queues. Delivery waits for the
// client's next poll either way.
func (s *Server) handleSubmitCommand(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req submitCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.TargetClientID == "" {
		writeBadRequest(w, "target_client_id is required")
		return
	}
	if req.CommandContent == "" {
		writeBadRequest(w, "command_content is required")
		return
	}

	if _, ok := s.deps.Presence.Get(req.TargetClientID, sessionID); !ok {
		writeNotFound(w, fmt.Sprintf(
			"client %q has not registered in session %q; clients must poll at least once before receiving commands",
			req.TargetClientID, sessionID))
		return
	}
	if !s.deps.Offline.EligibleForCommands(req.TargetClientID, sessionID) {
		writeUnprocessable(w, fmt.Sprintf("cannot submit command to offline client %q", req.TargetClientID))
		return
	}

	cmd := s.deps.Queues.Submit(sessionID, req.TargetClientID, req.CommandContent)
	s.deps.Results.CreateOrGet(cmd.ID, sessionID, req.TargetClientID, result.ModeAsync, result.StatusPending, nil, nil)
	commandsSubmittedTotal.WithLabelValues("targeted").Inc()

	s.logger.Info().
		Str("session_id", sessionID).
		Str("client_id", req.TargetClientID).
		Str("command_id", cmd.ID).
		Msg("command queued")

	writeJSON(w, http.StatusOK, submitCommandResponse{
		CommandID:           cmd.ID,
		ExecutionStatus:     result.StatusPending,
		SubmissionTimestamp: s.clock(),
		TargetClientID:      req.TargetClientID,
	})
}

// handleAutoAsyncSubmit queues a command and immediately returns the command
// id for result polling. The pending result record is created up front so the
// unified query path resolves before the client reports anything.
func (s *Server) handleAutoAsyncSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req submitCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.TargetClientID == "" || req.CommandContent == "" {
		writeBadRequest(w, "target_client_id and command_content are required")
		return
	}

	if !s.deps.Sessions.IsMember(sessionID, req.TargetClientID) {
		writeNotFound(w, fmt.Sprintf("client %q not found in session %q", req.TargetClientID, sessionID))
		return
	}
	if !s.deps.Offline.EligibleForCommands(req.TargetClientID, sessionID) {
		writeUnprocessable(w, fmt.Sprintf("target client %q is offline", req.TargetClientID))
		return
	}

	cmd := s.deps.Queues.Submit(sessionID, req.TargetClientID, req.CommandContent)
	s.deps.Results.CreateOrGet(cmd.ID, sessionID, req.TargetClientID, result.ModeAsync, result.StatusPending, nil, nil)
	commandsSubmittedTotal.WithLabelValues("auto_async").Inc()

	writeJSON(w, http.StatusOK, autoAsyncSubmitResponse{
		CommandID:           cmd.ID,
		AsyncMode:           true,
		SubmissionTimestamp: s.clock(),
		TargetClientID:      req.TargetClientID,
	})
}

// handleCommandStatus projects the stored result into the status shape.
func (s *Server) handleCommandStatus(w http.ResponseWriter, r *http.Request) {
	commandID := chi.URLParam(r, "commandID")

	rec, ok := s.deps.Results.Get(commandID)
	if !ok {
		writeNotFound(w, fmt.Sprintf("no execution record for command %q", commandID))
		return
	}

	resp := commandStatusResponse{
		CommandID:       rec.CommandID,
		ExecutionStatus: rec.Status,
		ClientID:        rec.ClientID,
		ResultSummary:   rec.Content,
		ErrorMessage:    rec.ErrorMessage,
	}
	if !rec.StartedAt.IsZero() {
		started := rec.StartedAt
		resp.StartedAt = &started
	}
	if !rec.CompletedAt.IsZero() {
		completed := rec.CompletedAt
		resp.CompletedAt = &completed
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCommandHistory lists the session's command ids in insertion order.
func (s *Server) handleCommandHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ids := s.deps.Results.CommandIDsForSession(sessionID)
	writeJSON(w, http.StatusOK, historyResponse{
		SessionID:     sessionID,
		CommandIDs:    ids,
		TotalCommands: len(ids),
	})
}
