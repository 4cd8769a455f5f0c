package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pubtunnel/relayd/internal/result"
)

// handleResultQuery serves the unified result view. Sync and async outcomes
// share one field layout; only values differ.
func (s *Server) handleResultQuery(w http.ResponseWriter, r *http.Request) {
	commandID := chi.URLParam(r, "commandID")

	view, ok := s.deps.Results.UnifiedView(commandID)
	if !ok {
		writeNotFound(w, fmt.Sprintf("execution result not found for command %q", commandID))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleResultSubmission creates or updates an execution result. A record
// already present (typically the pending stub from submission) is moved
// through UpdateStatus so the original submission metadata survives.
func (s *Server) handleResultSubmission(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req resultSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.CommandID == "" {
		writeBadRequest(w, "command_id is required")
		return
	}
	if !req.ExecutionStatus.Valid() {
		writeBadRequest(w, fmt.Sprintf("unknown execution_status %q", req.ExecutionStatus))
		return
	}

	status := "created"
	if _, exists := s.deps.Results.Get(req.CommandID); exists {
		s.deps.Results.UpdateStatus(req.CommandID, req.ExecutionStatus, req.ResultContent, req.ErrorMessage)
		status = "updated"
	} else {
		clientID := req.ClientID
		if clientID == "" {
			clientID = "unattributed"
		}
		s.deps.Results.CreateOrGet(req.CommandID, sessionID, clientID,
			result.ModeAsync, req.ExecutionStatus, req.ResultContent, req.ErrorMessage)
	}
	if len(req.FileReferences) > 0 {
		s.deps.Results.AttachFileRefs(req.CommandID, req.FileReferences...)
	}
	resultsRecordedTotal.WithLabelValues(string(req.ExecutionStatus)).Inc()

	writeJSON(w, http.StatusOK, resultSubmissionResponse{
		Status:          status,
		CommandID:       req.CommandID,
		SessionID:       sessionID,
		ExecutionStatus: req.ExecutionStatus,
	})
}

// handleErrorReport records an execution failure in the same store the
// success path uses, so failures resolve through the unified query.
func (s *Server) handleErrorReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	commandID := chi.URLParam(r, "commandID")

	var req resultSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.ExecutionStatus != result.StatusFailed {
		writeBadRequest(w, fmt.Sprintf(
			"error reporting requires execution_status %q, got %q", result.StatusFailed, req.ExecutionStatus))
		return
	}
	if req.CommandID != commandID {
		writeConflict(w, fmt.Sprintf(
			"command id mismatch: path has %q, request body has %q", commandID, req.CommandID))
		return
	}

	if _, exists := s.deps.Results.Get(commandID); exists {
		s.deps.Results.UpdateStatus(commandID, result.StatusFailed, req.ResultContent, req.ErrorMessage)
	} else {
		clientID := req.ClientID
		if clientID == "" {
			clientID = "unattributed"
		}
		s.deps.Results.CreateOrGet(commandID, sessionID, clientID,
			result.ModeAsync, result.StatusFailed, req.ResultContent, req.ErrorMessage)
	}
	resultsRecordedTotal.WithLabelValues(string(result.StatusFailed)).Inc()

	rec, _ := s.deps.Results.Get(commandID)
	writeJSON(w, http.StatusOK, errorReportResponse{
		CommandID:       commandID,
		SessionID:       sessionID,
		ExecutionStatus: rec.Status,
		Message:         "error result recorded",
		SubmittedAt:     rec.SubmittedAt,
	})
}

// handleErrorQuery serves a failure through the unified view. Querying a
// non-failed record through the error endpoint is a caller mistake.
func (s *Server) handleErrorQuery(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	commandID := chi.URLParam(r, "commandID")

	view, ok := s.deps.Results.UnifiedView(commandID)
	if !ok {
		writeNotFound(w, fmt.Sprintf(
			"error result not found for command %q in session %q", commandID, sessionID))
		return
	}
	if view.ExecutionStatus != result.StatusFailed {
		writeBadRequest(w, fmt.Sprintf(
			"command %q is not an error result, status is %q", commandID, view.ExecutionStatus))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
