package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pubtunnel/relayd/internal/filestore"
	"github.com/pubtunnel/relayd/internal/result"
)

func fileToUploadResponse(f filestore.File) fileUploadResponse {
	return fileUploadResponse{
		FileID:          f.ID,
		FileName:        f.Name,
		SessionID:       f.SessionID,
		UploadTimestamp: f.UploadedAt,
		FileSizeBytes:   f.SizeBytes,
		ContentType:     f.ContentType,
		FileSummary:     f.Summary,
	}
}

// uploadOne pushes a single file into session storage, defaulting content
// type and summary when the caller omitted them.
func (s *Server) uploadOne(sessionID string, req fileUploadRequest) (filestore.File, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f, err := s.deps.Files.Upload(sessionID, req.FileName, req.FileContentBase64, contentType, req.FileSummary)
	if err != nil {
		return filestore.File{}, err
	}
	if f.Summary == "" {
		// Summary is metadata only; regenerating it would need another store
		// write, so it is filled on the response copy.
		f.Summary = fmt.Sprintf("%s (%d bytes, %s)", f.Name, f.SizeBytes, f.ContentType)
	}
	return f, nil
}

// handleFileUpload stores a Base64 payload in the session's file space.
func (s *Server) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req fileUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.FileName == "" {
		writeBadRequest(w, "file_name is required")
		return
	}

	f, err := s.uploadOne(sessionID, req)
	if err != nil {
		switch {
		case errors.Is(err, filestore.ErrInvalidEncoding):
			fileUploadsRejectedTotal.WithLabelValues("encoding").Inc()
		case errors.Is(err, filestore.ErrTooLarge):
			fileUploadsRejectedTotal.WithLabelValues("size").Inc()
		}
		writeBadRequest(w, "invalid file upload request: "+err.Error())
		return
	}
	filesUploadedTotal.Inc()

	writeJSON(w, http.StatusOK, fileToUploadResponse(f))
}

// handleFileList returns the session's file metadata in upload order.
func (s *Server) handleFileList(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	files := s.deps.Files.List(sessionID)
	out := make([]fileMetadata, 0, len(files))
	for _, f := range files {
		out = append(out, fileMetadata{
			FileID:          f.ID,
			FileName:        f.Name,
			ContentType:     f.ContentType,
			FileSizeBytes:   f.SizeBytes,
			UploadTimestamp: f.UploadedAt,
			FileSummary:     f.Summary,
		})
	}
	writeJSON(w, http.StatusOK, sessionFileListResponse{
		SessionID:  sessionID,
		TotalFiles: len(out),
		Files:      out,
	})
}

// handleFileDownload serves file content Base64-encoded. A file id from
// another session resolves to 404, never to the foreign content.
func (s *Server) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	fileID := chi.URLParam(r, "fileID")

	f, ok := s.deps.Files.Get(sessionID, fileID)
	if !ok {
		writeNotFound(w, fmt.Sprintf("file %q not found in session %q", fileID, sessionID))
		return
	}

	writeJSON(w, http.StatusOK, fileDownloadResponse{
		FileID:            f.ID,
		FileName:          f.Name,
		FileContentBase64: base64.StdEncoding.EncodeToString(f.Content),
		ContentType:       f.ContentType,
		FileSizeBytes:     f.SizeBytes,
		UploadTimestamp:   f.UploadedAt,
		FileSummary:       f.Summary,
	})
}

// handleFileAccessValidation reports whether the file is visible from the
// session without exposing any content.
func (s *Server) handleFileAccessValidation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	fileID := chi.URLParam(r, "fileID")

	writeJSON(w, http.StatusOK, fileAccessValidationResponse{
		SessionID:     sessionID,
		FileID:        fileID,
		AccessGranted: s.deps.Files.ValidateAccess(sessionID, fileID),
	})
}

// handleResultFileUpload lets a client attach result files to an execution
// outcome in one call: files go into session storage, their ids onto the
// result's file-reference list.
func (s *Server) handleResultFileUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	commandID := chi.URLParam(r, "commandID")

	var req resultFileUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.CommandID != commandID {
		writeConflict(w, fmt.Sprintf(
			"command id mismatch: path has %q, request body has %q", commandID, req.CommandID))
		return
	}
	if !req.ExecutionStatus.Valid() {
		writeBadRequest(w, fmt.Sprintf("unknown execution_status %q", req.ExecutionStatus))
		return
	}

	uploaded := make([]fileUploadResponse, 0, len(req.ResultFiles))
	refs := make([]string, 0, len(req.ResultFiles))
	for _, rf := range req.ResultFiles {
		f, err := s.uploadOne(sessionID, rf)
		if err != nil {
			writeBadRequest(w, fmt.Sprintf("failed to upload file %q: %s", rf.FileName, err))
			return
		}
		filesUploadedTotal.Inc()
		uploaded = append(uploaded, fileToUploadResponse(f))
		refs = append(refs, f.ID)
	}

	if _, exists := s.deps.Results.Get(commandID); exists {
		s.deps.Results.UpdateStatus(commandID, req.ExecutionStatus, req.ResultContent, req.ErrorMessage)
	} else {
		clientID := req.ClientID
		if clientID == "" {
			clientID = "unattributed"
		}
		s.deps.Results.CreateOrGet(commandID, sessionID, clientID,
			result.ModeAsync, req.ExecutionStatus, req.ResultContent, req.ErrorMessage)
	}
	if len(refs) > 0 {
		s.deps.Results.AttachFileRefs(commandID, refs...)
	}
	resultsRecordedTotal.WithLabelValues(string(req.ExecutionStatus)).Inc()

	rec, _ := s.deps.Results.Get(commandID)
	fileRefs := rec.FileRefs
	if fileRefs == nil {
		fileRefs = []string{}
	}
	writeJSON(w, http.StatusOK, resultFileUploadResponse{
		CommandID:       commandID,
		SessionID:       sessionID,
		ExecutionStatus: rec.Status,
		SubmittedAt:     rec.SubmittedAt,
		FileReferences:  fileRefs,
		UploadedFiles:   uploaded,
	})
}
