package api

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubtunnel/relayd/internal/result"
)

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestFileUploadDownloadRoundTrip(t *testing.T) {
	e := newEnv(t)

	up := e.do(http.MethodPost, "/api/sessions/team-a/files", fileUploadRequest{
		FileName:          "report.txt",
		FileContentBase64: b64("quarterly numbers"),
		ContentType:       "text/plain",
	})
	require.Equal(t, http.StatusOK, up.Code)
	uploaded := decodeBody[fileUploadResponse](t, up)
	assert.NotEmpty(t, uploaded.FileID)
	assert.Equal(t, int64(len("quarterly numbers")), uploaded.FileSizeBytes)
	assert.NotEmpty(t, uploaded.FileSummary, "a summary is generated when omitted")

	down := e.do(http.MethodGet, "/api/sessions/team-a/files/"+uploaded.FileID, nil)
	require.Equal(t, http.StatusOK, down.Code)
	file := decodeBody[fileDownloadResponse](t, down)
	assert.Equal(t, b64("quarterly numbers"), file.FileContentBase64)
	assert.Equal(t, "text/plain", file.ContentType)
}

func TestFileUploadRejectsInvalidBase64(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/sessions/team-a/files", fileUploadRequest{
		FileName:          "bad.bin",
		FileContentBase64: "!!! not base64 !!!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decodeBody[sessionFileListResponse](t, e.do(http.MethodGet, "/api/sessions/team-a/files", nil))
	assert.Zero(t, list.TotalFiles)
}

func TestFileSessionIsolation(t *testing.T) {
	e := newEnv(t)

	up := e.do(http.MethodPost, "/api/sessions/team-a/files", fileUploadRequest{
		FileName:          "secret.txt",
		FileContentBase64: b64("internal"),
	})
	fileID := decodeBody[fileUploadResponse](t, up).FileID

	// Cross-session download is indistinguishable from a missing file.
	rec := e.do(http.MethodGet, "/api/sessions/team-b/files/"+fileID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	denied := decodeBody[fileAccessValidationResponse](t,
		e.do(http.MethodPost, "/api/sessions/team-b/files/"+fileID+"/validate-access", nil))
	assert.False(t, denied.AccessGranted)

	granted := decodeBody[fileAccessValidationResponse](t,
		e.do(http.MethodPost, "/api/sessions/team-a/files/"+fileID+"/validate-access", nil))
	assert.True(t, granted.AccessGranted)
}

func TestFileListUploadOrder(t *testing.T) {
	e := newEnv(t)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		rec := e.do(http.MethodPost, "/api/sessions/team-a/files", fileUploadRequest{
			FileName:          name,
			FileContentBase64: b64("x"),
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	list := decodeBody[sessionFileListResponse](t, e.do(http.MethodGet, "/api/sessions/team-a/files", nil))
	require.Equal(t, 3, list.TotalFiles)
	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		assert.Equal(t, name, list.Files[i].FileName)
	}
}

func TestResultFileUploadAttachesReferences(t *testing.T) {
	e := newEnv(t)
	e.register("default", "worker-1")
	commandID := submitOne(t, e, "default", "worker-1", "collect-logs")

	content := "logs collected"
	rec := e.do(http.MethodPost, "/api/sessions/default/commands/"+commandID+"/files", resultFileUploadRequest{
		CommandID:       commandID,
		ClientID:        "worker-1",
		ExecutionStatus: result.StatusCompleted,
		ResultContent:   &content,
		ResultFiles: []fileUploadRequest{
			{FileName: "app.log", FileContentBase64: b64("line1\nline2"), ContentType: "text/plain"},
			{FileName: "err.log", FileContentBase64: b64("oops"), ContentType: "text/plain"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[resultFileUploadResponse](t, rec)
	require.Len(t, resp.UploadedFiles, 2)
	assert.Len(t, resp.FileReferences, 2)
	assert.Equal(t, result.StatusCompleted, resp.ExecutionStatus)

	// The references are visible through the unified result view.
	view := decodeBody[result.View](t, e.do(http.MethodGet, "/api/sessions/default/results/"+commandID, nil))
	assert.Equal(t, resp.FileReferences, view.FileReferences)

	// And each referenced file downloads from the owning session.
	for _, fileID := range resp.FileReferences {
		down := e.do(http.MethodGet, "/api/sessions/default/files/"+fileID, nil)
		assert.Equal(t, http.StatusOK, down.Code)
	}
}

func TestResultFileUploadCommandIDMismatchIs409(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/sessions/default/commands/cmd-1/files", resultFileUploadRequest{
		CommandID:       "cmd-other",
		ExecutionStatus: result.StatusCompleted,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
