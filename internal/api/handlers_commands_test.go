package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubtunnel/relayd/internal/result"
)

func TestSubmitToUnregisteredClientIs404(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/sessions/default/commands/submit", submitCommandRequest{
		CommandContent: "whoami",
		TargetClientID: "ghost",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Contains(t, body["error"], "ghost")

	// The rejection left no partial queue mutation behind.
	assert.Zero(t, e.deps.Queues.QueueSize("default", "ghost"))
}

func TestSubmitToOfflineClientIs422(t *testing.T) {
	e := newEnv(t)
	e.register("default", "worker-1")

	e.advance(61 * time.Second)
	rec := e.do(http.MethodPost, "/api/sessions/default/commands/submit", submitCommandRequest{
		CommandContent: "whoami",
		TargetClientID: "worker-1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Contains(t, body["error"], "offline")
}

func TestSubmitCreatesPendingResult(t *testing.T) {
	e := newEnv(t)
	e.register("default", "worker-1")

	rec := e.do(http.MethodPost, "/api/sessions/default/commands/submit", submitCommandRequest{
		CommandContent: "ls",
		TargetClientID: "worker-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[submitCommandResponse](t, rec)
	assert.NotEmpty(t, resp.CommandID)
	assert.Equal(t, result.StatusPending, resp.ExecutionStatus)

	status := e.do(http.MethodGet, "/api/sessions/default/commands/"+resp.CommandID+"/status", nil)
	require.Equal(t, http.StatusOK, status.Code)
	statusResp := decodeBody[commandStatusResponse](t, status)
	assert.Equal(t, result.StatusPending, statusResp.ExecutionStatus)
	assert.Equal(t, "worker-1", statusResp.ClientID)
	assert.Nil(t, statusResp.StartedAt)
}

func TestSubmitValidation(t *testing.T) {
	e := newEnv(t)
	e.register("default", "worker-1")

	tests := []struct {
		name string
		req  submitCommandRequest
	}{
		{"missing target", submitCommandRequest{CommandContent: "ls"}},
		{"missing content", submitCommandRequest{TargetClientID: "worker-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodPost, "/api/sessions/default/commands/submit", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAutoAsyncSubmitReturnsCommandIDForPolling(t *testing.T) {
	e := newEnv(t)
	e.register("team-a", "worker-1")

	rec := e.do(http.MethodPost, "/api/sessions/team-a/commands/submit-auto-async", submitCommandRequest{
		CommandContent: "generate-report",
		TargetClientID: "worker-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[autoAsyncSubmitResponse](t, rec)
	assert.True(t, resp.AsyncMode)
	assert.Nil(t, resp.Result)
	require.NotEmpty(t, resp.CommandID)

	// The pending record resolves through the unified query immediately.
	unified := e.do(http.MethodGet, "/api/sessions/team-a/results/"+resp.CommandID, nil)
	require.Equal(t, http.StatusOK, unified.Code)
	view := decodeBody[result.View](t, unified)
	assert.Equal(t, result.StatusPending, view.ExecutionStatus)
	assert.Equal(t, result.ModeAsync, view.ExecutionMode)
}

func TestAutoAsyncSubmitRejectsNonMember(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/sessions/team-a/commands/submit-auto-async", submitCommandRequest{
		CommandContent: "x",
		TargetClientID: "stranger",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommandStatusUnknownIs404(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/api/sessions/default/commands/nope/status", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommandHistoryInsertionOrder(t *testing.T) {
	e := newEnv(t)
	e.register("default", "worker-1")

	var ids []string
	for _, content := range []string{"one", "two", "three"} {
		rec := e.do(http.MethodPost, "/api/sessions/default/commands/submit", submitCommandRequest{
			CommandContent: content,
			TargetClientID: "worker-1",
		})
		ids = append(ids, decodeBody[submitCommandResponse](t, rec).CommandID)
	}

	rec := e.do(http.MethodGet, "/api/sessions/default/commands/history", nil)
	resp := decodeBody[historyResponse](t, rec)
	assert.Equal(t, ids, resp.CommandIDs)
	assert.Equal(t, 3, resp.TotalCommands)
}

// A client can cross the offline threshold after the eligibility check passed.
// The submission is not retracted: the command stays queued and is delivered
// on the client's next poll.
func TestQueuedCommandSurvivesClientGoingOffline(t *testing.T) {
	e := newEnv(t)
	e.register("default", "worker-1")

	rec := e.do(http.MethodPost, "/api/sessions/default/commands/submit", submitCommandRequest{
		CommandContent: "slow-job",
		TargetClientID: "worker-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	e.advance(2 * time.Minute)
	sweep := e.do(http.MethodPost, "/api/sessions/default/clients/force-offline-check", nil)
	require.Equal(t, http.StatusOK, sweep.Code)
	assert.Equal(t, 1, decodeBody[offlineCheckResponse](t, sweep).NewlyOfflineClientsCount)

	// The poll itself brings the client back online and drains the queue.
	poll := e.do(http.MethodGet, "/api/sessions/default/clients/worker-1/commands/poll", nil)
	resp := decodeBody[fifoPollResponse](t, poll)
	require.NotNil(t, resp.Command)
	assert.Equal(t, "slow-job", resp.Command.Content)
}
