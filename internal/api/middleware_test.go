package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminSessionListRequiresToken(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusForbidden},
		{"wrong token", "not-the-token", http.StatusForbidden},
		{"valid token", testAdminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminTokenAcceptedFromAlternateHeaders(t *testing.T) {
	e := newEnv(t)

	// Bare Authorization value and X-Admin-Token are both accepted.
	for _, set := range []func(*http.Request){
		func(r *http.Request) { r.Header.Set("Authorization", testAdminToken) },
		func(r *http.Request) { r.Header.Set("X-Admin-Token", testAdminToken) },
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		set(req)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAdminSessionListContents(t *testing.T) {
	e := newEnv(t)
	e.register("default", "worker-1")
	e.register("team-a", "worker-1")
	e.register("team-a", "worker-2")

	rec := e.doAdmin(http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[adminSessionListResponse](t, rec)
	require.Equal(t, 2, resp.TotalSessions)

	byID := map[string]sessionInfo{}
	for _, s := range resp.Sessions {
		byID[s.SessionID] = s
	}
	assert.True(t, byID["default"].DefaultSession)
	assert.Equal(t, 1, byID["default"].ClientCount)
	assert.False(t, byID["team-a"].DefaultSession)
	assert.Equal(t, 2, byID["team-a"].ClientCount)
}

func TestRequestIDPropagation(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-abc")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-abc", rec.Header().Get(requestIDHeader))

	// Without an inbound id, one is generated.
	rec = e.do(http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestSystemEndpoints(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", nil).Code)

	// Readiness is withheld until the manager is flipped.
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/readyz", nil).Code)
	e.deps.Health.SetReady(true)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/readyz", nil).Code)

	metrics := e.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "relayd_")
}
