package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enigmahunt/enigmahunt/internal/api"
	"github.com/enigmahunt/enigmahunt/internal/api/response"
	"github.com/enigmahunt/enigmahunt/internal/factory"
	"github.com/enigmahunt/enigmahunt/internal/services/auth"
	"github.com/enigmahunt/enigmahunt/internal/storage/memory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	storage *memory.Storage
	auth    *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{
		AuthConfig: auth.Config{InitialBalance: 20},
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:                logger,
		AuthService:           app.AuthService,
		ProgressionController: app.ProgressionController,
		CatalogService:        app.CatalogService,
		RankingService:        app.RankingService,
	})

	return &testServer{
		handler: router,
		storage: app.Storage.(*memory.Storage),
		auth:    app.AuthService,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// registerPlayer registers a player and returns their session token
func registerPlayer(t *testing.T, ts *testServer, username, displayName string) string {
	t.Helper()

	body := map[string]string{
		"username":     username,
		"password":     "secret123",
		"display_name": displayName,
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.SessionToken
}

// registerAdmin registers a player, flips their admin flag in storage,
// and logs back in so the new session carries it
func registerAdmin(t *testing.T, ts *testServer, username string) string {
	t.Helper()

	registerPlayer(t, ts, username, "Admin")

	rp, err := ts.storage.GetRegisteredPlayerByUsername(t.Context(), username)
	require.NoError(t, err)
	rp.IsAdmin = true
	require.NoError(t, ts.storage.SaveRegisteredPlayer(t.Context(), rp))

	body := map[string]string{"username": username, "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/players/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.IsAdmin)
	return resp.SessionToken
}

// seedEvent authors a two-enigma single-phase event through the admin
// API and opens it
func seedEvent(t *testing.T, ts *testServer, adminToken, eventID string) {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/admin/events",
		map[string]string{"id": eventID, "name": "City Hunt"}, adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/admin/events/"+eventID+"/phases",
		map[string]int{"order": 1}, adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	enigmas := []map[string]string{
		{"id": "enigma-1", "code": "alpha", "hint_type": "text", "hint_data": "starts with a"},
		{"id": "enigma-2", "code": "beta"},
	}
	for _, e := range enigmas {
		rr = ts.request(http.MethodPost, "/api/v1/admin/events/"+eventID+"/phases/1/enigmas", e, adminToken)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr = ts.request(http.MethodPatch, "/api/v1/admin/events/"+eventID+"/status",
		map[string]string{"status": "open"}, adminToken)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registerResp))
	assert.Equal(t, "Alice", registerResp.Player.DisplayName)
	assert.Equal(t, int64(20), registerResp.Player.Balance)
	assert.NotEmpty(t, registerResp.SessionToken)

	loginBody := map[string]string{"username": "alice", "password": "secret123"}
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)
	assert.NotEqual(t, registerResp.SessionToken, loginResp.SessionToken)
}

func TestRegisterMissingFields(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/register",
		map[string]string{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	registerPlayer(t, ts, "alice", "Alice")

	body := map[string]string{
		"username":     "alice",
		"password":     "different456",
		"display_name": "Other Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerPlayer(t, ts, "alice", "Alice")

	body := map[string]string{"username": "alice", "password": "wrong"}
	rr := ts.request(http.MethodPost, "/api/v1/players/login", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	token := registerPlayer(t, ts, "alice", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var player response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.Equal(t, "Alice", player.DisplayName)
	assert.Equal(t, int64(20), player.Balance)
}

func TestGetMeRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, "sess_bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	token := registerPlayer(t, ts, "alice", "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSetPushToken(t *testing.T) {
	ts := newTestServer(t)
	token := registerPlayer(t, ts, "alice", "Alice")

	rr := ts.request(http.MethodPut, "/api/v1/players/me/push-token",
		map[string]string{"token": "device-token-1"}, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPut, "/api/v1/players/me/push-token",
		map[string]string{"token": ""}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEventsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/events", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListAndGetEvents(t *testing.T) {
	ts := newTestServer(t)
	adminToken := registerAdmin(t, ts, "admin")
	seedEvent(t, ts, adminToken, "hunt-1")

	token := registerPlayer(t, ts, "alice", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/events", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var events []response.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "hunt-1", events[0].ID)
	assert.Equal(t, "open", events[0].Status)

	rr = ts.request(http.MethodGet, "/api/v1/events/hunt-1", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var detail response.EventDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	require.Len(t, detail.Phases, 1)
	require.Len(t, detail.Phases[0].Enigmas, 2)
	// Answer codes are never exposed on the player surface
	assert.Empty(t, detail.Phases[0].Enigmas[0].Code)
	assert.True(t, detail.Phases[0].Enigmas[0].HasHint)
}

func TestGetEventNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := registerPlayer(t, ts, "alice", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/events/nonexistent", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminRoutesRequireAdminFlag(t *testing.T) {
	ts := newTestServer(t)
	token := registerPlayer(t, ts, "alice", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/admin/dashboard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/admin/dashboard", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdminAuthoring(t *testing.T) {
	ts := newTestServer(t)
	adminToken := registerAdmin(t, ts, "admin")

	rr := ts.request(http.MethodPost, "/api/v1/admin/events",
		map[string]string{"id": "hunt-1", "name": "City Hunt"}, adminToken)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var event response.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &event))
	assert.Equal(t, "dev", event.Status)

	// Name is required
	rr = ts.request(http.MethodPost, "/api/v1/admin/events",
		map[string]string{"id": "hunt-2"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/admin/events/hunt-1/phases",
		map[string]int{"order": 1}, adminToken)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// The admin surface echoes the answer code back
	rr = ts.request(http.MethodPost, "/api/v1/admin/events/hunt-1/phases/1/enigmas",
		map[string]string{"id": "enigma-1", "code": "alpha"}, adminToken)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var enigma response.Enigma
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &enigma))
	assert.Equal(t, "alpha", enigma.Code)

	rr = ts.request(http.MethodPatch, "/api/v1/admin/events/hunt-1/status",
		map[string]string{"status": "paused"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/admin/dashboard", nil, adminToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEnigmaActionDispatch(t *testing.T) {
	ts := newTestServer(t)
	adminToken := registerAdmin(t, ts, "admin")
	seedEvent(t, ts, adminToken, "hunt-1")
	token := registerPlayer(t, ts, "alice", "Alice")

	// getStatus
	rr := ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "getStatus", "phase": 1, "enigma": "enigma-1"}, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var status response.EnigmaStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.False(t, status.HintVisible)
	assert.True(t, status.CanBuyHint)
	assert.False(t, status.Blocked)

	// purchaseHint
	rr = ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "purchaseHint", "phase": 1, "enigma": "enigma-1"}, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var hint response.Hint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hint))
	assert.Equal(t, "text", hint.Type)
	assert.Equal(t, "starts with a", hint.Data)

	// A second purchase for the same phase conflicts
	rr = ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "purchaseHint", "phase": 1, "enigma": "enigma-1"}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Phase 1 hint cost was debited from the starting balance
	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	var player response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.Equal(t, int64(15), player.Balance)

	// validateCode with a wrong answer
	rr = ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "validateCode", "phase": 1, "enigma": "enigma-1", "code": "nope"}, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var result response.SubmitResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.RemainingAttempts)

	// validateCode with the right answer
	rr = ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "validateCode", "phase": 1, "enigma": "enigma-1", "code": "ALPHA"}, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.NextStep)
	assert.Equal(t, "next_enigma", result.NextStep.Type)
	require.NotNil(t, result.NextStep.Enigma)
	assert.Equal(t, "enigma-2", result.NextStep.Enigma.ID)
}

func TestEnigmaActionValidation(t *testing.T) {
	ts := newTestServer(t)
	adminToken := registerAdmin(t, ts, "admin")
	seedEvent(t, ts, adminToken, "hunt-1")
	token := registerPlayer(t, ts, "alice", "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "selfDestruct", "phase": 1, "enigma": "enigma-1"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "getStatus", "phase": 0, "enigma": "enigma-1"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Submitting without a code is rejected before any state changes
	rr = ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "validateCode", "phase": 1, "enigma": "enigma-1"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFinishEventAndRanking(t *testing.T) {
	ts := newTestServer(t)
	adminToken := registerAdmin(t, ts, "admin")
	seedEvent(t, ts, adminToken, "hunt-1")
	token := registerPlayer(t, ts, "alice", "Alice")

	for _, sub := range []struct{ enigma, code string }{
		{"enigma-1", "alpha"},
		{"enigma-2", "beta"},
	} {
		rr := ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
			map[string]any{"action": "validateCode", "phase": 1, "enigma": sub.enigma, "code": sub.code}, token)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := ts.request(http.MethodGet, "/api/v1/events/hunt-1", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var detail response.EventDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, "closed", detail.Event.Status)
	assert.Equal(t, "Alice", detail.Event.WinnerName)
	assert.NotNil(t, detail.Event.FinishedAt)

	// Submissions against a closed event conflict
	rr = ts.request(http.MethodPost, "/api/v1/events/hunt-1/enigma",
		map[string]any{"action": "validateCode", "phase": 1, "enigma": "enigma-1", "code": "alpha"}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/events/hunt-1/ranking", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var entries []response.RankingEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Alice", entries[0].Name)
	assert.Equal(t, 1, entries[0].PhasesCompleted)
	assert.Equal(t, 1, entries[0].Position)
	assert.InDelta(t, 1.0, entries[0].Fraction, 0.0001)
}
