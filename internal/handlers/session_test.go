package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunriselabs/voice-adventure/internal/services"
	"github.com/sunriselabs/voice-adventure/pkg/game"
)

func testSessionHandler() (*SessionHandler, *services.MockStorage) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
	mockStorage := services.NewMockStorage()
	return NewSessionHandler(mockStorage, logger), mockStorage
}

func createTestSession(t *testing.T, handler *SessionHandler, body string) SessionResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, "Response body: %s", rr.Body.String())

	var response SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	require.NotNil(t, response.Session)
	return response
}

func TestSessionHandler_Create(t *testing.T) {
	handler, _ := testSessionHandler()

	response := createTestSession(t, handler, `{"player_name":"Ada"}`)

	assert.NotEmpty(t, response.Session.ID)
	assert.Equal(t, "forest_quest", response.Session.World)
	assert.Equal(t, "intro", response.Session.CurrentScene)
	assert.Contains(t, response.Narration, "Greetings Ada.")
	assert.True(t, strings.HasSuffix(response.Narration, game.Prompt),
		"narration should end with the prompt")
}

func TestSessionHandler_CreateEmptyBody(t *testing.T) {
	handler, _ := testSessionHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code, "Response body: %s", rr.Body.String())

	var response SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Contains(t, response.Narration, "Greetings traveler.")
}

func TestSessionHandler_CreateUnknownWorld(t *testing.T) {
	handler, _ := testSessionHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"world":"no_such_world"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Contains(t, response.Error, "Failed to load world")
}

func TestSessionHandler_CreateSaveFailure(t *testing.T) {
	handler, mockStorage := testSessionHandler()
	mockStorage.SetSaveError(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "Failed to save session", response.Error)
}

func TestSessionHandler_ActionSaveFailure(t *testing.T) {
	handler, mockStorage := testSessionHandler()
	created := createTestSession(t, handler, `{}`)

	mockStorage.SetSaveError(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.Session.ID+"/action",
		strings.NewReader(`{"utterance":"enter_forest"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "Failed to save session", response.Error)
}

func TestSessionHandler_GetScene(t *testing.T) {
	handler, _ := testSessionHandler()
	created := createTestSession(t, handler, `{}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.Session.ID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, created.Session.ID, response.Session.ID)
	assert.Contains(t, response.Narration, "Choices:")
	assert.True(t, strings.HasSuffix(response.Narration, game.Prompt))
	assert.Equal(t, "intro", response.Session.CurrentScene, "GET must not advance the session")
}

func TestSessionHandler_GetSceneNotFound(t *testing.T) {
	handler, _ := testSessionHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/deadbeef", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_Action(t *testing.T) {
	handler, mockStorage := testSessionHandler()
	created := createTestSession(t, handler, `{}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.Session.ID+"/action",
		strings.NewReader(`{"utterance":"enter the forest"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())

	var response SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "forest", response.Session.CurrentScene)
	assert.Contains(t, response.Narration, "You chose 'enter_forest'.")

	// The advanced state must be what was persisted.
	stored, err := mockStorage.LoadSession(req.Context(), created.Session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "forest", stored.CurrentScene)
	assert.Len(t, stored.History, 1)
}

func TestSessionHandler_ActionUnresolved(t *testing.T) {
	handler, _ := testSessionHandler()
	created := createTestSession(t, handler, `{}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.Session.ID+"/action",
		strings.NewReader(`{"utterance":"sing a song"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "intro", response.Session.CurrentScene)
	assert.Contains(t, response.Narration, "I didn't catch that.")
	assert.Empty(t, response.Session.History)
}

func TestSessionHandler_ActionInvalidJSON(t *testing.T) {
	handler, _ := testSessionHandler()
	created := createTestSession(t, handler, `{}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.Session.ID+"/action",
		strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionHandler_Journal(t *testing.T) {
	handler, _ := testSessionHandler()
	created := createTestSession(t, handler, `{"player_name":"Ada"}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.Session.ID+"/journal", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Contains(t, response.Narration, "Session: "+created.Session.ID)
	assert.Contains(t, response.Narration, "Player: Ada")
	assert.Contains(t, response.Narration, "Journal is empty.")
	assert.True(t, strings.HasSuffix(response.Narration, game.Prompt))
}

func TestSessionHandler_Restart(t *testing.T) {
	handler, mockStorage := testSessionHandler()
	created := createTestSession(t, handler, `{"player_name":"Ada"}`)

	// Advance one scene so restart has something to wipe.
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.Session.ID+"/action",
		strings.NewReader(`{"utterance":"enter_forest"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/sessions/"+created.Session.ID+"/restart", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())

	var response SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.NotEqual(t, created.Session.ID, response.Session.ID, "restart must issue a new session ID")
	assert.Equal(t, "intro", response.Session.CurrentScene)
	assert.Equal(t, "Ada", response.Session.PlayerName)
	assert.Empty(t, response.Session.History)
	assert.Contains(t, response.Narration, "The world resets.")

	// Old record is gone, new record is stored.
	old, err := mockStorage.LoadSession(req.Context(), created.Session.ID)
	require.NoError(t, err)
	assert.Nil(t, old)
	stored, err := mockStorage.LoadSession(req.Context(), response.Session.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestSessionHandler_Delete(t *testing.T) {
	handler, mockStorage := testSessionHandler()
	created := createTestSession(t, handler, `{}`)

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+created.Session.ID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)

	stored, err := mockStorage.LoadSession(req.Context(), created.Session.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := testSessionHandler()

	req := httptest.NewRequest(http.MethodPatch, "/v1/sessions/abc", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
