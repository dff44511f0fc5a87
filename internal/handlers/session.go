package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sunriselabs/voice-adventure/internal/services"
	"github.com/sunriselabs/voice-adventure/pkg/game"
	"github.com/sunriselabs/voice-adventure/pkg/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionRequest defines the request body for starting a new adventure
type CreateSessionRequest struct {
	World      string `json:"world,omitempty"`       // Optional: world name, defaults to the built-in world
	PlayerName string `json:"player_name,omitempty"` // Optional: name used in the greeting
}

// ActionRequest carries the player's spoken or typed utterance
type ActionRequest struct {
	Utterance string `json:"utterance"`
}

// SessionResponse pairs the persisted session with the narration to speak
type SessionResponse struct {
	Session   *session.Session `json:"session"`
	Narration string           `json:"narration"`
}

type SessionHandler struct {
	storage services.Storage
	logger  *slog.Logger
}

func NewSessionHandler(storage services.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for adventure sessions
// Routes:
// POST /v1/sessions                - Start a new adventure
// GET /v1/sessions/{id}            - Describe the current scene
// DELETE /v1/sessions/{id}         - End a session
// POST /v1/sessions/{id}/action    - Resolve a player utterance
// GET /v1/sessions/{id}/journal    - Read the session journal
// POST /v1/sessions/{id}/restart   - Restart the adventure
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	var sessionID, subresource string
	if path != "" {
		parts := strings.SplitN(path, "/", 2)
		sessionID = parts[0]
		if len(parts) == 2 {
			subresource = parts[1]
		}
	}

	switch {
	case r.Method == http.MethodPost && sessionID == "":
		h.handleCreate(w, r)

	case r.Method == http.MethodGet && sessionID != "" && subresource == "":
		h.handleGetScene(w, r, sessionID)

	case r.Method == http.MethodDelete && sessionID != "" && subresource == "":
		h.handleDelete(w, r, sessionID)

	case r.Method == http.MethodPost && sessionID != "" && subresource == "action":
		h.handleAction(w, r, sessionID)

	case r.Method == http.MethodGet && sessionID != "" && subresource == "journal":
		h.handleJournal(w, r, sessionID)

	case r.Method == http.MethodPost && sessionID != "" && subresource == "restart":
		h.handleRestart(w, r, sessionID)

	default:
		h.logger.Warn("Unsupported session route", "method", r.Method, "path", r.URL.Path)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed for this session route",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
	}
}

// engineFor builds an engine for the named world, or the default world
// when name is empty.
func (h *SessionHandler) engineFor(r *http.Request, worldName string) (*game.Engine, error) {
	graph, err := h.storage.GetWorld(r.Context(), worldName)
	if err != nil {
		return nil, err
	}
	return game.NewEngine(graph, h.logger), nil
}

// loadSession fetches the session and writes the appropriate error response
// when it is missing or the lookup fails. Returns nil when a response was
// already written.
func (h *SessionHandler) loadSession(w http.ResponseWriter, r *http.Request, sessionID string) *session.Session {
	s, err := h.storage.LoadSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", sessionID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to load session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return nil
	}
	if s == nil {
		h.logger.Warn("Session not found", "session_id", sessionID)
		w.WriteHeader(http.StatusNotFound)
		response := ErrorResponse{
			Error: "Session not found",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return nil
	}
	return s
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Invalid JSON in request body", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			response := ErrorResponse{
				Error: "Invalid JSON in request body",
			}
			if err := json.NewEncoder(w).Encode(response); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
	}

	engine, err := h.engineFor(r, req.World)
	if err != nil {
		h.logger.Warn("Failed to load world", "world", req.World, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		response := ErrorResponse{
			Error: "Failed to load world: " + err.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	s := engine.NewSession(req.PlayerName)
	narration := engine.StartAdventure(s, req.PlayerName)

	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to save session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Info("Session created", "session_id", s.ID, "world", s.World)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(SessionResponse{Session: s, Narration: narration}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleGetScene(w http.ResponseWriter, r *http.Request, sessionID string) {
	s := h.loadSession(w, r, sessionID)
	if s == nil {
		return
	}

	engine, err := h.engineFor(r, s.World)
	if err != nil {
		h.logger.Error("Failed to load world for session", "session_id", sessionID, "world", s.World, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to load world for session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SessionResponse{Session: s, Narration: engine.GetScene(s)}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID string) {
	s := h.loadSession(w, r, sessionID)
	if s == nil {
		return
	}

	if err := h.storage.DeleteSession(r.Context(), s.ID); err != nil {
		h.logger.Error("Failed to delete session", "session_id", sessionID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to delete session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Info("Session deleted", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		response := ErrorResponse{
			Error: "Invalid JSON in request body",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	s := h.loadSession(w, r, sessionID)
	if s == nil {
		return
	}

	engine, err := h.engineFor(r, s.World)
	if err != nil {
		h.logger.Error("Failed to load world for session", "session_id", sessionID, "world", s.World, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to load world for session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	narration, err := engine.PlayerAction(s, req.Utterance)
	if err != nil {
		h.logger.Error("Failed to resolve player action", "session_id", sessionID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to resolve player action: " + err.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save session", "session_id", sessionID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to save session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SessionResponse{Session: s, Narration: narration}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleJournal(w http.ResponseWriter, r *http.Request, sessionID string) {
	s := h.loadSession(w, r, sessionID)
	if s == nil {
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SessionResponse{Session: s, Narration: game.RenderJournal(s)}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleRestart(w http.ResponseWriter, r *http.Request, sessionID string) {
	s := h.loadSession(w, r, sessionID)
	if s == nil {
		return
	}

	engine, err := h.engineFor(r, s.World)
	if err != nil {
		h.logger.Error("Failed to load world for session", "session_id", sessionID, "world", s.World, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to load world for session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	narration := engine.RestartAdventure(s)

	// Restart issues a fresh session ID. The old record is removed so a
	// stale ID cannot resume the finished run.
	if err := h.storage.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Warn("Failed to delete previous session record", "session_id", sessionID, "error", err)
	}
	if err := h.storage.SaveSession(r.Context(), s); err != nil {
		h.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to save session",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Info("Session restarted", "previous_session_id", sessionID, "session_id", s.ID)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SessionResponse{Session: s, Narration: narration}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}
