// Package agenttools exposes the adventure engine to voice agents over MCP.
// Each tool pairs a schema definition with a handler so an agent can drive a
// full play session: start, look, act, review the journal, and restart.
package agenttools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sunriselabs/voice-adventure/internal/services"
	"github.com/sunriselabs/voice-adventure/pkg/game"
	"github.com/sunriselabs/voice-adventure/pkg/session"
)

// StartAdventureInput is the MCP tool input for starting a new session.
type StartAdventureInput struct {
	World      string `json:"world,omitempty" jsonschema:"world name, defaults to the built-in world"`
	PlayerName string `json:"player_name,omitempty" jsonschema:"player name used in the greeting"`
}

// SessionInput addresses an existing session by ID.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// PlayerActionInput carries an utterance for an existing session.
type PlayerActionInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Utterance string `json:"utterance" jsonschema:"what the player said"`
}

// AdventureResult is the common tool output: the session ID to keep using,
// the current scene, and the narration the agent should speak verbatim.
type AdventureResult struct {
	SessionID    string `json:"session_id" jsonschema:"session identifier"`
	World        string `json:"world" jsonschema:"world name"`
	CurrentScene string `json:"current_scene" jsonschema:"current scene ID"`
	Narration    string `json:"narration" jsonschema:"text to speak to the player"`
}

func adventureResult(s *session.Session, narration string) AdventureResult {
	return AdventureResult{
		SessionID:    s.ID,
		World:        s.World,
		CurrentScene: s.CurrentScene,
		Narration:    narration,
	}
}

// engineFor builds an engine for the named world.
func engineFor(ctx context.Context, storage services.Storage, logger *slog.Logger, worldName string) (*game.Engine, error) {
	graph, err := storage.GetWorld(ctx, worldName)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	return game.NewEngine(graph, logger), nil
}

func loadSession(ctx context.Context, storage services.Storage, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	s, err := storage.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	return s, nil
}

// StartAdventureTool defines the MCP tool schema for starting an adventure.
func StartAdventureTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "start_adventure",
		Description: "Starts a new adventure session and returns the opening narration",
	}
}

// StartAdventureHandler creates a session and persists it.
func StartAdventureHandler(storage services.Storage, logger *slog.Logger) mcp.ToolHandlerFor[StartAdventureInput, AdventureResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StartAdventureInput) (*mcp.CallToolResult, AdventureResult, error) {
		engine, err := engineFor(ctx, storage, logger, input.World)
		if err != nil {
			return nil, AdventureResult{}, err
		}

		s := engine.NewSession(input.PlayerName)
		narration := engine.StartAdventure(s, input.PlayerName)
		if err := storage.SaveSession(ctx, s); err != nil {
			return nil, AdventureResult{}, fmt.Errorf("save session: %w", err)
		}

		logger.Info("Adventure started", "session_id", s.ID, "world", s.World)
		return nil, adventureResult(s, narration), nil
	}
}

// GetSceneTool defines the MCP tool schema for describing the current scene.
func GetSceneTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_scene",
		Description: "Describes the current scene and choices without advancing the session",
	}
}

// GetSceneHandler renders the current scene. It never mutates the session.
func GetSceneHandler(storage services.Storage, logger *slog.Logger) mcp.ToolHandlerFor[SessionInput, AdventureResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, AdventureResult, error) {
		s, err := loadSession(ctx, storage, input.SessionID)
		if err != nil {
			return nil, AdventureResult{}, err
		}
		engine, err := engineFor(ctx, storage, logger, s.World)
		if err != nil {
			return nil, AdventureResult{}, err
		}
		return nil, adventureResult(s, engine.GetScene(s)), nil
	}
}

// PlayerActionTool defines the MCP tool schema for resolving an utterance.
func PlayerActionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "player_action",
		Description: "Resolves the player's utterance against the current choices and advances the session",
	}
}

// PlayerActionHandler resolves the utterance, applies the transition, and
// persists the advanced session. An unresolved utterance still succeeds; the
// narration asks the player to retry.
func PlayerActionHandler(storage services.Storage, logger *slog.Logger) mcp.ToolHandlerFor[PlayerActionInput, AdventureResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayerActionInput) (*mcp.CallToolResult, AdventureResult, error) {
		s, err := loadSession(ctx, storage, input.SessionID)
		if err != nil {
			return nil, AdventureResult{}, err
		}
		engine, err := engineFor(ctx, storage, logger, s.World)
		if err != nil {
			return nil, AdventureResult{}, err
		}

		narration, err := engine.PlayerAction(s, input.Utterance)
		if err != nil {
			return nil, AdventureResult{}, fmt.Errorf("resolve action: %w", err)
		}
		if err := storage.SaveSession(ctx, s); err != nil {
			return nil, AdventureResult{}, fmt.Errorf("save session: %w", err)
		}
		return nil, adventureResult(s, narration), nil
	}
}

// ShowJournalTool defines the MCP tool schema for reading the journal.
func ShowJournalTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "show_journal",
		Description: "Reads back the session journal and recent choices",
	}
}

// ShowJournalHandler renders the journal without mutating the session.
func ShowJournalHandler(storage services.Storage, logger *slog.Logger) mcp.ToolHandlerFor[SessionInput, AdventureResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, AdventureResult, error) {
		s, err := loadSession(ctx, storage, input.SessionID)
		if err != nil {
			return nil, AdventureResult{}, err
		}
		return nil, adventureResult(s, game.RenderJournal(s)), nil
	}
}

// RestartAdventureTool defines the MCP tool schema for restarting.
func RestartAdventureTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "restart_adventure",
		Description: "Resets the adventure to the entry scene under a fresh session ID",
	}
}

// RestartAdventureHandler wipes progress, issues a new session ID, deletes
// the old record, and persists the fresh one.
func RestartAdventureHandler(storage services.Storage, logger *slog.Logger) mcp.ToolHandlerFor[SessionInput, AdventureResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, AdventureResult, error) {
		s, err := loadSession(ctx, storage, input.SessionID)
		if err != nil {
			return nil, AdventureResult{}, err
		}
		engine, err := engineFor(ctx, storage, logger, s.World)
		if err != nil {
			return nil, AdventureResult{}, err
		}

		narration := engine.RestartAdventure(s)
		if err := storage.DeleteSession(ctx, input.SessionID); err != nil {
			logger.Warn("Failed to delete previous session record", "session_id", input.SessionID, "error", err)
		}
		if err := storage.SaveSession(ctx, s); err != nil {
			return nil, AdventureResult{}, fmt.Errorf("save session: %w", err)
		}

		logger.Info("Adventure restarted", "previous_session_id", input.SessionID, "session_id", s.ID)
		return nil, adventureResult(s, narration), nil
	}
}

// Register adds every adventure tool to the MCP server.
func Register(server *mcp.Server, storage services.Storage, logger *slog.Logger) {
	mcp.AddTool(server, StartAdventureTool(), StartAdventureHandler(storage, logger))
	mcp.AddTool(server, GetSceneTool(), GetSceneHandler(storage, logger))
	mcp.AddTool(server, PlayerActionTool(), PlayerActionHandler(storage, logger))
	mcp.AddTool(server, ShowJournalTool(), ShowJournalHandler(storage, logger))
	mcp.AddTool(server, RestartAdventureTool(), RestartAdventureHandler(storage, logger))
}
