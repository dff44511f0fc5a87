// Package game is the core of the voice adventure: the action resolver,
// the transition engine, and the narrative renderer. All operations are
// pure in-memory computations over a Session and an immutable world Graph;
// they return voice-friendly reply strings and reserve errors for
// data-integrity bugs, never for player speech.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sunriselabs/voice-adventure/pkg/session"
	"github.com/sunriselabs/voice-adventure/pkg/world"
)

// Engine runs adventure sessions over a validated world graph. It is
// stateless apart from the graph and safe to share across sessions; each
// call mutates only the Session it is given.
type Engine struct {
	graph  *world.Graph
	logger *slog.Logger
}

// NewEngine creates an engine for the given graph.
func NewEngine(g *world.Graph, logger *slog.Logger) *Engine {
	return &Engine{graph: g, logger: logger}
}

// Graph returns the engine's world graph.
func (e *Engine) Graph() *world.Graph {
	return e.graph
}

// NewSession creates a session positioned at the graph's entry scene.
func (e *Engine) NewSession(playerName string) *session.Session {
	return session.New(e.graph.Name(), e.graph.Entry(), playerName)
}

// StartAdventure resets the session and returns the opening narration:
// a greeting line followed by the entry scene.
func (e *Engine) StartAdventure(s *session.Session, playerName string) string {
	if playerName != "" {
		s.PlayerName = playerName
	}
	s.Reset(e.graph.Entry())

	name := s.PlayerName
	if name == "" {
		name = "traveler"
	}
	title := e.graph.Entry()
	if entry, ok := e.graph.Scene(e.graph.Entry()); ok {
		title = entry.Title
	}

	e.logger.Info("Adventure started", "session_id", s.ID, "world", s.World, "player", name)
	return fmt.Sprintf("Greetings %s. Welcome to '%s'.\n\n%s", name, title, renderScene(e.graph, s.CurrentScene))
}

// GetScene returns the current scene narration without mutating state.
func (e *Engine) GetScene(s *session.Session) string {
	return renderScene(e.graph, s.CurrentScene)
}

// PlayerAction resolves a spoken action against the current scene's
// choices. Unresolved input returns a clarifying reply and mutates
// nothing. A resolved choice is applied atomically: effects, history,
// choice log, then the scene change, followed by the destination
// narration. The error return is reserved for graph corruption.
func (e *Engine) PlayerAction(s *session.Session, utterance string) (string, error) {
	scene, ok := e.graph.Scene(s.CurrentScene)
	if !ok {
		return "", fmt.Errorf("session %s is in unknown scene %q", s.ID, s.CurrentScene)
	}

	key, resolved := Resolve(utterance, scene.Choices)
	if !resolved {
		e.logger.Debug("Action unresolved", "session_id", s.ID, "scene", s.CurrentScene, "utterance", utterance)
		return "I didn't catch that. Try one of the listed choices or use a short phrase like 'enter forest' or 'read sign'.\n\n" +
			renderScene(e.graph, s.CurrentScene), nil
	}

	if err := e.apply(s, scene, key); err != nil {
		return "", err
	}

	e.logger.Info("Action resolved", "session_id", s.ID, "action", key, "scene", s.CurrentScene)
	return fmt.Sprintf("You chose '%s'.\n\n%s", key, renderScene(e.graph, s.CurrentScene)), nil
}

// ShowJournal returns the session's remembered facts and recent history.
func (e *Engine) ShowJournal(s *session.Session) string {
	return RenderJournal(s)
}

// RestartAdventure resets the session and returns the restart narration.
func (e *Engine) RestartAdventure(s *session.Session) string {
	s.Reset(e.graph.Entry())
	e.logger.Info("Adventure restarted", "session_id", s.ID, "world", s.World)
	return fmt.Sprintf("The world resets. A new day begins.\n\n%s", renderScene(e.graph, s.CurrentScene))
}

// apply executes a resolved choice: effects in declared order, a history
// record, the choice log entry, and the scene change. The choice key must
// exist in the scene; callers only invoke apply after a successful
// Resolve. An invalid destination means the graph is corrupt and is
// surfaced as an error rather than leaving the session in an undefined
// scene.
func (e *Engine) apply(s *session.Session, scene *world.Scene, key string) error {
	var choice *world.Choice
	for i := range scene.Choices {
		if scene.Choices[i].Key == key {
			choice = &scene.Choices[i]
			break
		}
	}
	if choice == nil {
		return fmt.Errorf("choice %q does not exist in scene %q", key, scene.ID)
	}
	if _, ok := e.graph.Scene(choice.Scene); !ok {
		return fmt.Errorf("scene %q choice %q points to unknown scene %q", scene.ID, key, choice.Scene)
	}

	for _, effect := range choice.Effects {
		switch effect.Type {
		case world.EffectAddJournal:
			s.Journal = append(s.Journal, effect.Text)
		default:
			return fmt.Errorf("scene %q choice %q has unknown effect type %q", scene.ID, key, effect.Type)
		}
	}

	s.History = append(s.History, session.Transition{
		From:      s.CurrentScene,
		ActionKey: key,
		To:        choice.Scene,
		Timestamp: time.Now().UTC(),
	})
	s.ChoicesMade = append(s.ChoicesMade, key)
	s.CurrentScene = choice.Scene
	return nil
}
