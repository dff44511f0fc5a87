// Package session holds the mutable per-player state of a running
// adventure. One Session belongs to exactly one logical caller; operations
// on it are serialized by the hosting framework, so no locking happens
// here.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Transition is one record in the session history: the player moved from
// one scene to another via a resolved action key.
type Transition struct {
	From      string    `json:"from"`      // scene ID before the move
	ActionKey string    `json:"action"`    // resolved choice key
	To        string    `json:"to"`        // scene ID after the move
	Timestamp time.Time `json:"timestamp"` // UTC
}

// Session is the state of one adventure playthrough. History, Journal and
// ChoicesMade are append-only; the transition engine is the only writer.
type Session struct {
	ID           string       `json:"id"`                    // short opaque identifier, regenerated on restart
	World        string       `json:"world"`                 // name of the world graph being played
	PlayerName   string       `json:"player_name,omitempty"` // optional display name
	CurrentScene string       `json:"current_scene"`         // always a valid scene ID in the world
	History      []Transition `json:"history"`               // ordered transition records
	Journal      []string     `json:"journal"`               // remembered facts
	ChoicesMade  []string     `json:"choices_made"`          // projection of History for quick display
	StartedAt    time.Time    `json:"started_at"`            // session creation time, UTC
	UpdatedAt    time.Time    `json:"updated_at,omitempty"`  // set by storage on save
}

// New creates a fresh session positioned at the given entry scene.
func New(world, entryScene, playerName string) *Session {
	s := &Session{World: world, PlayerName: playerName}
	s.Reset(entryScene)
	return s
}

// Reset reinitializes all mutable fields: fresh ID and timestamp, entry
// scene, empty history, journal and choice log. PlayerName and World are
// kept; the new ID is always distinct from the prior one.
func (s *Session) Reset(entryScene string) {
	s.ID = newID()
	s.CurrentScene = entryScene
	s.History = make([]Transition, 0)
	s.Journal = make([]string, 0)
	s.ChoicesMade = make([]string, 0)
	s.StartedAt = time.Now().UTC()
}

// newID returns a short opaque session identifier. Eight hex characters of
// a UUID are plenty for the single-process session space this serves.
func newID() string {
	return uuid.New().String()[:8]
}
