package services

import (
	"context"

	"github.com/sunriselabs/voice-adventure/pkg/session"
	"github.com/sunriselabs/voice-adventure/pkg/world"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for session persistence and world lookup.
// Sessions are the per-session mutable state containers owned by the
// hosting framework; worlds are static, validated graphs shared by all
// sessions.
type Storage interface {
	HealthChecker
	Closer

	// SaveSession stores a session under its current ID
	SaveSession(ctx context.Context, s *session.Session) error

	// LoadSession retrieves a session by ID
	// Returns nil if the session doesn't exist
	LoadSession(ctx context.Context, id string) (*session.Session, error)

	// DeleteSession removes a session by ID
	DeleteSession(ctx context.Context, id string) error

	// GetWorld returns a validated world graph by name
	GetWorld(ctx context.Context, name string) (*world.Graph, error)

	// ListWorlds returns the playable worlds as name -> description
	ListWorlds(ctx context.Context) (map[string]string, error)
}
