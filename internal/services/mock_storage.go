package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sunriselabs/voice-adventure/pkg/session"
	"github.com/sunriselabs/voice-adventure/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	sessions  map[string]*session.Session
	worlds    map[string]*world.Graph
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage with the built-in world loaded
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string]*session.Session),
		worlds: map[string]*world.Graph{
			world.ForestQuestName: world.ForestQuest(),
		},
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.pingError = err
}

// SetSaveError configures the mock to fail on session saves
func (m *MockStorage) SetSaveError(err error) {
	m.saveError = err
}

// AddWorld registers an additional world graph
func (m *MockStorage) AddWorld(name string, g *world.Graph) {
	m.worlds[name] = g
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession mocks saving a session
func (m *MockStorage) SaveSession(ctx context.Context, s *session.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[s.ID] = s
	return nil
}

// LoadSession mocks loading a session
func (m *MockStorage) LoadSession(ctx context.Context, id string) (*session.Session, error) {
	s, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return s, nil
}

// DeleteSession mocks deleting a session
func (m *MockStorage) DeleteSession(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// GetWorld mocks world lookup
func (m *MockStorage) GetWorld(ctx context.Context, name string) (*world.Graph, error) {
	if name == "" {
		name = world.ForestQuestName
	}
	g, exists := m.worlds[name]
	if !exists {
		return nil, fmt.Errorf("world not found: %s", name)
	}
	return g, nil
}

// ListWorlds mocks world listing
func (m *MockStorage) ListWorlds(ctx context.Context) (map[string]string, error) {
	worlds := make(map[string]string, len(m.worlds))
	for name, g := range m.worlds {
		worlds[name] = g.Name()
	}
	return worlds, nil
}
