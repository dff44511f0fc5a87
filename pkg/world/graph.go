// Package world defines the static scene graph for a voice adventure:
// scenes, choices, effect directives, and the validated Graph built from
// them. A Graph is immutable after construction and safe to share across
// sessions without synchronization.
package world

import (
	"encoding/json"
	"fmt"
)

// World is the serializable form of a scene graph, as stored in
// data/worlds/*.json.
type World struct {
	Name        string  `json:"name"`                  // display name
	Description string  `json:"description,omitempty"` // short pitch shown in world lists
	Entry       string  `json:"entry"`                 // ID of the starting scene
	Scenes      []Scene `json:"scenes"`
}

// Graph is a validated, immutable scene graph. Every choice destination is
// guaranteed to resolve to a scene in the graph.
type Graph struct {
	name   string
	entry  string
	scenes []Scene
	index  map[string]int // scene ID -> index into scenes
}

// NewGraph validates the given world and builds a Graph from it. Validation
// failures indicate a broken world definition and are fatal at load time:
// callers must refuse to start rather than run with a dangling destination.
func NewGraph(w *World) (*Graph, error) {
	if w == nil {
		return nil, fmt.Errorf("world is nil")
	}
	if len(w.Scenes) == 0 {
		return nil, fmt.Errorf("world %q has no scenes", w.Name)
	}

	index := make(map[string]int, len(w.Scenes))
	for i, s := range w.Scenes {
		if s.ID == "" {
			return nil, fmt.Errorf("scene at index %d has empty ID", i)
		}
		if _, exists := index[s.ID]; exists {
			return nil, fmt.Errorf("duplicate scene ID %q", s.ID)
		}
		index[s.ID] = i
	}

	if w.Entry == "" {
		return nil, fmt.Errorf("world %q has no entry scene", w.Name)
	}
	if _, ok := index[w.Entry]; !ok {
		return nil, fmt.Errorf("entry scene %q does not exist", w.Entry)
	}

	for _, s := range w.Scenes {
		keys := make(map[string]bool, len(s.Choices))
		for _, c := range s.Choices {
			if c.Key == "" {
				return nil, fmt.Errorf("scene %q has a choice with empty key", s.ID)
			}
			if keys[c.Key] {
				return nil, fmt.Errorf("scene %q has duplicate choice key %q", s.ID, c.Key)
			}
			keys[c.Key] = true
			if _, ok := index[c.Scene]; !ok {
				return nil, fmt.Errorf("scene %q choice %q points to unknown scene %q", s.ID, c.Key, c.Scene)
			}
			for _, e := range c.Effects {
				if err := e.validate(); err != nil {
					return nil, fmt.Errorf("scene %q choice %q: %w", s.ID, c.Key, err)
				}
			}
		}
	}

	return &Graph{
		name:   w.Name,
		entry:  w.Entry,
		scenes: w.Scenes,
		index:  index,
	}, nil
}

// ParseWorld strict-decodes a world definition from JSON and validates it.
func ParseWorld(data []byte) (*Graph, error) {
	var w World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal world: %w", err)
	}
	return NewGraph(&w)
}

// Name returns the world's display name.
func (g *Graph) Name() string {
	return g.name
}

// Entry returns the ID of the starting scene.
func (g *Graph) Entry() string {
	return g.entry
}

// Scene looks up a scene by ID. The returned pointer must be treated as
// read-only.
func (g *Graph) Scene(id string) (*Scene, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.scenes[i], true
}

// Scenes returns all scenes in declared order, read-only.
func (g *Graph) Scenes() []Scene {
	return g.scenes
}
