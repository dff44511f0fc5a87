package world

import "fmt"

// EffectAddJournal appends literal text to the session journal.
const EffectAddJournal = "add_journal"

// Effect is a side-effect directive attached to a Choice. It is a tagged
// variant: Type selects the behavior, the remaining fields are its payload.
// New effect kinds are added by defining a new Type constant and handling it
// exhaustively in the transition engine.
type Effect struct {
	Type string `json:"type"`           // e.g. "add_journal"
	Text string `json:"text,omitempty"` // payload for add_journal
}

// Choice is one selectable action within a Scene.
type Choice struct {
	Key         string   `json:"key"`               // unique within the scene, lowercase snake_case
	Description string   `json:"description"`       // spoken label, also fuzzy-match fodder
	Scene       string   `json:"scene"`             // destination scene ID
	Effects     []Effect `json:"effects,omitempty"` // applied in declared order on transition
}

// Scene is a single node in the world graph. Choices are kept as a slice
// because their declared order is the resolver's iteration order.
type Scene struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Choices     []Choice `json:"choices,omitempty"`
}

func (e Effect) validate() error {
	switch e.Type {
	case EffectAddJournal:
		if e.Text == "" {
			return fmt.Errorf("effect %q requires text", e.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown effect type %q", e.Type)
	}
}
