package game

import (
	"testing"

	"github.com/sunriselabs/voice-adventure/pkg/world"
)

func introChoices() []world.Choice {
	intro, ok := world.ForestQuest().Scene("intro")
	if !ok {
		panic("forest quest has no intro scene")
	}
	return intro.Choices
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		choices   []world.Choice
		wantKey   string
		wantOK    bool
	}{
		{
			name:      "exact key match",
			utterance: "enter_forest",
			choices:   introChoices(),
			wantKey:   "enter_forest",
			wantOK:    true,
		},
		{
			name:      "exact key match is case-insensitive",
			utterance: "  Enter_Forest  ",
			choices:   introChoices(),
			wantKey:   "enter_forest",
			wantOK:    true,
		},
		{
			name:      "key substring of utterance",
			utterance: "please read_sign now",
			choices:   introChoices(),
			wantKey:   "read_sign",
			wantOK:    true,
		},
		{
			name:      "early description word",
			utterance: "I walk ahead",
			choices:   introChoices(),
			wantKey:   "enter_forest",
			wantOK:    true,
		},
		{
			name:      "early description word of later choice",
			utterance: "check out that wooden thing",
			choices:   introChoices(),
			wantKey:   "read_sign",
			wantOK:    true,
		},
		{
			name:      "full keyword fallback",
			utterance: "forest.",
			choices:   introChoices(),
			wantKey:   "enter_forest",
			wantOK:    true,
		},
		{
			name:      "empty utterance never resolves",
			utterance: "",
			choices:   introChoices(),
			wantOK:    false,
		},
		{
			name:      "whitespace-only utterance never resolves",
			utterance: "   \t  ",
			choices:   introChoices(),
			wantOK:    false,
		},
		{
			name:      "no keywords in common",
			utterance: "sing a sea shanty",
			choices:   introChoices(),
			wantOK:    false,
		},
		{
			name:      "zero choices never resolve",
			utterance: "enter_forest",
			choices:   nil,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := Resolve(tt.utterance, tt.choices)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.utterance, ok, tt.wantOK)
			}
			if ok && key != tt.wantKey {
				t.Errorf("Resolve(%q) = %q, want %q", tt.utterance, key, tt.wantKey)
			}
		})
	}
}

func TestResolve_ExactMatchPrecedence(t *testing.T) {
	// The utterance equals one choice key but also contains keywords of the
	// other ("forest"). The exact pass must win before any fuzzy pass runs.
	choices := []world.Choice{
		{Key: "forest_walk", Description: "Walk into the forest.", Scene: "forest"},
		{Key: "forest", Description: "Stay at the forest edge.", Scene: "intro"},
	}

	key, ok := Resolve("forest", choices)
	if !ok || key != "forest" {
		t.Errorf("expected exact match 'forest', got %q (ok=%v)", key, ok)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	// "walk" appears in the early words of two descriptions; the declared
	// order must decide, and decide identically on every call.
	choices := []world.Choice{
		{Key: "go_north", Description: "Walk north into town.", Scene: "town"},
		{Key: "go_south", Description: "Walk south to the docks.", Scene: "docks"},
	}

	first, ok := Resolve("I walk for a while", choices)
	if !ok {
		t.Fatal("expected utterance to resolve")
	}
	if first != "go_north" {
		t.Errorf("expected declared-order winner 'go_north', got %q", first)
	}
	for i := 0; i < 20; i++ {
		key, ok := Resolve("I walk for a while", choices)
		if !ok || key != first {
			t.Fatalf("resolution not deterministic: run %d got %q (ok=%v), want %q", i, key, ok, first)
		}
	}
}

func TestResolve_PassOrdering(t *testing.T) {
	// The second choice matches on pass 2 (early word "swim"), the first
	// only on pass 3 (late keyword "river"). Pass 2 must complete across
	// all choices before pass 3 starts.
	choices := []world.Choice{
		{Key: "wade", Description: "Step carefully into the shallow river", Scene: "river"},
		{Key: "dive", Description: "Swim across the deep water.", Scene: "far_bank"},
	}

	key, ok := Resolve("swim over the river", choices)
	if !ok || key != "dive" {
		t.Errorf("expected pass-2 winner 'dive', got %q (ok=%v)", key, ok)
	}
}
