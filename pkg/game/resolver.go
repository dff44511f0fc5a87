package game

import (
	"strings"

	"github.com/sunriselabs/voice-adventure/pkg/world"
)

// earlyWordCount is how many leading description words the second resolver
// pass considers. Spoken commands usually repeat the start of the choice
// label ("walk into the forest"), so the first few words carry most of the
// signal.
const earlyWordCount = 3

// Resolve maps a raw player utterance to one of the scene's choice keys.
// The second return value is false when nothing matched; unresolved input
// is a normal, frequent outcome for open-ended speech, never an error.
//
// Three ordered passes, first match wins, all matching case-insensitive.
// Passes iterate choices in declared order so that ambiguous utterances
// resolve identically across runs:
//
//  1. Exact key match: the trimmed, lowered utterance equals a choice key.
//  2. Early-word containment: the choice key, or any of the first three
//     words of the choice description, appears as a substring of the
//     utterance.
//  3. Full keyword containment: any word of the full description appears
//     as a substring of the utterance.
//
// Common words ("the", "a") are not filtered out, so descriptions sharing
// them can shadow later choices. Authors control this through choice order.
func Resolve(utterance string, choices []world.Choice) (string, bool) {
	action := strings.ToLower(strings.TrimSpace(utterance))
	if action == "" || len(choices) == 0 {
		return "", false
	}

	// Pass 1: exact key match.
	for _, c := range choices {
		if action == c.Key {
			return c.Key, true
		}
	}

	// Pass 2: key substring, or one of the leading description words.
	for _, c := range choices {
		if strings.Contains(action, c.Key) {
			return c.Key, true
		}
		words := strings.Fields(strings.ToLower(c.Description))
		if len(words) > earlyWordCount {
			words = words[:earlyWordCount]
		}
		for _, w := range words {
			if strings.Contains(action, w) {
				return c.Key, true
			}
		}
	}

	// Pass 3: any description word.
	for _, c := range choices {
		for _, w := range strings.Fields(strings.ToLower(c.Description)) {
			if w != "" && strings.Contains(action, w) {
				return c.Key, true
			}
		}
	}

	return "", false
}
