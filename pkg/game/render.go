package game

import (
	"fmt"
	"strings"

	"github.com/sunriselabs/voice-adventure/pkg/session"
	"github.com/sunriselabs/voice-adventure/pkg/world"
)

// Prompt is the literal every rendered reply ends with. The surrounding
// voice flow relies on it to know a turn is complete and the player is
// being asked for input.
const Prompt = "What do you do?"

// voidDescription is spoken when a scene ID cannot be found. Reachable only
// through graph corruption, but the renderer still answers with a complete,
// prompt-terminated reply rather than failing a voice turn.
const voidDescription = "You are in a featureless void."

// journalHistoryLimit caps how many recent transitions ShowJournal reads
// back. Long histories make poor listening.
const journalHistoryLimit = 6

// renderScene formats a scene as a single voice-friendly reply: the
// description, the enumerated choices, and the closing prompt.
func renderScene(g *world.Graph, sceneID string) string {
	s, ok := g.Scene(sceneID)
	if !ok {
		return voidDescription + " " + Prompt
	}

	var b strings.Builder
	b.WriteString(s.Description)
	b.WriteString("\n\nChoices:\n")
	for _, c := range s.Choices {
		fmt.Fprintf(&b, "- %s (say: %s)\n", c.Description, c.Key)
	}
	b.WriteString("\n" + Prompt)
	return b.String()
}

// RenderJournal formats the session metadata, journal entries and recent
// history, ending with the mandatory prompt.
func RenderJournal(s *session.Session) string {
	lines := []string{
		fmt.Sprintf("Session: %s | Started at: %s", s.ID, s.StartedAt.Format("2006-01-02T15:04:05Z")),
	}
	if s.PlayerName != "" {
		lines = append(lines, fmt.Sprintf("Player: %s", s.PlayerName))
	}

	if len(s.Journal) > 0 {
		lines = append(lines, "", "Journal entries:")
		for _, entry := range s.Journal {
			lines = append(lines, "- "+entry)
		}
	} else {
		lines = append(lines, "", "Journal is empty.")
	}

	lines = append(lines, "", "Recent choices:")
	history := s.History
	if len(history) > journalHistoryLimit {
		history = history[len(history)-journalHistoryLimit:]
	}
	for _, h := range history {
		lines = append(lines, fmt.Sprintf("- %s | %s -> %s via %s",
			h.Timestamp.Format("2006-01-02T15:04:05Z"), h.From, h.To, h.ActionKey))
	}

	lines = append(lines, "", Prompt)
	return strings.Join(lines, "\n")
}
