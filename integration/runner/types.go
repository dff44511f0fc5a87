package runner

// TestCase is one scripted playthrough loaded from integration/cases.
type TestCase struct {
	Name       string `json:"name"`
	World      string `json:"world,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Steps      []Step `json:"steps"`

	// ExpectJournal is checked against the session journal after the
	// final step.
	ExpectJournal []string `json:"expect_journal,omitempty"`

	// Restart, when true, restarts the adventure after the final step and
	// verifies the session is back at the entry scene with empty history.
	Restart bool `json:"restart,omitempty"`
}

// Step sends one utterance and asserts on the outcome.
type Step struct {
	Utterance string `json:"utterance"`

	// ExpectScene is the scene the session must be in after the step.
	ExpectScene string `json:"expect_scene,omitempty"`

	// ExpectContains are substrings the narration must include.
	ExpectContains []string `json:"expect_contains,omitempty"`
}

// StepResult records what happened for reporting.
type StepResult struct {
	Step      Step
	Scene     string
	Narration string
	Failures  []string
}

// CaseResult aggregates step results for one test case.
type CaseResult struct {
	Case  TestCase
	Steps []StepResult
}

// Failed reports whether any step failed.
func (r *CaseResult) Failed() bool {
	for _, s := range r.Steps {
		if len(s.Failures) > 0 {
			return true
		}
	}
	return false
}
