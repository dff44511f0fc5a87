// Package runner drives scripted playthroughs against a running API
// instance. Cases are plain JSON so new playthroughs need no Go changes.
package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sunriselabs/voice-adventure/pkg/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	Session   *session.Session `json:"session"`
	Narration string           `json:"narration"`
}

// Runner executes test cases against the API at BaseURL.
type Runner struct {
	BaseURL string
	client  *http.Client
}

func New(baseURL string) *Runner {
	return &Runner{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// RunCase plays the case start to finish. Transport and protocol errors
// abort the run; assertion failures are collected per step.
func (r *Runner) RunCase(tc TestCase) (*CaseResult, error) {
	created, err := r.createSession(tc.World, tc.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sessionID := created.Session.ID

	result := &CaseResult{Case: tc}

	for i, step := range tc.Steps {
		resp, err := r.sendAction(sessionID, step.Utterance)
		if err != nil {
			return nil, fmt.Errorf("step %d (%q): %w", i+1, step.Utterance, err)
		}

		sr := StepResult{
			Step:      step,
			Scene:     resp.Session.CurrentScene,
			Narration: resp.Narration,
		}
		if step.ExpectScene != "" && resp.Session.CurrentScene != step.ExpectScene {
			sr.Failures = append(sr.Failures,
				fmt.Sprintf("expected scene %q, got %q", step.ExpectScene, resp.Session.CurrentScene))
		}
		for _, want := range step.ExpectContains {
			if !strings.Contains(resp.Narration, want) {
				sr.Failures = append(sr.Failures,
					fmt.Sprintf("narration missing %q", want))
			}
		}
		result.Steps = append(result.Steps, sr)

		// Keep following the session if a restart changed its ID.
		sessionID = resp.Session.ID
	}

	if len(tc.ExpectJournal) > 0 {
		resp, err := r.fetchJournal(sessionID)
		if err != nil {
			return nil, fmt.Errorf("fetch journal: %w", err)
		}
		sr := StepResult{
			Step:      Step{Utterance: "(journal)"},
			Scene:     resp.Session.CurrentScene,
			Narration: resp.Narration,
		}
		for i, want := range tc.ExpectJournal {
			if i >= len(resp.Session.Journal) || resp.Session.Journal[i] != want {
				sr.Failures = append(sr.Failures,
					fmt.Sprintf("journal entry %d: expected %q, got %v", i, want, resp.Session.Journal))
				break
			}
		}
		result.Steps = append(result.Steps, sr)
	}

	if tc.Restart {
		resp, err := r.restart(sessionID)
		if err != nil {
			return nil, fmt.Errorf("restart: %w", err)
		}
		sr := StepResult{
			Step:      Step{Utterance: "(restart)"},
			Scene:     resp.Session.CurrentScene,
			Narration: resp.Narration,
		}
		if resp.Session.ID == sessionID {
			sr.Failures = append(sr.Failures, "restart did not issue a new session ID")
		}
		if len(resp.Session.History) != 0 {
			sr.Failures = append(sr.Failures, "restart left history behind")
		}
		if len(resp.Session.Journal) != 0 {
			sr.Failures = append(sr.Failures, "restart left journal entries behind")
		}
		result.Steps = append(result.Steps, sr)
	}

	return result, nil
}

func (r *Runner) createSession(worldName, playerName string) (*sessionResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"world":       worldName,
		"player_name": playerName,
	})
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Post(r.BaseURL+"/v1/sessions", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	return decodeSessionResponse(resp, http.StatusCreated)
}

func (r *Runner) sendAction(sessionID, utterance string) (*sessionResponse, error) {
	payload, err := json.Marshal(map[string]string{"utterance": utterance})
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/action", r.BaseURL, sessionID),
		"application/json",
		bytes.NewBuffer(payload),
	)
	if err != nil {
		return nil, err
	}
	return decodeSessionResponse(resp, http.StatusOK)
}

func (r *Runner) fetchJournal(sessionID string) (*sessionResponse, error) {
	resp, err := r.client.Get(fmt.Sprintf("%s/v1/sessions/%s/journal", r.BaseURL, sessionID))
	if err != nil {
		return nil, err
	}
	return decodeSessionResponse(resp, http.StatusOK)
}

func (r *Runner) restart(sessionID string) (*sessionResponse, error) {
	resp, err := r.client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/restart", r.BaseURL, sessionID),
		"application/json",
		nil,
	)
	if err != nil {
		return nil, err
	}
	return decodeSessionResponse(resp, http.StatusOK)
}

func decodeSessionResponse(resp *http.Response, wantStatus int) (*sessionResponse, error) {
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var sr sessionResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if sr.Session == nil {
		return nil, fmt.Errorf("response missing session")
	}
	return &sr, nil
}
