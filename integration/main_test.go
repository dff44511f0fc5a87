//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sunriselabs/voice-adventure/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")

func TestMain(m *testing.M) {
	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8080" // Default to localhost
	}

	fmt.Printf("Running Voice Adventure Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL)

	code := m.Run()
	os.Exit(code)
}

func TestCases(t *testing.T) {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	r := runner.New(baseURL)

	files, err := filepath.Glob(filepath.Join("cases", "*.json"))
	if err != nil {
		t.Fatalf("Failed to list cases: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("No test cases found in integration/cases/")
	}
	sort.Strings(files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".json")
		if *caseFlag != "" && name != *caseFlag {
			continue
		}

		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("Failed to read case file: %v", err)
			}

			var tc runner.TestCase
			if err := json.Unmarshal(data, &tc); err != nil {
				t.Fatalf("Failed to parse case file: %v", err)
			}

			result, err := r.RunCase(tc)
			if err != nil {
				t.Fatalf("Case aborted: %v", err)
			}

			for i, sr := range result.Steps {
				for _, failure := range sr.Failures {
					t.Errorf("step %d (%q): %s", i+1, sr.Step.Utterance, failure)
				}
			}
		})
	}
}
