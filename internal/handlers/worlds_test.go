package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sunriselabs/voice-adventure/internal/services"
	"github.com/sunriselabs/voice-adventure/pkg/world"
)

func TestWorldsHandler_List(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	mockStorage := services.NewMockStorage()
	handler := NewWorldsHandler(mockStorage, logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var summaries []WorldSummary
	if err := json.NewDecoder(rr.Body).Decode(&summaries); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	found := false
	for _, s := range summaries {
		if s.Name == world.ForestQuestName {
			found = true
			if s.Description == "" {
				t.Error("Expected non-empty description for built-in world")
			}
		}
	}
	if !found {
		t.Errorf("Expected built-in world in listing, got %v", summaries)
	}
}

func TestWorldsHandler_MethodNotAllowed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	handler := NewWorldsHandler(services.NewMockStorage(), logger)

	req := httptest.NewRequest(http.MethodPost, "/v1/worlds", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}
