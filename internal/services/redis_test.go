package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/sunriselabs/voice-adventure/pkg/session"
	"github.com/sunriselabs/voice-adventure/pkg/world"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	storage, err := NewRedisStorage("redis://"+mr.Addr(), t.TempDir(), time.Minute, logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis storage: %v", err)
	}

	return storage, mr
}

func TestRedisStorage_SaveAndLoadSession(t *testing.T) {
	storage, mr := setupTestStorage(t)
	defer mr.Close()
	defer storage.Close()

	ctx := context.Background()
	s := session.New(world.ForestQuestName, "intro", "Jordan")
	s.Journal = append(s.Journal, "Found a tiny golden coin.")

	if err := storage.SaveSession(ctx, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := storage.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil session")
	}

	if loaded.ID != s.ID {
		t.Errorf("Expected ID %v, got %v", s.ID, loaded.ID)
	}
	if loaded.CurrentScene != "intro" {
		t.Errorf("Expected current scene 'intro', got %v", loaded.CurrentScene)
	}
	if len(loaded.Journal) != 1 || loaded.Journal[0] != "Found a tiny golden coin." {
		t.Errorf("Expected journal to round-trip, got %v", loaded.Journal)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set by save")
	}
}

func TestRedisStorage_LoadNonExistentSession(t *testing.T) {
	storage, mr := setupTestStorage(t)
	defer mr.Close()
	defer storage.Close()

	loaded, err := storage.LoadSession(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("Expected no error for non-existent session, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for non-existent session")
	}
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	storage, mr := setupTestStorage(t)
	defer mr.Close()
	defer storage.Close()

	ctx := context.Background()
	s := session.New(world.ForestQuestName, "intro", "")

	if err := storage.SaveSession(ctx, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := storage.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	loaded, err := storage.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Unexpected error after delete: %v", err)
	}
	if loaded != nil {
		t.Error("Expected session to be gone after delete")
	}
}

func TestRedisStorage_SessionTTL(t *testing.T) {
	storage, mr := setupTestStorage(t)
	defer mr.Close()
	defer storage.Close()

	ctx := context.Background()
	s := session.New(world.ForestQuestName, "intro", "")
	if err := storage.SaveSession(ctx, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	loaded, err := storage.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Unexpected error after TTL expiry: %v", err)
	}
	if loaded != nil {
		t.Error("Expected session to expire after TTL")
	}
}

func TestRedisStorage_GetWorld_Builtin(t *testing.T) {
	storage, mr := setupTestStorage(t)
	defer mr.Close()
	defer storage.Close()

	ctx := context.Background()

	for _, name := range []string{"", world.ForestQuestName} {
		g, err := storage.GetWorld(ctx, name)
		if err != nil {
			t.Fatalf("Failed to get built-in world for %q: %v", name, err)
		}
		if g.Entry() != "intro" {
			t.Errorf("Expected entry 'intro', got %q", g.Entry())
		}
	}

	if _, err := storage.GetWorld(ctx, "no_such_world"); err == nil {
		t.Error("Expected error for unknown world")
	}
}

func TestRedisStorage_GetWorld_FromDataDir(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	dataDir := t.TempDir()
	worldsDir := filepath.Join(dataDir, "worlds")
	if err := os.MkdirAll(worldsDir, 0o755); err != nil {
		t.Fatalf("Failed to create worlds dir: %v", err)
	}
	worldJSON := `{
		"name": "tiny",
		"description": "One room.",
		"entry": "room",
		"scenes": [
			{"id": "room", "title": "Room", "description": "A room.", "choices": [
				{"key": "wait", "description": "Wait here.", "scene": "room"}
			]}
		]
	}`
	if err := os.WriteFile(filepath.Join(worldsDir, "tiny.json"), []byte(worldJSON), 0o644); err != nil {
		t.Fatalf("Failed to write world file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	storage, err := NewRedisStorage("redis://"+mr.Addr(), dataDir, time.Minute, logger)
	if err != nil {
		t.Fatalf("Failed to create redis storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	g, err := storage.GetWorld(ctx, "tiny")
	if err != nil {
		t.Fatalf("Failed to load world from data dir: %v", err)
	}
	if _, ok := g.Scene("room"); !ok {
		t.Error("Expected scene 'room' in loaded world")
	}

	worlds, err := storage.ListWorlds(ctx)
	if err != nil {
		t.Fatalf("Failed to list worlds: %v", err)
	}
	if _, ok := worlds[world.ForestQuestName]; !ok {
		t.Error("Expected built-in world in listing")
	}
	if desc, ok := worlds["tiny"]; !ok || desc != "One room." {
		t.Errorf("Expected 'tiny' world with description, got %v", worlds)
	}
}

func TestRedisStorage_GetWorld_NameFilenameMismatch(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	dataDir := t.TempDir()
	worldsDir := filepath.Join(dataDir, "worlds")
	if err := os.MkdirAll(worldsDir, 0o755); err != nil {
		t.Fatalf("Failed to create worlds dir: %v", err)
	}
	worldJSON := `{
		"name": "misty_isle",
		"description": "A fog-bound island.",
		"entry": "dock",
		"scenes": [
			{"id": "dock", "title": "Dock", "description": "A dock.", "choices": [
				{"key": "wait", "description": "Wait here.", "scene": "dock"}
			]}
		]
	}`
	if err := os.WriteFile(filepath.Join(worldsDir, "island.json"), []byte(worldJSON), 0o644); err != nil {
		t.Fatalf("Failed to write world file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	storage, err := NewRedisStorage("redis://"+mr.Addr(), dataDir, time.Minute, logger)
	if err != nil {
		t.Fatalf("Failed to create redis storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	// The mismatch must surface at load time. Otherwise a session created
	// from island.json would store "misty_isle" and every later lookup on
	// that session would fail mid-play.
	if _, err := storage.GetWorld(ctx, "island"); err == nil {
		t.Error("Expected error for world whose name does not match its filename")
	}
	if _, err := storage.GetWorld(ctx, "misty_isle"); err == nil {
		t.Error("Expected error for lookup by declared name with no matching file")
	}

	worlds, err := storage.ListWorlds(ctx)
	if err != nil {
		t.Fatalf("Failed to list worlds: %v", err)
	}
	if _, ok := worlds["island"]; ok {
		t.Error("Expected mismatched world file to be excluded from listing")
	}
	if _, ok := worlds["misty_isle"]; ok {
		t.Error("Expected mismatched world name to be excluded from listing")
	}
}

func TestNewRedisStorage_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	if _, err := NewRedisStorage("not a url", "", time.Minute, logger); err == nil {
		t.Error("Expected error for invalid redis URL")
	}
}
