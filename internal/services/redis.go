package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sunriselabs/voice-adventure/pkg/session"
	"github.com/sunriselabs/voice-adventure/pkg/world"
)

// RedisStorage implements the Storage interface using Redis for sessions
// and the filesystem for world definitions. The built-in forest quest
// world is always available, even with an empty data directory.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL, dataDir string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if dataDir == "" {
		dataDir = "./data"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisStorage{
		client:  redis.NewClient(opt),
		logger:  logger,
		dataDir: dataDir,
		ttl:     ttl,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations (Redis-backed)

func (r *RedisStorage) SaveSession(ctx context.Context, s *session.Session) error {
	if s == nil {
		return fmt.Errorf("session cannot be nil")
	}
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := "session:" + s.ID
	if err := r.client.Set(ctx, key, string(data), r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id string) (*session.Session, error) {
	key := "session:" + id
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Warn("Session not found", "session_id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		r.logger.Error("Failed to unmarshal session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id string) error {
	key := "session:" + id
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// World operations (filesystem-backed, with the built-in default)

func (r *RedisStorage) GetWorld(ctx context.Context, name string) (*world.Graph, error) {
	if name == "" || name == world.ForestQuestName {
		return world.ForestQuest(), nil
	}

	path := filepath.Join(r.dataDir, "worlds", name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("world not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}

	g, err := world.ParseWorld(data)
	if err != nil {
		return nil, fmt.Errorf("world %s is invalid: %w", name, err)
	}

	// Sessions store the world name and look it up again on every call,
	// so a file whose name disagrees with its filename must fail here at
	// load time, not later with a missing-world error mid-session.
	if g.Name() != name {
		return nil, fmt.Errorf("world file %s.json declares name %q; name must match the filename", name, g.Name())
	}

	return g, nil
}

func (r *RedisStorage) ListWorlds(ctx context.Context) (map[string]string, error) {
	worlds := map[string]string{
		world.ForestQuestName: "A tiny outdoors adventure with a forest, a cave and a single golden coin.",
	}

	worldsDir := filepath.Join(r.dataDir, "worlds")
	err := filepath.WalkDir(worldsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("Failed to read world file", "path", path, "error", err)
			return nil
		}

		var w world.World
		if err := json.Unmarshal(data, &w); err != nil {
			r.logger.Warn("Failed to unmarshal world file", "path", path, "error", err)
			return nil
		}
		if _, err := world.NewGraph(&w); err != nil {
			r.logger.Warn("Skipping invalid world file", "path", path, "error", err)
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), ".json")
		if w.Name != name {
			r.logger.Warn("Skipping world file whose name does not match its filename",
				"path", path, "name", w.Name)
			return nil
		}
		desc := w.Description
		if desc == "" {
			desc = name
		}
		worlds[name] = desc
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		r.logger.Error("Failed to walk worlds directory", "error", err)
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}

	return worlds, nil
}
