// Command mcp runs the adventure engine as an MCP server over stdio, so a
// voice agent (or any MCP client) can drive sessions through tool calls.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sunriselabs/voice-adventure/internal/agenttools"
	"github.com/sunriselabs/voice-adventure/internal/config"
	"github.com/sunriselabs/voice-adventure/internal/logger"
	"github.com/sunriselabs/voice-adventure/internal/services"
	"github.com/sunriselabs/voice-adventure/pkg/orders"
)

const (
	serverName    = "voice-adventure"
	serverVersion = "1.0.0"
)

func main() {
	cfg := config.Load()
	log := logger.SetupStderr(cfg)

	log.Info("Starting Voice Adventure MCP server",
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	storage, err := services.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := storage.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	store := orders.NewStore(cfg.OrdersDir, cfg.CoffeeBrand)

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	agenttools.Register(server, storage, log)
	agenttools.RegisterOrders(server, store, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("MCP server listening on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Error("MCP server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("MCP server exited")
}
