package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/sunriselabs/voice-adventure/internal/services"
)

// WorldSummary is one entry in the world listing
type WorldSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type WorldsHandler struct {
	storage services.Storage
	logger  *slog.Logger
}

func NewWorldsHandler(storage services.Storage, logger *slog.Logger) *WorldsHandler {
	return &WorldsHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/worlds, listing every playable world.
func (h *WorldsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for worlds endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Supported methods: GET",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	worlds, err := h.storage.ListWorlds(r.Context())
	if err != nil {
		h.logger.Error("Failed to list worlds", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to list worlds",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	summaries := make([]WorldSummary, 0, len(worlds))
	for name, description := range worlds {
		summaries = append(summaries, WorldSummary{Name: name, Description: description})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		h.logger.Error("Failed to encode worlds response", "error", err)
	}
}
