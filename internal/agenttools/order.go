package agenttools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sunriselabs/voice-adventure/pkg/orders"
)

// SaveOrderInput is the MCP tool input for persisting a coffee order.
type SaveOrderInput struct {
	DrinkType string   `json:"drinkType" jsonschema:"drink type, e.g. latte"`
	Size      string   `json:"size" jsonschema:"drink size, e.g. medium"`
	Milk      string   `json:"milk" jsonschema:"milk choice, e.g. oat"`
	Extras    []string `json:"extras,omitempty" jsonschema:"extras such as syrups or shots"`
	Name      string   `json:"name" jsonschema:"customer name the order is saved under"`
}

// SaveOrderResult reports where the order landed and the spoken confirmation.
type SaveOrderResult struct {
	Path    string `json:"path" jsonschema:"filesystem path of the saved order"`
	Summary string `json:"summary" jsonschema:"confirmation to speak to the customer"`
}

// SaveOrderTool defines the MCP tool schema for saving an order.
func SaveOrderTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "save_order",
		Description: "Validates a coffee order and writes it to the order directory",
	}
}

// SaveOrderHandler normalizes the order and writes it through the store.
func SaveOrderHandler(store *orders.Store, logger *slog.Logger) mcp.ToolHandlerFor[SaveOrderInput, SaveOrderResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SaveOrderInput) (*mcp.CallToolResult, SaveOrderResult, error) {
		order := &orders.Order{
			DrinkType: input.DrinkType,
			Size:      input.Size,
			Milk:      input.Milk,
			Extras:    orders.ExtraList(input.Extras),
			Name:      input.Name,
		}

		saved, err := store.Save(order)
		if err != nil {
			return nil, SaveOrderResult{}, fmt.Errorf("save order: %w", err)
		}

		logger.Info("Order saved", "path", saved.Path)
		return nil, SaveOrderResult{Path: saved.Path, Summary: saved.Summary}, nil
	}
}

// RegisterOrders adds the order tool to the MCP server.
func RegisterOrders(server *mcp.Server, store *orders.Store, logger *slog.Logger) {
	mcp.AddTool(server, SaveOrderTool(), SaveOrderHandler(store, logger))
}
