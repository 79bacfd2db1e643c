package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

var idProperty = map[string]any{
	"type":        "string",
	"description": "Recommended activity ID",
}

var summarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"emoji":       map[string]any{"type": "string"},
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
	},
	"required": []string{"id", "title"},
}

// buildToolCatalog returns all available MCP tools.
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "get_activity_status",
			Description: "Get the generation status of an activity detail (idle, loading, complete or error). Never triggers generation.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": idProperty},
				"required":   []string{"id"},
			},
		},
		{
			Name:        "generate_activity_detail",
			Description: "Return the activity detail, generating it if nothing is cached. Waits for an in-flight generation instead of starting another.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": idProperty},
				"required":   []string{"id"},
			},
		},
		{
			Name:        "prefetch_activities",
			Description: "Generate details for a batch of activities in parallel. Activities already complete or loading are skipped; failures are reported per activity.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"diary_id": map[string]any{
						"type":        "string",
						"description": "Prefetch every recommended activity of this diary's parallel diary",
					},
					"activities": map[string]any{
						"type":        "array",
						"description": "Explicit activity summaries to prefetch",
						"items":       summarySchema,
					},
				},
			},
		},
		{
			Name:        "clear_activity_status",
			Description: "Drop the in-memory status of an activity. A cached detail stays available.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": idProperty},
				"required":   []string{"id"},
			},
		},
		{
			Name:        "get_generation_history",
			Description: "List recent generation attempts for an activity, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": idProperty,
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum events to return (default 20)",
					},
				},
				"required": []string{"id"},
			},
		},
	}
}

// registerTools adds every catalog tool to server, dispatching through h.
func registerTools(server *sdkmcp.Server, h *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := h.Handle(ctx, name, args)
			if err != nil {
				return errorResult(err), nil
			}
			return jsonResult(result)
		})
	}
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

// errorResult reports a tool failure in-band so the model can react to it.
func errorResult(err error) *sdkmcp.CallToolResult {
	text := err.Error()
	if apiErr := MapError(err); apiErr != nil {
		if data, mErr := json.Marshal(apiErr); mErr == nil {
			text = string(data)
		}
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}
