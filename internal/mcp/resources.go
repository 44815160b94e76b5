package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {
	srv.AddResource(
		mcp.NewResource(
			"ozone://catalog",
			"Ozone Model Catalog",
			mcp.WithResourceDescription(
				"The full active model catalog with verified benchmark results, "+
					"suitable for loading into context before answering questions "+
					"about Ozone models.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleCatalogResource,
	)
}

// handleCatalogResource returns the active models and their verified
// benchmark results as one JSON document.
func (s *MCPServer) handleCatalogResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	models, err := s.store.ListActiveModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	benchmarks, err := s.store.ListVerifiedBenchmarks(ctx, maxBenchmarkLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmarks: %w", err)
	}

	b, err := json.MarshalIndent(map[string]interface{}{
		"models":     models,
		"benchmarks": benchmarks,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ozone://catalog",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
