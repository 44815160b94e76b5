package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leap-ai/ozone/internal/model"
)

const maxBenchmarkLimit = 100

// registerTools registers the Ozone MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	srv.AddTool(
		mcp.NewTool("ozone_list_models",
			mcp.WithDescription(
				"List the active Ozone AI models, including parameter counts, "+
					"context windows, performance scores, and energy efficiency "+
					"figures. Use this first to discover the catalog.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListModels,
	)

	srv.AddTool(
		mcp.NewTool("ozone_get_benchmarks",
			mcp.WithDescription(
				"List verified benchmark results, newest first. Each result "+
					"names the model and benchmark suite it was measured on, "+
					"with the score and test date.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results to return (default 25, max 100)"),
			),
		),
		s.handleGetBenchmarks,
	)

	srv.AddTool(
		mcp.NewTool("ozone_status",
			mcp.WithDescription(
				"Report the catalog service status: API version and the number "+
					"of models, benchmark results, and registered accounts.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleStatus,
	)
}

func (s *MCPServer) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	models, err := s.store.ListActiveModels(ctx)
	if err != nil {
		return toolError("failed to list models: %v", err)
	}
	return successJSON(map[string]interface{}{
		"models": models,
		"count":  len(models),
	})
}

func (s *MCPServer) handleGetBenchmarks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clamp(optionalInt(request, "limit", 25), 1, maxBenchmarkLimit)

	rows, err := s.store.ListVerifiedBenchmarks(ctx, limit)
	if err != nil {
		return toolError("failed to list benchmarks: %v", err)
	}
	return successJSON(map[string]interface{}{
		"benchmarks": rows,
		"count":      len(rows),
	})
}

func (s *MCPServer) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modelCount, err := s.store.CountModels(ctx)
	if err != nil {
		return toolError("failed to count models: %v", err)
	}
	benchCount, err := s.store.CountBenchmarkResults(ctx)
	if err != nil {
		return toolError("failed to count benchmarks: %v", err)
	}
	accountCount, err := s.store.CountAccounts(ctx)
	if err != nil {
		return toolError("failed to count accounts: %v", err)
	}

	return successJSON(map[string]interface{}{
		"status":        "active",
		"version":       model.GatewayVersion,
		"ozone_version": model.OzoneVersion,
		"api_version":   model.APIVersion,
		"models":        modelCount,
		"benchmarks":    benchCount,
		"accounts":      accountCount,
	})
}
