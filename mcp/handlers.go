package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/service"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "")
	}
	return &HandlerSet{deps: deps}
}

// HandleDetectSimilarity handles the detect_similarity tool
func (h *HandlerSet) HandleDetectSimilarity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	fileName, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError("filename parameter is required and must be a string"), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}
	if !info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("path must be a directory of submissions: %s", path)), nil
	}

	req, err := h.deps.LoadRequest(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load configuration: %v", err)), nil
	}
	req.Root = path
	req.FileNames = []string{fileName}
	req.StdFactor = request.GetFloat("std_factor", req.StdFactor)
	req.PermutationCount = request.GetInt("permutations", req.PermutationCount)
	req.Seed = int64(request.GetInt("seed", int(req.Seed)))
	req.IncludePatterns = request.GetStringSlice("include", req.IncludePatterns)
	req.OutputFormat = domain.OutputFormatJSON
	req.OutputWriter = io.Discard

	useCase, err := h.deps.BuildSimilarityUseCase(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create scanner: %v", err)), nil
	}

	response, err := useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("similarity detection failed: %v", err)), nil
	}
	if len(response.Reports) == 0 {
		return mcp.NewToolResultError("similarity detection produced no report"), nil
	}

	jsonData, err := service.EncodeJSON(response.Reports[0])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(jsonData), nil
}
