package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers the simscan MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	s.AddTool(mcp.NewTool("detect_similarity",
		mcp.WithDescription("Find submissions of one file whose MinHash similarity is anomalously high compared with the rest of the class"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory holding one subdirectory per student")),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Submission file name to compare, matched case-insensitively (e.g. Main.java)")),
		mcp.WithNumber("std_factor",
			mcp.Description("Standard deviations above the mean maximum similarity to flag (default: 2.0)")),
		mcp.WithNumber("permutations",
			mcp.Description("MinHash functions per signature (default: 2500)")),
		mcp.WithNumber("seed",
			mcp.Description("Hash seed for reproducible results, 0 picks one at random (default: 0)")),
		mcp.WithArray("include",
			mcp.WithStringItems(),
			mcp.Description("Glob patterns of files to consider (default: **/*.java)")),
	), h.HandleDetectSimilarity)
}
