package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ludo-technologies/simscan/internal/logger"
	"github.com/ludo-technologies/simscan/internal/version"
	"github.com/ludo-technologies/simscan/mcp"
)

const serverName = "simscan"

func main() {
	configPath := pflag.String("config", "", "configuration file (default: discovered from each scanned directory)")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn, error")
	metricsFile := pflag.String("metrics-file", "", "write Prometheus metrics for all tool calls to this file on shutdown")
	pflag.Parse()

	// MCP uses stdout for JSON-RPC; the logger writes to stderr
	log, err := logger.NewLogger("prod", *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(log, *configPath, *metricsFile); err != nil {
		log.Error("server error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(log *zap.Logger, configPath, metricsFile string) error {
	deps := mcp.NewDependencies(log, configPath)

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)
	mcp.RegisterTools(server, mcp.NewHandlerSet(deps))

	log.Info("starting MCP server",
		zap.String("name", serverName),
		zap.String("version", version.Short()),
		zap.String("config", deps.ConfigPath()),
		zap.Strings("tools", []string{"detect_similarity"}))

	serveErr := mcpserver.ServeStdio(server)

	if metricsFile != "" {
		if err := deps.Metrics().WriteToTextfile(metricsFile); err != nil {
			log.Warn("failed to write metrics", zap.String("path", metricsFile), zap.Error(err))
		}
	}
	return serveErr
}
