package main

import (
	"flag"

	"github.com/flipkit/imgflip-mcp/internal/config"
	"github.com/flipkit/imgflip-mcp/internal/logger"
	"github.com/flipkit/imgflip-mcp/pkg/server"
	"github.com/flipkit/imgflip-mcp/pkg/tools"
	"github.com/flipkit/imgflip-mcp/pkg/transport"
)

func main() {
	// Parse command line flags
	debug := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", "", "Config file path (defaults to ./configs/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	// Configure logging; stdout belongs to the MCP protocol
	logger.SetDebug(*debug || cfg.Log.Debug)
	if cfg.Log.File != "" {
		if err := logger.SetLogFile(cfg.Log.File); err != nil {
			logger.Warn("Failed to open log file %s: %v", cfg.Log.File, err)
		}
	}

	if !cfg.HasCredentials() {
		logger.Warn("IMGFLIP_USERNAME and IMGFLIP_PASSWORD are not set")
		logger.Warn("Without them you won't be able to create memes")
	}

	logger.Info("Starting Imgflip MCP server")

	toolkit := tools.NewToolkit(cfg)
	srv := server.InitInstance(transport.NewStdioTransport(), toolkit)

	if err := srv.Start(); err != nil {
		logger.Fatal("Server stopped with error: %v", err)
	}
}
