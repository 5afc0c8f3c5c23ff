package main

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/document-classifier/internal/adapters/mcp"
	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
)

const (
	serviceName = "document-mcp"
	version     = "1.0.0"
)

// Stdout carries the MCP protocol, so every log line goes to stderr.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, serviceName, "info", "json").Error("config_error", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, serviceName, cfg.LogLevel, cfg.LogFormat)

	app, err := bootstrap.New(context.Background(), serviceName, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := server.ServeStdio(mcpadapter.NewServer(app.Documents, version, logger)); err != nil {
		logger.Error("mcp_server_error", "error", err)
		os.Exit(1)
	}
}
