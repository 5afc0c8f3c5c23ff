package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
)

const serviceName = "docctl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(openService, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// openService bootstraps the same stack as the API. Logs go to stderr so
// command output stays machine-readable.
func openService(ctx context.Context) (ports.DocumentService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(os.Stderr, serviceName, envOr("DOCCTL_LOG_LEVEL", "warn"), cfg.LogFormat)
	app, err := bootstrap.New(ctx, serviceName, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return app.Documents, app.Close, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
