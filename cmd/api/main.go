package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/document-classifier/internal/adapters/http"
	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
)

const serviceName = "document-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger(serviceName, "info", "json").Error("config_error", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(serviceName, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, serviceName, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(app.Documents, httpadapter.Options{
		Logger:           logger,
		Metrics:          app.Metrics,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		MaxInFlight:      cfg.APIMaxInFlight,
		BackpressureWait: cfg.APIBackpressureWait,
	}).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
