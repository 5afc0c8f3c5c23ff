package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/core/usecase"
	"github.com/kirillkom/document-classifier/internal/infrastructure/events/nats"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor"
	"github.com/kirillkom/document-classifier/internal/infrastructure/llm/openai"
	"github.com/kirillkom/document-classifier/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-classifier/internal/infrastructure/resilience"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage/azure"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage/s3"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Documents *usecase.DocumentService
	Metrics   *metrics.Metrics

	closers []func()
}

// New wires every adapter the configuration enables. Optional integrations
// (NATS events, Postgres journal) are skipped when their URL is empty.
func New(ctx context.Context, service string, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		Config:  cfg,
		Metrics: metrics.New(service),
	}

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	guard := resilience.NewGuard(resilience.Config{
		Enabled:          cfg.BreakerEnabled,
		MinRequests:      uint32(cfg.BreakerMinRequests),
		FailureRatio:     cfg.BreakerFailureRatio,
		OpenTimeout:      cfg.BreakerOpenTimeout,
		HalfOpenMaxCalls: uint32(cfg.BreakerHalfOpenMaxCalls),
	}, logger)

	tokenizer, err := openai.NewTiktoken(cfg.OpenAIModel, cfg.TokenizerEncoding)
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}
	prompts := openai.NewPromptBuilder(tokenizer, cfg.ModelTokenLimit, cfg.ReservedResponseTokens).
		WithObserver(app.Metrics)

	client := openai.New(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		MaxTokens:      int64(cfg.ClassifyMaxTokens),
		Temperature:    cfg.ClassifyTemperature,
		Timeout:        cfg.OpenAITimeout,
		Organization:   cfg.OpenAIOrganization,
		Project:        cfg.OpenAIProject,
		FallbackAPIKey: cfg.OpenAIFallbackAPIKey,
	})
	classifier := openai.NewClassifier(client, guard, logger)

	opts := usecase.Options{
		Observer: app.Metrics,
		Logger:   logger,
	}

	if cfg.NATSURL != "" {
		publisher, err := nats.Connect(cfg.NATSURL, nats.Options{
			SubjectPrefix: cfg.NATSSubjectPrefix,
			Guard:         guard,
			Logger:        logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		app.closers = append(app.closers, publisher.Close)
		opts.Publisher = publisher
	}

	if cfg.PostgresDSN != "" {
		journal, db, err := newJournal(ctx, cfg.PostgresDSN)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = db.Close() })
		opts.Journal = journal
	}

	app.Documents = usecase.NewDocumentService(store, extractor.NewRegistry(), prompts, classifier, opts)

	logger.Info("bootstrap_complete",
		"storage_backend", cfg.StorageBackend,
		"model", client.Model(),
		"events_enabled", opts.Publisher != nil,
		"journal_enabled", opts.Journal != nil,
	)
	return app, nil
}

func newStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.DocumentStore, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		store, err := s3.New(s3.Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSBucket,
			UseSSL:          cfg.S3UseSSL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return store, nil
	case config.BackendAzure:
		store, err := azure.New(azure.Config{
			ConnectionString: cfg.AzureConnectionString,
			AccountURL:       cfg.AzureAccountURL,
			Container:        cfg.AzureContainer,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init azure storage: %w", err)
		}
		if err := store.EnsureContainer(ctx); err != nil {
			return nil, fmt.Errorf("init azure storage: %w", err)
		}
		return store, nil
	case config.BackendLocalFS:
		store, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newJournal(ctx context.Context, dsn string) (*postgres.ClassificationJournal, *sql.DB, error) {
	db, err := postgres.OpenDB(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	journal := postgres.NewClassificationJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure journal schema: %w", err)
	}
	return journal, db, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
