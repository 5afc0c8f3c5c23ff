package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/resilience"
)

type completer interface {
	complete(ctx context.Context, messages []domain.PromptMessage) (string, error)
}

type completerFunc func(ctx context.Context, messages []domain.PromptMessage) (string, error)

func (f completerFunc) complete(ctx context.Context, messages []domain.PromptMessage) (string, error) {
	return f(ctx, messages)
}

// Classifier asks the model for a category. A rate-limited primary call is
// retried exactly once over the streaming endpoint; nothing else is retried.
type Classifier struct {
	primary  completer
	fallback completer
	guard    *resilience.Guard
	model    string
	logger   *slog.Logger
}

func NewClassifier(client *Client, guard *resilience.Guard, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		primary:  completerFunc(client.complete),
		fallback: completerFunc(client.completeStream),
		guard:    guard,
		model:    client.Model(),
		logger:   logger.With("component", "openai_classifier"),
	}
}

func (c *Classifier) Classify(ctx context.Context, messages []domain.PromptMessage) (domain.Classification, error) {
	text, err := c.call(ctx, "openai.chat", c.primary, messages)
	if err == nil {
		return c.result(text, domain.RoutePrimary)
	}
	if resilience.IsCircuitOpen(err) {
		c.logger.Warn("classification_circuit_open", "model", c.model, "error", err)
		return domain.Classification{}, domain.WrapError(domain.ErrClassificationUnavailable, "classify", err)
	}
	if !isRateLimited(err) {
		return domain.Classification{}, domain.WrapError(domain.ErrUpstream, "classify", err)
	}

	c.logger.Warn("classification_rate_limited", "model", c.model, "error", err)
	text, err = c.call(ctx, "openai.chat_stream", c.fallback, messages)
	if err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrClassificationUnavailable, "classify fallback", err)
	}
	return c.result(text, domain.RouteFallback)
}

func (c *Classifier) call(ctx context.Context, operation string, fn completer, messages []domain.PromptMessage) (string, error) {
	var text string
	run := func(ctx context.Context) error {
		var err error
		text, err = fn.complete(ctx, messages)
		return err
	}
	if c.guard == nil {
		return text, run(ctx)
	}
	err := c.guard.Execute(ctx, operation, run, countsAgainstBreaker)
	return text, err
}

func (c *Classifier) result(text string, route domain.ClassificationRoute) (domain.Classification, error) {
	category := strings.TrimSpace(text)
	if category == "" {
		return domain.Classification{}, domain.WrapError(domain.ErrClassificationUnavailable, "classify "+string(route), domain.ErrEmptyCategory)
	}
	return domain.Classification{
		Category: category,
		Route:    route,
		Model:    c.model,
	}, nil
}
