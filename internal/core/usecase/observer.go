package usecase

import (
	"context"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Observer receives pipeline measurements.
type Observer interface {
	ObserveClassification(route domain.ClassificationRoute, outcome string)
	ObserveExtractionFailure(format string)
}

type noopObserver struct{}

func (noopObserver) ObserveClassification(domain.ClassificationRoute, string) {}
func (noopObserver) ObserveExtractionFailure(string)                          {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.DocumentEvent) error { return nil }

type noopJournal struct{}

func (noopJournal) Record(context.Context, domain.ClassificationRecord) error { return nil }

func (noopJournal) History(context.Context, string) ([]domain.ClassificationRecord, error) {
	return []domain.ClassificationRecord{}, nil
}
