package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// DocumentStore is the object store holding document bytes and metadata.
// Missing keys are reported as domain.ErrDocumentNotFound.
type DocumentStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, metadata domain.Metadata) error
	Get(ctx context.Context, key string) (*domain.StoredObject, error)
	Head(ctx context.Context, key string) (domain.Metadata, error)
	List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error)
	// ReplaceMetadata rewrites the full metadata set of an existing object.
	ReplaceMetadata(ctx context.Context, key string, metadata domain.Metadata) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// ExtractorSelector resolves a lowercase file extension to its extractor.
type ExtractorSelector interface {
	Select(extension string) (TextExtractor, error)
}

// PromptBuilder turns extracted text into a budgeted system/user prompt.
type PromptBuilder interface {
	Build(text string) ([]domain.PromptMessage, error)
}

// CategoryClassifier asks the language model for a single category.
type CategoryClassifier interface {
	Classify(ctx context.Context, messages []domain.PromptMessage) (domain.Classification, error)
}

// EventPublisher announces document lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.DocumentEvent) error
}

// ClassificationJournal persists the history of successful classifications.
type ClassificationJournal interface {
	Record(ctx context.Context, record domain.ClassificationRecord) error
	History(ctx context.Context, documentID string) ([]domain.ClassificationRecord, error)
}
