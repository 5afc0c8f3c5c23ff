package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// DocumentUploader is the inbound contract for storing a validated upload.
type DocumentUploader interface {
	Upload(ctx context.Context, filename string, size int64, body io.Reader) (*domain.Document, error)
}

// DocumentLister is the inbound read model over stored documents.
type DocumentLister interface {
	List(ctx context.Context) ([]domain.DocumentRecord, error)
	History(ctx context.Context, documentID string) ([]domain.ClassificationRecord, error)
}

// DocumentCategorizer classifies a stored document and persists its category.
type DocumentCategorizer interface {
	Classify(ctx context.Context, documentID string) (domain.Classification, error)
}

// DocumentRemover deletes stored documents.
type DocumentRemover interface {
	Delete(ctx context.Context, documentID string) (bool, error)
}

// DocumentService aggregates the inbound contracts served by every adapter.
type DocumentService interface {
	DocumentUploader
	DocumentLister
	DocumentCategorizer
	DocumentRemover
}
