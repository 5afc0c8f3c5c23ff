package usecase

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// Upload stores a validated document under a fresh id with its initial
// metadata. Allow-list and size checks belong to the caller.
func (s *DocumentService) Upload(ctx context.Context, filename string, size int64, body io.Reader) (*domain.Document, error) {
	now := s.now().UTC()
	doc := &domain.Document{
		ID:           fmt.Sprintf("%s_%s", uuid.NewString(), domain.SanitizeFilename(filename)),
		OriginalName: domain.FoldASCII(filename),
		Size:         size,
		Category:     domain.CategoryNone,
		UploadedAt:   now,
	}

	meta := domain.NormalizeMetadata(domain.Metadata{
		domain.MetaOriginalName: filename,
		domain.MetaFileSize:     strconv.FormatInt(size, 10),
		domain.MetaUploadTime:   now.Format(time.RFC3339),
		domain.MetaKey:          doc.ID,
		domain.MetaCategory:     domain.CategoryNone,
	})

	if err := s.store.Put(ctx, doc.StorageKey(), body, size, contentTypeFor(filename), meta); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	s.logger.Info("document_uploaded", "document_id", doc.ID, "size", size)
	s.publish(ctx, domain.DocumentEvent{Type: domain.EventDocumentUploaded, DocumentID: doc.ID, OccurredAt: now})
	return doc, nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension("." + domain.ExtensionOf(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
