package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// Classify extracts the document text, asks the model for a category and
// writes it into the document metadata. Every other metadata field is kept
// as stored.
func (s *DocumentService) Classify(ctx context.Context, documentID string) (domain.Classification, error) {
	if err := validateDocumentID(documentID); err != nil {
		return domain.Classification{}, err
	}
	key := domain.StorageKeyFor(documentID)

	data, err := s.load(ctx, key)
	if err != nil {
		return domain.Classification{}, err
	}

	text, err := s.extract(documentID, data)
	if err != nil {
		return domain.Classification{}, err
	}

	messages, err := s.prompts.Build(text)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("build prompt: %w", err)
	}

	classification, err := s.classifier.Classify(ctx, messages)
	if err != nil {
		s.observer.ObserveClassification("", outcomeError)
		return domain.Classification{}, fmt.Errorf("classify document: %w", err)
	}
	// Metadata only carries ASCII; a category that folds to nothing cannot
	// be stored.
	stored := strings.TrimSpace(domain.FoldASCII(classification.Category))
	if stored == "" {
		s.observer.ObserveClassification(classification.Route, outcomeError)
		s.logger.Warn("document_category_unstorable", "document_id", documentID, "category", classification.Category)
		return domain.Classification{}, domain.WrapError(domain.ErrClassificationUnavailable, "classify document",
			fmt.Errorf("category %q has no ascii form: %w", classification.Category, domain.ErrEmptyCategory))
	}
	s.observer.ObserveClassification(classification.Route, outcomeSuccess)

	if err := s.updateCategory(ctx, key, stored); err != nil {
		s.logger.Error("document_category_not_persisted", "document_id", documentID, "category", classification.Category, "error", err)
		return domain.Classification{}, fmt.Errorf("persist category: %w", err)
	}

	s.logger.Info("document_classified",
		"document_id", documentID,
		"category", classification.Category,
		"route", classification.Route,
	)
	s.record(ctx, documentID, classification)
	s.publish(ctx, domain.DocumentEvent{
		Type:       domain.EventDocumentClassified,
		DocumentID: documentID,
		Category:   classification.Category,
	})
	return classification, nil
}

func (s *DocumentService) load(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", key, err)
	}
	return data, nil
}

func (s *DocumentService) extract(documentID string, data []byte) (string, error) {
	ext := domain.ExtensionOf(documentID)
	extractor, err := s.extractors.Select(ext)
	if err != nil {
		return "", err
	}
	text, err := extractor.Extract(data)
	if err != nil {
		s.observer.ObserveExtractionFailure(ext)
		return "", err
	}
	return text, nil
}

func (s *DocumentService) updateCategory(ctx context.Context, key, category string) error {
	meta, err := s.store.Head(ctx, key)
	if err != nil {
		return err
	}
	updated := meta.Clone()
	updated[domain.MetaCategory] = category
	return s.store.ReplaceMetadata(ctx, key, updated)
}

func (s *DocumentService) record(ctx context.Context, documentID string, classification domain.Classification) {
	err := s.journal.Record(ctx, domain.ClassificationRecord{
		DocumentID:   documentID,
		Category:     classification.Category,
		Route:        classification.Route,
		Model:        classification.Model,
		ClassifiedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("classification_journal_failed", "document_id", documentID, "error", err)
	}
}
