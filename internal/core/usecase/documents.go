package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

// metadataUnavailable replaces the metadata of a listed object whose
// metadata could not be read.
var metadataUnavailable = domain.Metadata{"error": "metadata unavailable"}

// Options carries the optional collaborators of a DocumentService.
type Options struct {
	Publisher ports.EventPublisher
	Journal   ports.ClassificationJournal
	Observer  Observer
	Logger    *slog.Logger
	Now       func() time.Time
}

// DocumentService orchestrates upload, listing, classification and deletion
// of stored documents. It holds no per-request state.
type DocumentService struct {
	store      ports.DocumentStore
	extractors ports.ExtractorSelector
	prompts    ports.PromptBuilder
	classifier ports.CategoryClassifier

	publisher ports.EventPublisher
	journal   ports.ClassificationJournal
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
}

func NewDocumentService(
	store ports.DocumentStore,
	extractors ports.ExtractorSelector,
	prompts ports.PromptBuilder,
	classifier ports.CategoryClassifier,
	opts Options,
) *DocumentService {
	s := &DocumentService{
		store:      store,
		extractors: extractors,
		prompts:    prompts,
		classifier: classifier,
		publisher:  opts.Publisher,
		journal:    opts.Journal,
		observer:   opts.Observer,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if s.journal == nil {
		s.journal = noopJournal{}
	}
	if s.observer == nil {
		s.observer = noopObserver{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = s.logger.With("component", "document_service")
	return s
}

// List returns every stored document. The listing is not paginated.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	objects, err := s.store.List(ctx, domain.StoragePrefix)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	records := make([]domain.DocumentRecord, 0, len(objects))
	for _, obj := range objects {
		meta, err := s.store.Head(ctx, obj.Key)
		if err != nil {
			s.logger.Error("document_metadata_unavailable", "key", obj.Key, "error", err)
			meta = metadataUnavailable.Clone()
		}
		records = append(records, domain.DocumentRecord{
			Filename:     obj.Key[strings.LastIndex(obj.Key, "/")+1:],
			FileURL:      s.store.URL(obj.Key),
			Metadata:     meta,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return records, nil
}

// Delete removes a document. It reports false with ErrDocumentNotFound for
// unknown ids and false with the store error for failed deletes.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (bool, error) {
	if err := validateDocumentID(documentID); err != nil {
		return false, err
	}
	key := domain.StorageKeyFor(documentID)

	if _, err := s.store.Head(ctx, key); err != nil {
		if !domain.IsKind(err, domain.ErrDocumentNotFound) {
			s.logger.Error("document_delete_failed", "document_id", documentID, "error", err)
		}
		return false, err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("document_delete_failed", "document_id", documentID, "error", err)
		return false, err
	}

	s.logger.Info("document_deleted", "document_id", documentID)
	s.publish(ctx, domain.DocumentEvent{Type: domain.EventDocumentDeleted, DocumentID: documentID})
	return true, nil
}

func (s *DocumentService) History(ctx context.Context, documentID string) ([]domain.ClassificationRecord, error) {
	if err := validateDocumentID(documentID); err != nil {
		return nil, err
	}
	records, err := s.journal.History(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("classification history: %w", err)
	}
	if records == nil {
		records = []domain.ClassificationRecord{}
	}
	return records, nil
}

// publish never fails the calling operation.
func (s *DocumentService) publish(ctx context.Context, event domain.DocumentEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("document_event_publish_failed", "type", event.Type, "document_id", event.DocumentID, "error", err)
	}
}

func validateDocumentID(documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate document id", fmt.Errorf("document id is empty"))
	}
	return nil
}
