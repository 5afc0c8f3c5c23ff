package domain

import "time"

type EventType string

const (
	EventDocumentUploaded   EventType = "document.uploaded"
	EventDocumentClassified EventType = "document.classified"
	EventDocumentDeleted    EventType = "document.deleted"
)

type DocumentEvent struct {
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	Category   string    `json:"category,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
