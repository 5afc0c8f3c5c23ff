package domain

import "time"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClassificationRoute names the upstream path that produced a category.
type ClassificationRoute string

const (
	RoutePrimary  ClassificationRoute = "primary"
	RouteFallback ClassificationRoute = "fallback"
)

type Classification struct {
	Category string              `json:"category"`
	Route    ClassificationRoute `json:"route"`
	Model    string              `json:"model"`
}

// ClassificationRecord is one journal entry for a successful classification.
type ClassificationRecord struct {
	ID           int64               `json:"id"`
	DocumentID   string              `json:"document_id"`
	Category     string              `json:"category"`
	Route        ClassificationRoute `json:"route"`
	Model        string              `json:"model"`
	ClassifiedAt time.Time           `json:"classified_at"`
}
