// Package storage holds helpers shared by the object-store backends.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

var (
	ErrEmptyKey   = errors.New("storage key is empty")
	ErrInvalidKey = errors.New("storage key contains a parent directory reference")
)

// ValidateKey rejects empty keys and keys with ".." path segments.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate key", ErrEmptyKey)
	}
	for _, segment := range strings.Split(strings.ReplaceAll(key, "\\", "/"), "/") {
		if segment == ".." {
			return domain.WrapError(domain.ErrInvalidInput, "validate key", fmt.Errorf("%w: %q", ErrInvalidKey, key))
		}
	}
	return nil
}

// NormalizeKeys lower-cases metadata keys. Backends hand them back in
// canonical header form ("Original_name").
func NormalizeKeys(in map[string]string) domain.Metadata {
	out := make(domain.Metadata, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

// NotFound wraps err as domain.ErrDocumentNotFound for key.
func NotFound(operation, key string, err error) error {
	return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("key %q: %w", key, err))
}
