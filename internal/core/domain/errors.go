package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")

	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrCorruptDocument      = errors.New("corrupt document")
	ErrPromptBudgetExceeded = errors.New("prompt budget exceeded")

	// ErrEmptyCategory marks a completion that produced no usable text.
	// It is always reported together with ErrClassificationUnavailable.
	ErrEmptyCategory             = errors.New("empty category")
	ErrClassificationUnavailable = errors.New("classification unavailable")
	ErrUpstream                  = errors.New("upstream failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
