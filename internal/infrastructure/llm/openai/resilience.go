package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/openai/openai-go"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "openai status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("openai %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("openai %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// isRateLimited reports an HTTP 429 from either the SDK or the raw client.
func isRateLimited(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// countsAgainstBreaker ignores rate limits and caller cancellation.
func countsAgainstBreaker(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !isRateLimited(err)
}
