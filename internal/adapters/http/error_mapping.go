package httpadapter

import (
	"errors"
	"net/http"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const (
	msgNoFilePart      = "No file part in the request"
	msgNotAllowed      = "Selected document not allowed"
	msgTooHeavy        = "Selected document is very heavy: Max 2MB"
	msgMissingID       = "Missing document_id"
	msgNotFound        = "Document not found"
	msgInternal        = "Internal server error"
	msgDeleteFailed    = "Error while deleting document"
	msgUploaded        = "File uploaded successfully"
	msgDocumentDeleted = "Document deleted"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// uploadRejection returns the client message for a failed upload check.
func uploadRejection(err error) string {
	if errors.Is(err, domain.ErrTooLarge) {
		return msgTooHeavy
	}
	return msgNotAllowed
}
