package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

// maxRequestBytes bounds the whole multipart body. The file itself is
// checked against domain.MaxUploadBytes after parsing.
const maxRequestBytes = 2 * domain.MaxUploadBytes

// Metrics instruments the router and serves the scrape endpoint.
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Options struct {
	Logger         *slog.Logger
	Metrics        Metrics
	AllowedOrigins []string

	// MaxInFlight of zero disables the concurrency cap.
	MaxInFlight      int
	BackpressureWait time.Duration
}

type Router struct {
	documents ports.DocumentService
	logger    *slog.Logger
	metrics   Metrics
	opts      Options
}

func NewRouter(documents ports.DocumentService, opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		documents: documents,
		logger:    logger.With("component", "http"),
		metrics:   opts.Metrics,
		opts:      opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.json", rt.openAPI)
	mux.HandleFunc("POST /upload", rt.uploadDocument)
	mux.HandleFunc("GET /documents", rt.listDocuments)
	mux.HandleFunc("GET /documents/{document_id}/classifications", rt.classificationHistory)
	mux.HandleFunc("POST /detect", rt.detectCategory)
	mux.HandleFunc("DELETE /delete/{document_id}", rt.deleteDocument)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(handler)
	}
	if rt.opts.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.BackpressureWait)
	}
	handler = corsMiddleware(rt.opts.AllowedOrigins, handler)
	handler = recoverMiddleware(rt.logger, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxRequestBytes {
		writeError(w, http.StatusBadRequest, msgTooHeavy)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, msgTooHeavy)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFilePart)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFilePart)
		return
	}
	defer file.Close()

	if err := domain.ValidateUpload(header.Filename, header.Size); err != nil {
		writeError(w, http.StatusBadRequest, uploadRejection(err))
		return
	}

	doc, err := rt.documents.Upload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		rt.internalError(w, r, "upload", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":     msgUploaded,
		"document_id": doc.ID,
	})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	records, err := rt.documents.List(r.Context())
	if err != nil {
		rt.internalError(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) detectCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"document_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.DocumentID) == "" {
		writeError(w, http.StatusBadRequest, msgMissingID)
		return
	}

	classification, err := rt.documents.Classify(r.Context(), req.DocumentID)
	if err != nil {
		// The id is known to be present here, so an id the store refuses to
		// address names no document.
		switch mapErrorToHTTPStatus(err) {
		case http.StatusNotFound, http.StatusBadRequest:
			writeError(w, http.StatusNotFound, msgNotFound)
		default:
			rt.internalError(w, r, "detect", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"document_id":       req.DocumentID,
		"detected_category": classification.Category,
	})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("document_id")

	deleted, err := rt.documents.Delete(r.Context(), documentID)
	switch {
	case deleted:
		writeJSON(w, http.StatusOK, map[string]string{"message": msgDocumentDeleted})
	case mapErrorToHTTPStatus(err) == http.StatusNotFound, mapErrorToHTTPStatus(err) == http.StatusBadRequest:
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		rt.logger.Error("http_delete_failed",
			"request_id", requestIDFromContext(r.Context()),
			"document_id", documentID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, msgDeleteFailed)
	}
}

func (rt *Router) classificationHistory(w http.ResponseWriter, r *http.Request) {
	records, err := rt.documents.History(r.Context(), r.PathValue("document_id"))
	if err != nil {
		if mapErrorToHTTPStatus(err) == http.StatusBadRequest {
			writeError(w, http.StatusBadRequest, msgMissingID)
			return
		}
		rt.internalError(w, r, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// internalError logs the full error and answers with the generic message.
func (rt *Router) internalError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	rt.logger.Error("http_"+operation+"_failed",
		"request_id", requestIDFromContext(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
