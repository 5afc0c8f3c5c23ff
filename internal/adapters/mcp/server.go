package mcpadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const (
	toolListDocuments    = "list_documents"
	toolClassifyDocument = "classify_document"
	toolDeleteDocument   = "delete_document"
)

// NewServer exposes the document service as MCP tools.
func NewServer(documents ports.DocumentService, version string, logger *slog.Logger) *server.MCPServer {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{documents: documents, logger: logger.With("component", "mcp")}

	s := server.NewMCPServer("document-classifier", version, server.WithToolCapabilities(false))
	s.AddTool(mcp.NewTool(toolListDocuments,
		mcp.WithDescription("List every stored document with its metadata and category."),
	), h.listDocuments)
	s.AddTool(mcp.NewTool(toolClassifyDocument,
		mcp.WithDescription("Classify a stored document with the language model and save the category in its metadata."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id as returned by upload or list_documents.")),
	), h.classifyDocument)
	s.AddTool(mcp.NewTool(toolDeleteDocument,
		mcp.WithDescription("Delete a stored document."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id to delete.")),
	), h.deleteDocument)
	return s
}

type handlers struct {
	documents ports.DocumentService
	logger    *slog.Logger
}

func (h *handlers) listDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.documents.List(ctx)
	if err != nil {
		return h.failure(toolListDocuments, err), nil
	}
	return jsonResult(records)
}

func (h *handlers) classifyDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id is required"), nil
	}
	classification, err := h.documents.Classify(ctx, documentID)
	if err != nil {
		return h.failure(toolClassifyDocument, err), nil
	}
	return jsonResult(map[string]string{
		"document_id":       documentID,
		"detected_category": classification.Category,
	})
}

func (h *handlers) deleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("document_id is required"), nil
	}
	deleted, err := h.documents.Delete(ctx, documentID)
	if !deleted {
		return h.failure(toolDeleteDocument, err), nil
	}
	return mcp.NewToolResultText("Document deleted"), nil
}

// failure reports a tool error to the client without internal detail.
func (h *handlers) failure(tool string, err error) *mcp.CallToolResult {
	switch {
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return mcp.NewToolResultError("Document not found")
	case domain.IsKind(err, domain.ErrInvalidInput):
		return mcp.NewToolResultError("Invalid document id")
	}
	h.logger.Error("mcp_tool_failed", "tool", tool, "error", err)
	return mcp.NewToolResultError("Internal server error")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}
