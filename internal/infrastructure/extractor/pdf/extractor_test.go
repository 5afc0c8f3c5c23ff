package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := NewExtractor().Extract([]byte("this is not a pdf"))
	if !errors.Is(err, domain.ErrCorruptDocument) {
		t.Fatalf("expected corrupt document error, got %v", err)
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	_, err := NewExtractor().Extract(nil)
	if !errors.Is(err, domain.ErrCorruptDocument) {
		t.Fatalf("expected corrupt document error, got %v", err)
	}
}

func TestExtractRejectsTruncatedPDF(t *testing.T) {
	_, err := NewExtractor().Extract([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"))
	if !errors.Is(err, domain.ErrCorruptDocument) {
		t.Fatalf("expected corrupt document error, got %v", err)
	}
}

func TestExtractConcatenatesPagesInOrder(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "two_pages.pdf"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	text, err := NewExtractor().Extract(data)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	first := strings.Index(text, "Invoice")
	second := strings.Index(text, "Total")
	if first < 0 || second < 0 {
		t.Fatalf("expected both page texts, got %q", text)
	}
	if first > second {
		t.Fatalf("expected page order to be preserved, got %q", text)
	}
}
