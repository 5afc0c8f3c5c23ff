package extractor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/xlsx"
)

func TestSelectSupportedFormats(t *testing.T) {
	r := NewRegistry()

	cases := map[string]string{
		"txt":  fmt.Sprintf("%T", &plaintext.Extractor{}),
		"pdf":  fmt.Sprintf("%T", &pdf.Extractor{}),
		"docx": fmt.Sprintf("%T", &docx.Extractor{}),
		"xlsx": fmt.Sprintf("%T", &xlsx.Extractor{}),
		"PDF":  fmt.Sprintf("%T", &pdf.Extractor{}),
	}
	for ext, want := range cases {
		got, err := r.Select(ext)
		if err != nil {
			t.Fatalf("select %q: %v", ext, err)
		}
		if fmt.Sprintf("%T", got) != want {
			t.Fatalf("select %q: got %T, want %s", ext, got, want)
		}
	}
}

func TestSelectUnsupportedNamesExtension(t *testing.T) {
	for _, ext := range []string{"doc", "xls", "png", ""} {
		_, err := NewRegistry().Select(ext)
		if !errors.Is(err, domain.ErrUnsupportedFormat) {
			t.Fatalf("select %q: expected unsupported format, got %v", ext, err)
		}
		if !strings.Contains(err.Error(), `"`+ext+`"`) {
			t.Fatalf("select %q: error should name the extension, got %v", ext, err)
		}
	}
}

func TestSelectCoversEverySupportedFormat(t *testing.T) {
	r := NewRegistry()
	for _, f := range domain.SupportedFormats() {
		if _, err := r.Select(string(f)); err != nil {
			t.Fatalf("format %q has no extractor: %v", f, err)
		}
	}
}
