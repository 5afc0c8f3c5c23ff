package extractor

import (
	"fmt"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor/xlsx"
)

// Registry maps each supported format to its extractor.
type Registry struct {
	extractors map[domain.Format]ports.TextExtractor
}

// NewRegistry returns a registry covering every supported format.
func NewRegistry() *Registry {
	return &Registry{
		extractors: map[domain.Format]ports.TextExtractor{
			domain.FormatText: plaintext.NewExtractor(),
			domain.FormatPDF:  pdf.NewExtractor(),
			domain.FormatDOCX: docx.NewExtractor(),
			domain.FormatXLSX: xlsx.NewExtractor(),
		},
	}
}

func (r *Registry) Select(extension string) (ports.TextExtractor, error) {
	format := domain.Format(strings.ToLower(strings.TrimPrefix(extension, ".")))
	ext, ok := r.extractors[format]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "select extractor", fmt.Errorf("extension %q", extension))
	}
	return ext, nil
}
