package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// Extractor concatenates the plain text of every page in page order.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(data []byte) (text string, err error) {
	// The parser panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrCorruptDocument, "extract pdf", fmt.Errorf("parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "extract pdf", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		b.WriteString(pageText(reader.Page(i)))
	}
	return b.String(), nil
}

// pageText returns "" for pages without a readable text layer.
func pageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
