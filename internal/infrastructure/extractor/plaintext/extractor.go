package plaintext

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor decodes raw bytes as UTF-8, substituting U+FFFD for invalid
// sequences. It never fails.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(data []byte) (string, error) {
	raw := bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
}
