package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const documentPart = "word/document.xml"

// WordprocessingML main namespace.
const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

var errMissingDocumentPart = errors.New("word/document.xml not found")

// Extractor emits the text of every paragraph in document order, one
// paragraph per line.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "extract docx", err)
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "extract docx", errMissingDocumentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "extract docx", err)
	}
	defer rc.Close()

	text, err := paragraphs(rc)
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "extract docx", err)
	}
	return text, nil
}

func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out    strings.Builder
		para   strings.Builder
		inPara int
		inRun  int
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document part: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if inPara == 0 {
					para.Reset()
				}
				inPara++
			case "r":
				inRun++
			case "t":
				inText = true
			// Tab stops under w:pPr/w:tabs share the element name; only
			// run content is text.
			case "tab":
				if inPara > 0 && inRun > 0 {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if inPara > 0 && inRun > 0 {
					para.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "r":
				inRun--
			case "t":
				inText = false
			case "p":
				inPara--
				if inPara == 0 {
					out.WriteString(para.String())
					out.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText && inPara > 0 {
				para.Write(t)
			}
		}
	}
	return out.String(), nil
}
