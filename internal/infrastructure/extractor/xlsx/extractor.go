package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// blankCell is how an empty cell reads in the extracted text.
const blankCell = "None"

// Extractor renders every sheet row by row, cells separated by a single
// space. Rows are padded to the widest row of their sheet so column
// positions survive blank cells.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(data []byte) (string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "extract xlsx", err)
	}
	defer book.Close()

	var out strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrCorruptDocument, "extract xlsx", fmt.Errorf("sheet %q: %w", sheet, err))
		}

		width := 0
		for _, row := range rows {
			width = max(width, len(row))
		}
		for _, row := range rows {
			cells := make([]string, width)
			for i := range cells {
				cells[i] = blankCell
				if i < len(row) && row[i] != "" {
					cells[i] = row[i]
				}
			}
			out.WriteString(strings.Join(cells, " "))
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}
