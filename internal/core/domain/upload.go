package domain

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

// MaxUploadBytes is the fixed ceiling for a single upload (2 MiB).
const MaxUploadBytes int64 = 2 * 1024 * 1024

var (
	ErrNotAllowed = errors.New("document type not allowed")
	ErrTooLarge   = errors.New("document exceeds upload size limit")
)

// Format identifies a supported document encoding by its lowercase extension.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
)

func SupportedFormats() []Format {
	return []Format{FormatText, FormatPDF, FormatDOCX, FormatXLSX}
}

func IsSupportedFormat(f Format) bool {
	return slices.Contains(SupportedFormats(), f)
}

// ExtensionOf returns the lowercased text after the last dot of name, or ""
// when name has no extension.
func ExtensionOf(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// ValidateUpload checks the allow-list and size ceiling. Failures carry the
// ErrInvalidInput kind plus ErrNotAllowed or ErrTooLarge.
func ValidateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" || !IsSupportedFormat(Format(ExtensionOf(filename))) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrNotAllowed)
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrTooLarge)
	}
	return nil
}
