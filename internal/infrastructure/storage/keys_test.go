package storage

import (
	"errors"
	"testing"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

func TestValidateKey(t *testing.T) {
	valid := []string{"documents/abc_report.pdf", "documents/a..b.txt", "x"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Fatalf("ValidateKey(%q) = %v", key, err)
		}
	}

	invalid := []string{"", "  ", "documents/../secret", "../x", `documents\..\x`}
	for _, key := range invalid {
		err := ValidateKey(key)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("ValidateKey(%q): expected invalid input, got %v", key, err)
		}
	}
}

func TestNormalizeKeys(t *testing.T) {
	got := NormalizeKeys(map[string]string{"Original_name": "a.pdf", "CATEGORY": "none"})
	if got["original_name"] != "a.pdf" || got["category"] != "none" || len(got) != 2 {
		t.Fatalf("unexpected metadata: %v", got)
	}
}
