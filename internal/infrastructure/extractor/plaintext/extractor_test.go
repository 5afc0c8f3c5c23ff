package plaintext

import "testing"

func TestExtractKeepsValidText(t *testing.T) {
	got, err := NewExtractor().Extract([]byte("  Invoice #42\nTotal: 10 EUR\n"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "  Invoice #42\nTotal: 10 EUR\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractReplacesInvalidBytes(t *testing.T) {
	got, err := NewExtractor().Extract([]byte{'a', 0xff, 0xfe, 'b'})
	if err != nil {
		t.Fatalf("extract must not fail on invalid bytes: %v", err)
	}
	if got != "a\uFFFDb" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractStripsBOM(t *testing.T) {
	got, _ := NewExtractor().Extract([]byte("\xEF\xBB\xBFcontract"))
	if got != "contract" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	got, err := NewExtractor().Extract(nil)
	if err != nil || got != "" {
		t.Fatalf("expected empty text without error, got %q, %v", got, err)
	}
}
