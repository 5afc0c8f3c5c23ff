package domain

import (
	"errors"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		size     int64
		want     error
	}{
		{name: "pdf", filename: "report.pdf", size: 1024},
		{name: "upper case extension", filename: "Scan.DOCX", size: 1024},
		{name: "exactly at ceiling", filename: "a.xlsx", size: MaxUploadBytes},
		{name: "over ceiling", filename: "a.txt", size: MaxUploadBytes + 1, want: ErrTooLarge},
		{name: "unsupported", filename: "photo.png", size: 10, want: ErrNotAllowed},
		{name: "legacy xls", filename: "old.xls", size: 10, want: ErrNotAllowed},
		{name: "no extension", filename: "README", size: 10, want: ErrNotAllowed},
		{name: "empty", filename: "", size: 10, want: ErrNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUpload(tc.filename, tc.size)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected valid upload, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input kind, got %v", err)
			}
		})
	}
}

func TestExtensionOf(t *testing.T) {
	cases := map[string]string{
		"a.PDF":                      "pdf",
		"archive.tar.gz":             "gz",
		"noext":                      "",
		"trailing.":                  "",
		"dir.d/file":                 "",
		"uuid_Quarterly_Report.xlsx": "xlsx",
		`C:\Users\me\Contract.DocX`:  "docx",
	}
	for in, want := range cases {
		if got := ExtensionOf(in); got != want {
			t.Fatalf("ExtensionOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldASCII(t *testing.T) {
	if got := FoldASCII("café résumé.pdf"); got != "cafe resume.pdf" {
		t.Fatalf("unexpected fold: %q", got)
	}
	if got := FoldASCII("合同.docx"); got != ".docx" {
		t.Fatalf("expected non-latin runes to be dropped, got %q", got)
	}
	if got := FoldASCII("line\nbreak"); got != "linebreak" {
		t.Fatalf("expected control characters to be dropped, got %q", got)
	}
}

func TestNormalizeMetadataDoesNotMutateInput(t *testing.T) {
	in := Metadata{MetaOriginalName: "Ünïcode.txt", MetaKey: "abc"}
	out := NormalizeMetadata(in)
	if out[MetaOriginalName] != "Unicode.txt" {
		t.Fatalf("unexpected normalized name: %q", out[MetaOriginalName])
	}
	if in[MetaOriginalName] != "Ünïcode.txt" {
		t.Fatalf("input metadata was mutated")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Report.pdf":         "My_Report.pdf",
		"../../etc/passwd":      "etc_passwd",
		"façade plan (v2).docx": "facade_plan_v2.docx",
		"...":                   "document",
		"":                      "document",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
