package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type documentServiceFake struct {
	uploaded  string
	uploadLen int
	deleteOK  bool
	deleteErr error
	closed    bool
}

func (f *documentServiceFake) Upload(_ context.Context, filename string, _ int64, body io.Reader) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.uploaded = filename
	f.uploadLen = len(raw)
	return &domain.Document{ID: "uuid_" + filename, OriginalName: filename, Category: domain.CategoryNone}, nil
}

func (f *documentServiceFake) List(context.Context) ([]domain.DocumentRecord, error) {
	return []domain.DocumentRecord{{
		Filename:     "uuid_a.txt",
		Size:         3,
		Metadata:     domain.Metadata{"category": "invoice"},
		LastModified: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}}, nil
}

func (f *documentServiceFake) History(context.Context, string) ([]domain.ClassificationRecord, error) {
	return []domain.ClassificationRecord{{Category: "invoice", Route: domain.RouteFallback, Model: "gpt-4o-mini"}}, nil
}

func (f *documentServiceFake) Classify(context.Context, string) (domain.Classification, error) {
	return domain.Classification{Category: "invoice", Route: domain.RoutePrimary}, nil
}

func (f *documentServiceFake) Delete(context.Context, string) (bool, error) {
	return f.deleteOK, f.deleteErr
}

func run(t *testing.T, svc *documentServiceFake, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	factory := func(context.Context) (ports.DocumentService, func(), error) {
		return svc, func() { svc.closed = true }, nil
	}
	root := newRootCmd(factory, &out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUploadCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	svc := &documentServiceFake{}

	out, err := run(t, svc, "upload", path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if svc.uploaded != "notes.txt" || svc.uploadLen != 5 {
		t.Fatalf("unexpected upload: %q %d", svc.uploaded, svc.uploadLen)
	}
	if strings.TrimSpace(out) != "Uploaded uuid_notes.txt" {
		t.Fatalf("unexpected output: %q", out)
	}
	if !svc.closed {
		t.Fatalf("service was not closed")
	}
}

func TestUploadCommandRejectsDisallowedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malware.exe")
	if err := os.WriteFile(path, []byte("MZ"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	svc := &documentServiceFake{}

	if _, err := run(t, svc, "upload", path); err == nil {
		t.Fatalf("expected rejection")
	}
	if svc.uploaded != "" {
		t.Fatalf("service must not be called")
	}
}

func TestListCommandJSON(t *testing.T) {
	out, err := run(t, &documentServiceFake{}, "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(records) != 1 || records[0]["filename"] != "uuid_a.txt" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestListCommandTable(t *testing.T) {
	out, err := run(t, &documentServiceFake{}, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "DOCUMENT") || !strings.Contains(out, "invoice") {
		t.Fatalf("unexpected table: %q", out)
	}
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, &documentServiceFake{}, "classify", "abc123")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if strings.TrimSpace(out) != "invoice" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestDeleteCommandFailure(t *testing.T) {
	svc := &documentServiceFake{deleteErr: domain.WrapError(domain.ErrDocumentNotFound, "head", errors.New("abc"))}
	if _, err := run(t, svc, "delete", "abc"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHistoryCommand(t *testing.T) {
	out, err := run(t, &documentServiceFake{}, "history", "abc")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "fallback") {
		t.Fatalf("unexpected output: %q", out)
	}
}
