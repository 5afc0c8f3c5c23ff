package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerJSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "document-api", "info", "json")
	logger.Info("document_uploaded", "document_id", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "document-api" || entry["msg"] != "document_uploaded" || entry["document_id"] != "abc" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "docctl", "", "TEXT").Info("hello")
	if !strings.Contains(buf.String(), "service=docctl") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info+2":  slog.LevelInfo + 2,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "svc", "info", "json").Debug("noise")
	if buf.Len() != 0 {
		t.Fatalf("expected debug entry to be dropped, got %q", buf.String())
	}
}
