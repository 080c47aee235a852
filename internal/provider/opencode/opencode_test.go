package opencode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

func TestParseSession_AssistantLineWithCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ses_abc123.jsonl")
	content := `{"role":"user","sessionID":"ses_abc123"}
{"role":"assistant","sessionID":"ses_abc123","modelID":"claude-sonnet-4","time":"2025-11-01T10:00:00Z","tokens":{"input":400,"output":90,"reasoning":5,"cache":{"read":60,"write":15}}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err := parseSession(ctx, "ses_abc123", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.SessionID != "ses_abc123" {
		t.Errorf("session id = %q, want ses_abc123", ev.SessionID)
	}
	if ev.ModelName != "claude-sonnet-4" {
		t.Errorf("model = %q, want claude-sonnet-4", ev.ModelName)
	}
	if ev.Usage.InputTokens != 400 || ev.Usage.OutputTokens != 90 || ev.Usage.ReasoningOutputTokens != 5 {
		t.Errorf("usage = %+v", ev.Usage)
	}
	if ev.Usage.CachedInputTokens != 60 || ev.Usage.CacheCreationInputTokens != 15 {
		t.Errorf("cache usage = %+v", ev.Usage)
	}
}

func TestParseSession_EpochMillisTimestamp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ses_xyz.jsonl")
	content := `{"role":"assistant","sessionID":"ses_xyz","modelID":"gpt-5","timeInfo":{"created":1730460000000},"tokens":{"input":10,"output":5}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err := parseSession(ctx, "ses_xyz", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].LocalISODate == "" {
		t.Errorf("expected a non-empty local_iso_date")
	}
}

func TestParseSession_NonAssistantSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ses_abc123.jsonl")
	content := `{"role":"user","sessionID":"ses_abc123"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err := parseSession(ctx, "ses_abc123", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected 0 events, got %d", len(events))
	}
}
