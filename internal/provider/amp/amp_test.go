package amp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

func TestParseSession_CumulativeDelta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thread1.jsonl")
	content := `{"timestamp":"2025-11-01T10:00:00Z","event":"inference","model":"claude-sonnet-4","usage":{"inputTokens":300,"cacheReadTokens":50,"outputTokens":80,"totalTokens":430}}
{"timestamp":"2025-11-01T10:02:00Z","event":"inference","model":"claude-sonnet-4","usage":{"inputTokens":600,"cacheReadTokens":80,"outputTokens":150,"totalTokens":830}}
{"timestamp":"2025-11-01T10:03:00Z","event":"other"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err := parseSession(ctx, "thread1", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Usage.InputTokens != 300 || events[0].Usage.OutputTokens != 80 {
		t.Errorf("first event usage = %+v", events[0].Usage)
	}
	if events[1].Usage.InputTokens != 300 || events[1].Usage.CachedInputTokens != 30 || events[1].Usage.OutputTokens != 70 {
		t.Errorf("second event usage = %+v, want input=300 cached=30 output=70", events[1].Usage)
	}
}
