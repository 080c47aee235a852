package codex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

// TestParseSession_S1CodexDelta implements the S1 fixture from spec.md §8:
// one turn_context (model=gpt-5-codex) followed by one event_msg/token_count
// carrying last_token_usage={input:1000, cached:200, output:50}. Expect one
// event with input normalized to 800 (cached carved out of input) and
// display_input left at 1000.
func TestParseSession_S1CodexDelta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session1.jsonl")
	content := `{"timestamp":"2025-11-01T10:00:00Z","type":"turn_context","payload":{"model":"gpt-5-codex"}}
{"timestamp":"2025-11-01T10:00:00Z","type":"event_msg","payload":{"type":"token_count","info":{"last_token_usage":{"input_tokens":1000,"cached_input_tokens":200,"output_tokens":50}}}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err := parseSession(ctx, "session1", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.ModelName != "gpt-5-codex" {
		t.Errorf("model = %q, want gpt-5-codex", ev.ModelName)
	}
	if ev.IsFallbackModel {
		t.Errorf("is_fallback = true, want false")
	}
	if ev.Usage.InputTokens != 800 {
		t.Errorf("input_tokens = %d, want 800 (1000 - 200 cached overlap)", ev.Usage.InputTokens)
	}
	if ev.Usage.CachedInputTokens != 200 {
		t.Errorf("cached_input_tokens = %d, want 200", ev.Usage.CachedInputTokens)
	}
	if ev.Usage.OutputTokens != 50 {
		t.Errorf("output_tokens = %d, want 50", ev.Usage.OutputTokens)
	}
	if ev.DisplayInputTokens != 1000 {
		t.Errorf("display_input = %d, want 1000", ev.DisplayInputTokens)
	}
	if ev.LocalISODate != "2025-11-01" {
		t.Errorf("local_iso_date = %q, want 2025-11-01", ev.LocalISODate)
	}
}

// TestParseSession_TotalTokenUsageDelta covers the cumulative-total branch:
// when only total_token_usage is present, the emitted event is the delta
// against the previously remembered cumulative total, and the cumulative is
// advanced regardless of which branch supplied the usage.
func TestParseSession_TotalTokenUsageDelta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session2.jsonl")
	content := `{"timestamp":"2025-11-01T10:00:00Z","type":"turn_context","payload":{"model":"gpt-5"}}
{"timestamp":"2025-11-01T10:00:00Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":500,"output_tokens":20}}}}
{"timestamp":"2025-11-01T10:01:00Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":900,"output_tokens":45}}}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err := parseSession(ctx, "session2", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Usage.InputTokens != 500 || events[0].Usage.OutputTokens != 20 {
		t.Errorf("first event = %+v, want input=500 output=20", events[0].Usage)
	}
	if events[1].Usage.InputTokens != 400 || events[1].Usage.OutputTokens != 25 {
		t.Errorf("second event = %+v, want input=400 output=25 (delta from cumulative)", events[1].Usage)
	}
}

// TestParseSession_FallsBackWithoutTurnContext covers spec.md §4.3's
// ResolveModel contract: when no model has ever been seen, the provider's
// legacy fallback is used. Codex always has a legacy fallback, so this
// verifies the fallback model is attributed, with is_fallback set, when no
// turn_context ever arrives.
func TestParseSession_FallsBackWithoutTurnContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session3.jsonl")
	content := `{"timestamp":"2025-11-01T10:00:00Z","type":"event_msg","payload":{"type":"token_count","info":{"last_token_usage":{"input_tokens":10,"output_tokens":5}}}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err := parseSession(ctx, "session3", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ModelName != legacyFallbackModel {
		t.Errorf("model = %q, want legacy fallback %q", events[0].ModelName, legacyFallbackModel)
	}
	if !events[0].IsFallbackModel {
		t.Errorf("is_fallback = false, want true")
	}
}
