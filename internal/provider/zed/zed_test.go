package zed

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/klauspost/compress/zstd"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestParseSession_DecompressesThreadsAndEmitsPerRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if _, err := db.Exec(`CREATE TABLE threads (id TEXT PRIMARY KEY, data BLOB)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	threadJSON := `{
		"updated_at": "2025-11-01T12:00:00Z",
		"model": {"model": "claude-sonnet-4"},
		"request_token_usage": {
			"req-1": {"input_tokens": 200, "cache_read_input_tokens": 30, "output_tokens": 40},
			"req-2": {"input_tokens": 350, "output_tokens": 60}
		}
	}`
	blob := compress(t, []byte(threadJSON))
	if _, err := db.Exec(`INSERT INTO threads VALUES (?, ?)`, "thread-1", blob); err != nil {
		t.Fatalf("insert row: %v", err)
	}
	db.Close()

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err = parseSession(ctx, "fallback-id", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.SessionID != "thread-1" {
			t.Errorf("session id = %q, want thread-1", ev.SessionID)
		}
		if ev.ModelName != "claude-sonnet-4" {
			t.Errorf("model = %q, want claude-sonnet-4", ev.ModelName)
		}
		if ev.LocalISODate != "2025-11-01" {
			t.Errorf("local_iso_date = %q, want 2025-11-01", ev.LocalISODate)
		}
	}
}

func TestParseSession_CorruptBlobSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE threads (id TEXT PRIMARY KEY, data BLOB)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO threads VALUES (?, ?)`, "bad-thread", []byte("not zstd")); err != nil {
		t.Fatalf("insert row: %v", err)
	}
	db.Close()

	cfg := NewConfig()
	ctx := &provider.ParseContext{Config: cfg}

	var events []core.TokenUsageEvent
	err = parseSession(ctx, "fallback-id", path, nil, 0, func(ev core.TokenUsageEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("parseSession returned error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected 0 events for corrupt blob, got %d", len(events))
	}
}
