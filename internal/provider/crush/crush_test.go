package crush

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

func TestParseSession_ReadsSessionRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crush.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if _, err := db.Exec(`CREATE TABLE sessions (
		id TEXT PRIMARY KEY,
		model_id TEXT,
		prompt_tokens INTEGER,
		completion_tokens INTEGER,
		updated_at INTEGER
	)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO sessions VALUES
		('sess-1', 'claude-sonnet-4', 500, 120, 1730460000),
		('sess-2', 'gpt-5', 300, 60, 1730460600),
		('sess-empty', 'claude-sonnet-4', 0, 0, 1730461000)
	`); err != nil {
		t.Fatalf("insert rows: %v", err)
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
		t.Fatalf("expected 2 events (zero-usage row excluded), got %d", len(events))
	}
	if events[0].SessionID != "sess-1" || events[0].Usage.InputTokens != 500 || events[0].Usage.OutputTokens != 120 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].SessionID != "sess-2" || events[1].ModelName != "gpt-5" {
		t.Errorf("second event = %+v", events[1])
	}
}
