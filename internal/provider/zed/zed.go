// Package zed implements tokenuze's Zed editor provider specialization:
// a single SQLite database at ~/.local/share/zed/threads/threads.db whose
// threads table stores each conversation's thread JSON zstd-compressed in a
// BLOB column, read in-process via mattn/go-sqlite3 the way
// _examples/janekbaraniewski-openusage/internal/telemetry/store.go reads
// its own local database, and inflated with
// github.com/klauspost/compress/zstd (grounded on its indirect appearance
// in odvcencio-buckley's go.mod).
package zed

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/klauspost/compress/zstd"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

// NewConfig returns the Zed provider's static configuration.
func NewConfig() provider.Config {
	return provider.Config{
		Name:                "zed",
		SessionsDirSuffix:   ".local/share/zed/threads",
		LegacyFallbackModel: "",
		SessionFileExt:      ".db",
		CachedCountsOverlap: false,
		RequiresDeduper:     false,
		ParseFn:             parseSession,
		FallbackPricing:     fallbackPricing(),
	}
}

func fallbackPricing() []provider.PricingRow {
	return []provider.PricingRow{
		{ModelName: "claude-sonnet-4", Entry: core.PricingEntry{InputCostPerMillion: 3, OutputCostPerMillion: 15, CachedInputCostPerMillion: 0.30, CacheCreationCostPerMillion: 3.75}},
		{ModelName: "gpt-5", Entry: core.PricingEntry{InputCostPerMillion: 1.25, OutputCostPerMillion: 10, CachedInputCostPerMillion: 0.125}},
	}
}

// threadDocument is the decompressed shape of a Zed thread's stored JSON.
type threadDocument struct {
	UpdatedAt          string                     `json:"updated_at"`
	Model              json.RawMessage            `json:"model"`
	RequestTokenUsage  map[string]requestUsage    `json:"request_token_usage"`
}

type requestUsage struct {
	InputTokens           uint64 `json:"input_tokens"`
	CacheCreationTokens   uint64 `json:"cache_creation_input_tokens"`
	CacheReadTokens       uint64 `json:"cache_read_input_tokens"`
	OutputTokens          uint64 `json:"output_tokens"`
}

func (r requestUsage) toUsage() core.TokenUsage {
	return core.TokenUsage{
		InputTokens:              r.InputTokens,
		CacheCreationInputTokens: r.CacheCreationTokens,
		CachedInputTokens:        r.CacheReadTokens,
		OutputTokens:             r.OutputTokens,
	}
}

// modelName extracts the thread's model name whether it is stored as a bare
// string or as an object carrying a "model" field.
func modelName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Model
	}
	return ""
}

func openReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// parseSession implements spec.md §4.4's Zed semantics: the threads table's
// data BLOB column holds a zstd-compressed JSON document per thread;
// decompressing it yields a request_token_usage map keyed by request id,
// each value becoming one event, with the thread's own updated_at supplying
// the timestamp and its model field (string or object) supplying the model
// name.
func parseSession(ctx *provider.ParseContext, sessionID, path string, _ *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error {
	db, err := openReadOnly(path)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, data FROM threads`)
	if err != nil {
		return err
	}
	defer rows.Close()

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer decoder.Close()

	rowIndex := 0
	for rows.Next() {
		var threadID string
		var blob []byte
		if err := rows.Scan(&threadID, &blob); err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", rowIndex), logging.F("error_name", err.Error()))
			rowIndex++
			continue
		}

		inflated, err := decoder.DecodeAll(blob, nil)
		if err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", rowIndex), logging.F("error_name", err.Error()))
			rowIndex++
			continue // corrupt or non-compressed row: skip, not fatal
		}

		var doc threadDocument
		if err := json.Unmarshal(inflated, &doc); err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", rowIndex), logging.F("error_name", err.Error()))
			rowIndex++
			continue
		}
		rowIndex++

		resolvedSessionID := sessionID
		if tid := provider.DuplicateNonEmpty(threadID); tid != "" {
			resolvedSessionID = tid
		}

		ts, ok := provider.TimestampFromSlice(doc.UpdatedAt, tzOffsetMinutes)
		if !ok {
			continue
		}

		model := modelName(doc.Model)
		state := &core.ModelState{}
		resolvedModel, isFallback, ok := ctx.ResolveModel(state, model)
		if !ok {
			continue
		}

		for _, reqUsage := range doc.RequestTokenUsage {
			usage := ctx.NormalizeUsageDelta(reqUsage.toUsage())
			emit(core.TokenUsageEvent{
				SessionID:          resolvedSessionID,
				Timestamp:          ts.Text,
				LocalISODate:       ts.LocalISODate,
				ModelName:          resolvedModel,
				Usage:              usage,
				IsFallbackModel:    isFallback,
				DisplayInputTokens: ctx.DisplayInputTokens(usage),
			})
		}
	}
	return rows.Err()
}
