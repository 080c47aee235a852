// Package crush implements tokenuze's Crush provider specialization:
// project-nested SQLite databases under
// ~/.config/crush/projects/<project>/crush.db, each holding a sessions
// table with cumulative prompt/completion token columns, queried in-process
// via mattn/go-sqlite3 rather than spec.md's alternative external
// `sqlite3 -json` subprocess approach — the same driver
// _examples/janekbaraniewski-openusage/internal/telemetry/store.go uses for
// its own local database.
package crush

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
	"github.com/bfactory-ai/tokenuze/internal/provider"
	"github.com/bfactory-ai/tokenuze/internal/timeutil"
)

// NewConfig returns the Crush provider's static configuration.
func NewConfig() provider.Config {
	return provider.Config{
		Name:                "crush",
		SessionsDirSuffix:   ".config/crush/projects",
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

// openReadOnly opens path in SQLite read-only mode: Crush's own process may
// have the database open for writes concurrently, and tokenuze must never
// risk corrupting a live agent's state.
func openReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&immutable=0", path))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// parseSession implements spec.md §4.4's Crush semantics: one row per
// session in the sessions table, each carrying that session's
// prompt/completion token totals along with the model name and a
// Unix-epoch-seconds updated_at. Each row becomes one event as is; no delta
// is computed between rows.
func parseSession(ctx *provider.ParseContext, sessionID, path string, _ *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error {
	db, err := openReadOnly(path)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT id, model_id, prompt_tokens, completion_tokens, updated_at
		FROM sessions
		WHERE prompt_tokens > 0 OR completion_tokens > 0
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	rowIndex := 0
	for rows.Next() {
		var (
			rowSessionID                   string
			modelID                        string
			promptTokens, completionTokens int64
			updatedAt                      int64
		)
		if err := rows.Scan(&rowSessionID, &modelID, &promptTokens, &completionTokens, &updatedAt); err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", rowIndex), logging.F("error_name", err.Error()))
			rowIndex++
			continue
		}
		rowIndex++

		resolvedSessionID := sessionID
		if sid := provider.DuplicateNonEmpty(rowSessionID); sid != "" {
			resolvedSessionID = sid
		}

		usage := ctx.NormalizeUsageDelta(core.TokenUsage{
			InputTokens:  uint64nonNegative(promptTokens),
			OutputTokens: uint64nonNegative(completionTokens),
		})

		state := &core.ModelState{}
		modelName, isFallback, ok := ctx.ResolveModel(state, modelID)
		if !ok {
			continue
		}

		text := timeutil.FormatUTCSecondsAsISO8601(updatedAt)
		emit(core.TokenUsageEvent{
			SessionID:          resolvedSessionID,
			Timestamp:          text,
			LocalISODate:       timeutil.IsoDateForTimezone(updatedAt, tzOffsetMinutes),
			ModelName:          modelName,
			Usage:              usage,
			IsFallbackModel:    isFallback,
			DisplayInputTokens: ctx.DisplayInputTokens(usage),
		})
	}
	return rows.Err()
}

func uint64nonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
