// Package opencode implements tokenuze's OpenCode provider specialization:
// JSONL session logs under ~/.local/share/opencode/sessions, one assistant
// message per line, grounded on the
// assistantInfo.Tokens{Input,Output,Reasoning,Cache{Read,Write}} shape
// _examples/janekbaraniewski-openusage/internal/providers/opencode/telemetry.go
// reads from OpenCode's message storage.
package opencode

import (
	"encoding/json"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

// NewConfig returns the OpenCode provider's static configuration.
func NewConfig() provider.Config {
	return provider.Config{
		Name:                "opencode",
		SessionsDirSuffix:   ".local/share/opencode/sessions",
		LegacyFallbackModel: "",
		SessionFileExt:      ".jsonl",
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
		{ModelName: "gemini-2.5-pro", Entry: core.PricingEntry{InputCostPerMillion: 1.25, OutputCostPerMillion: 10, CachedInputCostPerMillion: 0.31}},
	}
}

// messageRecord is one line of an OpenCode session's JSONL log: the
// assistant message's own info block, keyed the same way OpenCode's local
// storage keys a message by role.
type messageRecord struct {
	Role      string     `json:"role"`
	SessionID string     `json:"sessionID"`
	ModelID   string     `json:"modelID"`
	Timestamp string     `json:"time,omitempty"`
	Time      *infoTime  `json:"timeInfo,omitempty"`
	Tokens    *infoToken `json:"tokens"`
}

type infoTime struct {
	Created float64 `json:"created"` // milliseconds since epoch
}

type infoToken struct {
	Input     uint64          `json:"input"`
	Output    uint64          `json:"output"`
	Reasoning uint64          `json:"reasoning"`
	Cache     *infoTokenCache `json:"cache"`
}

type infoTokenCache struct {
	Read  uint64 `json:"read"`
	Write uint64 `json:"write"`
}

func (t infoToken) toUsage() core.TokenUsage {
	u := core.TokenUsage{
		InputTokens:           t.Input,
		OutputTokens:          t.Output,
		ReasoningOutputTokens: t.Reasoning,
	}
	if t.Cache != nil {
		u.CachedInputTokens = t.Cache.Read
		u.CacheCreationInputTokens = t.Cache.Write
	}
	return u
}

// parseSession implements OpenCode's JSONL session log: only role=="assistant"
// lines carrying a tokens block produce usage, and that usage is additive
// per line (each line is a distinct completed turn, not a cumulative
// snapshot). The session's own sessionID field overrides the
// filename-derived id the first time it is seen, the same override rule
// Claude's transcripts use.
func parseSession(ctx *provider.ParseContext, sessionID, path string, _ *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error {
	state := &core.ModelState{}
	resolvedSessionID := sessionID
	sessionIDFromRecord := false

	return provider.StreamJSONLines(path, func(line string, index int) error {
		var rec messageRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", index), logging.F("error_name", err.Error()))
			return nil
		}
		if rec.Role != "assistant" || rec.Tokens == nil {
			return nil
		}

		if !sessionIDFromRecord {
			if sid := provider.DuplicateNonEmpty(rec.SessionID); sid != "" {
				resolvedSessionID = sid
				sessionIDFromRecord = true
			}
		}

		ts, ok := timestampFor(rec, tzOffsetMinutes)
		if !ok {
			return nil
		}

		modelName, isFallback, ok := ctx.ResolveModel(state, rec.ModelID)
		if !ok {
			return nil
		}

		usage := ctx.NormalizeUsageDelta(rec.Tokens.toUsage())
		emit(core.TokenUsageEvent{
			SessionID:          resolvedSessionID,
			Timestamp:          ts.Text,
			LocalISODate:       ts.LocalISODate,
			ModelName:          modelName,
			Usage:              usage,
			IsFallbackModel:    isFallback,
			DisplayInputTokens: ctx.DisplayInputTokens(usage),
		})
		return nil
	})
}

// timestampFor accepts either a ready-made ISO-8601 "time" field or an
// epoch-millisecond "timeInfo.created" field, matching OpenCode's observed
// variation across versions.
func timestampFor(rec messageRecord, tzOffsetMinutes int) (provider.ParsedTimestamp, bool) {
	if rec.Timestamp != "" {
		return provider.TimestampFromSlice(rec.Timestamp, tzOffsetMinutes)
	}
	if rec.Time != nil {
		return millisecondsToTimestamp(rec.Time.Created, tzOffsetMinutes)
	}
	return provider.ParsedTimestamp{}, false
}
