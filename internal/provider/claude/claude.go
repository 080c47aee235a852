// Package claude implements tokenuze's Claude Code provider specialization:
// JSONL transcripts under ~/.claude/projects, one event per assistant
// message, deduplicated by a Wyhash fingerprint of the message/request id
// pair, grounded on the usage shape
// _examples/janekbaraniewski-openusage/internal/providers/claude reads.
package claude

import (
	"encoding/json"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

// NewConfig returns the Claude Code provider's static configuration.
func NewConfig() provider.Config {
	return provider.Config{
		Name:                "claude",
		SessionsDirSuffix:   ".claude/projects",
		LegacyFallbackModel: "",
		SessionFileExt:      ".jsonl",
		CachedCountsOverlap: false,
		RequiresDeduper:     true,
		ParseFn:             parseSession,
		FallbackPricing:     fallbackPricing(),
	}
}

func fallbackPricing() []provider.PricingRow {
	return []provider.PricingRow{
		{
			ModelName: "claude-opus-4",
			Entry:     core.PricingEntry{InputCostPerMillion: 15, OutputCostPerMillion: 75, CachedInputCostPerMillion: 1.50, CacheCreationCostPerMillion: 18.75},
		},
		{
			ModelName: "claude-sonnet-4",
			Entry:     core.PricingEntry{InputCostPerMillion: 3, OutputCostPerMillion: 15, CachedInputCostPerMillion: 0.30, CacheCreationCostPerMillion: 3.75},
			Aliases:   []string{"claude-sonnet-4-5", "claude-sonnet-4-20250514"},
		},
		{
			ModelName: "claude-haiku-4",
			Entry:     core.PricingEntry{InputCostPerMillion: 1, OutputCostPerMillion: 5, CachedInputCostPerMillion: 0.10, CacheCreationCostPerMillion: 1.25},
			Aliases:   []string{"claude-haiku-4-5"},
		},
		{
			ModelName: "claude-3-5-sonnet",
			Entry:     core.PricingEntry{InputCostPerMillion: 3, OutputCostPerMillion: 15, CachedInputCostPerMillion: 0.30, CacheCreationCostPerMillion: 3.75},
			Aliases:   []string{"claude-3-5-sonnet-20241022", "claude-3-5-sonnet-20240620"},
		},
		{
			ModelName: "claude-3-5-haiku",
			Entry:     core.PricingEntry{InputCostPerMillion: 0.80, OutputCostPerMillion: 4, CachedInputCostPerMillion: 0.08, CacheCreationCostPerMillion: 1},
			Aliases:   []string{"claude-3-5-haiku-20241022"},
		},
		{
			ModelName: "claude-3-opus",
			Entry:     core.PricingEntry{InputCostPerMillion: 15, OutputCostPerMillion: 75, CachedInputCostPerMillion: 1.50, CacheCreationCostPerMillion: 18.75},
		},
	}
}

// transcriptLine is one line of a Claude Code project transcript.
type transcriptLine struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Timestamp string          `json:"timestamp"`
	RequestID string          `json:"requestId"`
	Message   *assistantMsg   `json:"message"`
	UUID      string          `json:"uuid"`
	Raw       json.RawMessage `json:"-"`
}

type assistantMsg struct {
	ID    string     `json:"id"`
	Model string     `json:"model"`
	Usage *usageBlob `json:"usage"`
}

type usageBlob struct {
	InputTokens              uint64 `json:"input_tokens"`
	CacheCreationInputTokens uint64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     uint64 `json:"cache_read_input_tokens"`
	OutputTokens             uint64 `json:"output_tokens"`
}

func (u usageBlob) toUsage() core.TokenUsage {
	return core.TokenUsage{
		InputTokens:              u.InputTokens,
		CacheCreationInputTokens: u.CacheCreationInputTokens,
		CachedInputTokens:        u.CacheReadInputTokens,
		OutputTokens:             u.OutputTokens,
		ReasoningOutputTokens:    0,
	}
}

// parseSession implements spec.md §4.4's Claude semantics: only
// type=="assistant" records carry usage; each message is deduplicated by
// Wyhash(message.id) XOR Wyhash(requestId) so that transcripts which
// redundantly repeat an assistant turn (seen after a resumed session, for
// instance) are not double-counted; usage is additive per message rather
// than a cumulative-total delta; the session label is the record's own
// sessionId field the first time it is seen, overriding the filename-derived
// id passed in.
func parseSession(ctx *provider.ParseContext, sessionID, path string, deduper *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error {
	state := &core.ModelState{}
	resolvedSessionID := sessionID
	sessionIDFromRecord := false

	return provider.StreamJSONLines(path, func(line string, index int) error {
		var rec transcriptLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", index), logging.F("error_name", err.Error()))
			return nil
		}
		if rec.Type != "assistant" || rec.Message == nil || rec.Message.Usage == nil {
			return nil
		}

		if !sessionIDFromRecord {
			if sid := provider.DuplicateNonEmpty(rec.SessionID); sid != "" {
				resolvedSessionID = sid
				sessionIDFromRecord = true
			}
		}

		key := core.Wyhash(rec.Message.ID) ^ core.Wyhash(rec.RequestID)
		if deduper != nil && !deduper.Mark(key) {
			return nil // already counted this message/request pair
		}

		ts, ok := provider.TimestampFromSlice(rec.Timestamp, tzOffsetMinutes)
		if !ok {
			return nil
		}

		modelName, isFallback, ok := ctx.ResolveModel(state, rec.Message.Model)
		if !ok {
			return nil
		}

		usage := ctx.NormalizeUsageDelta(rec.Message.Usage.toUsage())
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
