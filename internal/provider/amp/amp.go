// Package amp implements tokenuze's Amp CLI provider specialization: JSONL
// thread logs under ~/.config/amp/sessions carrying cumulative token
// snapshots per
// inference event, delta'd the same way Codex's total_token_usage branch
// is, grounded on the cumulative-usage idiom
// _examples/janekbaraniewski-openusage/internal/providers/codex/codex.go
// establishes for this family of logs.
package amp

import (
	"encoding/json"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

// NewConfig returns the Amp CLI provider's static configuration.
func NewConfig() provider.Config {
	return provider.Config{
		Name:                "amp",
		SessionsDirSuffix:   ".config/amp/sessions",
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
	}
}

// inferenceRecord is one line of an Amp thread log.
type inferenceRecord struct {
	Timestamp string      `json:"timestamp"`
	Event     string      `json:"event"`
	Model     string      `json:"model"`
	Usage     *usageTotal `json:"usage"`
}

type usageTotal struct {
	InputTokens       uint64 `json:"inputTokens"`
	CacheReadTokens   uint64 `json:"cacheReadTokens"`
	CacheWriteTokens  uint64 `json:"cacheWriteTokens"`
	OutputTokens      uint64 `json:"outputTokens"`
	TotalTokens       uint64 `json:"totalTokens"`
}

func (u usageTotal) toUsage() core.TokenUsage {
	return core.TokenUsage{
		InputTokens:              u.InputTokens,
		CachedInputTokens:        u.CacheReadTokens,
		CacheCreationInputTokens: u.CacheWriteTokens,
		OutputTokens:             u.OutputTokens,
		TotalTokens:              u.TotalTokens,
	}
}

// parseSession treats each "inference" record's usage field as a cumulative
// snapshot for the thread, in the same style as Codex's total_token_usage
// branch: the emitted event is the delta against the previous record's
// snapshot, and the cumulative state advances on every record regardless of
// whether the delta turned out to be zero.
func parseSession(ctx *provider.ParseContext, sessionID, path string, _ *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error {
	state := &core.ModelState{}
	var cumulative *core.TokenUsage

	return provider.StreamJSONLines(path, func(line string, index int) error {
		var rec inferenceRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", index), logging.F("error_name", err.Error()))
			return nil
		}
		if rec.Event != "inference" || rec.Usage == nil {
			return nil
		}

		total := rec.Usage.toUsage()
		delta := core.DeltaFrom(total, cumulative)
		cumulative = &total

		ts, ok := provider.TimestampFromSlice(rec.Timestamp, tzOffsetMinutes)
		if !ok {
			return nil
		}

		modelName, isFallback, ok := ctx.ResolveModel(state, rec.Model)
		if !ok {
			return nil
		}

		usage := ctx.NormalizeUsageDelta(delta)
		emit(core.TokenUsageEvent{
			SessionID:          sessionID,
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
