// Package gemini implements tokenuze's Gemini CLI provider specialization:
// a single JSON document (not JSONL) per session under
// ~/.gemini/tmp/<session>/logs.json, carrying a messages array with
// cumulative token counts that must be delta'd against the previous
// message's snapshot, grounded on the log shape
// _examples/janekbaraniewski-openusage/internal/providers/gemini reads.
package gemini

import (
	"encoding/json"
	"os"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

// NewConfig returns the Gemini CLI provider's static configuration.
func NewConfig() provider.Config {
	return provider.Config{
		Name:                "gemini",
		SessionsDirSuffix:   ".gemini/tmp",
		LegacyFallbackModel: "gemini-2.5-pro",
		SessionFileExt:      ".json",
		CachedCountsOverlap: false,
		RequiresDeduper:     false,
		ParseFn:             parseSession,
		FallbackPricing:     fallbackPricing(),
	}
}

func fallbackPricing() []provider.PricingRow {
	return []provider.PricingRow{
		{ModelName: "gemini-2.5-pro", Entry: core.PricingEntry{InputCostPerMillion: 1.25, OutputCostPerMillion: 10, CachedInputCostPerMillion: 0.31}},
		{ModelName: "gemini-2.5-flash", Entry: core.PricingEntry{InputCostPerMillion: 0.30, OutputCostPerMillion: 2.50, CachedInputCostPerMillion: 0.075}},
		{ModelName: "gemini-2.5-flash-lite", Entry: core.PricingEntry{InputCostPerMillion: 0.10, OutputCostPerMillion: 0.40, CachedInputCostPerMillion: 0.025}},
		{ModelName: "gemini-2.0-flash", Entry: core.PricingEntry{InputCostPerMillion: 0.10, OutputCostPerMillion: 0.40}},
	}
}

// logDocument is the top-level shape of a Gemini CLI logs.json file.
type logDocument struct {
	SessionID string        `json:"sessionId"`
	Messages  []logMessage  `json:"messages"`
}

type logMessage struct {
	Timestamp string     `json:"timestamp"`
	Model     string     `json:"model"`
	Tokens    *logTokens `json:"tokens"`
}

type logTokens struct {
	Input    uint64 `json:"input"`
	Cached   uint64 `json:"cached"`
	Output   uint64 `json:"output"`
	Tool     uint64 `json:"tool"`
	Thoughts uint64 `json:"thoughts"`
	Total    uint64 `json:"total"`
}

func (t logTokens) toUsage() core.TokenUsage {
	return core.TokenUsage{
		InputTokens:           t.Input,
		CachedInputTokens:     t.Cached,
		OutputTokens:          saturatingAdd(t.Output, t.Tool),
		ReasoningOutputTokens: t.Thoughts,
		TotalTokens:           t.Total,
	}
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

// parseSession implements spec.md §4.4's Gemini semantics: the file is one
// JSON document (not JSONL); each entry in messages[] carries a cumulative
// token snapshot (output+tool merged into a single output figure,
// thoughts mapped to reasoning); the emitted event is the delta against the
// previous message's snapshot within the same file, per spec.md's
// delta_from(raw, previous) rule.
func parseSession(ctx *provider.ParseContext, sessionID, path string, _ *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc logDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", 0), logging.F("error_name", err.Error()))
		return nil // malformed document: nothing to emit, not a fatal error
	}

	resolvedSessionID := sessionID
	if sid := provider.DuplicateNonEmpty(doc.SessionID); sid != "" {
		resolvedSessionID = sid
	}

	state := &core.ModelState{}
	var previous *core.TokenUsage

	for _, msg := range doc.Messages {
		if msg.Tokens == nil {
			continue
		}
		raw := msg.Tokens.toUsage()
		delta := core.DeltaFrom(raw, previous)
		previous = &raw

		ts, ok := provider.TimestampFromSlice(msg.Timestamp, tzOffsetMinutes)
		if !ok {
			continue
		}

		modelName, isFallback, ok := ctx.ResolveModel(state, msg.Model)
		if !ok {
			continue
		}

		usage := ctx.NormalizeUsageDelta(delta)
		emit(core.TokenUsageEvent{
			SessionID:          resolvedSessionID,
			Timestamp:          ts.Text,
			LocalISODate:       ts.LocalISODate,
			ModelName:          modelName,
			Usage:              usage,
			IsFallbackModel:    isFallback,
			DisplayInputTokens: ctx.DisplayInputTokens(usage),
		})
	}
	return nil
}
