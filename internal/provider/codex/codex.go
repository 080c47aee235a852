// Package codex implements tokenuze's Codex CLI provider specialization:
// JSONL session files carrying turn_context model updates and event_msg
// token_count records, grounded on the field names
// _examples/janekbaraniewski-openusage/internal/providers/codex/codex.go
// reads from the same ~/.codex/sessions tree.
package codex

import (
	"encoding/json"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
	"github.com/bfactory-ai/tokenuze/internal/provider"
)

// legacyFallbackModel is the model name attributed to usage whose actual
// model could not be determined, per spec.md §4.4.
const legacyFallbackModel = "gpt-5"

// NewConfig returns the Codex provider's static configuration.
func NewConfig() provider.Config {
	return provider.Config{
		Name:                "codex",
		SessionsDirSuffix:   ".codex/sessions",
		LegacyFallbackModel: legacyFallbackModel,
		SessionFileExt:      ".jsonl",
		CachedCountsOverlap: true,
		RequiresDeduper:     false,
		ParseFn:             parseSession,
		FallbackPricing:     fallbackPricing(),
	}
}

// fallbackPricing mirrors the approximate OpenAI-model USD-per-million
// rates the teacher's codex.go documents in pricingSummary, restructured
// into per-field PricingEntry rows.
func fallbackPricing() []provider.PricingRow {
	return []provider.PricingRow{
		{ModelName: "gpt-5", Entry: core.PricingEntry{InputCostPerMillion: 1.25, OutputCostPerMillion: 10, CachedInputCostPerMillion: 0.125}},
		{ModelName: "gpt-5-codex", Entry: core.PricingEntry{InputCostPerMillion: 1.25, OutputCostPerMillion: 10, CachedInputCostPerMillion: 0.125}},
		{ModelName: "o3", Entry: core.PricingEntry{InputCostPerMillion: 2, OutputCostPerMillion: 8}},
		{ModelName: "o3-pro", Entry: core.PricingEntry{InputCostPerMillion: 20, OutputCostPerMillion: 80}},
		{ModelName: "o4-mini", Entry: core.PricingEntry{InputCostPerMillion: 1.10, OutputCostPerMillion: 4.40}},
		{ModelName: "o3-mini", Entry: core.PricingEntry{InputCostPerMillion: 1.10, OutputCostPerMillion: 4.40}},
		{ModelName: "gpt-4.1", Entry: core.PricingEntry{InputCostPerMillion: 2, OutputCostPerMillion: 8}},
		{ModelName: "gpt-4.1-mini", Entry: core.PricingEntry{InputCostPerMillion: 0.40, OutputCostPerMillion: 1.60}},
		{ModelName: "gpt-4.1-nano", Entry: core.PricingEntry{InputCostPerMillion: 0.10, OutputCostPerMillion: 0.40}},
		{ModelName: "gpt-4o", Entry: core.PricingEntry{InputCostPerMillion: 2.50, OutputCostPerMillion: 10}},
		{ModelName: "gpt-4o-mini", Entry: core.PricingEntry{InputCostPerMillion: 0.15, OutputCostPerMillion: 0.60}},
	}
}

// sessionRecord is one line of a Codex rollout JSONL file.
type sessionRecord struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type turnContextPayload struct {
	Model    string `json:"model"`
	Metadata struct {
		ModelName string `json:"model_name"`
	} `json:"metadata"`
}

type eventMsgPayload struct {
	Type string     `json:"type"`
	Info *tokenInfo `json:"info"`
}

type tokenInfo struct {
	LastTokenUsage  *tokenCounts `json:"last_token_usage"`
	TotalTokenUsage *tokenCounts `json:"total_token_usage"`
}

type tokenCounts struct {
	InputTokens           uint64 `json:"input_tokens"`
	CachedInputTokens     uint64 `json:"cached_input_tokens"`
	OutputTokens          uint64 `json:"output_tokens"`
	ReasoningOutputTokens uint64 `json:"reasoning_output_tokens"`
	TotalTokens           uint64 `json:"total_tokens"`
}

func (t tokenCounts) toUsage() core.TokenUsage {
	return core.TokenUsage{
		InputTokens:           t.InputTokens,
		CachedInputTokens:     t.CachedInputTokens,
		OutputTokens:          t.OutputTokens,
		ReasoningOutputTokens: t.ReasoningOutputTokens,
		TotalTokens:           t.TotalTokens,
	}
}

// parseSession implements spec.md §4.4's Codex semantics: turn_context
// records update the carried model state; event_msg/token_count records
// prefer last_token_usage as the delta when present, and otherwise compute
// the delta from total_token_usage against the previously remembered
// cumulative total — updating that cumulative from total_token_usage
// regardless of which branch supplied the delta, per spec.md §9's Open
// Question.
func parseSession(ctx *provider.ParseContext, sessionID, path string, _ *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error {
	state := &core.ModelState{}
	var cumulative *core.TokenUsage

	return provider.StreamJSONLines(path, func(line string, index int) error {
		var rec sessionRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", index), logging.F("error_name", err.Error()))
			return nil
		}

		switch rec.Type {
		case "turn_context":
			var tc turnContextPayload
			if err := json.Unmarshal(rec.Payload, &tc); err != nil {
				logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", index), logging.F("error_name", err.Error()))
				return nil
			}
			model := tc.Model
			if model == "" {
				model = tc.Metadata.ModelName
			}
			if model != "" {
				state.CurrentModel = model
				state.IsFallback = false
			}
		case "event_msg":
			var ep eventMsgPayload
			if err := json.Unmarshal(rec.Payload, &ep); err != nil {
				logging.Warn("malformed record", logging.F("provider", ctx.Config.Name), logging.F("path", path), logging.F("line_index", index), logging.F("error_name", err.Error()))
				return nil
			}
			if ep.Type != "token_count" || ep.Info == nil {
				return nil
			}

			var delta core.TokenUsage
			switch {
			case ep.Info.LastTokenUsage != nil:
				delta = ep.Info.LastTokenUsage.toUsage()
			case ep.Info.TotalTokenUsage != nil:
				total := ep.Info.TotalTokenUsage.toUsage()
				delta = core.DeltaFrom(total, cumulative)
			default:
				return nil
			}
			if ep.Info.TotalTokenUsage != nil {
				total := ep.Info.TotalTokenUsage.toUsage()
				cumulative = &total
			}

			ts, ok := provider.TimestampFromSlice(rec.Timestamp, tzOffsetMinutes)
			if !ok {
				return nil
			}

			modelName, isFallback, ok := ctx.ResolveModel(state, "")
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
				DisplayInputTokens: ctx.DisplayInputTokens(delta),
			})
		}
		return nil
	})
}
