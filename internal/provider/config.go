// Package provider implements the generic provider framework (spec.md
// §4.3): directory scan, per-file parser dispatch, dedup, model-state
// carry-over, and fallback-pricing registration, driven by a per-provider
// Config record rather than per-provider code generation — the "interface
// with a shared runner" approach spec.md §9 Design Notes recommends.
package provider

import (
	"github.com/bfactory-ai/tokenuze/internal/core"
)

// ParseSessionFunc parses one session file into events. ctx carries the
// provider's static configuration and shared helpers; sessionID is the
// filename without its extension; deduper is non-nil only when
// Config.RequiresDeduper is set. Parse errors for individual records must
// be logged and swallowed internally — ParseSessionFunc itself only
// returns an error for conditions that abort the whole file (e.g. it
// cannot be opened).
type ParseSessionFunc func(ctx *ParseContext, sessionID, path string, deduper *core.MessageDeduper, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) error

// PricingRow is one static fallback pricing entry a provider registers at
// startup.
type PricingRow struct {
	ModelName string
	Entry     core.PricingEntry
	Aliases   []string
}

// Config is the static configuration record spec.md §4.3 describes for a
// provider specialization.
type Config struct {
	Name                   string
	SessionsDirSuffix      string
	LegacyFallbackModel    string
	FallbackPricing        []PricingRow
	SessionFileExt         string
	CachedCountsOverlap    bool
	RequiresDeduper        bool
	ParseFn                ParseSessionFunc
}

// ParseContext is handed to every ParseSessionFunc invocation. It exposes
// the provider's config (for CachedCountsOverlap/LegacyFallbackModel) and
// the helpers below that apply it, keeping per-file parsers free of global
// state.
type ParseContext struct {
	Config Config
}

// NormalizeUsageDelta applies the provider's cached/input overlap rule to a
// delta before it is wrapped into a TokenUsageEvent.
func (c *ParseContext) NormalizeUsageDelta(u core.TokenUsage) core.TokenUsage {
	return core.NormalizeUsageDelta(u, c.Config.CachedCountsOverlap)
}

// DisplayInputTokens computes the display-input figure under this
// provider's overlap rule. In overlap mode u is the delta before
// NormalizeUsageDelta, whose input still includes the cached tokens.
func (c *ParseContext) DisplayInputTokens(u core.TokenUsage) uint64 {
	return core.DisplayInputTokens(u, c.Config.CachedCountsOverlap)
}

// ResolveModel wraps core.ResolveModel with this provider's legacy fallback
// model name.
func (c *ParseContext) ResolveModel(state *core.ModelState, extracted string) (name string, isFallback bool, ok bool) {
	return core.ResolveModel(state, extracted, c.Config.LegacyFallbackModel)
}

// LoadPricingData merges the provider's static fallback table into pm,
// never overwriting an entry already present (e.g. from a remote manifest).
func (c Config) LoadPricingData(pm *core.PricingMap) {
	for _, row := range c.FallbackPricing {
		pm.SetFallback(row.ModelName, row.Entry)
		for _, alias := range row.Aliases {
			pm.Alias(alias, row.ModelName)
		}
	}
}
