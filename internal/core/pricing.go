package core

import "strings"

// PricingEntry is USD-per-million-token pricing for one model. ReasoningCost
// is optional — when zero, OutputCost is used as the reasoning-token rate
// (spec.md §4.5's cost formula: `reasoning_cost ?? output_cost`).
type PricingEntry struct {
	InputCostPerMillion          float64
	CacheCreationCostPerMillion  float64
	CachedInputCostPerMillion    float64
	OutputCostPerMillion         float64
	ReasoningOutputCostPerMillion float64
}

// ReasoningRate returns the effective reasoning-token rate, falling back to
// the output rate when no reasoning-specific rate was provided.
func (p PricingEntry) ReasoningRate() float64 {
	if p.ReasoningOutputCostPerMillion != 0 {
		return p.ReasoningOutputCostPerMillion
	}
	return p.OutputCostPerMillion
}

// CostUSD computes spec.md §4.5's cost formula for one usage snapshot under
// this pricing entry.
func (p PricingEntry) CostUSD(u TokenUsage) float64 {
	const perMillion = 1e6
	cost := float64(u.InputTokens) / perMillion * p.InputCostPerMillion
	cost += float64(u.CacheCreationInputTokens) / perMillion * p.CacheCreationCostPerMillion
	cost += float64(u.CachedInputTokens) / perMillion * p.CachedInputCostPerMillion
	cost += float64(u.OutputTokens) / perMillion * p.OutputCostPerMillion
	cost += float64(u.ReasoningOutputTokens) / perMillion * p.ReasoningRate()
	return cost
}

// PricingMap maps a model name to its pricing entry. It is populated once
// before the pipeline runs (optional remote LiteLLM manifest merged with
// per-provider fallback tables) and is read-only during the pipeline.
type PricingMap struct {
	entries map[string]PricingEntry
	aliases map[string]string
}

// NewPricingMap returns an empty, ready-to-use PricingMap.
func NewPricingMap() *PricingMap {
	return &PricingMap{
		entries: make(map[string]PricingEntry),
		aliases: make(map[string]string),
	}
}

// Set inserts or overwrites the entry for name. Used for the authoritative
// (remote manifest) pass, which always wins over fallback tables.
func (m *PricingMap) Set(name string, entry PricingEntry) {
	m.entries[strings.ToLower(name)] = entry
}

// SetFallback inserts entry only if name is not already present — fallback
// tables never overwrite a present (remote-manifest-sourced) entry, per
// spec.md §4.5.
func (m *PricingMap) SetFallback(name string, entry PricingEntry) {
	key := strings.ToLower(name)
	if _, exists := m.entries[key]; exists {
		return
	}
	m.entries[key] = entry
}

// Alias registers altName as resolving to canonical's pricing entry when
// altName has no entry of its own. Used for e.g. dated vs undated model
// name variants ("claude-sonnet-4" vs "claude-sonnet-4-20250514").
func (m *PricingMap) Alias(altName, canonical string) {
	m.aliases[strings.ToLower(altName)] = strings.ToLower(canonical)
}

// Lookup resolves name to a PricingEntry using a three-tier strategy:
// exact match, then registered alias, then longest-matching-prefix among
// known model names. ok is false only when none of those find anything,
// which is the "missing pricing" case spec.md §4.5 tracks separately.
func (m *PricingMap) Lookup(name string) (PricingEntry, bool) {
	key := strings.ToLower(name)
	if e, ok := m.entries[key]; ok {
		return e, true
	}
	if canonical, ok := m.aliases[key]; ok {
		if e, ok := m.entries[canonical]; ok {
			return e, true
		}
	}
	var best string
	for known := range m.entries {
		if strings.HasPrefix(key, known) && len(known) > len(best) {
			best = known
		}
	}
	if best != "" {
		return m.entries[best], true
	}
	return PricingEntry{}, false
}
