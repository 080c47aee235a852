package core

// TokenUsage is the normalized token accounting for a single event, after
// the per-provider "cached overlaps input" rule (spec.md §3) has been
// applied. It carries the same six counters as RawUsage.
type TokenUsage struct {
	InputTokens              uint64
	CacheCreationInputTokens uint64
	CachedInputTokens        uint64
	OutputTokens             uint64
	ReasoningOutputTokens    uint64
	TotalTokens              uint64
}

// TokenUsageFromRaw is an identity conversion — RawUsage and TokenUsage share a field
// layout, so this only exists to name the semantic transition spec.md §4.2
// describes as `TokenUsage.from_raw(raw)`.
func TokenUsageFromRaw(raw RawUsage) TokenUsage {
	return TokenUsage(raw)
}

// DeltaFrom computes the per-field saturating difference between the
// current cumulative snapshot and the previous one. A nil previous returns
// current verbatim, which is what Gemini's and Codex's cumulative-total
// parsing relies on for a session's first record.
func DeltaFrom(current TokenUsage, previous *TokenUsage) TokenUsage {
	if previous == nil {
		return current
	}
	prev := *previous
	return TokenUsage{
		InputTokens:              saturatingSub(current.InputTokens, prev.InputTokens),
		CacheCreationInputTokens: saturatingSub(current.CacheCreationInputTokens, prev.CacheCreationInputTokens),
		CachedInputTokens:        saturatingSub(current.CachedInputTokens, prev.CachedInputTokens),
		OutputTokens:             saturatingSub(current.OutputTokens, prev.OutputTokens),
		ReasoningOutputTokens:    saturatingSub(current.ReasoningOutputTokens, prev.ReasoningOutputTokens),
		TotalTokens:              saturatingSub(current.TotalTokens, prev.TotalTokens),
	}
}

// IsZero reports whether every counter is zero — the condition under which
// spec.md §4.4 says an event must be dropped rather than emitted.
func (u TokenUsage) IsZero() bool {
	return u.InputTokens == 0 &&
		u.CacheCreationInputTokens == 0 &&
		u.CachedInputTokens == 0 &&
		u.OutputTokens == 0 &&
		u.ReasoningOutputTokens == 0 &&
		u.TotalTokens == 0
}

// Add returns the field-wise saturating sum of u and other, used when
// folding an event's usage into a DailySummary/SessionSummary/WeeklySummary.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:              saturatingAdd(u.InputTokens, other.InputTokens),
		CacheCreationInputTokens: saturatingAdd(u.CacheCreationInputTokens, other.CacheCreationInputTokens),
		CachedInputTokens:        saturatingAdd(u.CachedInputTokens, other.CachedInputTokens),
		OutputTokens:             saturatingAdd(u.OutputTokens, other.OutputTokens),
		ReasoningOutputTokens:    saturatingAdd(u.ReasoningOutputTokens, other.ReasoningOutputTokens),
		TotalTokens:              saturatingAdd(u.TotalTokens, other.TotalTokens),
	}
}

// NormalizeUsageDelta applies the "cached overlaps input" rule: when
// cachedOverlapsInput is true (Codex), cached/cache-creation tokens are
// carved back out of input so input+cached double-counting cannot occur.
// When false, input is left untouched and cached/cache-creation are
// additive to the displayed input figure computed by DisplayInputTokens.
// In overlap mode every call subtracts again, so calling it on its own
// output lowers input a second time; parsers apply it once per delta.
func NormalizeUsageDelta(u TokenUsage, cachedOverlapsInput bool) TokenUsage {
	if !cachedOverlapsInput {
		return u
	}
	overlap := saturatingAdd(u.CachedInputTokens, u.CacheCreationInputTokens)
	u.InputTokens = saturatingSub(u.InputTokens, overlap)
	return u
}

// DisplayInputTokens computes the "logical input" spend basis for an event:
// when cached counts overlap input, input_tokens already is the display
// figure (so u must be the usage before NormalizeUsageDelta carved the
// overlap out of it); otherwise cached and cache-creation tokens are
// additive to it.
func DisplayInputTokens(u TokenUsage, cachedOverlapsInput bool) uint64 {
	if cachedOverlapsInput {
		return u.InputTokens
	}
	return saturatingAdd(saturatingAdd(u.InputTokens, u.CachedInputTokens), u.CacheCreationInputTokens)
}
