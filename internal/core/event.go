package core

// TokenUsageEvent is the atom of the aggregation pipeline: one usage-bearing
// record after provider parsing. Events are created once by a provider
// parser and never mutated afterwards — all fields are owned copies.
type TokenUsageEvent struct {
	SessionID          string
	Timestamp          string // ISO-8601 text, as emitted by the source log
	LocalISODate       string // YYYY-MM-DD in the pipeline's configured offset
	ModelName          string
	Usage              TokenUsage
	IsFallbackModel    bool
	DisplayInputTokens uint64
	Provider           string
}

// ModelState is per-session-file scratch tracking which model is currently
// active (set by turn-context/model-carrying records) and whether that
// model name is a legacy fallback rather than one observed in the log.
type ModelState struct {
	CurrentModel string
	IsFallback   bool
}

// ResolveModel implements spec.md §4.3's resolve_model: prefer a freshly
// extracted model name (updating state as a side effect), else fall back to
// the carried-over state, else the provider's legacy fallback model with
// IsFallback=true, else report ok=false so the caller drops the event.
func ResolveModel(state *ModelState, extracted, legacyFallback string) (name string, isFallback bool, ok bool) {
	if extracted != "" {
		state.CurrentModel = extracted
		state.IsFallback = false
		return extracted, false, true
	}
	if state.CurrentModel != "" {
		return state.CurrentModel, state.IsFallback, true
	}
	if legacyFallback != "" {
		state.CurrentModel = legacyFallback
		state.IsFallback = true
		return legacyFallback, true, true
	}
	return "", false, false
}
