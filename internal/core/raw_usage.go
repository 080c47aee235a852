// Package core defines tokenuze's canonical usage model: the raw and
// normalized token counters, the per-event record, and the aggregation
// targets every provider specialization feeds into.
package core

import (
	"math"
	"strconv"
	"strings"
)

// RawUsage is a wire-level snapshot of token counters taken from a single
// log record, before any per-provider normalization is applied.
type RawUsage struct {
	InputTokens               uint64
	CacheCreationInputTokens  uint64
	CachedInputTokens         uint64
	OutputTokens              uint64
	ReasoningOutputTokens     uint64
	TotalTokens               uint64
}

// saturatingAdd adds b to a, clamping to math.MaxUint64 on overflow.
func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return math.MaxUint64
	}
	return sum
}

// saturatingSub subtracts b from a, clamping to 0 on underflow. This is the
// "late log rewrite" clamp spec.md §4.4 requires for cumulative providers.
func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// usageField identifies which RawUsage counter a raw JSON key maps to.
type usageField int

const (
	fieldUnknown usageField = iota
	fieldInput
	fieldCacheCreation
	fieldCached
	fieldOutput
	fieldReasoning
	fieldTotal
)

var usageFieldAliases = map[string]usageField{
	"input_tokens":                fieldInput,
	"prompt_tokens":               fieldInput,
	"input":                       fieldInput,
	"cache_creation_input_tokens": fieldCacheCreation,
	"cache_write":                 fieldCacheCreation,
	"cache_read_input_tokens":     fieldCached,
	"cached":                      fieldCached,
	"cached_input_tokens":         fieldCached,
	"output_tokens":               fieldOutput,
	"completion_tokens":           fieldOutput,
	"output":                      fieldOutput,
	"reasoning_output_tokens":     fieldReasoning,
	"thoughts":                    fieldReasoning,
	"total_tokens":                fieldTotal,
	"total":                       fieldTotal,
}

// usageFieldForKey resolves a raw JSON key name to its canonical usage
// field. Unknown keys resolve to fieldUnknown and are ignored by callers.
func usageFieldForKey(name string) usageField {
	f, ok := usageFieldAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fieldUnknown
	}
	return f
}

// parseTokenNumber is a tolerant uint64 parser for token counts that may
// arrive as JSON integers, floats, or comma-separated strings. Malformed
// input yields 0 rather than an error, per spec.md §4.2.
func parseTokenNumber(s string) uint64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0
		}
		return uint64(f)
	}
	return 0
}

// UsageAccumulator scratch-accumulates RawUsage fields as a parser walks a
// session file record by record. apply_field is additive for cache/cached/
// output/reasoning; input and total overwrite the last seen value, matching
// the Codex `applyField` semantics spec.md §9's Open Question pins down as
// the one to preserve precisely.
type UsageAccumulator struct {
	raw       RawUsage
	sawInput  bool
	sawTotal  bool
}

// ApplyField folds a single (field, value) pair from a raw log record into
// the accumulator, using the per-field overwrite/additive rule from
// spec.md §4.2.
func (a *UsageAccumulator) ApplyField(name string, value uint64) {
	switch usageFieldForKey(name) {
	case fieldInput:
		a.raw.InputTokens = value
		a.sawInput = true
	case fieldCacheCreation:
		a.raw.CacheCreationInputTokens = saturatingAdd(a.raw.CacheCreationInputTokens, value)
	case fieldCached:
		a.raw.CachedInputTokens = saturatingAdd(a.raw.CachedInputTokens, value)
	case fieldOutput:
		a.raw.OutputTokens = saturatingAdd(a.raw.OutputTokens, value)
	case fieldReasoning:
		a.raw.ReasoningOutputTokens = saturatingAdd(a.raw.ReasoningOutputTokens, value)
	case fieldTotal:
		a.raw.TotalTokens = value
		a.sawTotal = true
	}
}

// ApplyFieldString is a convenience wrapper parsing value via
// parseTokenNumber before applying it.
func (a *UsageAccumulator) ApplyFieldString(name, value string) {
	a.ApplyField(name, parseTokenNumber(value))
}

// Finalize produces the accumulated RawUsage snapshot.
func (a *UsageAccumulator) Finalize() RawUsage {
	return a.raw
}
