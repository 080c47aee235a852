package core

import "testing"

func TestDeltaFromNilPreviousReturnsVerbatim(t *testing.T) {
	cur := TokenUsage{InputTokens: 100, OutputTokens: 20}
	got := DeltaFrom(cur, nil)
	if got != cur {
		t.Fatalf("DeltaFrom(cur, nil) = %+v, want %+v", got, cur)
	}
}

func TestDeltaFromMonotonicSequenceSumsToTerminal(t *testing.T) {
	seq := []TokenUsage{
		{TotalTokens: 100},
		{TotalTokens: 350},
		{TotalTokens: 800},
	}
	var prev *TokenUsage
	var sum uint64
	for i := range seq {
		d := DeltaFrom(seq[i], prev)
		sum += d.TotalTokens
		cur := seq[i]
		prev = &cur
	}
	if sum != 800 {
		t.Fatalf("sum of deltas = %d, want 800", sum)
	}
}

func TestDeltaFromClampsDecreaseToZero(t *testing.T) {
	prev := TokenUsage{TotalTokens: 500}
	cur := TokenUsage{TotalTokens: 200}
	d := DeltaFrom(cur, &prev)
	if d.TotalTokens != 0 {
		t.Fatalf("delta on decrease = %d, want 0", d.TotalTokens)
	}
}

func TestNormalizeUsageDeltaOverlapMode(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, CachedInputTokens: 200}
	got := NormalizeUsageDelta(u, true)
	if got.InputTokens != 800 {
		t.Fatalf("normalized input = %d, want 800", got.InputTokens)
	}
	if got.CachedInputTokens != 200 {
		t.Fatalf("cached should be untouched, got %d", got.CachedInputTokens)
	}
}

func TestNormalizeUsageDeltaIdempotent(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, CachedInputTokens: 200, CacheCreationInputTokens: 50}
	once := NormalizeUsageDelta(u, true)
	twice := NormalizeUsageDelta(once, true)
	if once != twice {
		t.Fatalf("NormalizeUsageDelta not idempotent: once=%+v twice=%+v", once, twice)
	}
}

func TestNormalizeUsageDeltaNonOverlapPassesThrough(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, CachedInputTokens: 200}
	got := NormalizeUsageDelta(u, false)
	if got != u {
		t.Fatalf("non-overlap mode changed usage: got %+v want %+v", got, u)
	}
}

func TestDisplayInputTokensOverlapVsAdditive(t *testing.T) {
	u := TokenUsage{InputTokens: 800, CachedInputTokens: 200, CacheCreationInputTokens: 0}
	if got := DisplayInputTokens(u, true); got != 800 {
		t.Fatalf("overlap display = %d, want 800", got)
	}
	if got := DisplayInputTokens(u, false); got != 1000 {
		t.Fatalf("additive display = %d, want 1000", got)
	}
}

func TestTokenUsageIsZero(t *testing.T) {
	if !(TokenUsage{}).IsZero() {
		t.Fatal("zero-value TokenUsage should be IsZero")
	}
	if (TokenUsage{OutputTokens: 1}).IsZero() {
		t.Fatal("non-zero TokenUsage reported as IsZero")
	}
}
