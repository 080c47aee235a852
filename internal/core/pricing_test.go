package core

import "testing"

func TestPricingFallbackDoesNotOverwriteExisting(t *testing.T) {
	m := NewPricingMap()
	m.Set("gpt-5", PricingEntry{InputCostPerMillion: 9.99})
	m.SetFallback("gpt-5", PricingEntry{InputCostPerMillion: 1.25})
	got, ok := m.Lookup("gpt-5")
	if !ok || got.InputCostPerMillion != 9.99 {
		t.Fatalf("fallback overwrote existing entry: %+v", got)
	}
}

func TestPricingExactMatch(t *testing.T) {
	m := NewPricingMap()
	m.SetFallback("gpt-5", PricingEntry{InputCostPerMillion: 1.25})
	u := TokenUsage{InputTokens: 1_000_000}
	entry, ok := m.Lookup("gpt-5")
	if !ok {
		t.Fatal("expected gpt-5 to be found")
	}
	if cost := entry.CostUSD(u); cost != 1.25 {
		t.Fatalf("cost = %v, want 1.25", cost)
	}
}

func TestPricingMissingYieldsNotOK(t *testing.T) {
	m := NewPricingMap()
	_, ok := m.Lookup("gpt-5")
	if ok {
		t.Fatal("expected lookup miss for unregistered model")
	}
}

func TestPricingReasoningFallsBackToOutputRate(t *testing.T) {
	e := PricingEntry{OutputCostPerMillion: 8.0}
	if got := e.ReasoningRate(); got != 8.0 {
		t.Fatalf("ReasoningRate() = %v, want 8.0", got)
	}
	e.ReasoningOutputCostPerMillion = 20.0
	if got := e.ReasoningRate(); got != 20.0 {
		t.Fatalf("ReasoningRate() = %v, want 20.0", got)
	}
}

func TestPricingPrefixFallback(t *testing.T) {
	m := NewPricingMap()
	m.SetFallback("claude-opus-4", PricingEntry{InputCostPerMillion: 15})
	entry, ok := m.Lookup("claude-opus-4-20250514")
	if !ok {
		t.Fatal("expected prefix match to succeed")
	}
	if entry.InputCostPerMillion != 15 {
		t.Fatalf("prefix-matched entry wrong: %+v", entry)
	}
}
