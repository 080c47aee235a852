package aggregate

import (
	"testing"

	"github.com/bfactory-ai/tokenuze/internal/core"
)

func sampleEvents() []core.TokenUsageEvent {
	return []core.TokenUsageEvent{
		{
			SessionID: "sess-a", Timestamp: "2025-11-01T10:00:00Z", LocalISODate: "2025-11-01",
			ModelName: "gpt-5-codex", Usage: core.TokenUsage{InputTokens: 800, CachedInputTokens: 200, OutputTokens: 50},
			DisplayInputTokens: 1000,
		},
		{
			SessionID: "sess-a", Timestamp: "2025-11-01T11:00:00Z", LocalISODate: "2025-11-01",
			ModelName: "gpt-5-codex", Usage: core.TokenUsage{InputTokens: 100, OutputTokens: 10},
			DisplayInputTokens: 100,
		},
		{
			SessionID: "sess-b", Timestamp: "2025-11-02T09:00:00Z", LocalISODate: "2025-11-02",
			ModelName: "claude-sonnet-4", Usage: core.TokenUsage{InputTokens: 500, OutputTokens: 80},
			DisplayInputTokens: 500,
		},
	}
}

func TestRun_BucketsByDaySessionWeek(t *testing.T) {
	result := Run(sampleEvents(), Options{})

	if len(result.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(result.Days))
	}
	if result.Days[0].IsoDate != "2025-11-01" || result.Days[1].IsoDate != "2025-11-02" {
		t.Errorf("days not sorted by iso_date: %q, %q", result.Days[0].IsoDate, result.Days[1].IsoDate)
	}
	if result.Days[0].Usage.InputTokens != 900 {
		t.Errorf("day 1 input = %d, want 900", result.Days[0].Usage.InputTokens)
	}
	if len(result.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(result.Sessions))
	}
	if result.Sessions["sess-a"].Usage.InputTokens != 900 {
		t.Errorf("sess-a input = %d, want 900", result.Sessions["sess-a"].Usage.InputTokens)
	}
	if len(result.Weeks) != 1 {
		t.Fatalf("expected 1 week (both dates fall in the same ISO week), got %d", len(result.Weeks))
	}
	if result.Weeks[0].Usage.InputTokens != 1400 {
		t.Errorf("week input = %d, want 1400", result.Weeks[0].Usage.InputTokens)
	}
}

func TestRun_FilterByDateRangeInclusive(t *testing.T) {
	result := Run(sampleEvents(), Options{Since: "2025-11-02", Until: "2025-11-02"})
	if len(result.Days) != 1 {
		t.Fatalf("expected 1 day after filtering, got %d", len(result.Days))
	}
	if result.Days[0].IsoDate != "2025-11-02" {
		t.Errorf("day = %q, want 2025-11-02", result.Days[0].IsoDate)
	}
}

func TestRun_ApplyPricingComputesCostAndTracksMissing(t *testing.T) {
	pm := core.NewPricingMap()
	pm.Set("gpt-5-codex", core.PricingEntry{InputCostPerMillion: 1.25, OutputCostPerMillion: 10, CachedInputCostPerMillion: 0.125})

	result := Run(sampleEvents(), Options{Pricing: pm})

	day1 := result.Days[0]
	model := day1.Models["gpt-5-codex"]
	if !model.PricingAvailable {
		t.Fatalf("expected pricing available for gpt-5-codex")
	}
	// input=900*1.25/1e6 + cached=200*0.125/1e6 + output=60*10/1e6
	want := 900.0*1.25/1e6 + 200.0*0.125/1e6 + 60.0*10/1e6
	if diff := model.CostUSD - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("cost = %v, want %v", model.CostUSD, want)
	}

	day2 := result.Days[1]
	if day2.Models["claude-sonnet-4"].PricingAvailable {
		t.Errorf("expected claude-sonnet-4 to be missing pricing")
	}
	if _, ok := day2.MissingPricing["claude-sonnet-4"]; !ok {
		t.Errorf("expected claude-sonnet-4 in day's missing_pricing set")
	}
	if _, ok := result.Totals.MissingPricing["claude-sonnet-4"]; !ok {
		t.Errorf("expected claude-sonnet-4 in global missing_pricing set")
	}
}

func TestRun_TotalsAccumulateAcrossDays(t *testing.T) {
	result := Run(sampleEvents(), Options{})
	var wantInput uint64
	for _, d := range result.Days {
		wantInput += d.Usage.InputTokens
	}
	if result.Totals.Usage.InputTokens != wantInput {
		t.Errorf("totals input = %d, want %d", result.Totals.Usage.InputTokens, wantInput)
	}
}

func TestSortEvents_DoesNotMutateInput(t *testing.T) {
	events := sampleEvents()
	reversed := []core.TokenUsageEvent{events[2], events[1], events[0]}
	original := make([]core.TokenUsageEvent, len(reversed))
	copy(original, reversed)

	sorted := sortEvents(reversed)
	for i := range reversed {
		if reversed[i] != original[i] {
			t.Fatalf("sortEvents mutated its input slice")
		}
	}
	if sorted[0].Timestamp > sorted[1].Timestamp || sorted[1].Timestamp > sorted[2].Timestamp {
		t.Errorf("sorted events not in timestamp order: %+v", sorted)
	}
}
