// Package aggregate implements tokenuze's aggregation pipeline (spec.md
// §4.5): sort, filter by date range, bucket into day/session/week
// summaries, price every model breakdown, and accumulate totals. It is
// pure — no I/O, no provider knowledge — so it can be driven by real
// collected events or by hand-built fixtures in tests.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/timeutil"
)

// Result is the complete output of a Run: day-by-day, session-by-session,
// and week-by-week summaries, plus the cross-day totals.
type Result struct {
	Days     []*core.DailySummary
	Sessions map[string]*core.SessionSummary
	Weeks    []*core.WeeklySummary
	Totals   *core.SummaryTotals
}

// Options bounds and prices a Run.
type Options struct {
	Since   string // inclusive lower bound on local_iso_date, "" = unbounded
	Until   string // inclusive upper bound on local_iso_date, "" = unbounded
	Pricing *core.PricingMap
}

// Run implements spec.md §4.5's six pipeline steps in order.
func Run(events []core.TokenUsageEvent, opts Options) Result {
	sorted := sortEvents(events)
	filtered := filterByDateRange(sorted, opts.Since, opts.Until)

	days := map[string]*core.DailySummary{}
	sessions := map[string]*core.SessionSummary{}
	weeks := map[string]*core.WeeklySummary{}

	for _, ev := range filtered {
		bucketDay(days, ev)
		bucketSession(sessions, ev)
		bucketWeek(weeks, ev)
	}

	totals := core.NewSummaryTotals()
	for _, day := range days {
		applyPricingToDay(day, opts.Pricing, totals.MissingPricing)
		totals.Usage = totals.Usage.Add(day.Usage)
		totals.DisplayInputTokens += day.DisplayInputTokens
		totals.CostUSD += day.CostUSD
	}
	for _, week := range weeks {
		applyPricingToBreakdown(week.ModelBreakdown, opts.Pricing, week.MissingPricing, &week.CostUSD)
	}
	for _, sess := range sessions {
		applyPricingToBreakdown(sess.ModelBreakdown, opts.Pricing, nil, &sess.CostUSD)
	}

	dayList := lo.Values(days)
	sort.Slice(dayList, func(i, j int) bool { return dayList[i].IsoDate < dayList[j].IsoDate })

	weekList := lo.Values(weeks)
	sort.Slice(weekList, func(i, j int) bool {
		if weekList[i].IsoYear != weekList[j].IsoYear {
			return weekList[i].IsoYear < weekList[j].IsoYear
		}
		return weekList[i].IsoWeek < weekList[j].IsoWeek
	})

	return Result{Days: dayList, Sessions: sessions, Weeks: weekList, Totals: totals}
}

// sortEvents returns a new slice sorted by (timestamp, session_id, model),
// per spec.md §4.5 step 1. The input is never mutated.
func sortEvents(events []core.TokenUsageEvent) []core.TokenUsageEvent {
	out := make([]core.TokenUsageEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.SessionID != b.SessionID {
			return a.SessionID < b.SessionID
		}
		return a.ModelName < b.ModelName
	})
	return out
}

// filterByDateRange implements spec.md §4.5 step 2: inclusive bounds
// compared on local_iso_date. Empty bounds are unbounded on that side.
func filterByDateRange(events []core.TokenUsageEvent, since, until string) []core.TokenUsageEvent {
	if since == "" && until == "" {
		return events
	}
	out := make([]core.TokenUsageEvent, 0, len(events))
	for _, ev := range events {
		if since != "" && ev.LocalISODate < since {
			continue
		}
		if until != "" && ev.LocalISODate > until {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func bucketDay(days map[string]*core.DailySummary, ev core.TokenUsageEvent) {
	day, ok := days[ev.LocalISODate]
	if !ok {
		day = core.NewDailySummary(ev.LocalISODate, timeutil.DisplayDate(ev.LocalISODate))
		days[ev.LocalISODate] = day
	}
	day.AddEvent(ev)
}

func bucketSession(sessions map[string]*core.SessionSummary, ev core.TokenUsageEvent) {
	sess, ok := sessions[ev.SessionID]
	if !ok {
		sess = core.NewSessionSummary(ev.SessionID)
		sessions[ev.SessionID] = sess
	}
	sess.AddEvent(ev)
}

func bucketWeek(weeks map[string]*core.WeeklySummary, ev core.TokenUsageEvent) {
	year, week, err := timeutil.ISOWeek(ev.LocalISODate)
	if err != nil {
		return
	}
	key := weekKey(year, week)
	w, ok := weeks[key]
	if !ok {
		start, end, err := timeutil.WeekBounds(ev.LocalISODate)
		if err != nil {
			return
		}
		w = core.NewWeeklySummary(year, week, start, end)
		weeks[key] = w
	}
	w.AddEvent(ev)
}

func weekKey(year, week int) string {
	return fmt.Sprintf("%04d-%02d", year, week)
}

// applyPricingToDay implements spec.md §4.5 step 4 for a single day: every
// ModelSummary is priced, the day's own cost and missing_pricing set are
// derived from its models, and any model missing pricing is also recorded
// in the global missingPricing set.
func applyPricingToDay(day *core.DailySummary, pricing *core.PricingMap, globalMissing map[string]struct{}) {
	applyPricingToBreakdown(day.Models, pricing, day.MissingPricing, &day.CostUSD)
	for name := range day.MissingPricing {
		if globalMissing != nil {
			globalMissing[name] = struct{}{}
		}
	}
}

// applyPricingToBreakdown prices every ModelSummary in breakdown, summing
// into totalCost and recording misses into missing (if non-nil).
func applyPricingToBreakdown(breakdown map[string]*core.ModelSummary, pricing *core.PricingMap, missing map[string]struct{}, totalCost *float64) {
	for name, m := range breakdown {
		if pricing == nil {
			m.PricingAvailable = false
			if missing != nil {
				missing[name] = struct{}{}
			}
			continue
		}
		entry, ok := pricing.Lookup(name)
		if !ok {
			m.PricingAvailable = false
			m.CostUSD = 0
			if missing != nil {
				missing[name] = struct{}{}
			}
			continue
		}
		m.PricingAvailable = true
		m.CostUSD = entry.CostUSD(m.Usage)
		*totalCost += m.CostUSD
	}
}
