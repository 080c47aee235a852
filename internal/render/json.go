// Package render implements tokenuze's two output surfaces, spec.md §6's
// CLI collaborator: JSON (compact or pretty) and an ASCII table, both
// consuming the pure aggregate.Result rather than talking to providers.
package render

import (
	"encoding/json"
	"sort"

	"github.com/bfactory-ai/tokenuze/internal/aggregate"
	"github.com/bfactory-ai/tokenuze/internal/core"
)

// modelJSON is one entry of a day's or week's "models" map.
type modelJSON struct {
	InputTokens           uint64  `json:"inputTokens"`
	CacheCreationTokens   uint64  `json:"cacheCreationInputTokens"`
	CachedInputTokens     uint64  `json:"cachedInputTokens"`
	OutputTokens          uint64  `json:"outputTokens"`
	ReasoningOutputTokens uint64  `json:"reasoningOutputTokens"`
	TotalTokens           uint64  `json:"totalTokens"`
	DisplayInputTokens    uint64  `json:"displayInputTokens"`
	CostUSD               float64 `json:"costUSD"`
	PricingAvailable      bool    `json:"pricingAvailable"`
	IsFallback            bool    `json:"isFallback"`
}

func modelJSONFrom(m *core.ModelSummary) modelJSON {
	return modelJSON{
		InputTokens:           m.Usage.InputTokens,
		CacheCreationTokens:   m.Usage.CacheCreationInputTokens,
		CachedInputTokens:     m.Usage.CachedInputTokens,
		OutputTokens:          m.Usage.OutputTokens,
		ReasoningOutputTokens: m.Usage.ReasoningOutputTokens,
		TotalTokens:           m.Usage.TotalTokens,
		DisplayInputTokens:    m.DisplayInputTokens,
		CostUSD:               m.CostUSD,
		PricingAvailable:      m.PricingAvailable,
		IsFallback:            m.IsFallback,
	}
}

// dailyJSON is one entry of the root "daily" array.
type dailyJSON struct {
	Date                  string               `json:"date"`
	IsoDate               string               `json:"isoDate"`
	InputTokens           uint64               `json:"inputTokens"`
	CacheCreationTokens   uint64               `json:"cacheCreationInputTokens"`
	CachedInputTokens     uint64               `json:"cachedInputTokens"`
	OutputTokens          uint64               `json:"outputTokens"`
	ReasoningOutputTokens uint64               `json:"reasoningOutputTokens"`
	TotalTokens           uint64               `json:"totalTokens"`
	DisplayInputTokens    uint64               `json:"displayInputTokens"`
	CostUSD               float64              `json:"costUSD"`
	Models                map[string]modelJSON `json:"models"`
	MissingPricing        []string             `json:"missingPricing"`
}

func dailyJSONFrom(d *core.DailySummary) dailyJSON {
	models := make(map[string]modelJSON, len(d.Models))
	for name, m := range d.Models {
		models[name] = modelJSONFrom(m)
	}
	return dailyJSON{
		Date:                  d.DisplayDate,
		IsoDate:               d.IsoDate,
		InputTokens:           d.Usage.InputTokens,
		CacheCreationTokens:   d.Usage.CacheCreationInputTokens,
		CachedInputTokens:     d.Usage.CachedInputTokens,
		OutputTokens:          d.Usage.OutputTokens,
		ReasoningOutputTokens: d.Usage.ReasoningOutputTokens,
		TotalTokens:           d.Usage.TotalTokens,
		DisplayInputTokens:    d.DisplayInputTokens,
		CostUSD:               d.CostUSD,
		Models:                models,
		MissingPricing:        sortedKeys(d.MissingPricing),
	}
}

// sessionJSON is one entry of the "sessions" array emitted under --sessions.
type sessionJSON struct {
	SessionID          string               `json:"sessionId"`
	FirstSeen          string               `json:"firstSeen"`
	LastSeen           string               `json:"lastSeen"`
	InputTokens        uint64               `json:"inputTokens"`
	OutputTokens       uint64               `json:"outputTokens"`
	TotalTokens        uint64               `json:"totalTokens"`
	DisplayInputTokens uint64               `json:"displayInputTokens"`
	CostUSD            float64              `json:"costUSD"`
	Models             map[string]modelJSON `json:"models"`
}

func sessionJSONFrom(s *core.SessionSummary) sessionJSON {
	models := make(map[string]modelJSON, len(s.ModelBreakdown))
	for name, m := range s.ModelBreakdown {
		models[name] = modelJSONFrom(m)
	}
	return sessionJSON{
		SessionID:          s.SessionID,
		FirstSeen:          s.FirstSeenTimestamp,
		LastSeen:           s.LastSeenTimestamp,
		InputTokens:        s.Usage.InputTokens,
		OutputTokens:       s.Usage.OutputTokens,
		TotalTokens:        s.Usage.TotalTokens,
		DisplayInputTokens: s.DisplayInputTokens,
		CostUSD:            s.CostUSD,
		Models:             models,
	}
}

// weeklyJSON is one entry of the "weekly" array.
type weeklyJSON struct {
	IsoYear            int                  `json:"isoYear"`
	IsoWeek            int                  `json:"isoWeek"`
	StartDate          string               `json:"startDate"`
	EndDate            string               `json:"endDate"`
	InputTokens        uint64               `json:"inputTokens"`
	OutputTokens       uint64               `json:"outputTokens"`
	TotalTokens        uint64               `json:"totalTokens"`
	DisplayInputTokens uint64               `json:"displayInputTokens"`
	CostUSD            float64              `json:"costUSD"`
	Models             map[string]modelJSON `json:"models"`
	MissingPricing     []string             `json:"missingPricing"`
}

func weeklyJSONFrom(w *core.WeeklySummary) weeklyJSON {
	models := make(map[string]modelJSON, len(w.ModelBreakdown))
	for name, m := range w.ModelBreakdown {
		models[name] = modelJSONFrom(m)
	}
	return weeklyJSON{
		IsoYear:            w.IsoYear,
		IsoWeek:            w.IsoWeek,
		StartDate:          w.StartDate,
		EndDate:            w.EndDate,
		InputTokens:        w.Usage.InputTokens,
		OutputTokens:       w.Usage.OutputTokens,
		TotalTokens:        w.Usage.TotalTokens,
		DisplayInputTokens: w.DisplayInputTokens,
		CostUSD:            w.CostUSD,
		Models:             models,
		MissingPricing:     sortedKeys(w.MissingPricing),
	}
}

type totalsJSON struct {
	InputTokens           uint64   `json:"inputTokens"`
	CacheCreationTokens   uint64   `json:"cacheCreationInputTokens"`
	CachedInputTokens     uint64   `json:"cachedInputTokens"`
	OutputTokens          uint64   `json:"outputTokens"`
	ReasoningOutputTokens uint64   `json:"reasoningOutputTokens"`
	TotalTokens           uint64   `json:"totalTokens"`
	DisplayInputTokens    uint64   `json:"displayInputTokens"`
	CostUSD               float64  `json:"costUSD"`
	MissingPricing        []string `json:"missingPricing"`
}

func totalsJSONFrom(t *core.SummaryTotals) totalsJSON {
	return totalsJSON{
		InputTokens:           t.Usage.InputTokens,
		CacheCreationTokens:   t.Usage.CacheCreationInputTokens,
		CachedInputTokens:     t.Usage.CachedInputTokens,
		OutputTokens:          t.Usage.OutputTokens,
		ReasoningOutputTokens: t.Usage.ReasoningOutputTokens,
		TotalTokens:           t.Usage.TotalTokens,
		DisplayInputTokens:    t.DisplayInputTokens,
		CostUSD:               t.CostUSD,
		MissingPricing:        sortedKeys(t.MissingPricing),
	}
}

// Document is the root JSON shape spec.md §6 names: snake_case keys at the
// top level, camelCase inside each day/session/week/model object.
type Document struct {
	Daily    []dailyJSON   `json:"daily"`
	Sessions []sessionJSON `json:"sessions,omitempty"`
	Weekly   []weeklyJSON  `json:"weekly,omitempty"`
	Totals   totalsJSON    `json:"totals"`
}

// BuildDocument converts an aggregate.Result into the JSON-ready Document.
// includeSessions mirrors the --sessions flag.
func BuildDocument(result aggregate.Result, includeSessions bool) Document {
	doc := Document{
		Daily:  make([]dailyJSON, 0, len(result.Days)),
		Weekly: make([]weeklyJSON, 0, len(result.Weeks)),
		Totals: totalsJSONFrom(result.Totals),
	}
	for _, d := range result.Days {
		doc.Daily = append(doc.Daily, dailyJSONFrom(d))
	}
	for _, w := range result.Weeks {
		doc.Weekly = append(doc.Weekly, weeklyJSONFrom(w))
	}
	if includeSessions {
		ids := make([]string, 0, len(result.Sessions))
		for id := range result.Sessions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		doc.Sessions = make([]sessionJSON, 0, len(ids))
		for _, id := range ids {
			doc.Sessions = append(doc.Sessions, sessionJSONFrom(result.Sessions[id]))
		}
	}
	return doc
}

// JSON renders doc as compact or pretty-printed JSON, per --pretty.
func JSON(doc Document, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
