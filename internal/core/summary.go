package core

// ModelSummary is the per-model breakdown inside a DailySummary,
// SessionSummary, or WeeklySummary.
type ModelSummary struct {
	Name               string
	Usage              TokenUsage
	DisplayInputTokens uint64
	CostUSD            float64
	PricingAvailable   bool
	IsFallback         bool
}

func (m *ModelSummary) AddEvent(ev TokenUsageEvent) {
	m.Usage = m.Usage.Add(ev.Usage)
	m.DisplayInputTokens += ev.DisplayInputTokens
	if ev.IsFallbackModel {
		m.IsFallback = true
	}
}

// DailySummary aggregates every event whose LocalISODate matches IsoDate.
// Invariant: Usage equals the field-wise sum of every ModelSummary.Usage.
type DailySummary struct {
	IsoDate            string
	DisplayDate        string
	Usage              TokenUsage
	DisplayInputTokens uint64
	CostUSD            float64
	Models             map[string]*ModelSummary
	MissingPricing     map[string]struct{}
}

func NewDailySummary(isoDate, displayDate string) *DailySummary {
	return &DailySummary{
		IsoDate:        isoDate,
		DisplayDate:    displayDate,
		Models:         make(map[string]*ModelSummary),
		MissingPricing: make(map[string]struct{}),
	}
}

func (d *DailySummary) AddEvent(ev TokenUsageEvent) {
	d.Usage = d.Usage.Add(ev.Usage)
	d.DisplayInputTokens += ev.DisplayInputTokens
	m, ok := d.Models[ev.ModelName]
	if !ok {
		m = &ModelSummary{Name: ev.ModelName}
		d.Models[ev.ModelName] = m
	}
	m.AddEvent(ev)
}

// SessionSummary aggregates every event sharing a SessionID.
type SessionSummary struct {
	SessionID          string
	FirstSeenTimestamp string
	LastSeenTimestamp  string
	Usage              TokenUsage
	DisplayInputTokens uint64
	CostUSD            float64
	ModelBreakdown     map[string]*ModelSummary
}

func NewSessionSummary(id string) *SessionSummary {
	return &SessionSummary{SessionID: id, ModelBreakdown: make(map[string]*ModelSummary)}
}

func (s *SessionSummary) AddEvent(ev TokenUsageEvent) {
	if s.FirstSeenTimestamp == "" || ev.Timestamp < s.FirstSeenTimestamp {
		s.FirstSeenTimestamp = ev.Timestamp
	}
	if ev.Timestamp > s.LastSeenTimestamp {
		s.LastSeenTimestamp = ev.Timestamp
	}
	s.Usage = s.Usage.Add(ev.Usage)
	s.DisplayInputTokens += ev.DisplayInputTokens
	m, ok := s.ModelBreakdown[ev.ModelName]
	if !ok {
		m = &ModelSummary{Name: ev.ModelName}
		s.ModelBreakdown[ev.ModelName] = m
	}
	m.AddEvent(ev)
}

// WeeklySummary aggregates every event falling in the same ISO-8601 week
// (Mon–Sun, the week belongs to the year of its Thursday).
type WeeklySummary struct {
	IsoYear            int
	IsoWeek            int
	StartDate          string
	EndDate            string
	Usage              TokenUsage
	DisplayInputTokens uint64
	CostUSD            float64
	ModelBreakdown     map[string]*ModelSummary
	MissingPricing     map[string]struct{}
}

func NewWeeklySummary(year, week int, start, end string) *WeeklySummary {
	return &WeeklySummary{
		IsoYear: year, IsoWeek: week, StartDate: start, EndDate: end,
		ModelBreakdown: make(map[string]*ModelSummary),
		MissingPricing: make(map[string]struct{}),
	}
}

func (w *WeeklySummary) AddEvent(ev TokenUsageEvent) {
	w.Usage = w.Usage.Add(ev.Usage)
	w.DisplayInputTokens += ev.DisplayInputTokens
	m, ok := w.ModelBreakdown[ev.ModelName]
	if !ok {
		m = &ModelSummary{Name: ev.ModelName}
		w.ModelBreakdown[ev.ModelName] = m
	}
	m.AddEvent(ev)
}

// SummaryTotals is a cross-day roll-up: the same shape as DailySummary
// minus its per-day keys.
type SummaryTotals struct {
	Usage              TokenUsage
	DisplayInputTokens uint64
	CostUSD            float64
	MissingPricing     map[string]struct{}
}

func NewSummaryTotals() *SummaryTotals {
	return &SummaryTotals{MissingPricing: make(map[string]struct{})}
}
