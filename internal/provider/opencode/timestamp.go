package opencode

import (
	"github.com/bfactory-ai/tokenuze/internal/provider"
	"github.com/bfactory-ai/tokenuze/internal/timeutil"
)

// millisecondsToTimestamp converts OpenCode's epoch-millisecond created
// field into the {text, local_iso_date} pair the rest of the pipeline
// expects, reusing the same civil-date bucketing every other provider uses.
func millisecondsToTimestamp(epochMillis float64, tzOffsetMinutes int) (provider.ParsedTimestamp, bool) {
	if epochMillis <= 0 {
		return provider.ParsedTimestamp{}, false
	}
	secs := int64(epochMillis / 1000)
	text := timeutil.FormatUTCSecondsAsISO8601(secs)
	return provider.ParsedTimestamp{
		Text:         text,
		LocalISODate: timeutil.IsoDateForTimezone(secs, tzOffsetMinutes),
	}, true
}
