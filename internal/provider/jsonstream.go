package provider

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bfactory-ai/tokenuze/internal/timeutil"
)

// MaxSessionFileBytes is the 128 MiB read cap spec.md §4.3/§5 imposes on a
// single session file. When a file exceeds it, streaming halts cleanly and
// whatever events were already emitted are retained.
const MaxSessionFileBytes = 128 * 1024 * 1024

// StreamJSONLines reads path line by line, calling handler(line, index) for
// each non-empty, stripped line, stopping after MaxSessionFileBytes have
// been read or at the first line longer than 8 MiB. handler is expected to
// log and continue on its own parse failures — StreamJSONLines returns an
// error only when the file cannot be opened or when handler returns one.
func StreamJSONLines(path string, handler func(line string, index int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	limited := io.LimitReader(f, MaxSessionFileBytes)
	scanner := bufio.NewScanner(limited)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	index := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			index++
			continue
		}
		if err := handler(line, index); err != nil {
			return fmt.Errorf("handling line %d of %s: %w", index, path, err)
		}
		index++
	}
	return nil
}

// DuplicateNonEmpty returns s, or "" if s is empty/blank — the Go
// equivalent of spec.md §4.3's arena-allocating duplicate_non_empty, which
// exists in the source to avoid holding a reference into a freed buffer.
// Go's garbage collector makes the copy itself unnecessary; only the
// blank-collapsing behavior is preserved.
func DuplicateNonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// ParsedTimestamp is the {text, local_iso_date} pair
// spec.md §4.3's timestamp_from_slice returns.
type ParsedTimestamp struct {
	Text         string
	LocalISODate string
}

// TimestampFromSlice parses text as ISO-8601 and buckets it into tzOffsetMinutes,
// returning ok=false on a parse error.
func TimestampFromSlice(text string, tzOffsetMinutes int) (ParsedTimestamp, bool) {
	secs, err := timeutil.ParseISO8601ToUTCSeconds(text)
	if err != nil {
		return ParsedTimestamp{}, false
	}
	return ParsedTimestamp{
		Text:         text,
		LocalISODate: timeutil.IsoDateForTimezone(secs, tzOffsetMinutes),
	}, true
}
