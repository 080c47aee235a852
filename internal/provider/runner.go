package provider

import (
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/logging"
)

// ProgressFunc is invoked as a provider's session files are processed. It
// is the "progress?" collaborator spec.md §4.3 names; cmd/tokenuze wires it
// to a Bubble Tea progress bar, but the framework itself only ever calls
// it — it has no rendering concerns of its own.
type ProgressFunc func(providerName string, filesDone, filesTotal int)

// workerCount returns min(nproc, 8), the bound spec.md §5 sets on
// per-file parse parallelism.
func workerCount() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// Collect resolves home+SessionsDirSuffix, walks it recursively for files
// matching SessionFileExt, parses each with a bounded worker pool, and
// returns every emitted event. Per-file errors (missing directory, a file
// that fails to open) are logged at info/warn level and do not abort the
// run — spec.md §7's "always produce the best possible summary" rule.
func (c Config) Collect(home string, tzOffsetMinutes int, progress ProgressFunc) []core.TokenUsageEvent {
	dir := filepath.Join(home, filepath.FromSlash(c.SessionsDirSuffix))
	files, err := findSessionFiles(dir, c.SessionFileExt)
	if err != nil {
		logging.Info("provider sessions directory unavailable", logging.F("provider", c.Name), logging.F("path", dir), logging.F("error", err))
		return nil
	}

	var (
		mu     sync.Mutex
		events []core.TokenUsageEvent
		done   int
	)

	emit := func(ev core.TokenUsageEvent) {
		ev.Provider = c.Name
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	n := workerCount()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				c.parseOneFile(path, tzOffsetMinutes, emit)
				mu.Lock()
				done++
				d := done
				mu.Unlock()
				if progress != nil {
					progress(c.Name, d, len(files))
				}
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	return events
}

// StreamEvents mirrors Collect but invokes consume for every event as it is
// parsed rather than collecting them, matching spec.md §4.3's
// EventConsumer contract: a mutex-guarded callback, used by the uploader so
// per-provider payloads can be built without a shared aggregation pass.
func (c Config) StreamEvents(home string, tzOffsetMinutes int, consume func(core.TokenUsageEvent)) {
	dir := filepath.Join(home, filepath.FromSlash(c.SessionsDirSuffix))
	files, err := findSessionFiles(dir, c.SessionFileExt)
	if err != nil {
		logging.Info("provider sessions directory unavailable", logging.F("provider", c.Name), logging.F("path", dir), logging.F("error", err))
		return
	}

	var mu sync.Mutex
	emit := func(ev core.TokenUsageEvent) {
		ev.Provider = c.Name
		mu.Lock()
		consume(ev)
		mu.Unlock()
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	n := workerCount()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				c.parseOneFile(path, tzOffsetMinutes, emit)
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
}

func (c Config) parseOneFile(path string, tzOffsetMinutes int, emit func(core.TokenUsageEvent)) {
	ctx := &ParseContext{Config: c}
	sessionID := sessionIDFromPath(path, c.SessionFileExt)

	var deduper *core.MessageDeduper
	if c.RequiresDeduper {
		deduper = core.NewMessageDeduper(256)
	}

	wrapped := func(ev core.TokenUsageEvent) {
		if ev.Usage.IsZero() {
			return // spec.md §4.4: all-zero events are dropped, not emitted.
		}
		emit(ev)
	}

	if err := c.ParseFn(ctx, sessionID, path, deduper, tzOffsetMinutes, wrapped); err != nil {
		logging.Warn("session file parse aborted", logging.F("provider", c.Name), logging.F("path", path), logging.F("error", err))
	}
}

func sessionIDFromPath(path, ext string) string {
	base := filepath.Base(path)
	if ext != "" {
		for i := len(base) - 1; i >= 0; i-- {
			if base[i] == '.' {
				return base[:i]
			}
		}
	}
	return base
}
