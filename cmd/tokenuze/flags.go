package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bfactory-ai/tokenuze/internal/registry"
)

// InvalidUsage is returned for malformed CLI flags. main.go maps it to
// Cobra's SilenceUsage=false, exit-1 path.
type InvalidUsage struct {
	msg string
}

func (e *InvalidUsage) Error() string { return e.msg }

func invalidUsagef(format string, args ...any) error {
	return &InvalidUsage{msg: fmt.Sprintf(format, args...)}
}

// runOptions is the already-parsed, validated set of inputs the
// orchestration layer (run.go) consumes. Nothing downstream of flags.go
// touches a raw *pflag.FlagSet again.
type runOptions struct {
	since           string // "" or "YYYY-MM-DD"
	until           string // "" or "YYYY-MM-DD"
	tzOffsetMinutes int
	pretty          bool
	agents          []string // empty means "all providers"
	upload          bool
	sessions        bool
	json            bool
	machineIDOnly   bool
}

// parseDateFlag converts a YYYYMMDD flag value into YYYY-MM-DD, the form
// every core.TokenUsageEvent.LocalISODate and aggregate.Options bound
// compares against. Empty input is valid and means "unbounded".
func parseDateFlag(flagName, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if len(value) != 8 {
		return "", invalidUsagef("--%s must be YYYYMMDD, got %q", flagName, value)
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return "", invalidUsagef("--%s must be YYYYMMDD, got %q", flagName, value)
		}
	}
	return value[0:4] + "-" + value[4:6] + "-" + value[6:8], nil
}

// parseTZFlag resolves the bucketing offset in minutes. An explicit --tz
// flag wins; failing that, a TZ environment value that is itself already
// an offset (rather than an IANA zone name, whose lookup spec.md §1 treats
// as an out-of-scope external collaborator) is honored; otherwise UTC.
func parseTZFlag(tzFlag, tzEnv string) (int, error) {
	if tzFlag != "" {
		return parseOffsetSpec(tzFlag)
	}
	if offset, err := parseOffsetSpec(tzEnv); err == nil {
		return offset, nil
	}
	return 0, nil
}

// parseOffsetSpec parses "UTC" or "±HH[:MM]" into minutes east of UTC.
func parseOffsetSpec(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalidUsagef("--tz must not be empty")
	}
	if strings.EqualFold(s, "UTC") {
		return 0, nil
	}
	sign := 1
	switch s[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, invalidUsagef("--tz must be ±HH[:MM] or UTC, got %q", s)
	}
	hourPart, minutePart, _ := strings.Cut(s[1:], ":")
	hh, err := strconv.Atoi(hourPart)
	if err != nil || hh < 0 || hh > 23 {
		return 0, invalidUsagef("--tz must be ±HH[:MM] or UTC, got %q", s)
	}
	mm := 0
	if minutePart != "" {
		mm, err = strconv.Atoi(minutePart)
		if err != nil || mm < 0 || mm > 59 {
			return 0, invalidUsagef("--tz must be ±HH[:MM] or UTC, got %q", s)
		}
	}
	return sign * (hh*60 + mm), nil
}

// validateAgents checks every --agent value names a real provider, per
// spec.md §4.1's PROVIDERS list.
func validateAgents(agents []string) error {
	known := make(map[string]bool, len(registry.OrderedNames))
	for _, name := range registry.OrderedNames {
		known[name] = true
	}
	for _, a := range agents {
		if !known[a] {
			return invalidUsagef("--agent %q is not a known provider (want one of %s)", a, strings.Join(registry.OrderedNames, ", "))
		}
	}
	return nil
}

func buildRunOptions(sinceFlag, untilFlag, tzFlag, tzEnv string, agents []string, pretty, upload, sessions, jsonOut, machineIDOnly bool) (runOptions, error) {
	since, err := parseDateFlag("since", sinceFlag)
	if err != nil {
		return runOptions{}, err
	}
	until, err := parseDateFlag("until", untilFlag)
	if err != nil {
		return runOptions{}, err
	}
	if since != "" && until != "" && until < since {
		return runOptions{}, invalidUsagef("--until (%s) must be >= --since (%s)", untilFlag, sinceFlag)
	}
	offset, err := parseTZFlag(tzFlag, tzEnv)
	if err != nil {
		return runOptions{}, err
	}
	if err := validateAgents(agents); err != nil {
		return runOptions{}, err
	}
	sorted := append([]string(nil), agents...)
	sort.Strings(sorted)

	return runOptions{
		since:           since,
		until:           until,
		tzOffsetMinutes: offset,
		pretty:          pretty,
		agents:          sorted,
		upload:          upload,
		sessions:        sessions,
		json:            jsonOut,
		machineIDOnly:   machineIDOnly,
	}, nil
}

// selectedProviders returns the registry.OrderedNames entries --agent
// restricted to, preserving the canonical order, or all of them when
// --agent was never passed.
func selectedProviders(opts runOptions) []string {
	if len(opts.agents) == 0 {
		return registry.OrderedNames
	}
	want := make(map[string]bool, len(opts.agents))
	for _, a := range opts.agents {
		want[a] = true
	}
	out := make([]string, 0, len(opts.agents))
	for _, name := range registry.OrderedNames {
		if want[name] {
			out = append(out, name)
		}
	}
	return out
}
