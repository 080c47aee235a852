package provider

// Registry maps a provider's name to its static configuration. It is
// deliberately not populated here — this package must not import any of
// the seven specialization packages (codex, claude, gemini, amp, opencode,
// crush, zed), since each of them imports provider itself. The
// internal/registry package builds the registry by importing every
// specialization and calling NewConfig once per provider; its OrderedNames
// is the canonical place to look for the full list.
type Registry map[string]Config

// NewRegistry builds a Registry from a list of configs, keyed by name.
func NewRegistry(configs ...Config) Registry {
	r := make(Registry, len(configs))
	for _, c := range configs {
		r[c.Name] = c
	}
	return r
}

// Names returns the registry's provider names in no particular order — a
// map does not preserve insertion order. Callers that need a stable order
// sort the result themselves; cmd/tokenuze's --agent flag validation uses
// registry.OrderedNames instead.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
