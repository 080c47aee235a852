// Package registry wires tokenuze's seven provider specializations into a
// single provider.Registry, the concrete implementation of spec.md §4.1's
// PROVIDERS constant list. It is the one place in the module that imports
// every internal/provider/<name> package, keeping each specialization free
// to be tested in isolation without pulling in its siblings.
package registry

import (
	"sort"

	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/provider"
	"github.com/bfactory-ai/tokenuze/internal/provider/amp"
	"github.com/bfactory-ai/tokenuze/internal/provider/claude"
	"github.com/bfactory-ai/tokenuze/internal/provider/codex"
	"github.com/bfactory-ai/tokenuze/internal/provider/crush"
	"github.com/bfactory-ai/tokenuze/internal/provider/gemini"
	"github.com/bfactory-ai/tokenuze/internal/provider/opencode"
	"github.com/bfactory-ai/tokenuze/internal/provider/zed"
)

// OrderedNames is the fixed provider display/iteration order spec.md §4.1
// lists them in. Keeping it separate from the map-backed Registry gives
// --agent flag parsing and per-provider iteration a deterministic order
// without needing to sort by anything but this list.
var OrderedNames = []string{"codex", "claude", "gemini", "amp", "opencode", "crush", "zed"}

// New builds the full provider registry.
func New() provider.Registry {
	return provider.NewRegistry(
		codex.NewConfig(),
		claude.NewConfig(),
		gemini.NewConfig(),
		amp.NewConfig(),
		opencode.NewConfig(),
		crush.NewConfig(),
		zed.NewConfig(),
	)
}

// LoadPricing merges every provider's fallback pricing table into pm. It is
// called once at startup. Rows go in through SetFallback, so an entry
// already present in pm is kept, and the first provider (in sorted name
// order) to list a model wins over later ones.
func LoadPricing(reg provider.Registry, pm *core.PricingMap) {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		reg[name].LoadPricingData(pm)
	}
}
