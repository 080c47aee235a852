package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bfactory-ai/tokenuze/internal/aggregate"
	"github.com/bfactory-ai/tokenuze/internal/config"
	"github.com/bfactory-ai/tokenuze/internal/core"
	"github.com/bfactory-ai/tokenuze/internal/machineid"
	"github.com/bfactory-ai/tokenuze/internal/provider"
	"github.com/bfactory-ai/tokenuze/internal/registry"
	"github.com/bfactory-ai/tokenuze/internal/render"
	"github.com/bfactory-ai/tokenuze/internal/uploader"
)

// run is the orchestration spec.md §4.3/§4.5/§4.7 describe: collect every
// selected provider's events, price and aggregate them, then either render
// to stdout or upload to the dashboard. It is the one place cmd/tokenuze
// wires internal/registry, internal/aggregate, internal/render,
// internal/uploader and internal/machineid together.
func run(ctx context.Context, stdout io.Writer, opts runOptions) error {
	cfg := config.Load()

	if opts.machineIDOnly {
		id := machineid.Derive(cfg.MachineIDCacheDir())
		fmt.Fprintln(stdout, id)
		return nil
	}

	reg := registry.New()
	pm := core.NewPricingMap()
	registry.LoadPricing(reg, pm)

	names := selectedProviders(opts)

	if opts.upload {
		return runUpload(ctx, cfg, reg, pm, names, opts)
	}
	return runRender(stdout, cfg.Home, reg, pm, names, opts)
}

// runRender collects every selected provider's events into one pool,
// aggregates them together, and renders a single table or JSON document —
// matching spec.md §6's default (non-upload) CLI behavior.
func runRender(stdout io.Writer, home string, reg provider.Registry, pm *core.PricingMap, names []string, opts runOptions) error {
	reporter := newProgressReporter()
	var progressFn provider.ProgressFunc
	if isTerminal(os.Stdout) && !opts.json {
		progressFn = reporter.start()
		defer reporter.stop()
	}

	var events []core.TokenUsageEvent
	for _, name := range names {
		cfg := reg[name]
		events = append(events, cfg.Collect(home, opts.tzOffsetMinutes, progressFn)...)
	}
	if progressFn != nil {
		reporter.stop()
	}

	result := aggregate.Run(events, aggregate.Options{Since: opts.since, Until: opts.until, Pricing: pm})
	doc := render.BuildDocument(result, opts.sessions)

	if opts.json {
		data, err := render.JSON(doc, opts.pretty)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	fmt.Fprint(stdout, render.Table(doc))
	return nil
}

// runUpload collects and aggregates each selected provider independently
// (spec.md §4.7: one ProviderUpload per provider, not a merged total) and
// POSTs the result to the dashboard.
func runUpload(ctx context.Context, cfg config.Config, reg provider.Registry, pm *core.PricingMap, names []string, opts runOptions) error {
	client, err := uploader.NewClient(cfg.DashboardAPIURL, cfg.DashboardAPIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return nil
	}

	uploads := make([]uploader.ProviderUpload, 0, len(names))
	for _, name := range names {
		providerCfg := reg[name]
		var events []core.TokenUsageEvent
		providerCfg.StreamEvents(cfg.Home, opts.tzOffsetMinutes, func(ev core.TokenUsageEvent) {
			events = append(events, ev)
		})
		result := aggregate.Run(events, aggregate.Options{Since: opts.since, Until: opts.until, Pricing: pm})

		daily := render.BuildDocument(result, false)
		daily.Weekly = nil

		weekly := render.BuildDocument(result, false)
		weekly.Daily = nil

		sessions := render.BuildDocument(result, true)
		sessions.Daily = nil
		sessions.Weekly = nil

		up, err := uploader.BuildProviderUpload(name, daily, sessions, weekly)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return nil
		}
		uploads = append(uploads, up)
	}

	machineID := machineid.Derive(cfg.MachineIDCacheDir())
	outcome, err := client.Upload(ctx, machineID, opts.tzOffsetMinutes, uploads)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return nil
	}
	fmt.Fprintf(os.Stdout, "upload: %s (HTTP %d)\n", outcome.Message, outcome.StatusCode)
	return nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
