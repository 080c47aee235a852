package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/bfactory-ai/tokenuze/internal/config"
)

func main() {
	if os.Getenv("TOKENUZE_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	var (
		sinceFlag     string
		untilFlag     string
		tzFlag        string
		prettyFlag    bool
		agentFlag     []string
		uploadFlag    bool
		sessionsFlag  bool
		jsonFlag      bool
		machineIDFlag bool
	)

	root := &cobra.Command{
		Use:           "tokenuze",
		Short:         "Tokenuze aggregates local LLM coding-agent session logs into token usage and cost reports.",
		Version:       version,
		SilenceUsage:  false,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := buildRunOptions(sinceFlag, untilFlag, tzFlag, config.Load().TZEnv, agentFlag, prettyFlag, uploadFlag, sessionsFlag, jsonFlag, machineIDFlag)
			if err != nil {
				return err
			}
			if opts.upload && os.Getenv("DASHBOARD_API_KEY") == "" {
				fmt.Fprintln(os.Stderr, "DASHBOARD_API_KEY is not set; set it in your environment before using --upload.")
				return errExitSilently
			}
			return run(context.Background(), cmd.OutOrStdout(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&sinceFlag, "since", "", "inclusive lower bound on local date, YYYYMMDD")
	flags.StringVar(&untilFlag, "until", "", "inclusive upper bound on local date, YYYYMMDD")
	flags.StringVar(&tzFlag, "tz", "", "bucket timezone, ±HH[:MM] or UTC")
	flags.BoolVar(&prettyFlag, "pretty", false, "pretty-print JSON output")
	flags.StringArrayVar(&agentFlag, "agent", nil, "restrict to this provider (may repeat)")
	flags.BoolVar(&uploadFlag, "upload", false, "upload aggregated usage to the dashboard instead of rendering it")
	flags.BoolVar(&sessionsFlag, "sessions", false, "emit the per-session view")
	flags.BoolVar(&jsonFlag, "json", false, "emit JSON instead of a table")
	flags.BoolVar(&machineIDFlag, "machine-id", false, "print the cached/derived machine ID and exit")

	if err := root.Execute(); err != nil {
		if err != errExitSilently {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// errExitSilently marks an error path that has already printed its own
// message to stderr, so main should not print the error again.
var errExitSilently = fmt.Errorf("tokenuze: exit without further diagnostics")
