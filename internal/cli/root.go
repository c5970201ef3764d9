// Package cli provides the overwatch command line interface. It wires
// subcommands for running scans, managing the query bank, and serving the
// triage API. Environment is read here and passed down as plain values so
// the core packages never touch env themselves.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"overwatch/internal/core/version"
	"overwatch/internal/platform/config"
	"overwatch/internal/platform/logger"
)

var (
	flagPatterns string
	flagQueries  string
	flagSeen     string
	flagOut      string
	flagFormat   string
)

var rootCmd = &cobra.Command{
	Use:           "overwatch",
	Short:         "Scan public GitHub repositories for leaked secrets",
	Long:          "Overwatch searches GitHub for repositories matching a query, probes a checklist of config files in each, and records masked secret findings.",
	Version:       version.Info().Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Init(logger.FromEnv())
	},
}

// Execute runs the CLI. Called by the main package
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagPatterns, "patterns", "", "pattern catalog path (default $OVERWATCH_PATTERNS or config/patterns.yaml)")
	pf.StringVar(&flagQueries, "queries", "", "query bank path (default $OVERWATCH_QUERIES or config/queries.yaml)")
	pf.StringVar(&flagSeen, "seen", "", "scanned-repository set path (default $OVERWATCH_SEEN or scanned_repos.txt)")
	pf.StringVar(&flagOut, "out", "", "findings output path (default $OVERWATCH_OUT or findings.jsonl)")
	pf.StringVar(&flagFormat, "format", "", "findings output format, jsonl or csv (default $OVERWATCH_FORMAT or jsonl)")
}

// conf is the OVERWATCH_* scoped env view
func conf() config.Conf { return config.New().Prefix("OVERWATCH_") }

// resolve prefers the flag, then the env key, then the fallback
func resolve(flag string, cfg config.Conf, key, def string) string {
	if flag != "" {
		return flag
	}
	return cfg.MayString(key, def)
}
