// Package cmd implements the scraperctl command-line front end: a thin
// cobra-based shell over the scraper package, with one file per
// subcommand (package vars for flags, RunE-based commands).
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// logger is the structured JSON logger shared by every subcommand,
// configured exactly as apps/parser/main.go configures
// slog.NewJSONHandler — except the handler writes to stderr rather
// than stdout, since stdout here already carries the command's own
// result (the XML fragment or a JSON envelope), and interleaving
// structured log lines into that stream would corrupt it for a
// caller piping the result onward.
var logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

var rootCmd = &cobra.Command{
	Use:   "scraperctl",
	Short: "Evaluate Kodi-style scraper definitions against an input document",
	Long: `scraperctl loads one or more scraper definition XML documents, evaluates
a named function against an input document and optional settings overlay,
and prints the resulting XML fragment with any non-fatal diagnostics
(pattern errors, missing-setting warnings, chain misses) collected along
the way.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err.Error())
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(checkCmd)
}
