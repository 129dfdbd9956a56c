package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pistole/scraper-parser/diagnostics"
	"github.com/pistole/scraper-parser/discover"
	"github.com/pistole/scraper-parser/eval"
	"github.com/pistole/scraper-parser/internal/output"
	"github.com/pistole/scraper-parser/scraper"
	"github.com/pistole/scraper-parser/settings"
)

var (
	runDir          string
	runFunction     string
	runInputPath    string
	runID           string
	runSource       string
	runSettingsPath string
	runOutputFormat string
	runTraceBuffers string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate one function against an input document",
	Long: `Loads every scraper XML document found in --dir, evaluates --function
against the document at --input (seeding B[1]/B[2]/B[3] from --input,
--id, --source), and prints the resulting XML with chains expanded.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runDir, "dir", "d", ".", "directory containing scraper XML documents")
	runCmd.Flags().StringVarP(&runFunction, "function", "f", "", "entry-point function name (required)")
	runCmd.Flags().StringVarP(&runInputPath, "input", "i", "", "path to the input document (required)")
	runCmd.Flags().StringVar(&runID, "id", "", "item identifier, seeds B[2]")
	runCmd.Flags().StringVar(&runSource, "source", "", "source locator (URL or path), seeds B[3]")
	runCmd.Flags().StringVar(&runSettingsPath, "settings", "", "path to a settings overlay (default: settings.yaml/.yml beside --dir)")
	runCmd.Flags().StringVarP(&runOutputFormat, "output", "o", "text", "output format: text, json")
	runCmd.Flags().StringVar(&runTraceBuffers, "trace-buffers", "", "append-only JSON-lines dump of buffer-bank state after each RegExp node (opt-in debug feature)")
	_ = runCmd.MarkFlagRequired("function")
	_ = runCmd.MarkFlagRequired("input")
}

func runRun(_ *cobra.Command, _ []string) error {
	if runOutputFormat != "text" && runOutputFormat != "json" {
		return fmt.Errorf("invalid output format %q: must be 'text' or 'json'", runOutputFormat)
	}

	res, err := discover.Definitions(runDir, "")
	if err != nil {
		return fmt.Errorf("discovering scraper definitions in %s: %w", runDir, err)
	}
	if len(res.Definitions) == 0 {
		return fmt.Errorf("no scraper XML documents found in %s", runDir)
	}

	docs := make([][]byte, 0, len(res.Definitions))
	for _, path := range res.Definitions {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, data)
	}

	table, err := scraper.LoadFunctionTable(docs...)
	if err != nil {
		return fmt.Errorf("parsing scraper definitions: %w", err)
	}

	st, err := loadSettings(runSettingsPath, res.SettingsPath)
	if err != nil {
		return err
	}

	input, err := os.ReadFile(runInputPath)
	if err != nil {
		return fmt.Errorf("reading input document %s: %w", runInputPath, err)
	}

	opts := eval.Options{}
	if runTraceBuffers != "" {
		traceFile, err := os.OpenFile(runTraceBuffers, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening buffer trace file %s: %w", runTraceBuffers, err)
		}
		defer traceFile.Close()
		opts.Trace = &diagnostics.BufferTrace{Writer: traceFile}
	}

	params := scraper.Params{Input: string(input), ID: runID, Source: runSource}
	xmlResult, trace, err := scraper.Run(table, runFunction, params, st, opts)
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", runFunction, err)
	}
	logger.Info("run", "function", runFunction, "diagnostics", len(trace.Diagnostics))

	switch runOutputFormat {
	case "json":
		return output.FormatJSON(os.Stdout, output.NewResult(runFunction, xmlResult, trace))
	default:
		output.FormatText(os.Stdout, xmlResult, trace)
		return nil
	}
}

// loadSettings prefers an explicit --settings path, falling back to one
// discovered alongside the scraper definitions; no settings file at all
// is not an error, it just yields an empty Settings (every $INFO[...]
// lookup and conditional then reports "absent").
func loadSettings(explicit, discovered string) (settings.Settings, error) {
	path := explicit
	if path == "" {
		path = discovered
	}
	if path == "" {
		return settings.Settings{}, nil
	}
	return settings.Load(path)
}
