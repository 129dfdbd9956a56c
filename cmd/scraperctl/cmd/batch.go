package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/nightlyone/lockfile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pistole/scraper-parser/ast"
	"github.com/pistole/scraper-parser/diagnostics"
	"github.com/pistole/scraper-parser/discover"
	"github.com/pistole/scraper-parser/eval"
	"github.com/pistole/scraper-parser/internal/output"
	"github.com/pistole/scraper-parser/scraper"
	"github.com/pistole/scraper-parser/settings"
)

var (
	batchDir              string
	batchManifestPath     string
	batchSettingsPath     string
	batchTracePath        string
	batchTraceBuffersPath string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate many (function, input) pairs concurrently",
	Long: `Reads a YAML manifest of (function, input, id, source) entries and
evaluates each against its own buffer bank concurrently, via
golang.org/x/sync/errgroup — one goroutine per entry, no shared mutable
state, matching the evaluator's "disjoint banks in parallel" model.
Results are collected positionally, so manifest order is preserved in
the printed summary regardless of completion order.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", ".", "directory containing scraper XML documents")
	batchCmd.Flags().StringVarP(&batchManifestPath, "manifest", "m", "", "path to a batch manifest YAML file (required)")
	batchCmd.Flags().StringVar(&batchSettingsPath, "settings", "", "path to a settings overlay (default: settings.yaml/.yml beside --dir)")
	batchCmd.Flags().StringVar(&batchTracePath, "trace-file", "", "append-only JSON-lines diagnostics trace, guarded by a lockfile against concurrent writers")
	batchCmd.Flags().StringVar(&batchTraceBuffersPath, "trace-buffers", "", "append-only JSON-lines dump of buffer-bank state after each RegExp node, shared across all entries (opt-in debug feature)")
	_ = batchCmd.MarkFlagRequired("manifest")
}

// batchEntry is one line of a batch manifest.
type batchEntry struct {
	Function string `yaml:"function"`
	Input    string `yaml:"input"`
	ID       string `yaml:"id"`
	Source   string `yaml:"source"`
}

func runBatch(_ *cobra.Command, _ []string) error {
	manifestData, err := os.ReadFile(batchManifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", batchManifestPath, err)
	}
	var entries []batchEntry
	if err := yaml.Unmarshal(manifestData, &entries); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", batchManifestPath, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("manifest %s has no entries", batchManifestPath)
	}

	disc, err := discover.Definitions(batchDir, "")
	if err != nil {
		return fmt.Errorf("discovering scraper definitions in %s: %w", batchDir, err)
	}
	if len(disc.Definitions) == 0 {
		return fmt.Errorf("no scraper XML documents found in %s", batchDir)
	}
	docs, err := readAll(disc.Definitions)
	if err != nil {
		return err
	}
	table, err := scraper.LoadFunctionTable(docs...)
	if err != nil {
		return fmt.Errorf("parsing scraper definitions: %w", err)
	}
	st, err := loadSettings(batchSettingsPath, disc.SettingsPath)
	if err != nil {
		return err
	}

	var tracer *batchTracer
	if batchTracePath != "" {
		tracer, err = newBatchTracer(batchTracePath)
		if err != nil {
			return err
		}
		defer tracer.close()
	}

	var bufferTrace *diagnostics.BufferTrace
	if batchTraceBuffersPath != "" {
		f, err := os.OpenFile(batchTraceBuffersPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening buffer trace file %s: %w", batchTraceBuffersPath, err)
		}
		defer f.Close()
		bufferTrace = &diagnostics.BufferTrace{Writer: &syncWriter{w: f}}
	}

	results, err := evaluateBatch(entries, table, st, tracer, bufferTrace)
	if err != nil {
		return err
	}
	logger.Info("batch", "manifest", batchManifestPath, "entries", len(entries))

	for _, r := range results {
		if err := output.FormatJSON(os.Stdout, r); err != nil {
			return err
		}
	}
	return nil
}

// evaluateBatch evaluates every entry concurrently, each against its
// own fresh buffer bank (scraper.Run always starts from buffers.New()),
// and returns results in manifest order regardless of completion
// order — the core of the "disjoint banks in parallel" behavior the
// batch command exists to exercise.
func evaluateBatch(entries []batchEntry, table ast.FunctionTable, st settings.Settings, tracer *batchTracer, bufferTrace *diagnostics.BufferTrace) ([]output.Result, error) {
	results := make([]output.Result, len(entries))
	var g errgroup.Group
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			input, err := os.ReadFile(entry.Input)
			if err != nil {
				return fmt.Errorf("entry %d: reading input %s: %w", i, entry.Input, err)
			}
			params := scraper.Params{Input: string(input), ID: entry.ID, Source: entry.Source}
			opts := eval.Options{Trace: bufferTrace}
			xmlResult, trace, err := scraper.Run(table, entry.Function, params, st, opts)
			if err != nil {
				return fmt.Errorf("entry %d (%s): %w", i, entry.Function, err)
			}
			results[i] = output.NewResult(entry.Function, xmlResult, trace)
			if tracer != nil {
				if err := tracer.append(results[i]); err != nil {
					return fmt.Errorf("entry %d: writing trace: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// syncWriter serializes concurrent Write calls from batch's goroutines
// onto one shared io.Writer, the same role batchTracer.mu plays for
// the diagnostics trace file.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func readAll(paths []string) ([][]byte, error) {
	docs := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}

// batchTracer serializes append-only writes to a shared trace file
// across the batch's goroutines: an in-process mutex orders concurrent
// writers within this run, and a nightlyone/lockfile guard protects
// against another scraperctl batch process writing the same file at
// once.
type batchTracer struct {
	mu   sync.Mutex
	f    *os.File
	lock lockfile.Lockfile
}

func newBatchTracer(path string) (*batchTracer, error) {
	lockPath := path + ".lock"
	abs, err := filepath.Abs(lockPath)
	if err != nil {
		return nil, fmt.Errorf("resolving lock path: %w", err)
	}
	lock, err := lockfile.New(abs)
	if err != nil {
		return nil, fmt.Errorf("creating trace lockfile: %w", err)
	}
	if err := lock.TryLock(); err != nil {
		return nil, fmt.Errorf("another scraperctl batch is writing %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("opening trace file %s: %w", path, err)
	}
	return &batchTracer{f: f, lock: lock}, nil
}

func (t *batchTracer) append(r output.Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return output.FormatJSON(t.f, r)
}

func (t *batchTracer) close() {
	_ = t.f.Close()
	_ = t.lock.Unlock()
}
