package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pistole/scraper-parser/ast"
	"github.com/pistole/scraper-parser/discover"
)

var checkDir string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate scraper definitions without evaluating them",
	Long: `Parses every scraper XML document found in --dir and reports any
DefinitionError: malformed XML, a missing required attribute, or a
non-integer dest/input. A clean parse exits 0 and prints the discovered
function names.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkDir, "dir", "d", ".", "directory containing scraper XML documents")
}

func runCheck(_ *cobra.Command, _ []string) error {
	disc, err := discover.Definitions(checkDir, "")
	if err != nil {
		return fmt.Errorf("discovering scraper definitions in %s: %w", checkDir, err)
	}
	if len(disc.Definitions) == 0 {
		return fmt.Errorf("no scraper XML documents found in %s", checkDir)
	}

	var failed bool
	var tables []ast.FunctionTable
	for _, path := range disc.Definitions {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		table, err := ast.Parse(data)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "✖ %s: %v\n", path, err)
			continue
		}
		fmt.Printf("✓ %s: %d function(s)\n", path, len(table))
		tables = append(tables, table)
	}

	merged, overwritten := ast.MergeFunctionTables(tables...)
	for _, name := range overwritten {
		fmt.Fprintf(os.Stderr, "! function %q is redefined by a later document\n", name)
	}
	for name := range merged {
		fmt.Println(" -", name)
	}

	logger.Info("check", "dir", checkDir, "documents", len(disc.Definitions), "functions", len(merged), "failed", failed)

	if failed {
		return fmt.Errorf("one or more scraper definitions failed to parse")
	}
	return nil
}
