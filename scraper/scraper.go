// Package scraper is the public façade over ast, eval, and chain: the
// core's three external-interface functions (load_function_table,
// evaluate_function, expand_chains), plus the buffer-bank and
// diagnostics plumbing a caller needs to drive them without reaching
// into the lower-level packages directly.
package scraper

import (
	"fmt"

	"github.com/pistole/scraper-parser/ast"
	"github.com/pistole/scraper-parser/buffers"
	"github.com/pistole/scraper-parser/chain"
	"github.com/pistole/scraper-parser/diagnostics"
	"github.com/pistole/scraper-parser/eval"
	"github.com/pistole/scraper-parser/settings"
)

// LoadFunctionTable parses one or more scraper definition documents into
// a single FunctionTable, merging later documents over earlier ones on
// name collision (see ast.MergeFunctionTables) — supports a base scraper
// plus its addon imports layered on top.
func LoadFunctionTable(docs ...[]byte) (ast.FunctionTable, error) {
	tables := make([]ast.FunctionTable, 0, len(docs))
	for _, doc := range docs {
		table, err := ast.Parse(doc)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	merged, _ := ast.MergeFunctionTables(tables...)
	return merged, nil
}

// Params seeds the three reserved buffer slots before a function runs:
// the primary input document, an item identifier, and a source locator.
type Params struct {
	Input  string
	ID     string
	Source string
}

// EvaluateFunction looks up name in table, evaluates it against a fresh
// bank seeded from params, and returns the function's destination
// buffer's final contents along with any diagnostics accumulated along
// the way. Caller-supplied settings drive $INFO[...] inputs and
// conditional guards. opts is passed straight through to eval.Function;
// opts.Trace, when set, receives the opt-in per-node buffer dump.
func EvaluateFunction(table ast.FunctionTable, name string, params Params, st settings.Settings, opts eval.Options) (string, *diagnostics.Trace, error) {
	fn, ok := table[name]
	if !ok {
		return "", nil, fmt.Errorf("scraper: unknown function %q", name)
	}

	b := buffers.New()
	b.Set(buffers.SlotInput, params.Input)
	b.Set(buffers.SlotID, params.ID)
	b.Set(buffers.SlotSource, params.Source)

	trace := diagnostics.NewTrace()
	eval.Function(fn, b, st, trace, opts)
	return b.Get(fn.Dest.Index), trace, nil
}

// ExpandChains resolves every <chain function="..."> element in xmlText
// (the output of EvaluateFunction), recursively invoking the named
// functions in table and splicing their results into the tree.
func ExpandChains(table ast.FunctionTable, xmlText string, st settings.Settings, sourceBuffer3 string, trace *diagnostics.Trace) (string, error) {
	return chain.Resolve(table, xmlText, st, sourceBuffer3, trace)
}

// Run is the common end-to-end path: evaluate name against input/id/source
// and settings, then expand chains in its output. It returns the final
// XML text and the accumulated diagnostics; a non-nil error only occurs
// for an unknown function name or an XML parse failure during chain
// expansion (surfaced to the caller as an OutputParseError). opts is
// passed straight through to EvaluateFunction.
func Run(table ast.FunctionTable, name string, params Params, st settings.Settings, opts eval.Options) (string, *diagnostics.Trace, error) {
	result, trace, err := EvaluateFunction(table, name, params, st, opts)
	if err != nil {
		return "", trace, err
	}
	if result == "" {
		return "", trace, nil
	}
	expanded, err := ExpandChains(table, result, st, params.Source, trace)
	if err != nil {
		return "", trace, err
	}
	return expanded, trace, nil
}
