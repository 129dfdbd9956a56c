// Package eval is the recursive tree-walking evaluator: it executes a
// Function's RegExp children against a buffer bank, applying regex
// substitution, per-capture cleaning, buffer back-reference
// expansion, and destination writes.
package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pistole/scraper-parser/ast"
	"github.com/pistole/scraper-parser/buffers"
	"github.com/pistole/scraper-parser/clean"
	"github.com/pistole/scraper-parser/diagnostics"
	"github.com/pistole/scraper-parser/regexx"
	"github.com/pistole/scraper-parser/settings"
)

// Options controls optional evaluator behavior beyond the core
// evaluation algorithm.
type Options struct {
	// Trace, when set, receives one JSON line per RegExp node recording
	// the bank's contents right after that node finishes evaluating.
	Trace *diagnostics.BufferTrace
}

// Function evaluates fn against b, honoring clearbuffers and
// evaluating every child RegExp left to right. Non-fatal problems are
// appended to trace; trace may be nil to discard them.
func Function(fn *ast.Function, b *buffers.Bank, st settings.Settings, trace *diagnostics.Trace, opts Options) {
	if fn.ClearBuffers {
		b.ResetPreserving()
	}
	for i, child := range fn.Children {
		regexpNode(child, b, st, trace, opts, fn.Name, fmt.Sprintf("RegExp[%d]", i))
	}
}

func regexpNode(node *ast.RegExpNode, b *buffers.Bank, st settings.Settings, trace *diagnostics.Trace, opts Options, fnName, path string) {
	reportUnsupportedAttributes(node.Expression, trace, fnName, path)

	if node.HasConditional {
		key := node.Conditional
		negated := strings.HasPrefix(key, "!")
		if negated {
			key = key[1:]
		}
		wanted := "true"
		if negated {
			wanted = "false"
		}
		val, ok := st.Get(key)
		if !ok {
			trace.MissingSetting(fnName, path, key)
			return
		}
		if val != wanted {
			return
		}
	}

	for i, child := range node.Children {
		regexpNode(child, b, st, trace, opts, fnName, fmt.Sprintf("%s/RegExp[%d]", path, i))
	}

	var data string
	switch node.Input.Kind {
	case ast.InputBuffer:
		data = b.Get(node.Input.BufferIndex)
	case ast.InputSetting:
		data, _ = st.Get(node.Input.SettingKey)
	}

	result, err := applyExpression(node.Expression, node.Output, data)
	if err != nil {
		trace.PatternError(fnName, path, err)
		result = ""
	}

	result = expandBufferRefs(result, b)
	result = expandSettingRefs(result, st)

	writeDest(b, node.Dest, node.Expression.Clear, result)

	if opts.Trace != nil {
		_ = opts.Trace.Emit(fnName, path, b.Snapshot())
	}
}

// reportUnsupportedAttributes surfaces a node's compare/utf8 attributes
// via trace, once per occurrence, regardless of whether the node goes
// on to execute — these attributes are parsed but never consulted by
// the rest of evaluation (see DESIGN.md's Open Questions).
func reportUnsupportedAttributes(expr ast.Expression, trace *diagnostics.Trace, fnName, path string) {
	if expr.Compare != "" {
		trace.UnsupportedAttribute(fnName, path, "compare", expr.Compare)
	}
	if expr.HasUTF8 {
		trace.UnsupportedAttribute(fnName, path, "utf8", strconv.FormatBool(expr.UTF8))
	}
}

// applyExpression runs expr's pattern against data, cleans each
// participating capture per expr's index sets, expands the output
// template against the cleaned captures, and (for repeat=yes)
// concatenates across every non-overlapping match.
func applyExpression(expr ast.Expression, output, data string) (string, error) {
	ropts := regexx.Options{CaseSensitive: expr.CaseSensitive}

	if !expr.Repeat {
		m, err := regexx.Search(expr.Pattern, data, ropts)
		if err != nil {
			return "", err
		}
		if m == nil {
			return "", nil
		}
		return expandMatch(m, expr, output), nil
	}

	matches, err := regexx.FindAll(expr.Pattern, data, ropts)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, m := range matches {
		b.WriteString(expandMatch(m, expr, output))
	}
	return b.String(), nil
}

func expandMatch(m *regexx.Match, expr ast.Expression, output string) string {
	return regexx.ExpandTemplate(output, func(n int) string {
		if !m.Participated(n) {
			return ""
		}
		return clean.Capture(m.Group(n), n, expr)
	})
}

func writeDest(b *buffers.Bank, dest ast.Dest, clearFirst bool, result string) {
	if clearFirst {
		b.Clear(dest.Index)
	}
	if dest.Append {
		b.Init(dest.Index)
		if result != "" {
			b.Append(dest.Index, result)
		}
		return
	}
	if result != "" {
		b.Set(dest.Index, result)
	}
}
