// Package chain implements the recursive <chain function="..."> resolver:
// after a top-level function evaluates, its destination XML is scanned for
// chain elements, each of which is replaced in place by the children of a
// recursive invocation of the named function.
package chain

import (
	"fmt"

	"github.com/pistole/scraper-parser/ast"
	"github.com/pistole/scraper-parser/buffers"
	"github.com/pistole/scraper-parser/diagnostics"
	"github.com/pistole/scraper-parser/eval"
	"github.com/pistole/scraper-parser/settings"
	"github.com/pistole/scraper-parser/xmlio"
)

// chainElement is the tag name a function's output uses to request a
// recursive invocation of another function.
const chainElement = "chain"

// Resolve parses text as an XML fragment and expands every
// <chain function="NAME"> element below the root, at any depth (not only
// the root's direct children): a fresh buffer bank is built with
// B[1]=B[2]=the chain element's text and B[3] inherited from sourceBuffer3,
// the named function is evaluated against table, and the chain element is
// replaced by the children of its parsed result. Chains may nest; resolving
// a chained function's own output recurses through the same logic.
//
// A function whose output contains no <chain> elements round-trips
// unchanged (besides re-serialization), matching the evaluator's
// chain-idempotence property.
func Resolve(table ast.FunctionTable, text string, st settings.Settings, sourceBuffer3 string, trace *diagnostics.Trace) (string, error) {
	root, err := xmlio.Parse([]byte(text))
	if err != nil {
		trace.OutputParseError("", err)
		return "", fmt.Errorf("chain: parsing output as XML: %w", err)
	}

	if err := resolveElement(table, root, st, sourceBuffer3, trace); err != nil {
		return "", err
	}

	out, err := xmlio.Serialize(root)
	if err != nil {
		return "", fmt.Errorf("chain: serializing result: %w", err)
	}
	return string(out), nil
}

// resolveElement walks e's children in place, replacing every chain
// element with the children of its resolved invocation and recursing into
// ordinary (non-chain) children so nested chains anywhere in the tree are
// expanded.
func resolveElement(table ast.FunctionTable, e *xmlio.Element, st settings.Settings, sourceBuffer3 string, trace *diagnostics.Trace) error {
	var expanded []xmlio.Element
	for _, child := range e.Children {
		if child.XMLName.Local != chainElement {
			if err := resolveElement(table, &child, st, sourceBuffer3, trace); err != nil {
				return err
			}
			expanded = append(expanded, child)
			continue
		}

		fnName, _ := child.Attr("function")
		children, err := resolveChain(table, fnName, child.Text, st, sourceBuffer3, trace)
		if err != nil {
			return err
		}
		expanded = append(expanded, children...)
	}
	e.Children = expanded
	return nil
}

// resolveChain evaluates the function named fnName against a fresh bank
// seeded from chainText, and returns the children of its parsed result
// (already chain-expanded, since the recursive invocation's own output is
// resolved before returning here).
func resolveChain(table ast.FunctionTable, fnName, chainText string, st settings.Settings, sourceBuffer3 string, trace *diagnostics.Trace) ([]xmlio.Element, error) {
	fn, ok := table[fnName]
	if !ok {
		trace.ChainMiss("", fnName)
		return nil, nil
	}

	b := buffers.New()
	b.Set(buffers.SlotInput, chainText)
	b.Set(buffers.SlotID, chainText)
	b.Set(buffers.SlotSource, sourceBuffer3)

	eval.Function(fn, b, st, trace, eval.Options{})
	result := b.Get(fn.Dest.Index)
	if result == "" {
		trace.ChainMiss(fnName, fnName)
		return nil, nil
	}

	// A function's result is a buffer's raw text, which may itself be
	// several sibling elements (not one well-formed document), so it is
	// parsed under a synthetic wrapper; that wrapper's children are exactly
	// the chained result's own top-level elements, which is what replaces
	// the <chain> element in the parent. A chain to a function returning
	// "<actors>...</actors>" yields a sibling <actors> element, not its
	// unwrapped <actor> children.
	wrapped := "<_chain_result>" + result + "</_chain_result>"
	childRoot, err := xmlio.Parse([]byte(wrapped))
	if err != nil {
		trace.OutputParseError(fnName, err)
		return nil, nil
	}
	if err := resolveElement(table, childRoot, st, sourceBuffer3, trace); err != nil {
		return nil, err
	}
	return childRoot.Children, nil
}
