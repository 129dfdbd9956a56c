// Package diagnostics models the non-fatal error taxonomy accumulated
// during evaluation: PatternError, MissingSettingWarning,
// ChainMissError, OutputParseError, and UnsupportedAttribute.
// DefinitionError is fatal at load time and stays a plain Go error
// (see ast.DefinitionError); it never appears here.
package diagnostics

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Kind names one of the five non-fatal diagnostic categories.
type Kind string

const (
	KindPatternError         Kind = "pattern_error"
	KindMissingSetting       Kind = "missing_setting_warning"
	KindChainMiss            Kind = "chain_miss_error"
	KindOutputParse          Kind = "output_parse_error"
	KindUnsupportedAttribute Kind = "unsupported_attribute_warning"
)

// Diagnostic is a flat, serializable record of one non-fatal event —
// accumulated across a whole evaluation rather than returned singly,
// so a single evaluation can report several without aborting.
type Diagnostic struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Function string `json:"function,omitempty"`
	Node     string `json:"node,omitempty"`
	Setting  string `json:"setting,omitempty"`
	Attr     string `json:"attr,omitempty"`
}

// Trace accumulates diagnostics for one top-level invocation (and any
// chains it triggers).
type Trace struct {
	Diagnostics []Diagnostic
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Add appends d to the trace. A nil Trace silently discards, so
// callers that don't care about diagnostics can pass nil.
func (t *Trace) Add(d Diagnostic) {
	if t == nil {
		return
	}
	t.Diagnostics = append(t.Diagnostics, d)
}

// PatternError records that a node's regex failed to compile or
// execute; the node contributes nothing and evaluation continues.
func (t *Trace) PatternError(function, node string, err error) {
	t.Add(Diagnostic{Kind: KindPatternError, Function: function, Node: node, Message: err.Error()})
}

// MissingSetting records that a conditional referenced an unknown
// settings key; the node is skipped.
func (t *Trace) MissingSetting(function, node, key string) {
	t.Add(Diagnostic{
		Kind:     KindMissingSetting,
		Function: function,
		Node:     node,
		Setting:  key,
		Message:  fmt.Sprintf("conditional references unknown setting %q", key),
	})
}

// ChainMiss records that a chain invocation returned no result; the
// chain element is still removed.
func (t *Trace) ChainMiss(function, chainFunction string) {
	t.Add(Diagnostic{
		Kind:     KindChainMiss,
		Function: function,
		Message:  fmt.Sprintf("chain to %q produced no result", chainFunction),
	})
}

// OutputParseError records that a function's final text was not
// well-formed XML; the caller decides whether to retry or abort.
func (t *Trace) OutputParseError(function string, err error) {
	t.Add(Diagnostic{Kind: KindOutputParse, Function: function, Message: err.Error()})
}

// UnsupportedAttribute records that a node carries a `compare` or
// `utf8` attribute — parsed into the AST but never consulted during
// evaluation. A scraper author relying on either attribute's effect
// gets this diagnostic instead of a silent divergence.
func (t *Trace) UnsupportedAttribute(function, node, attr, value string) {
	t.Add(Diagnostic{
		Kind:     KindUnsupportedAttribute,
		Function: function,
		Node:     node,
		Attr:     attr,
		Message:  fmt.Sprintf("attribute %q=%q is parsed but not consulted by evaluation", attr, value),
	})
}

// JSON renders the accumulated diagnostics as a JSON array.
func (t *Trace) JSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Diagnostics)
}

// MergeInto patches this trace's diagnostics into an existing JSON
// report document under a "diagnostics" field, without requiring the
// caller to unmarshal the whole report into a Go struct first.
func (t *Trace) MergeInto(report []byte) ([]byte, error) {
	var diags []Diagnostic
	if t != nil {
		diags = t.Diagnostics
	}
	return sjson.SetBytes(report, "diagnostics", diags)
}

// CountInReport reads back the number of diagnostics previously
// merged into a report by MergeInto, without unmarshalling the report.
func CountInReport(report []byte) int {
	return int(gjson.GetBytes(report, "diagnostics.#").Int())
}
