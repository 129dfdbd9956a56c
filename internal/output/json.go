package output

import (
	"encoding/json"
	"io"

	"github.com/pistole/scraper-parser/diagnostics"
)

// Result is the JSON envelope returned by `scraperctl run --output json`
// and embedded per-item in `scraperctl batch`'s summary.
type Result struct {
	Function    string                  `json:"function"`
	XML         string                  `json:"xml"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// FormatJSON encodes r to w as indented JSON.
func FormatJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// NewResult builds a Result from an evaluation's output and trace. A nil
// trace yields an empty (not null) diagnostics array.
func NewResult(function, xmlResult string, trace *diagnostics.Trace) Result {
	diags := []diagnostics.Diagnostic{}
	if trace != nil && trace.Diagnostics != nil {
		diags = trace.Diagnostics
	}
	return Result{Function: function, XML: xmlResult, Diagnostics: diags}
}
