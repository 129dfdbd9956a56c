// Package output formats an evaluation result and its accumulated
// diagnostics for the two presentations the CLI supports: plain text
// for a terminal, and JSON for scripting.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/pistole/scraper-parser/diagnostics"
)

// colorEnabled reports whether w is a terminal that ANSI color codes
// should be written to. Piped or redirected output (scripts, log files)
// gets plain text instead.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// FormatText writes xmlResult followed by a human-readable summary of
// trace's diagnostics, colored by severity: PatternError and
// OutputParseError in red, MissingSettingWarning and ChainMissError in
// yellow.
func FormatText(w io.Writer, xmlResult string, trace *diagnostics.Trace) {
	colors := colorEnabled(w)

	if xmlResult != "" {
		fmt.Fprintln(w, xmlResult)
	}

	var diags []diagnostics.Diagnostic
	if trace != nil {
		diags = trace.Diagnostics
	}
	if len(diags) == 0 {
		fmt.Fprintf(w, "%s✓ no diagnostics%s\n", pick(colors, colorBold+colorGreen), pick(colors, colorReset))
		return
	}

	fmt.Fprintf(w, "\n%s%d diagnostic%s:%s\n", pick(colors, colorBold+colorYellow), len(diags), plural(len(diags)), pick(colors, colorReset))
	for _, d := range diags {
		color := pick(colors, severityColor(d.Kind))
		reset := pick(colors, colorReset)
		loc := strings.TrimSuffix(fmt.Sprintf("%s %s", d.Function, d.Node), " ")
		if loc == "" {
			fmt.Fprintf(w, "  %s●%s %s: %s\n", color, reset, d.Kind, d.Message)
			continue
		}
		fmt.Fprintf(w, "  %s●%s %s [%s]: %s\n", color, reset, d.Kind, loc, d.Message)
	}
}

// pick returns code when colors output is enabled, otherwise "".
func pick(enabled bool, code string) string {
	if !enabled {
		return ""
	}
	return code
}

func severityColor(k diagnostics.Kind) string {
	switch k {
	case diagnostics.KindPatternError, diagnostics.KindOutputParse:
		return colorRed
	default:
		return colorYellow
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
