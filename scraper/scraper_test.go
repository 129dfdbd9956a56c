package scraper

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pistole/scraper-parser/diagnostics"
	"github.com/pistole/scraper-parser/eval"
	"github.com/pistole/scraper-parser/settings"
)

func TestRunChainExpansionEndToEnd(t *testing.T) {
	table, err := LoadFunctionTable([]byte(`<scraper>
		<Details dest="5">
			<RegExp input="$$1" output="&lt;movie&gt;&lt;chain function=&quot;Cast&quot;&gt;cast-html&lt;/chain&gt;&lt;/movie&gt;" dest="5" />
		</Details>
		<Cast dest="5">
			<RegExp input="$$1" output="&lt;actors&gt;&lt;actor&gt;A&lt;/actor&gt;&lt;/actors&gt;" dest="5" />
		</Cast>
	</scraper>`))
	if err != nil {
		t.Fatalf("LoadFunctionTable: %v", err)
	}

	out, trace, err := Run(table, "Details", Params{Input: "irrelevant"}, settings.Settings{}, eval.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := `<movie><actors><actor>A</actor></actors></movie>`
	if out != want {
		t.Fatalf("Run = %q, want %q", out, want)
	}
	if len(trace.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", trace.Diagnostics)
	}
}

func TestRunUnknownFunction(t *testing.T) {
	table, err := LoadFunctionTable([]byte(`<scraper><F dest="1"/></scraper>`))
	if err != nil {
		t.Fatalf("LoadFunctionTable: %v", err)
	}
	if _, _, err := Run(table, "Missing", Params{}, settings.Settings{}, eval.Options{}); err == nil {
		t.Fatal("expected an error for an unknown function name")
	} else if !strings.Contains(err.Error(), "Missing") {
		t.Fatalf("error %v does not name the missing function", err)
	}
}

func TestEvaluateFunctionThreadsBufferTrace(t *testing.T) {
	table, err := LoadFunctionTable([]byte(`<scraper>
		<F dest="5">
			<RegExp input="$$1" output="\1" dest="5"/>
		</F>
	</scraper>`))
	if err != nil {
		t.Fatalf("LoadFunctionTable: %v", err)
	}

	var buf bytes.Buffer
	opts := eval.Options{Trace: &diagnostics.BufferTrace{Writer: &buf}}
	if _, _, err := EvaluateFunction(table, "F", Params{Input: "hi"}, settings.Settings{}, opts); err != nil {
		t.Fatalf("EvaluateFunction: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected EvaluateFunction to pass opts through to eval.Function and emit a trace line")
	}
	if !strings.Contains(buf.String(), `"function":"F"`) {
		t.Fatalf("unexpected trace output: %s", buf.String())
	}
}

func TestLoadFunctionTableMergesDocuments(t *testing.T) {
	base := []byte(`<scraper><A dest="1"/></scraper>`)
	addon := []byte(`<scraper><B dest="1"/></scraper>`)
	table, err := LoadFunctionTable(base, addon)
	if err != nil {
		t.Fatalf("LoadFunctionTable: %v", err)
	}
	if _, ok := table["A"]; !ok {
		t.Fatal("expected function A from the base document")
	}
	if _, ok := table["B"]; !ok {
		t.Fatal("expected function B from the addon document")
	}
}
