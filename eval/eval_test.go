package eval

import (
	"testing"

	"github.com/pistole/scraper-parser/ast"
	"github.com/pistole/scraper-parser/buffers"
	"github.com/pistole/scraper-parser/diagnostics"
	"github.com/pistole/scraper-parser/settings"
)

func mustParse(t *testing.T, doc string) ast.FunctionTable {
	t.Helper()
	table, err := ast.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return table
}

func TestSingleCaptureAssign(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="5" clearbuffers="no">
			<RegExp input="$$1" output="\1" dest="5">
				<expression><![CDATA[<title>(.*?)</title>]]></expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(buffers.SlotInput, "pre<title>Hi</title>post")
	Function(table["F"], b, settings.Settings{}, nil, Options{})

	if got := b.Get(5); got != "Hi" {
		t.Fatalf("B[5] = %q, want %q", got, "Hi")
	}
}

func TestCleanByDefault(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1">
			<RegExp input="$$1" output="\1" dest="5">
				<expression>&gt;([^&lt;]+)&lt;</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(1, "<b>Foo &amp; Bar</b>")
	Function(table["F"], b, settings.Settings{}, nil, Options{})

	if got := b.Get(5); got != "Foo & Bar" {
		t.Fatalf("B[5] = %q, want %q", got, "Foo & Bar")
	}
}

func TestTrimNoCleanCombination(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1">
			<RegExp input="$$1" output="\1" dest="5">
				<expression trim="1" noclean="1">(\s*&lt;i&gt;x&lt;/i&gt;\s*)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(1, "   <i>x</i>   ")
	Function(table["F"], b, settings.Settings{}, nil, Options{})

	if got := b.Get(5); got != "<i>x</i>" {
		t.Fatalf("B[5] = %q, want %q", got, "<i>x</i>")
	}
}

func TestConditionalSkip(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1">
			<RegExp input="$$1" output="A" dest="5" conditional="lang">
				<expression>(.*)</expression>
			</RegExp>
			<RegExp input="$$1" output="B" dest="5" conditional="!lang">
				<expression>(.*)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(1, "x")
	st := settings.Settings{"lang": "true"}
	Function(table["F"], b, st, nil, Options{})

	if got := b.Get(5); got != "A" {
		t.Fatalf("B[5] = %q, want %q", got, "A")
	}
}

func TestAppendOrderWithBufferRef(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="9">
			<RegExp input="$$1" output="Alpha" dest="7">
				<expression>(.*)</expression>
			</RegExp>
			<RegExp input="$$1" output="Beta" dest="8">
				<expression>(.*)</expression>
			</RegExp>
			<RegExp input="$$1" output="$$7-$$8" dest="9">
				<expression>(.*)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(1, "x")
	Function(table["F"], b, settings.Settings{}, nil, Options{})

	if got := b.Get(9); got != "Alpha-Beta" {
		t.Fatalf("B[9] = %q, want %q", got, "Alpha-Beta")
	}
}

func TestClearBuffersPreservesReservedSlots(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1" clearbuffers="yes">
			<RegExp input="$$1" output="x" dest="4">
				<expression>(.*)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(buffers.SlotInput, "input")
	b.Set(buffers.SlotID, "id")
	b.Set(buffers.SlotSource, "src")
	b.Set(10, "stale")

	Function(table["F"], b, settings.Settings{}, nil, Options{})

	if got := b.Get(buffers.SlotInput); got != "input" {
		t.Fatalf("SlotInput = %q, want preserved", got)
	}
	if got := b.Get(buffers.SlotID); got != "id" {
		t.Fatalf("SlotID = %q, want preserved", got)
	}
	if got := b.Get(buffers.SlotSource); got != "src" {
		t.Fatalf("SlotSource = %q, want preserved", got)
	}
	if b.IsSet(10) {
		t.Fatalf("slot 10 should have been cleared by clearbuffers")
	}
}

func TestEmptyResultPolicy(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1" clearbuffers="no">
			<RegExp input="$$1" output="\1" dest="5">
				<expression>NOMATCH(x)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(5, "original")
	b.Set(1, "nothing matches here")
	Function(table["F"], b, settings.Settings{}, nil, Options{})

	if got := b.Get(5); got != "original" {
		t.Fatalf("assign with empty result should leave slot unchanged, got %q", got)
	}
}

func TestMissingSettingWarningSkipsNode(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1">
			<RegExp input="$$1" output="A" dest="5" conditional="unknown">
				<expression>(.*)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(1, "x")
	trace := diagnostics.NewTrace()
	Function(table["F"], b, settings.Settings{}, trace, Options{})

	if b.IsSet(5) {
		t.Fatalf("expected node to be skipped, B[5] should stay unset")
	}
	if len(trace.Diagnostics) != 1 || trace.Diagnostics[0].Kind != diagnostics.KindMissingSetting {
		t.Fatalf("expected one MissingSetting diagnostic, got %+v", trace.Diagnostics)
	}
}

func TestUnsupportedAttributesAreSurfaced(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1">
			<RegExp input="$$1" output="\1" dest="5">
				<expression compare="expected" utf8="yes">(.*)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(1, "x")
	trace := diagnostics.NewTrace()
	Function(table["F"], b, settings.Settings{}, trace, Options{})

	var kinds []diagnostics.Kind
	for _, d := range trace.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	count := 0
	for _, k := range kinds {
		if k == diagnostics.KindUnsupportedAttribute {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 unsupported-attribute diagnostics (compare, utf8), got %d: %+v", count, trace.Diagnostics)
	}
	// The node still evaluates normally; the attributes are surfaced, not enforced.
	if got := b.Get(5); got != "x" {
		t.Fatalf("B[5] = %q, want %q", got, "x")
	}
}

func TestRepeatConcatenatesAllMatches(t *testing.T) {
	table := mustParse(t, `<scraper>
		<F dest="1">
			<RegExp input="$$1" output="[\1]" dest="5">
				<expression repeat="yes">(\w+)</expression>
			</RegExp>
		</F>
	</scraper>`)

	b := buffers.New()
	b.Set(1, "a b c")
	Function(table["F"], b, settings.Settings{}, nil, Options{})

	if got := b.Get(5); got != "[a][b][c]" {
		t.Fatalf("B[5] = %q, want %q", got, "[a][b][c]")
	}
}
