package diagnostics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTraceAccumulatesAllKinds(t *testing.T) {
	tr := NewTrace()
	tr.PatternError("F", "RegExp[0]", errors.New("bad pattern"))
	tr.MissingSetting("F", "RegExp[1]", "lang")
	tr.ChainMiss("F", "Cast")
	tr.OutputParseError("F", errors.New("not well-formed"))

	if len(tr.Diagnostics) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d", len(tr.Diagnostics))
	}
	kinds := map[Kind]bool{}
	for _, d := range tr.Diagnostics {
		kinds[d.Kind] = true
	}
	for _, want := range []Kind{KindPatternError, KindMissingSetting, KindChainMiss, KindOutputParse} {
		if !kinds[want] {
			t.Fatalf("missing diagnostic kind %s", want)
		}
	}
}

func TestNilTraceIsNoOp(t *testing.T) {
	var tr *Trace
	tr.PatternError("F", "RegExp[0]", errors.New("bad pattern"))
	if tr != nil {
		t.Fatalf("nil trace should stay nil")
	}
}

func TestMergeIntoAndCountInReport(t *testing.T) {
	tr := NewTrace()
	tr.ChainMiss("Details", "Cast")

	report := []byte(`{"status":"ok"}`)
	merged, err := tr.MergeInto(report)
	if err != nil {
		t.Fatalf("MergeInto: %v", err)
	}
	if !strings.Contains(string(merged), `"status":"ok"`) {
		t.Fatalf("MergeInto dropped existing fields: %s", merged)
	}
	if got := CountInReport(merged); got != 1 {
		t.Fatalf("CountInReport = %d, want 1", got)
	}
}

func TestBufferTraceEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	bt := &BufferTrace{Writer: &buf}
	if err := bt.Emit("F", "RegExp[0]", map[int]string{1: "hi"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(buf.String(), `"function":"F"`) {
		t.Fatalf("unexpected trace line: %s", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatalf("expected trailing newline, got %q", buf.String())
	}
}

func TestNilBufferTraceIsNoOp(t *testing.T) {
	var bt *BufferTrace
	if err := bt.Emit("F", "RegExp[0]", nil); err != nil {
		t.Fatalf("Emit on nil BufferTrace: %v", err)
	}
}
