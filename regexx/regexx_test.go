package regexx

import "testing"

func TestSearchBasicCapture(t *testing.T) {
	m, err := Search(`<title>(.*?)</title>`, "pre<title>Hi</title>post", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if m == nil {
		t.Fatalf("expected a match")
	}
	if got := m.Group(1); got != "Hi" {
		t.Fatalf("group 1 = %q, want %q", got, "Hi")
	}
}

func TestSearchCaseInsensitiveByDefault(t *testing.T) {
	m, err := Search(`HELLO`, "say hello now", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if m == nil {
		t.Fatalf("expected case-insensitive match")
	}
}

func TestSearchCaseSensitiveOptIn(t *testing.T) {
	m, err := Search(`HELLO`, "say hello now", Options{CaseSensitive: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if m != nil {
		t.Fatalf("expected no match under case-sensitive search")
	}
}

func TestDotMatchesNewline(t *testing.T) {
	m, err := Search(`a.b`, "a\nb", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if m == nil {
		t.Fatalf("expected dotall semantics to match across a newline")
	}
}

func TestFindAllNonOverlapping(t *testing.T) {
	ms, err := FindAll(`\d+`, "a1 b22 c333", Options{})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(ms) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(ms))
	}
	want := []string{"1", "22", "333"}
	for i, m := range ms {
		if got := m.Group(0); got != want[i] {
			t.Fatalf("match %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestExpandBackreferences(t *testing.T) {
	m, err := Search(`(\w+)@(\w+)`, "user@host", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := m.Expand(`\2:\1`); got != "host:user" {
		t.Fatalf("Expand = %q, want %q", got, "host:user")
	}
}

func TestExpandNonParticipatingGroupIsEmpty(t *testing.T) {
	m, err := Search(`(a)|(b)`, "a", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := m.Expand(`[\1][\2]`); got != "[a][]" {
		t.Fatalf("Expand = %q, want %q", got, "[a][]")
	}
}

func TestInvalidPatternIsPatternError(t *testing.T) {
	_, err := Search(`(unterminated`, "x", Options{})
	if err == nil {
		t.Fatalf("expected an error for an invalid pattern")
	}
	if _, ok := err.(*PatternError); !ok {
		t.Fatalf("expected *PatternError, got %T", err)
	}
}

func TestBackreferenceInPattern(t *testing.T) {
	m, err := Search(`(\w+) \1`, "echo echo", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if m == nil {
		t.Fatalf("expected backreference pattern to match a repeated word")
	}
}

func TestLookahead(t *testing.T) {
	m, err := Search(`foo(?=bar)`, "foobar", Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if m == nil || m.Group(0) != "foo" {
		t.Fatalf("expected lookahead match 'foo', got %+v", m)
	}
}
