// Package regexx adapts github.com/dlclark/regexp2 — a pure-Go engine
// with PCRE/.NET-style backreferences and lookaround — to the small
// surface the evaluator needs: leftmost search, non-overlapping
// find-all, and numbered-backreference template expansion.
package regexx

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Options controls the two flags the scraper language exposes on an
// expression: everything else (dotall + multiline) is always on, so
// that "." matches across line boundaries the way the reference engine
// behaves.
type Options struct {
	CaseSensitive bool
}

// PatternError wraps a regex compile or execution failure. Per the
// evaluator's error policy this is never fatal: the caller treats it
// as "this node contributes nothing" and continues.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

func compile(pattern string, opts Options) (*regexp2.Regexp, error) {
	flags := regexp2.Multiline | regexp2.Singleline
	if !opts.CaseSensitive {
		flags |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, flags)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

// Match exposes numbered capture groups by value, independent of the
// underlying engine's match lifetime.
type Match struct {
	groups      []string
	participate []bool
}

func newMatch(m *regexp2.Match) *Match {
	count := m.GroupCount()
	groups := make([]string, count)
	participate := make([]bool, count)
	for i := 0; i < count; i++ {
		g := m.GroupByNumber(i)
		if g != nil && len(g.Captures) > 0 {
			groups[i] = g.String()
			participate[i] = true
		}
	}
	return &Match{groups: groups, participate: participate}
}

// Group returns the text of capture group n (1-based; 0 is the whole
// match). A group that did not participate, or an out-of-range index,
// returns "".
func (m *Match) Group(n int) string {
	if n < 0 || n >= len(m.groups) {
		return ""
	}
	return m.groups[n]
}

// Participated reports whether capture group n took part in the match.
func (m *Match) Participated(n int) bool {
	if n < 0 || n >= len(m.participate) {
		return false
	}
	return m.participate[n]
}

// Expand substitutes \1..\9 backreferences in template with this
// match's groups. A backreference to a non-participating or
// out-of-range group expands to the empty string.
func (m *Match) Expand(template string) string {
	return ExpandTemplate(template, m.Group)
}

// ExpandTemplate substitutes \1..\9 backreferences in template by
// calling group(n) for each one encountered. It is exported so
// callers that need to substitute post-processed (e.g. cleaned)
// capture text, rather than a Match's raw groups, can reuse the same
// backreference lexing.
func ExpandTemplate(template string, group func(n int) string) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c == '\\' && i+1 < len(template) && template[i+1] >= '1' && template[i+1] <= '9' {
			n := int(template[i+1] - '0')
			b.WriteString(group(n))
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Search returns the leftmost match of pattern in text, or nil if
// there is none.
func Search(pattern, text string, opts Options) (*Match, error) {
	re, err := compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	m, err := re.FindStringMatch(text)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	if m == nil {
		return nil, nil
	}
	return newMatch(m), nil
}

// FindAll returns every non-overlapping, left-to-right match of
// pattern in text.
func FindAll(pattern, text string, opts Options) ([]*Match, error) {
	re, err := compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	var out []*Match
	m, err := re.FindStringMatch(text)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	for m != nil {
		out = append(out, newMatch(m))
		m, err = re.FindNextMatch(m)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
	}
	return out, nil
}
