// Package clean implements the per-capture post-processing pipeline:
// trim, HTML tag stripping, URL-encoding, and entity unescaping,
// applied in that fixed order according to an expression's index sets.
package clean

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pistole/scraper-parser/ast"
)

// Capture cleans a single 1-based capture value according to the
// index sets on expr. The order is fixed: trim, then tag-strip
// (unless noclean), then URL-encode, then entity-unescape.
func Capture(raw string, index int, expr ast.Expression) string {
	out := raw
	if expr.Trim.Has(index) {
		out = strings.TrimSpace(out)
	}
	if !expr.NoClean.Has(index) {
		out = StripTags(out)
	}
	if expr.Encode.Has(index) {
		out = url.QueryEscape(out)
	}
	if expr.FixChars.Has(index) {
		out = html.UnescapeString(out)
	}
	return out
}

// StripTags removes anything that parses as an HTML element, keeping
// element text content, and decodes HTML character references
// encountered along the way — a single pass over the input, matching
// the "strip + decode together" behavior the language expects.
func StripTags(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
		}
	}
	// z.Text() already unescapes entities in text nodes; UnescapeString
	// here is a no-op in the common case and a safety net otherwise.
	return html.UnescapeString(b.String())
}
