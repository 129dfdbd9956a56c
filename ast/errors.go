package ast

import "fmt"

// DefinitionError reports a malformed scraper definition discovered at
// load time: invalid XML, a missing required attribute, or a
// non-integer dest/input. It is fatal — Parse returns it directly
// rather than accumulating it as a diagnostic, since there is no
// function table to evaluate against until it is fixed.
type DefinitionError struct {
	Element string
	Attr    string
	Reason  string
}

func (e *DefinitionError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("scraper definition: <%s>: %s", e.Element, e.Reason)
	}
	return fmt.Sprintf("scraper definition: <%s>: attribute %q: %s", e.Element, e.Attr, e.Reason)
}
