package ast

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pistole/scraper-parser/buffers"
)

// rawElement is a generic XML tree node: every child, regardless of
// tag name, decodes into the same shape, which is what lets one type
// walk both the function/RegExp/expression layers of a scraper
// document without a fixed schema per level.
type rawElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Text     string       `xml:",chardata"`
	Children []rawElement `xml:",any"`
}

func (e rawElement) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func attrOr(e rawElement, name, def string) string {
	if v, ok := e.attr(name); ok {
		return v
	}
	return def
}

// parseYesNo accepts "yes"/"no" (the scraper XML convention) and,
// leniently, "true"/"false"; anything else yields def.
func parseYesNo(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true":
		return true
	case "no", "false":
		return false
	default:
		return def
	}
}

// parseIndexSet turns a comma-separated list of 1-based capture
// indices (e.g. "1,3,4") into an IndexSet. An empty or
// all-unparseable input yields nil, matching IndexSet.Has's
// nil-means-empty contract.
func parseIndexSet(raw string) IndexSet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	set := make(IndexSet)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		set[n] = true
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// parseDest parses a dest attribute: an optional trailing "+" marks
// append mode, the remainder must be a decimal index in 1..20.
func parseDest(raw string) (Dest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Dest{}, errors.New("empty dest")
	}
	appendMode := strings.HasSuffix(raw, "+")
	if appendMode {
		raw = raw[:len(raw)-1]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return Dest{}, fmt.Errorf("non-integer dest %q", raw)
	}
	if n < 1 || n > buffers.MaxIndex {
		return Dest{}, fmt.Errorf("dest index %d out of range 1..%d", n, buffers.MaxIndex)
	}
	return Dest{Index: n, Append: appendMode}, nil
}

// parseInput parses a RegExp input attribute. A "$INFO[key]" form
// names a settings lookup; otherwise the surface form is "$$N" — the
// leading two characters are discarded and the remainder parsed as a
// decimal buffer index.
func parseInput(raw string) (Input, error) {
	if strings.HasPrefix(raw, "$INFO[") && strings.HasSuffix(raw, "]") {
		key := strings.TrimSuffix(strings.TrimPrefix(raw, "$INFO["), "]")
		if key == "" {
			return Input{}, errors.New("empty $INFO key")
		}
		return Input{Kind: InputSetting, SettingKey: key}, nil
	}
	if len(raw) < 3 {
		return Input{}, fmt.Errorf("invalid input %q", raw)
	}
	n, err := strconv.Atoi(raw[2:])
	if err != nil {
		return Input{}, fmt.Errorf("non-integer buffer input %q", raw)
	}
	if n < 1 || n > buffers.MaxIndex {
		return Input{}, fmt.Errorf("buffer input index %d out of range 1..%d", n, buffers.MaxIndex)
	}
	return Input{Kind: InputBuffer, BufferIndex: n}, nil
}
