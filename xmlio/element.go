// Package xmlio parses and serializes the generic XML trees the
// evaluator and chain resolver operate on, and pretty-prints a final
// result document.
package xmlio

import "encoding/xml"

// Element is a generic XML tree node: every child, whatever its tag
// name, decodes into the same shape, and a node's own XMLName (rather
// than the Go field holding it) controls how it round-trips back out
// on Marshal.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Element  `xml:",any"`
}

// Parse decodes an XML fragment into its root Element.
func Parse(data []byte) (*Element, error) {
	var e Element
	if err := xml.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Serialize renders e back to XML text.
func Serialize(e *Element) ([]byte, error) {
	return xml.Marshal(e)
}

// Attr returns the value of attribute name on e, and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
