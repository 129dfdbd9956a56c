package xmlio

import (
	"fmt"
	"strings"
)

// Indent renders e as pretty-printed XML: two spaces per depth level,
// one element per line, leaf text kept inline with its tag. level is
// the starting indentation depth (0 for a document root).
func Indent(e *Element, level int) string {
	var b strings.Builder
	writeIndented(&b, e, level)
	return b.String()
}

func writeIndented(b *strings.Builder, e *Element, depth int) {
	pad := strings.Repeat("  ", depth)
	b.WriteString(pad)
	b.WriteByte('<')
	b.WriteString(e.XMLName.Local)
	for _, a := range e.Attrs {
		fmt.Fprintf(b, ` %s=%q`, a.Name.Local, a.Value)
	}

	if len(e.Children) == 0 && strings.TrimSpace(e.Text) == "" {
		b.WriteString("/>\n")
		return
	}

	b.WriteByte('>')
	if len(e.Children) == 0 {
		b.WriteString(e.Text)
		b.WriteString("</")
		b.WriteString(e.XMLName.Local)
		b.WriteString(">\n")
		return
	}

	b.WriteByte('\n')
	for _, child := range e.Children {
		writeIndented(b, &child, depth+1)
	}
	b.WriteString(pad)
	b.WriteString("</")
	b.WriteString(e.XMLName.Local)
	b.WriteString(">\n")
}
