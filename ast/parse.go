package ast

import (
	"encoding/xml"
	"strings"
)

// Parse decodes a scraper definition document into a FunctionTable.
// Each direct child of the document root becomes a Function keyed by
// its element tag name; nested <RegExp> elements become AST children
// in document order, and each RegExp's first <expression> child
// supplies its Expression (absent or empty text yields
// DefaultExpression()).
func Parse(data []byte) (FunctionTable, error) {
	var root rawElement
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, &DefinitionError{Element: "document", Reason: err.Error()}
	}

	table := make(FunctionTable)
	for _, child := range root.Children {
		fn, err := parseFunction(child)
		if err != nil {
			return nil, err
		}
		table[fn.Name] = fn
	}
	return table, nil
}

func parseFunction(e rawElement) (*Function, error) {
	destRaw, ok := e.attr("dest")
	if !ok {
		return nil, &DefinitionError{Element: e.XMLName.Local, Attr: "dest", Reason: "required attribute missing"}
	}
	dest, err := parseDest(destRaw)
	if err != nil {
		return nil, &DefinitionError{Element: e.XMLName.Local, Attr: "dest", Reason: err.Error()}
	}

	fn := &Function{
		Name:         e.XMLName.Local,
		Dest:         dest,
		ClearBuffers: parseYesNo(attrOr(e, "clearbuffers", "yes"), true),
	}
	for _, child := range e.Children {
		if child.XMLName.Local != "RegExp" {
			continue
		}
		node, err := parseRegExp(child)
		if err != nil {
			return nil, err
		}
		fn.Children = append(fn.Children, node)
	}
	return fn, nil
}

func parseRegExp(e rawElement) (*RegExpNode, error) {
	inputRaw, ok := e.attr("input")
	if !ok {
		return nil, &DefinitionError{Element: "RegExp", Attr: "input", Reason: "required attribute missing"}
	}
	input, err := parseInput(inputRaw)
	if err != nil {
		return nil, &DefinitionError{Element: "RegExp", Attr: "input", Reason: err.Error()}
	}

	destRaw, ok := e.attr("dest")
	if !ok {
		return nil, &DefinitionError{Element: "RegExp", Attr: "dest", Reason: "required attribute missing"}
	}
	dest, err := parseDest(destRaw)
	if err != nil {
		return nil, &DefinitionError{Element: "RegExp", Attr: "dest", Reason: err.Error()}
	}

	output, _ := e.attr("output")
	node := &RegExpNode{Input: input, Output: output, Dest: dest}
	if cond, ok := e.attr("conditional"); ok {
		node.Conditional = cond
		node.HasConditional = true
	}

	expr := DefaultExpression()
	haveExpr := false
	for _, child := range e.Children {
		switch child.XMLName.Local {
		case "expression":
			if !haveExpr {
				expr = parseExpression(child)
				haveExpr = true
			}
		case "RegExp":
			childNode, err := parseRegExp(child)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)
		}
	}
	node.Expression = expr
	return node, nil
}

func parseExpression(e rawElement) Expression {
	pattern := strings.TrimSpace(e.Text)
	if pattern == "" {
		pattern = "(.*)"
	}

	expr := Expression{
		Pattern:       pattern,
		Repeat:        parseYesNo(attrOr(e, "repeat", "no"), false),
		NoClean:       parseIndexSet(attrOr(e, "noclean", "")),
		Trim:          parseIndexSet(attrOr(e, "trim", "")),
		Encode:        parseIndexSet(attrOr(e, "encode", "")),
		FixChars:      parseIndexSet(attrOr(e, "fixchars", "")),
		Clear:         parseYesNo(attrOr(e, "clear", "no"), false),
		CaseSensitive: parseYesNo(attrOr(e, "cs", "no"), false),
	}
	if compare, ok := e.attr("compare"); ok {
		expr.Compare = compare
	}
	if utf8Raw, ok := e.attr("utf8"); ok {
		expr.HasUTF8 = true
		expr.UTF8 = parseYesNo(utf8Raw, false)
	}
	return expr
}
