package treesitter

import (
	"fmt"
	"strings"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

//nolint:gochecknoglobals // node types that open a class context
var javaClassTypes = map[string]bool{
	"class_declaration":  true,
	"enum_declaration":   true,
	"record_declaration": true,
}

// walkJava collects methods and constructors of classes, enums and records.
// Interfaces are skipped entirely.
func walkJava(c *collector, n tree_sitter.Node, class string) {
	switch {
	case n.Type() == "package_declaration":
		if name, ok := firstChildOfType(n, "scoped_identifier", "identifier"); ok {
			pkg := c.text(name)
			c.pkg = &pkg
		}
	case javaClassTypes[n.Type()]:
		if name, ok := firstChildOfType(n, "identifier"); ok {
			class = c.text(name)
		}
	case n.Type() == "interface_declaration":
		return
	case n.Type() == "method_declaration" && class != "":
		if name, ret, ok := javaMethodParts(n); ok {
			sig := fmt.Sprintf("public %s %s(%s)", c.text(ret), c.text(name), javaParams(c, n))
			c.add(n, c.text(name), class, sig, false)
		}
	case n.Type() == "constructor_declaration" && class != "":
		if name, ok := firstChildOfType(n, "identifier"); ok {
			sig := fmt.Sprintf("public %s(%s)", c.text(name), javaParams(c, n))
			c.add(n, c.text(name), class, sig, true)
		}
	}

	for _, child := range children(n) {
		walkJava(c, child, class)
	}
}

// javaMethodParts finds the name and return type, which precede the formal parameters.
func javaMethodParts(n tree_sitter.Node) (name, ret tree_sitter.Node, ok bool) {
	kids := children(n)
	for i, child := range kids {
		if child.Type() != "formal_parameters" {
			continue
		}
		if i < 2 || kids[i-1].Type() != "identifier" {
			return tree_sitter.Node{}, tree_sitter.Node{}, false
		}
		return kids[i-1], kids[i-2], true
	}
	return tree_sitter.Node{}, tree_sitter.Node{}, false
}

// javaParams renders "Type name" pairs without modifiers or annotations.
func javaParams(c *collector, n tree_sitter.Node) string {
	params, ok := firstChildOfType(n, "formal_parameters")
	if !ok {
		return ""
	}

	var rendered []string
	for _, p := range children(params) {
		if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
			continue
		}
		var parts []string
		for _, part := range children(p) {
			if part.Type() == "modifiers" {
				continue
			}
			parts = append(parts, collapseSpace(c.text(part)))
		}
		rendered = append(rendered, strings.ReplaceAll(strings.Join(parts, " "), " ...", "..."))
	}
	return strings.Join(rendered, ", ")
}
