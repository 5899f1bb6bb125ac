package treesitter

import (
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

//nolint:gochecknoglobals // shared by the JavaScript and TypeScript grammars
var (
	jsClassTypes = map[string]bool{
		"class_declaration":          true,
		"abstract_class_declaration": true,
		"class":                      true,
	}
	jsFunctionDeclarations = map[string]bool{
		"function_declaration":           true,
		"generator_function_declaration": true,
	}
	jsFunctionValues = map[string]bool{
		"arrow_function":      true,
		"function_expression": true,
		"function":            true,
		"generator_function":  true,
	}
)

// walkJavaScript collects function declarations, class methods and functions
// bound to a variable or class field. It serves both JavaScript and TypeScript.
func walkJavaScript(c *collector, n tree_sitter.Node, class string) {
	switch {
	case jsClassTypes[n.Type()]:
		if name, ok := firstChildOfType(n, "type_identifier", "identifier"); ok {
			class = c.text(name)
		}
	case jsFunctionDeclarations[n.Type()]:
		if name, ok := firstChildOfType(n, "identifier"); ok {
			c.add(n, c.text(name), class, firstLine(c.text(n)), false)
		}
	case n.Type() == "method_definition":
		if _, hasBody := firstChildOfType(n, "statement_block"); hasBody {
			if name, ok := firstChildOfType(n, "property_identifier", "private_property_identifier"); ok {
				method := c.text(name)
				c.add(n, method, class, firstLine(c.text(n)), method == "constructor")
			}
		}
	case n.Type() == "variable_declarator",
		n.Type() == "field_definition",
		n.Type() == "public_field_definition":
		if bound, ok := boundFunctionName(c, n); ok {
			c.add(n, bound, class, firstLine(c.text(n)), false)
		}
	}

	for _, child := range children(n) {
		walkJavaScript(c, child, class)
	}
}

// boundFunctionName reports the binding name when the declarator's value is a function.
func boundFunctionName(c *collector, n tree_sitter.Node) (string, bool) {
	name, ok := firstChildOfType(n, "identifier", "property_identifier", "private_property_identifier")
	if !ok {
		return "", false
	}
	for _, child := range children(n) {
		if jsFunctionValues[child.Type()] {
			return c.text(name), true
		}
	}
	return "", false
}
