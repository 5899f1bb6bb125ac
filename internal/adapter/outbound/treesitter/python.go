package treesitter

import (
	"strings"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// walkPython collects every function definition, nested ones included.
// The class context is the nearest enclosing class.
func walkPython(c *collector, n tree_sitter.Node, class string) {
	switch n.Type() {
	case "class_definition":
		if name, ok := firstChildOfType(n, "identifier"); ok {
			class = c.text(name)
		}
	case "function_definition":
		if name, ok := firstChildOfType(n, "identifier"); ok {
			code := c.text(n)
			c.add(n, c.text(name), class, pythonSignature(code), false)
		}
	}

	for _, child := range children(n) {
		walkPython(c, child, class)
	}
}

// pythonSignature returns the first "def" line of a function, trimmed.
func pythonSignature(code string) string {
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "async def ") {
			return trimmed
		}
	}
	return firstLine(code)
}
