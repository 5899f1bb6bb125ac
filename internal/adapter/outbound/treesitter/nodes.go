package treesitter

import (
	"strings"

	"vertextester/internal/domain/entity"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

const errorNodeType = "ERROR"

// collector accumulates blocks for one file in discovery order.
type collector struct {
	filePath string
	language string
	source   []byte
	pkg      *string
	blocks   []entity.CodeBlock
}

func (c *collector) text(n tree_sitter.Node) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(c.source)) || start > end {
		return ""
	}
	return string(c.source[start:end])
}

func (c *collector) add(n tree_sitter.Node, name, class, signature string, constructor bool) {
	c.blocks = append(c.blocks, entity.CodeBlock{
		BlockID:        entity.BlockID(c.filePath, len(c.blocks)),
		FunctionName:   name,
		ClassContext:   entity.StringPtr(class),
		PackageContext: c.pkg,
		StartLine:      int(n.StartPoint().Row) + 1,
		EndLine:        int(n.EndPoint().Row) + 1,
		Signature:      signature,
		Code:           c.text(n),
		Language:       c.language,
		IsConstructor:  constructor,
	})
}

func children(n tree_sitter.Node) []tree_sitter.Node {
	out := make([]tree_sitter.Node, 0, n.ChildCount())
	for i := range n.ChildCount() {
		child := n.Child(i)
		if !child.IsNull() {
			out = append(out, child)
		}
	}
	return out
}

func firstChildOfType(n tree_sitter.Node, types ...string) (tree_sitter.Node, bool) {
	for _, child := range children(n) {
		for _, t := range types {
			if child.Type() == t {
				return child, true
			}
		}
	}
	return tree_sitter.Node{}, false
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(n tree_sitter.Node) (tree_sitter.Node, bool) {
	if n.Type() == errorNodeType || n.IsMissing() {
		return n, true
	}
	for _, child := range children(n) {
		if found, ok := firstErrorNode(child); ok {
			return found, true
		}
	}
	return tree_sitter.Node{}, false
}

// firstLine returns the first non-blank line of code, trimmed.
func firstLine(code string) string {
	for _, line := range strings.Split(code, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
