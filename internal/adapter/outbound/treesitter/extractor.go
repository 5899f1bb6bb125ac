// Package treesitter extracts function and method metadata from source files
// with tree-sitter grammars from go-sitter-forest.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vertextester/internal/application/common/slogger"
	"vertextester/internal/domain/entity"
	"vertextester/internal/domain/errors/domain"
	"vertextester/internal/domain/valueobject"

	forest "github.com/alexaandru/go-sitter-forest"
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

type walkFunc func(c *collector, n tree_sitter.Node, class string)

type grammarDef struct {
	grammar string
	walk    walkFunc
}

// Extractor implements outbound.CodeExtractor. A fresh parser is created per
// call, so one Extractor may be shared across goroutines.
type Extractor struct {
	grammars map[string]grammarDef
}

// NewExtractor returns an extractor for Python, Java, JavaScript and TypeScript.
func NewExtractor() *Extractor {
	return &Extractor{
		grammars: map[string]grammarDef{
			valueobject.LanguagePython:     {grammar: "python", walk: walkPython},
			valueobject.LanguageJava:       {grammar: "java", walk: walkJava},
			valueobject.LanguageJavaScript: {grammar: "javascript", walk: walkJavaScript},
			valueobject.LanguageTypeScript: {grammar: "typescript", walk: walkJavaScript},
		},
	}
}

// Supports reports whether lang has a grammar.
func (e *Extractor) Supports(lang valueobject.Language) bool {
	_, ok := e.grammars[lang.Name()]
	return ok
}

// Extract parses source and returns its blocks in source order. Sources with
// syntax errors are rejected rather than partially extracted.
func (e *Extractor) Extract(
	ctx context.Context,
	lang valueobject.Language,
	filePath string,
	source []byte,
) ([]entity.CodeBlock, error) {
	gs, ok := e.grammars[lang.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, lang.Extension())
	}

	start := time.Now()
	tree, err := parse(ctx, gs.grammar, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if bad, found := firstErrorNode(root); found {
			return nil, fmt.Errorf("%w: %s line %d, column %d",
				domain.ErrSourceSyntax, filePath, bad.StartPoint().Row+1, bad.StartPoint().Column+1)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceSyntax, filePath)
	}

	c := &collector{filePath: filePath, language: lang.ID(), source: source}
	gs.walk(c, root, "")

	slogger.Debug(ctx, "Extracted code blocks", slogger.Fields{
		"file":     filePath,
		"language": lang.Name(),
		"blocks":   len(c.blocks),
		"duration": time.Since(start).String(),
	})

	return c.blocks, nil
}

func parse(ctx context.Context, grammarName string, source []byte) (*tree_sitter.Tree, error) {
	grammar := forest.GetLanguage(grammarName)
	if grammar == nil {
		return nil, fmt.Errorf("tree-sitter grammar %q is not available", grammarName)
	}

	parser := tree_sitter.NewParser()
	if parser == nil {
		return nil, errors.New("failed to create tree-sitter parser")
	}
	if !parser.SetLanguage(grammar) {
		return nil, fmt.Errorf("failed to set language %s", grammarName)
	}

	tree, err := parser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", grammarName, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", grammarName)
	}
	return tree, nil
}
