// Package parser is the tree-sitter C/C++ front-end.
//
// The parser package wraps the tree-sitter library and builds, on top of
// the raw syntax tree, the semantic cursor tree described by package
// frontend: declarations with USRs, resolved types, record layouts,
// template instantiations, evaluated constants and doc comments.
package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Language represents a supported source language.
type Language string

const (
	// C represents the C programming language.
	C Language = "c"
	// Cpp represents the C++ programming language.
	Cpp Language = "cpp"
)

// Parser wraps tree-sitter for code parsing.
type Parser struct {
	parser *sitter.Parser
	lang   Language
}

// ParseResult contains the parsed syntax tree and metadata.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the tree.
	Root *sitter.Node
	// Source is the buffer that was parsed.
	Source []byte
	// FilePath is the path to the source file (empty for in-memory parsing).
	FilePath string
	// Language is the language of the source.
	Language Language
}

// NewParser creates a parser for the given language.
// Returns an UnsupportedLanguageError if the language is not supported.
func NewParser(lang Language) (*Parser, error) {
	grammar := lang.grammar()
	if grammar == nil {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	p := sitter.NewParser()
	p.SetLanguage(grammar)
	return &Parser{
		parser: p,
		lang:   lang,
	}, nil
}

// grammar returns the tree-sitter grammar of lang, or nil.
func (lang Language) grammar() *sitter.Language {
	switch lang {
	case C:
		return c.GetLanguage()
	case Cpp:
		return cpp.GetLanguage()
	}
	return nil
}

// ParseCtx parses source code, giving up when ctx is cancelled.
func (p *Parser) ParseCtx(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{
			Message: err.Error(),
		}
	}

	return &ParseResult{
		Tree:     tree,
		Root:     tree.RootNode(),
		Source:   source,
		Language: p.lang,
	}, nil
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors returns true if the parse tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// WalkNodes traverses the tree depth-first, calling the visitor function
// for each node. If the visitor returns false, traversal stops.
func (r *ParseResult) WalkNodes(visitor func(*sitter.Node) bool) {
	if r.Root == nil {
		return
	}
	walkNode(r.Root, visitor)
}

// walkNode is a helper for depth-first traversal.
func walkNode(node *sitter.Node, visitor func(*sitter.Node) bool) bool {
	if !visitor(node) {
		return false
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if !walkNode(node.Child(int(i)), visitor) {
			return false
		}
	}
	return true
}

// LanguageFromExtension returns the language for a file extension.
// Returns empty string if the extension is not recognized.
func LanguageFromExtension(ext string) Language {
	switch ext {
	case ".c":
		return C
	case ".h", ".cpp", ".cc", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".h++", ".inl", ".ipp":
		return Cpp
	default:
		return ""
	}
}
