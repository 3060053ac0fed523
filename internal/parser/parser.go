package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parser parses source in one language. A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
	lang   *Language
}

// New creates a new Parser for the given language
func New(lang *Language) *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(lang.grammar())
	return &Parser{
		parser: parser,
		lang:   lang,
	}
}

// Close frees the underlying tree-sitter parser. It is safe to call more than once.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseResult represents the result of parsing source code
type ParseResult struct {
	Tree       *sitter.Tree
	RootNode   *sitter.Node
	SourceCode []byte
}

// Parse parses source code and returns the syntax tree. Syntax errors do not
// fail the parse; student code often does not compile and its comments are
// still recognizable.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", p.lang.Name, err)
	}

	return &ParseResult{
		Tree:       tree,
		RootNode:   tree.RootNode(),
		SourceCode: source,
	}, nil
}

// WalkTree traverses the tree and calls the visitor function for each node.
// Returning SkipChildren from the visitor prunes the node's subtree.
func (p *Parser) WalkTree(node *sitter.Node, visitor func(*sitter.Node) error) error {
	if err := visitor(node); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		if err := p.WalkTree(node.Child(i), visitor); err != nil {
			return err
		}
	}

	return nil
}

// SkipChildren is returned by a WalkTree visitor to stop descending into a node.
var SkipChildren = errors.New("skip children")

// CommentRanges returns the byte ranges of every comment node, in source order.
func (p *Parser) CommentRanges(result *ParseResult) [][2]uint32 {
	var ranges [][2]uint32
	_ = p.WalkTree(result.RootNode, func(n *sitter.Node) error {
		if p.lang.IsComment(n.Type()) {
			ranges = append(ranges, [2]uint32{n.StartByte(), n.EndByte()})
			return SkipChildren
		}
		return nil
	})
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })
	return ranges
}

// StripComments removes every comment from source, replacing each with a
// single space so the tokens on either side stay separate. ok is false when
// path has no supported grammar.
func StripComments(ctx context.Context, path string, source []byte) (stripped []byte, ok bool, err error) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, false, nil
	}

	p := New(lang)
	defer p.Close()

	result, err := p.Parse(ctx, source)
	if err != nil {
		return nil, true, err
	}
	defer result.Tree.Close()

	ranges := p.CommentRanges(result)
	if len(ranges) == 0 {
		return source, true, nil
	}

	out := make([]byte, 0, len(source))
	var last uint32
	for _, r := range ranges {
		if r[0] < last {
			continue
		}
		out = append(out, source[last:r[0]]...)
		out = append(out, ' ')
		last = r[1]
	}
	out = append(out, source[last:]...)
	return out, true, nil
}
