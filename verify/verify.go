// Package verify re-parses arranged output with the tree-sitter C# grammar,
// an independent check that the writer produced valid source.
package verify

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

// Error locates the first syntax error in verified source. Line and Column
// are 1-based.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// CSharp returns an *Error when src does not parse as C#.
func CSharp(src []byte) error {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tree_sitter.NewLanguage(tree_sitter_csharp.Language())); err != nil {
		return fmt.Errorf("load C# grammar: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return errors.New("verify: parser returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	node := firstError(root)
	if node == nil {
		node = root
	}
	pos := node.StartPosition()
	return &Error{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: describe(node, src),
	}
}

// firstError finds the first ERROR or MISSING node in source order.
func firstError(node *tree_sitter.Node) *tree_sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

func describe(node *tree_sitter.Node, src []byte) string {
	if node.IsMissing() {
		return "missing " + node.Kind()
	}
	start, end := node.StartByte(), node.EndByte()
	if end > uint(len(src)) {
		end = uint(len(src))
	}
	text := string(src[start:end])
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Sprintf("syntax error near %q", text)
}
