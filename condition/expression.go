// Package condition implements the filter language used by arrangement
// rules, e.g.
//
//	$(Access) == 'Public' And !($(Name) =~ '^_')
//
// Expressions compare element or file attributes against quoted strings and
// combine comparisons with And, Or and negation.
package condition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dhamidi/arrange/code"
)

var (
	// ErrInvalidArgument is wrapped by malformed expressions and by
	// evaluation against a nil expression or subject.
	ErrInvalidArgument = code.ErrInvalidArgument

	// ErrRange is wrapped when an operator or attribute value is not one of
	// the declared constants.
	ErrRange = code.ErrRange
)

type Scope int

const (
	ScopeElement Scope = iota
	ScopeParent
	ScopeFile
)

func (s Scope) String() string {
	switch s {
	case ScopeElement:
		return "Element"
	case ScopeParent:
		return "Parent"
	case ScopeFile:
		return "File"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpContains
	OpMatches
	OpAnd
	OpOr
)

var operatorSymbols = map[Operator]string{
	OpEqual:    "==",
	OpNotEqual: "!=",
	OpContains: ":",
	OpMatches:  "=~",
	OpAnd:      "And",
	OpOr:       "Or",
}

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

type FileAttribute int

const (
	FileName FileAttribute = iota
	FilePath
	FileExtension
	FileAttributes
)

var fileAttributeNames = map[FileAttribute]string{
	FileName:       "Name",
	FilePath:       "Path",
	FileExtension:  "Extension",
	FileAttributes: "Attributes",
}

func (f FileAttribute) String() string {
	if s, ok := fileAttributeNames[f]; ok {
		return s
	}
	return fmt.Sprintf("FileAttribute(%d)", int(f))
}

// Expression is a node of a parsed condition: *Binary, *Not,
// *AttributeRef or *Literal.
type Expression interface {
	String() string
	expression()
}

type Binary struct {
	Op    Operator
	Left  Expression
	Right Expression

	re *regexp.Regexp
}

type Not struct {
	Operand Expression
}

type AttributeRef struct {
	Scope   Scope
	Element code.ElementAttribute
	File    FileAttribute
}

type Literal struct {
	Value string
}

func (*Binary) expression()       {}
func (*Not) expression()          {}
func (*AttributeRef) expression() {}
func (*Literal) expression()      {}

func (b *Binary) String() string {
	switch b.Op {
	case OpAnd, OpOr:
		return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
	}
	return b.Left.String() + " " + b.Op.String() + " " + b.Right.String()
}

func (n *Not) String() string {
	s := n.Operand.String()
	if !strings.HasPrefix(s, "(") {
		s = "(" + s + ")"
	}
	return "!" + s
}

func (a *AttributeRef) String() string {
	switch a.Scope {
	case ScopeParent:
		return "$(Parent." + a.Element.String() + ")"
	case ScopeFile:
		return "$(File." + a.File.String() + ")"
	}
	return "$(" + a.Element.String() + ")"
}

func (l *Literal) String() string {
	return "'" + strings.ReplaceAll(l.Value, "'", "''") + "'"
}

// RequiredScope reports the widest element scope the expression reads:
// ScopeParent if any attribute reference is parent-scoped, ScopeElement
// otherwise.
func RequiredScope(expr Expression) Scope {
	scope := ScopeElement
	walk(expr, func(a *AttributeRef) {
		if a.Scope == ScopeParent {
			scope = ScopeParent
		}
	})
	return scope
}

func walk(expr Expression, fn func(*AttributeRef)) {
	switch e := expr.(type) {
	case *Binary:
		walk(e.Left, fn)
		walk(e.Right, fn)
	case *Not:
		walk(e.Operand, fn)
	case *AttributeRef:
		fn(e)
	}
}
