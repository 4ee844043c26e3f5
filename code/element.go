// Package code defines the element tree produced by the parsers, reordered by
// the arranger and rendered by the writers.
package code

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindNotSpecified Kind = iota
	KindUsing
	KindAttribute
	KindComment
	KindNamespace
	KindType
	KindDelegate
	KindEvent
	KindField
	KindConstructor
	KindProperty
	KindMethod
	KindRegion
	KindConditionDirective
	KindGroup
)

var kindNames = map[Kind]string{
	KindNotSpecified:       "NotSpecified",
	KindUsing:              "Using",
	KindAttribute:          "Attribute",
	KindComment:            "Comment",
	KindNamespace:          "Namespace",
	KindType:               "Type",
	KindDelegate:           "Delegate",
	KindEvent:              "Event",
	KindField:              "Field",
	KindConstructor:        "Constructor",
	KindProperty:           "Property",
	KindMethod:             "Method",
	KindRegion:             "Region",
	KindConditionDirective: "ConditionDirective",
	KindGroup:              "Group",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Kinds returns the names of all element kinds, in declaration order.
func Kinds() []string {
	names := make([]string, 0, len(kindNames))
	for k := KindNotSpecified; k <= KindGroup; k++ {
		names = append(names, kindNames[k])
	}
	return names
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return KindNotSpecified, rangeErrorf("unknown element type %q", s)
}

// Spacing records how an element was separated from whatever preceded it in
// the source.
type Spacing int

const (
	// SpacingDefault leaves the separation to the writer's layout rules.
	SpacingDefault Spacing = iota
	// SpacingNone means the element started on the very next line.
	SpacingNone
	// SpacingBlank means at least one blank line came before the element.
	SpacingBlank
)

type TypeParameter struct {
	Name        string
	Constraints []string
}

// Element is a node of the code tree. Which fields are meaningful depends on
// Kind; everything else is left at its zero value.
type Element struct {
	Kind Kind
	Name string

	HeaderComments  []*Element
	TrailingComment *Element
	Attributes      []*Element
	Children        []*Element

	// Spacing is the separation before the element, EndSpacing the one
	// between the last child and the closing directive of a region or
	// conditional branch.
	Spacing    Spacing
	EndSpacing Spacing

	// BraceComment is a comment on the same line as the opening brace of a
	// namespace or type.
	BraceComment *Element

	Access         Access
	Modifiers      Modifiers
	Type           string
	TypeKind       TypeKind
	TypeParameters []TypeParameter
	Implements     []string

	Parameters      *Text
	IndexParameters *Text
	Body            *Text
	ExpressionBody  *Text
	Initializer     *Text
	Reference       *Text
	Operator        OperatorKind

	// Using
	Redefine string
	Movable  bool
	Global   bool

	// Attribute section target, e.g. "assembly" or "return".
	Target string

	// Comment
	Text        *Text
	CommentKind CommentKind

	// Region
	DirectivesEnabled bool

	// ConditionDirective
	Condition string
	Else      *Element

	// Namespace
	FileScoped bool

	// Group
	Separator string
}

func (e *Element) AddChild(child *Element) {
	e.Children = append(e.Children, child)
}

// Clone returns a deep copy of the element structure. Text payloads are
// immutable and shared between the copies.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	c.HeaderComments = cloneAll(e.HeaderComments)
	c.TrailingComment = e.TrailingComment.Clone()
	c.BraceComment = e.BraceComment.Clone()
	c.Attributes = cloneAll(e.Attributes)
	c.Children = cloneAll(e.Children)
	c.Else = e.Else.Clone()
	if e.TypeParameters != nil {
		c.TypeParameters = make([]TypeParameter, len(e.TypeParameters))
		for i, tp := range e.TypeParameters {
			c.TypeParameters[i] = TypeParameter{
				Name:        tp.Name,
				Constraints: append([]string(nil), tp.Constraints...),
			}
		}
	}
	if e.Implements != nil {
		c.Implements = append([]string(nil), e.Implements...)
	}
	return &c
}

func cloneAll(elems []*Element) []*Element {
	if elems == nil {
		return nil
	}
	out := make([]*Element, len(elems))
	for i, e := range elems {
		out[i] = e.Clone()
	}
	return out
}

// CloneAll deep-copies a sequence of root elements.
func CloneAll(elems []*Element) []*Element {
	return cloneAll(elems)
}

// IsStatic reports whether the element is a static or constant member.
func (e *Element) IsStatic() bool {
	return e.Modifiers&(Static|Constant) != 0
}

func (e *Element) String() string {
	var sb strings.Builder
	e.dump(&sb, 0)
	return sb.String()
}

// Dump renders a sequence of root elements as an indented outline.
func Dump(elems []*Element) string {
	var sb strings.Builder
	for _, e := range elems {
		e.dump(&sb, 0)
	}
	return sb.String()
}

func (e *Element) dump(sb *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	sb.WriteString(prefix)
	sb.WriteString(e.Kind.String())
	switch e.Kind {
	case KindType:
		sb.WriteString(" " + e.TypeKind.String())
	case KindComment:
		sb.WriteString(" " + e.CommentKind.String())
	}
	if e.Access != AccessNone {
		sb.WriteString(" [" + e.Access.String() + "]")
	}
	if e.Modifiers != 0 {
		sb.WriteString(" {" + e.Modifiers.String() + "}")
	}
	if e.Type != "" {
		sb.WriteString(" " + e.Type)
	}
	if e.Name != "" {
		sb.WriteString(" " + e.Name)
	}
	if e.Kind == KindConditionDirective {
		sb.WriteString(" " + e.Condition)
	}
	if e.Kind == KindComment && e.Text != nil {
		sb.WriteString(" " + fmt.Sprintf("%q", e.Text.String()))
	}
	sb.WriteString("\n")
	if e.BraceComment != nil {
		sb.WriteString(prefix + "  Brace\n")
		e.BraceComment.dump(sb, indent+2)
	}
	for _, c := range e.HeaderComments {
		c.dump(sb, indent+2)
	}
	for _, a := range e.Attributes {
		a.dump(sb, indent+2)
	}
	for _, c := range e.Children {
		c.dump(sb, indent+1)
	}
	if e.Else != nil {
		sb.WriteString(prefix + "Else\n")
		e.Else.dump(sb, indent+1)
	}
}
