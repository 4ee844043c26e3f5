package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/arrange/code"
)

// TreeJSONEncoder dumps an element tree as indented JSON.
type TreeJSONEncoder struct {
	w io.Writer
}

func NewTreeJSONEncoder(w io.Writer) *TreeJSONEncoder {
	return &TreeJSONEncoder{w: w}
}

func (e *TreeJSONEncoder) Encode(elems []*code.Element) error {
	text, err := e.MarshalText(elems)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *TreeJSONEncoder) MarshalText(elems []*code.Element) ([]byte, error) {
	return json.MarshalIndent(elementsToJSON(elems), "", "  ")
}

type treeJSONElement struct {
	Kind              string              `json:"kind"`
	Name              string              `json:"name,omitempty"`
	Access            string              `json:"access,omitempty"`
	Modifiers         string              `json:"modifiers,omitempty"`
	Type              string              `json:"type,omitempty"`
	TypeKind          string              `json:"typeKind,omitempty"`
	TypeParameters    []treeJSONTypeParam `json:"typeParameters,omitempty"`
	Implements        []string            `json:"implements,omitempty"`
	Operator          string              `json:"operator,omitempty"`
	Parameters        string              `json:"parameters,omitempty"`
	IndexParameters   string              `json:"indexParameters,omitempty"`
	Initializer       string              `json:"initializer,omitempty"`
	ExpressionBody    string              `json:"expressionBody,omitempty"`
	Reference         string              `json:"reference,omitempty"`
	Body              string              `json:"body,omitempty"`
	Redefine          string              `json:"redefine,omitempty"`
	Global            bool                `json:"global,omitempty"`
	Movable           bool                `json:"movable,omitempty"`
	Target            string              `json:"target,omitempty"`
	CommentKind       string              `json:"commentKind,omitempty"`
	Text              string              `json:"text,omitempty"`
	Condition         string              `json:"condition,omitempty"`
	FileScoped        bool                `json:"fileScoped,omitempty"`
	DirectivesEnabled bool                `json:"directivesEnabled,omitempty"`
	Separator         string              `json:"separator,omitempty"`
	HeaderComments    []*treeJSONElement  `json:"headerComments,omitempty"`
	TrailingComment   *treeJSONElement    `json:"trailingComment,omitempty"`
	BraceComment      *treeJSONElement    `json:"braceComment,omitempty"`
	Attributes        []*treeJSONElement  `json:"attributes,omitempty"`
	Children          []*treeJSONElement  `json:"children,omitempty"`
	Else              *treeJSONElement    `json:"else,omitempty"`
}

type treeJSONTypeParam struct {
	Name        string   `json:"name"`
	Constraints []string `json:"constraints,omitempty"`
}

func elementsToJSON(elems []*code.Element) []*treeJSONElement {
	out := make([]*treeJSONElement, 0, len(elems))
	for _, e := range elems {
		if e != nil {
			out = append(out, elementToJSON(e))
		}
	}
	return out
}

func elementToJSON(e *code.Element) *treeJSONElement {
	je := &treeJSONElement{
		Kind:              e.Kind.String(),
		Name:              e.Name,
		Type:              e.Type,
		Implements:        e.Implements,
		Parameters:        e.Parameters.String(),
		IndexParameters:   e.IndexParameters.String(),
		Initializer:       e.Initializer.String(),
		ExpressionBody:    e.ExpressionBody.String(),
		Reference:         e.Reference.String(),
		Body:              e.Body.String(),
		Redefine:          e.Redefine,
		Global:            e.Global,
		Movable:           e.Movable,
		Target:            e.Target,
		Text:              e.Text.String(),
		Condition:         e.Condition,
		FileScoped:        e.FileScoped,
		DirectivesEnabled: e.DirectivesEnabled,
		Separator:         e.Separator,
	}

	if e.Access != code.AccessNone {
		je.Access = e.Access.String()
	}
	if e.Modifiers != 0 {
		je.Modifiers = e.Modifiers.String()
	}
	switch e.Kind {
	case code.KindType:
		je.TypeKind = e.TypeKind.String()
	case code.KindComment:
		je.CommentKind = e.CommentKind.String()
	case code.KindMethod:
		if e.Operator != code.OperatorNone {
			je.Operator = e.Operator.String()
		}
	}
	for _, tp := range e.TypeParameters {
		je.TypeParameters = append(je.TypeParameters, treeJSONTypeParam{Name: tp.Name, Constraints: tp.Constraints})
	}

	if len(e.HeaderComments) > 0 {
		je.HeaderComments = elementsToJSON(e.HeaderComments)
	}
	if e.TrailingComment != nil {
		je.TrailingComment = elementToJSON(e.TrailingComment)
	}
	if e.BraceComment != nil {
		je.BraceComment = elementToJSON(e.BraceComment)
	}
	if len(e.Attributes) > 0 {
		je.Attributes = elementsToJSON(e.Attributes)
	}
	if len(e.Children) > 0 {
		je.Children = elementsToJSON(e.Children)
	}
	if e.Else != nil {
		je.Else = elementToJSON(e.Else)
	}
	return je
}
