package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/arrange/code"
)

// LineEncoder lists every declaration on its own tab separated line:
// qualified name, kind, access, modifiers and type. Comments, regions and
// groups are not listed; their contents are.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(elems []*code.Element) error {
	text, err := e.MarshalText(elems)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(elems []*code.Element) ([]byte, error) {
	var sb strings.Builder
	e.list(&sb, "", elems)
	return []byte(sb.String()), nil
}

func (e *LineEncoder) list(sb *strings.Builder, scope string, elems []*code.Element) {
	for _, el := range elems {
		if el == nil {
			continue
		}
		switch el.Kind {
		case code.KindComment:
			continue
		case code.KindRegion, code.KindGroup:
			e.list(sb, scope, el.Children)
			continue
		case code.KindConditionDirective:
			for b := el; b != nil; b = b.Else {
				e.list(sb, scope, b.Children)
			}
			continue
		}

		name := el.Name
		if scope != "" {
			name = scope + "." + el.Name
		}
		fmt.Fprintf(sb, "%s\t%s\t%s\t%s\t%s\n",
			name,
			e.kind(el),
			el.Access,
			el.Modifiers,
			el.Type,
		)
		if el.Kind == code.KindNamespace || el.Kind == code.KindType {
			e.list(sb, name, el.Children)
		}
	}
}

func (e *LineEncoder) kind(el *code.Element) string {
	switch {
	case el.Kind == code.KindType:
		return strings.ToLower(el.TypeKind.String())
	case el.Kind == code.KindMethod && el.Operator != code.OperatorNone:
		return "operator"
	}
	return strings.ToLower(el.Kind.String())
}
