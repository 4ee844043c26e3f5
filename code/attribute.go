package code

import (
	"fmt"
	"strings"
)

// ElementAttribute names a derived property of an element that conditions,
// sort keys and group keys can refer to.
type ElementAttribute int

const (
	AttrNone ElementAttribute = iota
	AttrName
	AttrAccess
	AttrElementType
	AttrType
	AttrAttributes
	AttrModifier
)

var elementAttributeNames = map[ElementAttribute]string{
	AttrNone:        "None",
	AttrName:        "Name",
	AttrAccess:      "Access",
	AttrElementType: "ElementType",
	AttrType:        "Type",
	AttrAttributes:  "Attributes",
	AttrModifier:    "Modifier",
}

func (a ElementAttribute) String() string {
	if name, ok := elementAttributeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ElementAttribute(%d)", int(a))
}

// ElementAttributes lists the attribute names that can be referenced.
func ElementAttributes() []string {
	names := make([]string, 0, len(elementAttributeNames)-1)
	for a := AttrName; a <= AttrModifier; a++ {
		names = append(names, elementAttributeNames[a])
	}
	return names
}

func ParseElementAttribute(s string) (ElementAttribute, error) {
	for a, name := range elementAttributeNames {
		if strings.EqualFold(name, s) {
			return a, nil
		}
	}
	return AttrNone, rangeErrorf("unknown element attribute %q", s)
}

// AttributeValue renders attr of e as text. Enumerated values use their
// names ("Protected, Internal"), lists are comma separated.
func AttributeValue(e *Element, attr ElementAttribute) (string, error) {
	if e == nil {
		return "", nil
	}
	switch attr {
	case AttrNone:
		return "", nil
	case AttrName:
		return e.Name, nil
	case AttrAccess:
		return e.Access.String(), nil
	case AttrElementType:
		return e.Kind.String(), nil
	case AttrType:
		switch e.Kind {
		case KindType:
			return e.TypeKind.String(), nil
		case KindUsing:
			switch {
			case e.Redefine != "":
				return "Alias", nil
			case e.Modifiers&Static != 0:
				return "Static", nil
			}
			return "Namespace", nil
		}
		return e.Type, nil
	case AttrAttributes:
		return strings.Join(AttributeNames(e), ", "), nil
	case AttrModifier:
		return e.Modifiers.String(), nil
	}
	return "", rangeErrorf("unknown element attribute %d", int(attr))
}

// AttributeNames returns the names of all attributes applied to e, across
// all attribute sections, in source order.
func AttributeNames(e *Element) []string {
	var names []string
	for _, section := range e.Attributes {
		if len(section.Children) == 0 {
			names = append(names, section.Name)
			continue
		}
		for _, a := range section.Children {
			names = append(names, a.Name)
		}
	}
	return names
}
