package code

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRange is wrapped by every error caused by an enum value outside its
// declared set.
var ErrRange = errors.New("value out of range")

// ErrInvalidArgument is wrapped by errors caused by missing or malformed
// input, such as a nil element.
var ErrInvalidArgument = errors.New("invalid argument")

func rangeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRange, fmt.Sprintf(format, args...))
}

// RangeError builds an error wrapping ErrRange.
func RangeError(format string, args ...any) error {
	return rangeErrorf(format, args...)
}

type Access int

const (
	AccessNone      Access = 0
	AccessPrivate   Access = 1
	AccessProtected Access = 2
	AccessInternal  Access = 4
	AccessPublic    Access = 8
)

var accessOrder = []struct {
	flag Access
	name string
}{
	{AccessPrivate, "Private"},
	{AccessProtected, "Protected"},
	{AccessInternal, "Internal"},
	{AccessPublic, "Public"},
}

func (a Access) String() string {
	if a == AccessNone {
		return "None"
	}
	var parts []string
	for _, o := range accessOrder {
		if a&o.flag != 0 {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, ", ")
}

// Keywords renders the access as source keywords, e.g. "protected internal".
func (a Access) Keywords() string {
	var parts []string
	if a&AccessPublic != 0 {
		parts = append(parts, "public")
	}
	if a&AccessPrivate != 0 {
		parts = append(parts, "private")
	}
	if a&AccessProtected != 0 {
		parts = append(parts, "protected")
	}
	if a&AccessInternal != 0 {
		parts = append(parts, "internal")
	}
	return strings.Join(parts, " ")
}

// ParseAccess accepts a single name or a comma separated combination.
func ParseAccess(s string) (Access, error) {
	var a Access
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if strings.EqualFold(part, "None") {
			continue
		}
		found := false
		for _, o := range accessOrder {
			if strings.EqualFold(o.name, part) {
				a |= o.flag
				found = true
			}
		}
		if !found {
			return AccessNone, rangeErrorf("unknown access %q", part)
		}
	}
	return a, nil
}

type Modifiers int

const (
	Static Modifiers = 1 << iota
	Sealed
	Abstract
	Partial
	Unsafe
	New
	Virtual
	Override
	ReadOnly
	Constant
	Volatile
	External
	Async
	Required
	Ref
)

// modifierOrder is the order modifiers are written in.
var modifierOrder = []struct {
	flag    Modifiers
	name    string
	keyword string
}{
	{New, "New", "new"},
	{Static, "Static", "static"},
	{Constant, "Constant", "const"},
	{External, "External", "extern"},
	{Virtual, "Virtual", "virtual"},
	{Abstract, "Abstract", "abstract"},
	{Sealed, "Sealed", "sealed"},
	{Override, "Override", "override"},
	{ReadOnly, "ReadOnly", "readonly"},
	{Volatile, "Volatile", "volatile"},
	{Unsafe, "Unsafe", "unsafe"},
	{Async, "Async", "async"},
	{Required, "Required", "required"},
	{Ref, "Ref", "ref"},
	{Partial, "Partial", "partial"},
}

func (m Modifiers) String() string {
	if m == 0 {
		return "None"
	}
	var parts []string
	for _, o := range modifierOrder {
		if m&o.flag != 0 {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, ", ")
}

func (m Modifiers) Keywords() []string {
	var parts []string
	for _, o := range modifierOrder {
		if m&o.flag != 0 {
			parts = append(parts, o.keyword)
		}
	}
	return parts
}

// ModifierForKeyword maps a source keyword to its modifier flag.
func ModifierForKeyword(kw string) (Modifiers, bool) {
	for _, o := range modifierOrder {
		if o.keyword == kw {
			return o.flag, true
		}
	}
	return 0, false
}

type TypeKind int

const (
	TypeClass TypeKind = iota
	TypeStruct
	TypeInterface
	TypeEnum
)

var typeKindNames = map[TypeKind]string{
	TypeClass:     "Class",
	TypeStruct:    "Struct",
	TypeInterface: "Interface",
	TypeEnum:      "Enum",
}

func (t TypeKind) String() string {
	if name, ok := typeKindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TypeKind(%d)", int(t))
}

// Keyword returns the declaration keyword for the type kind.
func (t TypeKind) Keyword() (string, error) {
	name, ok := typeKindNames[t]
	if !ok {
		return "", rangeErrorf("unknown type kind %d", int(t))
	}
	return strings.ToLower(name), nil
}

type CommentKind int

const (
	CommentLine CommentKind = iota
	CommentBlock
	CommentXMLLine
)

func (c CommentKind) String() string {
	switch c {
	case CommentLine:
		return "Line"
	case CommentBlock:
		return "Block"
	case CommentXMLLine:
		return "XmlLine"
	}
	return fmt.Sprintf("CommentKind(%d)", int(c))
}

type OperatorKind int

const (
	OperatorNone OperatorKind = iota
	OperatorSymbol
	OperatorImplicit
	OperatorExplicit
)

func (o OperatorKind) String() string {
	switch o {
	case OperatorNone:
		return "None"
	case OperatorSymbol:
		return "Operator"
	case OperatorImplicit:
		return "Implicit"
	case OperatorExplicit:
		return "Explicit"
	}
	return fmt.Sprintf("OperatorKind(%d)", int(o))
}
