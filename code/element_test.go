package code

import (
	"errors"
	"testing"
)

func TestAccessString(t *testing.T) {
	tests := []struct {
		access   Access
		want     string
		keywords string
	}{
		{AccessNone, "None", ""},
		{AccessPublic, "Public", "public"},
		{AccessProtected | AccessInternal, "Protected, Internal", "protected internal"},
		{AccessPrivate | AccessProtected, "Private, Protected", "private protected"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.access.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.access.Keywords(); got != tt.keywords {
				t.Errorf("Keywords() = %q, want %q", got, tt.keywords)
			}
			parsed, err := ParseAccess(tt.want)
			if err != nil {
				t.Fatalf("ParseAccess(%q): %v", tt.want, err)
			}
			if parsed != tt.access {
				t.Errorf("ParseAccess(%q) = %v, want %v", tt.want, parsed, tt.access)
			}
		})
	}
}

func TestParseAccessUnknown(t *testing.T) {
	_, err := ParseAccess("Friend")
	if !errors.Is(err, ErrRange) {
		t.Fatalf("got %v, want ErrRange", err)
	}
}

func TestModifierKeywordOrder(t *testing.T) {
	m := Partial | Static | Unsafe | New
	got := m.Keywords()
	want := []string{"new", "static", "unsafe", "partial"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("field")
	if err != nil || k != KindField {
		t.Fatalf("ParseKind(field) = %v, %v", k, err)
	}
	if _, err := ParseKind("Widget"); !errors.Is(err, ErrRange) {
		t.Fatalf("got %v, want ErrRange", err)
	}
}

func TestAttributeValue(t *testing.T) {
	attrs := &Element{Kind: KindAttribute, Children: []*Element{
		{Kind: KindAttribute, Name: "Serializable"},
		{Kind: KindAttribute, Name: "Obsolete"},
	}}
	field := &Element{
		Kind:       KindField,
		Name:       "count",
		Access:     AccessProtected | AccessInternal,
		Modifiers:  Static | ReadOnly,
		Type:       "int",
		Attributes: []*Element{attrs},
	}
	class := &Element{Kind: KindType, TypeKind: TypeInterface, Name: "IFoo"}
	alias := &Element{Kind: KindUsing, Name: "Text", Redefine: "System.Text"}

	tests := []struct {
		name string
		elem *Element
		attr ElementAttribute
		want string
	}{
		{"name", field, AttrName, "count"},
		{"access", field, AttrAccess, "Protected, Internal"},
		{"element type", field, AttrElementType, "Field"},
		{"member type", field, AttrType, "int"},
		{"type kind", class, AttrType, "Interface"},
		{"attributes", field, AttrAttributes, "Serializable, Obsolete"},
		{"modifiers", field, AttrModifier, "Static, ReadOnly"},
		{"using alias", alias, AttrType, "Alias"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AttributeValue(tt.elem, tt.attr)
			if err != nil {
				t.Fatalf("AttributeValue: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Element{
		Kind:           KindType,
		Name:           "Outer",
		TypeParameters: []TypeParameter{{Name: "T", Constraints: []string{"class"}}},
		Children:       []*Element{{Kind: KindField, Name: "a"}},
		BraceComment:   &Element{Kind: KindComment, Name: "brace"},
	}
	c := orig.Clone()
	c.Children[0].Name = "b"
	c.TypeParameters[0].Constraints[0] = "struct"
	c.BraceComment.Name = "moved"
	if orig.Children[0].Name != "a" {
		t.Errorf("clone shares children")
	}
	if orig.BraceComment.Name != "brace" {
		t.Errorf("clone shares the brace comment")
	}
	if orig.TypeParameters[0].Constraints[0] != "class" {
		t.Errorf("clone shares constraints")
	}
}

func TestTextString(t *testing.T) {
	txt := &Text{Lines: []Line{
		{Content: "if (x)"},
		{Indent: 4, Content: "return;"},
		{Content: ""},
		{Indent: 8, Content: "  raw", Verbatim: true},
	}}
	want := "if (x)\n    return;\n\n  raw"
	if got := txt.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if txt.Empty() {
		t.Errorf("Empty() = true")
	}
	if !(&Text{Lines: []Line{{Content: "  "}}}).Empty() {
		t.Errorf("blank text not empty")
	}
}
