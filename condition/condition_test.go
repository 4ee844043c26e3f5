package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/arrange/code"
)

func field(name string, access code.Access) *code.Element {
	return &code.Element{Kind: code.KindField, Name: name, Access: access, Type: "int"}
}

func TestEvaluateComparisons(t *testing.T) {
	parent := &code.Element{Kind: code.KindType, TypeKind: code.TypeInterface, Name: "IFoo"}
	elem := field("_count", code.AccessPrivate)
	elem.Modifiers = code.Static

	tests := []struct {
		expr string
		want bool
	}{
		{"$(Name) == '_count'", true},
		{"$(Name) != '_count'", false},
		{"$(Name) : 'coun'", true},
		{"$(Name) =~ '^_'", true},
		{"$(Element.Access) == 'Private'", true},
		{"$(Modifier) : 'Static'", true},
		{"$(ElementType) == 'Field'", true},
		{"$(Parent.Type) == 'Interface'", true},
		{"$(Parent.Name) == 'IFoo' And $(Access) == 'Public'", false},
		{"$(Access) == 'Public' Or $(Name) =~ 'count$'", true},
		{"!($(Name) =~ '^_')", false},
		{"$(Access) == 'Public' And $(Name) == 'x' Or $(Type) == 'int'", true},
		{"$(Access) == 'Public' And ($(Name) == 'x' Or $(Type) == 'int')", false},
		{"$(Name) == 'it''s'", false},
		{"$(name) == '_count'", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := Parse(tt.expr)
			require.NoError(t, err)
			got, err := Evaluate(expr, ElementSubject{Element: elem, Parent: parent})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCaseSensitiveValues(t *testing.T) {
	expr := MustParse("$(Name) == 'foo'")
	got, err := Evaluate(expr, ElementSubject{Element: field("Foo", code.AccessNone)})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluateFile(t *testing.T) {
	expr := MustParse("$(File.Extension) == 'cs' And !($(File.Name) =~ '\\.Designer\\.cs$')")
	tests := []struct {
		path string
		want bool
	}{
		{"src/Foo.cs", true},
		{"src/Foo.Designer.cs", false},
		{"src/Foo.vb", false},
	}
	for _, tt := range tests {
		got, err := Evaluate(expr, FileSubject{Path: tt.path})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.path)
	}

	attrs, err := Evaluate(MustParse("$(File.Attributes) : 'Hidden'"), FileSubject{Path: ".hidden.cs"})
	require.NoError(t, err)
	assert.True(t, attrs)
}

func TestRequiredScope(t *testing.T) {
	assert.Equal(t, ScopeElement, RequiredScope(MustParse("$(Name) == 'x' Or $(File.Name) == 'y'")))
	assert.Equal(t, ScopeParent, RequiredScope(MustParse("$(Name) == 'x' Or !($(Parent.Name) == 'y')")))
}

func TestEvaluateInvalidArguments(t *testing.T) {
	expr := MustParse("$(Name) == 'x'")

	_, err := Evaluate(nil, ElementSubject{Element: field("x", code.AccessNone)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Evaluate(expr, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Evaluate(expr, ElementSubject{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var nilSubject *ElementSubject
	_, err = Evaluate(expr, nilSubject)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEvaluateUnknownOperator(t *testing.T) {
	expr := &Binary{Op: Operator(42), Left: &Literal{Value: "a"}, Right: &Literal{Value: "a"}}
	_, err := Evaluate(expr, ElementSubject{Element: field("x", code.AccessNone)})
	assert.ErrorIs(t, err, ErrRange)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		msg  string
	}{
		{"unterminated string", "$(Name) == 'x", "unterminated string"},
		{"missing operator", "$(Name) 'x'", "expected comparison operator"},
		{"unknown attribute", "$(Nmae) == 'x'", `did you mean "Name"`},
		{"unknown scope", "$(Grandparent.Name) == 'x'", "unknown attribute"},
		{"bad regex", "$(Name) =~ '('", "invalid regular expression"},
		{"unbalanced paren", "($(Name) == 'x'", "expected )"},
		{"stray word", "$(Name) == 'x' Xor $(Name) == 'y'", "unexpected word"},
		{"trailing operand", "$(Name) == 'x' 'y'", "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	exprs := []string{
		"$(Name) == 'x'",
		"$(Parent.Access) : 'Public' And !($(Name) =~ '^_')",
		"$(File.Path) != 'a''b' Or $(Type) == 'int' And $(Attributes) : 'Obsolete'",
	}
	for _, src := range exprs {
		first := MustParse(src)
		second, err := Parse(first.String())
		require.NoError(t, err, first.String())
		assert.Equal(t, first.String(), second.String())
	}
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "Access", Suggest("Acess", []string{"Name", "Access", "Type"}))
	assert.Equal(t, "", Suggest("Completely", []string{"Name", "Type"}))
}
