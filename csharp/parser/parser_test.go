package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/arrange/code"
)

func mustParse(t *testing.T, src string) []*code.Element {
	t.Helper()
	elems, err := ParseString(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return elems
}

// members parses src wrapped in a class and returns the class members.
func members(t *testing.T, body string) []*code.Element {
	t.Helper()
	elems := mustParse(t, "class C\n{\n"+body+"\n}\n")
	if len(elems) != 1 || elems[0].Kind != code.KindType {
		t.Fatalf("expected a single type, got:\n%s", code.Dump(elems))
	}
	return elems[0].Children
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		line    int
		column  int
	}{
		{"unclosed namespace", "namespace N\n{", "Expected }", 2, 2},
		{"lone endregion", "#endregion", "Unmatched end region directive", 1, 1},
		{"pragma", "#pragma warning disable\nclass C {}", "Cannot arrange files with preprocessor directives containing #pragma", 1, 1},
		{"define", "#define DEBUG", "Cannot arrange files with preprocessor directives containing #define", 1, 1},
		{"else after else", "#if A\n#else\n#else\n#endif", "Unexpected #else after #else", 3, 1},
		{"elif after else", "#if A\n#else\n#elif B\n#endif", "Unexpected #elif after #else", 3, 1},
		{"unclosed if", "#if A\nclass C {}\n", "Expected #endif", 3, 1},
		{"attribute without element", "class C\n{\n#if A\n[Foo]\n#endif\n}", "Attributes must be followed by an element", 5, 1},
		{"new constraint not last", "class C<T> where T : new(), IDisposable {}", "The new() constraint must be the last constraint specified", 1, 29},
		{"empty constraint list", "class C<T> where T : {}", "Expected type parameter constraint", 1, 22},
		{"unknown type parameter", "class C<T> where U : class {}", "Unknown type parameter 'U'", 1, 18},
		{"unexpected brace", "class C {}\n}", "Unexpected }", 2, 1},
		{"region crossing brace", "class C\n{\n#region A\n}\n#endregion", "Expected #endregion", 4, 1},
		{"comment region name mismatch", "// $(Begin) A\n// $(End) B\n", "Unmatched end region directive 'B'", 2, 1},
		{"unterminated string", "class C { string s = \"abc\n}", "Unterminated string literal", 1, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elems, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("expected error, got:\n%s", code.Dump(elems))
			}
			if elems != nil {
				t.Errorf("partial tree returned on error")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("got %T %v, want *SyntaxError", err, err)
			}
			if se.Message != tt.message {
				t.Errorf("message = %q, want %q", se.Message, tt.message)
			}
			if se.Line != tt.line || se.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d", se.Line, se.Column, tt.line, tt.column)
			}
		})
	}
}

func TestParseMissingEndRegions(t *testing.T) {
	_, err := ParseString("#region Outer\n#region Inner\nclass C {}\n")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"Missing end region directive for 'Inner'", "Missing end region directive for 'Outer'"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestParseErrorIncludesFile(t *testing.T) {
	_, err := ParseString("namespace N\n{", WithFile("N.cs"))
	if err == nil || err.Error() != "N.cs:2:2: Expected }" {
		t.Fatalf("got %v", err)
	}
}

func TestHeaderComments(t *testing.T) {
	elems := members(t, "    // first\n    // second\n    public int x;")
	if len(elems) != 1 {
		t.Fatalf("got %d elements", len(elems))
	}
	hc := elems[0].HeaderComments
	if len(hc) != 2 {
		t.Fatalf("got %d header comments, want 2", len(hc))
	}
	if hc[0].Text.String() != " first" || hc[1].Text.String() != " second" {
		t.Errorf("header comments out of order: %q, %q", hc[0].Text, hc[1].Text)
	}
}

func TestBlankLineDetachesComments(t *testing.T) {
	elems := members(t, "    // loose\n\n    /// <summary>doc</summary>\n    public int x;")
	if len(elems) != 2 {
		t.Fatalf("got %d elements:\n%s", len(elems), code.Dump(elems))
	}
	if elems[0].Kind != code.KindComment {
		t.Errorf("first element is %s, want Comment", elems[0].Kind)
	}
	field := elems[1]
	if len(field.HeaderComments) != 1 || field.HeaderComments[0].CommentKind != code.CommentXMLLine {
		t.Errorf("field header comments = %v", field.HeaderComments)
	}
}

func TestTrailingComment(t *testing.T) {
	elems := members(t, "    int x; // about x\n    int y;")
	if len(elems) != 2 {
		t.Fatalf("got %d elements", len(elems))
	}
	if elems[0].TrailingComment == nil || elems[0].TrailingComment.Text.String() != " about x" {
		t.Errorf("x trailing comment = %v", elems[0].TrailingComment)
	}
	if len(elems[1].HeaderComments) != 0 {
		t.Errorf("y picked up header comments")
	}
}

func TestPropertyWithArrayType(t *testing.T) {
	elems := members(t, "    public string[] Foo { get { return null; } }")
	if len(elems) != 1 {
		t.Fatalf("got %d elements", len(elems))
	}
	p := elems[0]
	if p.Kind != code.KindProperty || p.Name != "Foo" || p.Type != "string[]" {
		t.Errorf("got %s %q of type %q", p.Kind, p.Name, p.Type)
	}
	if !p.Body.Inline || p.Body.String() != "get { return null; }" {
		t.Errorf("body = %q", p.Body.String())
	}
}

func TestGenericFieldType(t *testing.T) {
	elems := members(t, "    Dictionary<string,int> x = new Dictionary<string,int>();")
	if len(elems) != 1 {
		t.Fatalf("got %d elements:\n%s", len(elems), code.Dump(elems))
	}
	f := elems[0]
	if f.Kind != code.KindField || f.Type != "Dictionary<string,int>" || f.Name != "x" {
		t.Errorf("got %s %q %q", f.Kind, f.Type, f.Name)
	}
	if got := f.Initializer.String(); got != "new Dictionary<string,int>()" {
		t.Errorf("initializer = %q", got)
	}
}

func TestComparisonInInitializer(t *testing.T) {
	elems := members(t, "    bool a = x < y, b = z > w;")
	if len(elems) != 2 {
		t.Fatalf("got %d elements:\n%s", len(elems), code.Dump(elems))
	}
	if elems[0].Initializer.String() != "x < y" || elems[1].Initializer.String() != "z > w" {
		t.Errorf("initializers = %q, %q", elems[0].Initializer, elems[1].Initializer)
	}
}

func TestMultiDeclaratorField(t *testing.T) {
	elems := members(t, "    [NonSerialized]\n    // c\n    private static int a, b = 1; // t")
	if len(elems) != 2 {
		t.Fatalf("got %d elements", len(elems))
	}
	a, b := elems[0], elems[1]
	for _, f := range elems {
		if f.Type != "int" || f.Access != code.AccessPrivate || f.Modifiers != code.Static {
			t.Errorf("%s: type %q access %v modifiers %v", f.Name, f.Type, f.Access, f.Modifiers)
		}
		if len(f.Attributes) != 1 {
			t.Errorf("%s: %d attributes", f.Name, len(f.Attributes))
		}
	}
	if a.Initializer != nil {
		t.Errorf("a has initializer %q", a.Initializer)
	}
	if b.Initializer.String() != "1" {
		t.Errorf("b initializer = %q", b.Initializer)
	}
	if len(a.HeaderComments) != 1 || len(b.HeaderComments) != 0 {
		t.Errorf("header comments: a=%d b=%d", len(a.HeaderComments), len(b.HeaderComments))
	}
	if a.TrailingComment != nil || b.TrailingComment == nil {
		t.Errorf("trailing comment should attach to the last declarator")
	}
}

func TestMemberKinds(t *testing.T) {
	src := strings.Join([]string{
		"    public C() : base(1) { }",
		"    ~C() { }",
		"    static C() { }",
		"    public event EventHandler Changed;",
		"    public event EventHandler Custom { add { } remove { } }",
		"    public delegate void Handler<T>(T arg) where T : class;",
		"    public int this[int i] { get { return i; } }",
		"    int IList.this[int i] => i;",
		"    public static C operator +(C a, C b) => a;",
		"    public static bool operator >(C a, C b) => true;",
		"    public static implicit operator int(C c) => 0;",
		"    public async Task<T> RunAsync<T>(int x) where T : new() { return default; }",
		"    IEnumerator<T> IEnumerable<T>.GetEnumerator() => null;",
		"    public required string Name { get; init; } = \"\";",
		"    public int Count => 0;",
		"    protected internal const int Max = 10;",
		"    private protected readonly (int, string) pair;",
		"    public enum Color { Red, Green }",
		"    public partial struct S<in TIn, out TOut> : IFoo<TIn> { }",
		"    public interface I { void M(); }",
	}, "\n")
	elems := members(t, src)

	type want struct {
		kind   code.Kind
		name   string
		typ    string
		access code.Access
	}
	wants := []want{
		{code.KindConstructor, "C", "", code.AccessPublic},
		{code.KindConstructor, "~C", "", code.AccessNone},
		{code.KindConstructor, "C", "", code.AccessNone},
		{code.KindEvent, "Changed", "EventHandler", code.AccessPublic},
		{code.KindEvent, "Custom", "EventHandler", code.AccessPublic},
		{code.KindDelegate, "Handler", "void", code.AccessPublic},
		{code.KindProperty, "this", "int", code.AccessPublic},
		{code.KindProperty, "IList.this", "int", code.AccessNone},
		{code.KindMethod, "+", "C", code.AccessPublic},
		{code.KindMethod, ">", "bool", code.AccessPublic},
		{code.KindMethod, "int", "int", code.AccessPublic},
		{code.KindMethod, "RunAsync", "Task<T>", code.AccessPublic},
		{code.KindMethod, "IEnumerable<T>.GetEnumerator", "IEnumerator<T>", code.AccessNone},
		{code.KindProperty, "Name", "string", code.AccessPublic},
		{code.KindProperty, "Count", "int", code.AccessPublic},
		{code.KindField, "Max", "int", code.AccessProtected | code.AccessInternal},
		{code.KindField, "pair", "(int, string)", code.AccessPrivate | code.AccessProtected},
		{code.KindType, "Color", "", code.AccessPublic},
		{code.KindType, "S", "", code.AccessPublic},
		{code.KindType, "I", "", code.AccessPublic},
	}
	if len(elems) != len(wants) {
		t.Fatalf("got %d members, want %d:\n%s", len(elems), len(wants), code.Dump(elems))
	}
	for i, w := range wants {
		e := elems[i]
		if e.Kind != w.kind || e.Name != w.name || e.Type != w.typ || e.Access != w.access {
			t.Errorf("member %d: got %s %q type %q access %v, want %s %q type %q access %v",
				i, e.Kind, e.Name, e.Type, e.Access, w.kind, w.name, w.typ, w.access)
		}
	}

	if got := elems[0].Reference.String(); got != "base(1)" {
		t.Errorf("constructor reference = %q", got)
	}
	if elems[2].Modifiers != code.Static {
		t.Errorf("static constructor modifiers = %v", elems[2].Modifiers)
	}
	if tp := elems[5].TypeParameters; len(tp) != 1 || tp[0].Constraints[0] != "class" {
		t.Errorf("delegate type parameters = %v", tp)
	}
	if got := elems[6].IndexParameters.String(); got != "int i" {
		t.Errorf("indexer parameters = %q", got)
	}
	if elems[8].Operator != code.OperatorSymbol || elems[10].Operator != code.OperatorImplicit {
		t.Errorf("operator kinds = %v, %v", elems[8].Operator, elems[10].Operator)
	}
	if elems[11].Modifiers != code.Async {
		t.Errorf("RunAsync modifiers = %v", elems[11].Modifiers)
	}
	if got := elems[13].Initializer.String(); got != `""` {
		t.Errorf("property initializer = %q", got)
	}
	if elems[13].Modifiers != code.Required {
		t.Errorf("Name modifiers = %v", elems[13].Modifiers)
	}
	if elems[15].Modifiers != code.Constant {
		t.Errorf("Max modifiers = %v", elems[15].Modifiers)
	}
	if got := elems[17].Body.String(); got != "Red, Green" {
		t.Errorf("enum body = %q", got)
	}
	s := elems[18]
	if s.TypeKind != code.TypeStruct || s.Modifiers != code.Partial {
		t.Errorf("struct kind %v modifiers %v", s.TypeKind, s.Modifiers)
	}
	if len(s.TypeParameters) != 2 || s.TypeParameters[0].Name != "in TIn" {
		t.Errorf("struct type parameters = %v", s.TypeParameters)
	}
	if len(s.Implements) != 1 || s.Implements[0] != "IFoo<TIn>" {
		t.Errorf("struct implements = %v", s.Implements)
	}
	if len(elems[19].Children) != 1 || elems[19].Children[0].Kind != code.KindMethod {
		t.Errorf("interface members:\n%s", code.Dump(elems[19].Children))
	}
}

func TestConstraintOrderPreserved(t *testing.T) {
	elems := mustParse(t, "class C<T, U> where T : class, IComparable<T>, new() where U : struct\n{\n}")
	tp := elems[0].TypeParameters
	want := []string{"class", "IComparable<T>", "new()"}
	if len(tp[0].Constraints) != len(want) {
		t.Fatalf("constraints = %v", tp[0].Constraints)
	}
	for i := range want {
		if tp[0].Constraints[i] != want[i] {
			t.Errorf("constraint %d = %q, want %q", i, tp[0].Constraints[i], want[i])
		}
	}
	if len(tp[1].Constraints) != 1 || tp[1].Constraints[0] != "struct" {
		t.Errorf("U constraints = %v", tp[1].Constraints)
	}
}

func TestRegionNesting(t *testing.T) {
	elems := mustParse(t, "#region A\n#region B\nclass X {}\nclass Y {}\n#endregion\n#endregion\n")
	if len(elems) != 1 || elems[0].Kind != code.KindRegion || elems[0].Name != "A" {
		t.Fatalf("got:\n%s", code.Dump(elems))
	}
	a := elems[0]
	if len(a.Children) != 1 || a.Children[0].Kind != code.KindRegion || a.Children[0].Name != "B" {
		t.Fatalf("region A children:\n%s", code.Dump(a.Children))
	}
	if n := len(a.Children[0].Children); n != 2 {
		t.Errorf("region B has %d children, want 2", n)
	}
}

func TestCommentRegions(t *testing.T) {
	elems := mustParse(t, "//  $( begin ) Fields\nclass X {}\n// $(END) Fields\n")
	if len(elems) != 1 || elems[0].Kind != code.KindRegion || elems[0].Name != "Fields" {
		t.Fatalf("got:\n%s", code.Dump(elems))
	}
	if len(elems[0].Children) != 1 {
		t.Errorf("region children = %d", len(elems[0].Children))
	}
}

func TestConditionalChain(t *testing.T) {
	elems := mustParse(t, "#if DEBUG\nclass A {}\n#elif TRACE\nclass B {}\n#else\nclass C {}\n#endif\n")
	if len(elems) != 1 {
		t.Fatalf("got:\n%s", code.Dump(elems))
	}
	d := elems[0]
	if d.Kind != code.KindConditionDirective || d.Condition != "DEBUG" || len(d.Children) != 1 {
		t.Fatalf("if branch:\n%s", d)
	}
	elif := d.Else
	if elif == nil || elif.Condition != "TRACE" || len(elif.Children) != 1 {
		t.Fatalf("elif branch: %v", elif)
	}
	els := elif.Else
	if els == nil || els.Condition != "" || len(els.Children) != 1 || els.Children[0].Name != "C" {
		t.Fatalf("else branch: %v", els)
	}
}

func TestUsings(t *testing.T) {
	elems := mustParse(t, strings.Join([]string{
		"global using System;",
		"using System.Text;",
		"using static System.Math;",
		"using Json = Newtonsoft.Json;",
		"namespace N",
		"{",
		"    using Alias = System.IO;",
		"    using System.Linq;",
		"}",
	}, "\n"))
	if len(elems) != 5 {
		t.Fatalf("got:\n%s", code.Dump(elems))
	}
	if !elems[0].Global || elems[0].Movable {
		t.Errorf("global using: global=%v movable=%v", elems[0].Global, elems[0].Movable)
	}
	if elems[1].Name != "System.Text" || !elems[1].Movable {
		t.Errorf("using System.Text: %v", elems[1])
	}
	if elems[2].Modifiers != code.Static {
		t.Errorf("using static modifiers = %v", elems[2].Modifiers)
	}
	if elems[3].Name != "Json" || elems[3].Redefine != "Newtonsoft.Json" || !elems[3].Movable {
		t.Errorf("root alias: %v", elems[3])
	}
	ns := elems[4]
	if ns.Children[0].Movable {
		t.Errorf("alias inside namespace should not be movable")
	}
	if !ns.Children[1].Movable {
		t.Errorf("plain using inside namespace should be movable")
	}
}

func TestFileScopedNamespace(t *testing.T) {
	elems := mustParse(t, "namespace A.B;\n\nclass X {}\nclass Y {}\n")
	if len(elems) != 1 || !elems[0].FileScoped || elems[0].Name != "A.B" {
		t.Fatalf("got:\n%s", code.Dump(elems))
	}
	if len(elems[0].Children) != 2 {
		t.Errorf("namespace children = %d", len(elems[0].Children))
	}
}

func TestAssemblyAttributes(t *testing.T) {
	elems := mustParse(t, "[assembly: AssemblyTitle(\"x\")]\n[Serializable, Obsolete(\"no\")]\nclass C {}\n")
	if len(elems) != 2 {
		t.Fatalf("got:\n%s", code.Dump(elems))
	}
	if elems[0].Kind != code.KindAttribute || elems[0].Target != "assembly" {
		t.Errorf("first element: %v", elems[0])
	}
	names := code.AttributeNames(elems[1])
	if strings.Join(names, ",") != "Serializable,Obsolete" {
		t.Errorf("attribute names = %v", names)
	}
}

func TestBodyReindentation(t *testing.T) {
	src := strings.Join([]string{
		"    void M()",
		"    {",
		"        if (x)",
		"        {",
		"            y();",
		"        }",
		"    }",
	}, "\n")
	m := members(t, src)[0]
	want := "if (x)\n{\n    y();\n}"
	if got := m.Body.String(); got != want {
		t.Errorf("body =\n%s\nwant\n%s", got, want)
	}
}

func TestVerbatimStringLinesInBody(t *testing.T) {
	src := "    string M()\n    {\n        return @\"a\n  b\";\n    }"
	m := members(t, src)[0]
	lines := m.Body.Lines
	if len(lines) != 2 {
		t.Fatalf("body lines = %#v", lines)
	}
	if !lines[1].Verbatim || lines[1].Content != "  b\";" {
		t.Errorf("second line = %#v", lines[1])
	}
}

func TestTabIndentedBody(t *testing.T) {
	src := "\tvoid M()\n\t{\n\t\ta();\n\t\t\tb();\n\t}"
	elems, err := ParseString("class C\n{\n"+src+"\n}", WithTabSize(4))
	if err != nil {
		t.Fatal(err)
	}
	lines := elems[0].Children[0].Body.Lines
	if len(lines) != 2 || lines[0].Indent != 0 || lines[1].Indent != 4 {
		t.Errorf("lines = %#v", lines)
	}
}

func TestCRLFInput(t *testing.T) {
	elems := mustParse(t, "class C\r\n{\r\n    int x; // c\r\n}\r\n")
	f := elems[0].Children[0]
	if f.TrailingComment.Text.String() != " c" {
		t.Errorf("trailing comment = %q", f.TrailingComment.Text.String())
	}
}

func TestBodyDirectivesOutsideBaseIndent(t *testing.T) {
	src := "    void M()\n    {\n#if DEBUG\n        Log();\n#endif\n        Run();\n    }"
	lines := members(t, src)[0].Body.Lines
	want := []code.Line{
		{Content: "#if DEBUG", Directive: true},
		{Content: "Log();"},
		{Content: "#endif", Directive: true},
		{Content: "Run();"},
	}
	if len(lines) != len(want) {
		t.Fatalf("body lines = %#v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %#v, want %#v", i, lines[i], want[i])
		}
	}
}

func TestSpacing(t *testing.T) {
	elems := members(t, "    int a;\n\n    int b;\n    void M() { }\n    #region R\n\n    int c;\n    #endregion")
	if len(elems) != 4 {
		t.Fatalf("got %d elements:\n%s", len(elems), code.Dump(elems))
	}
	want := []code.Spacing{code.SpacingNone, code.SpacingBlank, code.SpacingNone, code.SpacingNone}
	for i, e := range elems {
		if e.Spacing != want[i] {
			t.Errorf("%s %s spacing = %d, want %d", e.Kind, e.Name, e.Spacing, want[i])
		}
	}
	region := elems[3]
	if got := region.Children[0].Spacing; got != code.SpacingBlank {
		t.Errorf("first region child spacing = %d, want blank", got)
	}
	if region.EndSpacing != code.SpacingNone {
		t.Errorf("region end spacing = %d, want none", region.EndSpacing)
	}

	same := members(t, "    int a; int b;")
	if same[1].Spacing != code.SpacingDefault {
		t.Errorf("same-line spacing = %d, want default", same[1].Spacing)
	}
}

func TestBraceComment(t *testing.T) {
	elems := mustParse(t, "namespace N\n{ // about N\n    class A\n    { /* about A */\n        int x;\n    }\n}")
	ns := elems[0]
	if ns.BraceComment == nil || ns.BraceComment.Text.String() != " about N" {
		t.Fatalf("namespace brace comment = %v", ns.BraceComment)
	}
	a := ns.Children[0]
	if len(a.HeaderComments) != 0 {
		t.Errorf("class picked up header comments: %v", a.HeaderComments)
	}
	if a.BraceComment == nil || a.BraceComment.Text.String() != "/* about A */" {
		t.Fatalf("class brace comment = %v", a.BraceComment)
	}
	if x := a.Children[0]; len(x.HeaderComments) != 0 {
		t.Errorf("field picked up header comments: %v", x.HeaderComments)
	}
}
