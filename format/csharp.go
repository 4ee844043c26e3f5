package format

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/config"
)

// CSharpWriter renders an element tree as C# source.
//
// Output is built in memory and written in one piece, so nothing reaches w
// when rendering fails.
type CSharpWriter struct {
	w io.Writer
	f config.Formatting

	buf    bytes.Buffer
	cur    strings.Builder
	inLine bool
	raw    bool
	depth  int

	// blankRun is set when the last line written was empty, atStart right
	// after an opening brace or directive, where no blank line may follow.
	blankRun bool
	atStart  bool

	prev *code.Element
}

func NewCSharpWriter(w io.Writer, f config.Formatting) *CSharpWriter {
	return &CSharpWriter{w: w, f: f}
}

// Encode implements Encoder.
func (p *CSharpWriter) Encode(elems []*code.Element) error {
	return p.Write(elems)
}

func (p *CSharpWriter) Write(elems []*code.Element) error {
	if p.w == nil {
		return fmt.Errorf("%w: nil writer", code.ErrInvalidArgument)
	}
	if err := p.checkFormatting(); err != nil {
		return err
	}

	p.buf.Reset()
	p.cur.Reset()
	p.inLine, p.raw, p.depth = false, false, 0
	p.blankRun, p.atStart, p.prev = false, true, nil

	if err := p.printElements(elems); err != nil {
		return err
	}
	if p.inLine {
		p.newline()
	}
	out := bytes.TrimRight(p.buf.Bytes(), "\n")
	if len(out) == 0 {
		return nil
	}
	_, err := p.w.Write(append(out, '\n'))
	return err
}

func (p *CSharpWriter) checkFormatting() error {
	switch p.f.Tabs.Style {
	case config.TabSpaces, config.TabTabs:
	default:
		return code.RangeError("unknown tab style %d", int(p.f.Tabs.Style))
	}
	if p.f.Tabs.SpacesPerTab <= 0 {
		return fmt.Errorf("%w: spaces per tab must be positive, got %d", code.ErrInvalidArgument, p.f.Tabs.SpacesPerTab)
	}
	switch p.f.Regions.Style {
	case config.RegionDirective, config.RegionCommentDirective, config.RegionNoDirective:
	default:
		return code.RangeError("unknown region style %d", int(p.f.Regions.Style))
	}
	return nil
}

func (p *CSharpWriter) printElements(elems []*code.Element) error {
	for i, e := range elems {
		if e == nil {
			return fmt.Errorf("%w: nil element", code.ErrInvalidArgument)
		}
		if e.Kind == code.KindGroup && i > 0 && elems[i-1].Kind == code.KindGroup {
			p.groupBreak(e)
		}
		if err := p.printElement(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *CSharpWriter) printElement(e *code.Element) error {
	switch e.Kind {
	case code.KindGroup:
		return p.printElements(e.Children)
	case code.KindRegion:
		return p.printRegion(e)
	case code.KindConditionDirective:
		return p.printConditional(e)
	}

	p.separate(e)
	var err error
	switch e.Kind {
	case code.KindComment:
		if err = p.writeComment(e); err == nil {
			p.newline()
		}
	case code.KindUsing:
		err = p.printUsing(e)
	case code.KindAttribute:
		err = p.printAttributeSection(e)
	case code.KindNamespace:
		err = p.printNamespace(e)
	case code.KindType:
		err = p.printType(e)
	case code.KindDelegate, code.KindEvent, code.KindField,
		code.KindConstructor, code.KindProperty, code.KindMethod:
		err = p.printMember(e)
	default:
		err = code.RangeError("cannot write element of kind %s", e.Kind)
	}
	p.prev = e
	return err
}

// separate writes the blank line that goes between prev and e, if any.
// Spacing recorded by the parser wins over the layout rules.
func (p *CSharpWriter) separate(e *code.Element) {
	if p.prev == nil {
		return
	}
	switch e.Spacing {
	case code.SpacingBlank:
		p.blank()
	case code.SpacingNone:
	default:
		if needsBlank(p.prev, e) {
			p.blank()
		}
	}
}

func needsBlank(prev, e *code.Element) bool {
	switch {
	case prev.Kind == code.KindUsing && e.Kind == code.KindUsing,
		prev.Kind == code.KindAttribute && e.Kind == code.KindAttribute,
		prev.Kind == code.KindComment && e.Kind == code.KindComment:
		return false
	case prev.Kind == code.KindField && e.Kind == code.KindField:
		return len(e.HeaderComments) > 0 || len(e.Attributes) > 0
	}
	return true
}

func (p *CSharpWriter) groupBreak(g *code.Element) {
	if g.Separator == "" {
		p.blank()
	} else {
		if p.inLine {
			p.newline()
		}
		for _, l := range strings.Split(g.Separator, "\n") {
			p.line(l)
		}
	}
	p.prev = nil
}

func (p *CSharpWriter) printHeader(e *code.Element) error {
	for _, c := range e.HeaderComments {
		if err := p.writeComment(c); err != nil {
			return err
		}
		p.newline()
	}
	for _, a := range e.Attributes {
		if err := p.printAttributeSection(a); err != nil {
			return err
		}
	}
	return nil
}

func (p *CSharpWriter) writeComment(c *code.Element) error {
	switch c.CommentKind {
	case code.CommentLine:
		p.write("//")
	case code.CommentXMLLine:
		p.write("///")
	case code.CommentBlock:
		p.write("")
	default:
		return code.RangeError("unknown comment kind %d", int(c.CommentKind))
	}
	p.writeText(c.Text, p.depth)
	return nil
}

// finish ends a declaration line with its trailing comment or, for block
// declarations, the configured closing comment.
func (p *CSharpWriter) finish(e *code.Element, block bool) error {
	switch {
	case e.TrailingComment != nil:
		p.write(" ")
		if err := p.writeComment(e.TrailingComment); err != nil {
			return err
		}
	case block && p.f.ClosingComments.Enabled:
		p.write(" // " + closingComment(p.f.ClosingComments.Format, e))
	}
	p.newline()
	return nil
}

func closingComment(format string, e *code.Element) string {
	elementType := e.Kind.String()
	if e.Kind == code.KindType {
		elementType = e.TypeKind.String()
	}
	r := strings.NewReplacer("$(ElementType)", elementType, "$(Name)", e.Name)
	return strings.TrimSpace(r.Replace(format))
}

func (p *CSharpWriter) printAttributeSection(a *code.Element) error {
	for _, c := range a.HeaderComments {
		if err := p.writeComment(c); err != nil {
			return err
		}
		p.newline()
	}
	p.write("[")
	if a.Target != "" {
		p.write(a.Target + ": ")
	}
	if len(a.Children) == 0 {
		p.write(a.Name)
	}
	for i, attr := range a.Children {
		if i > 0 {
			p.write(", ")
		}
		p.write(attr.Name)
		if attr.Parameters != nil {
			p.write("(")
			p.writeText(attr.Parameters, p.depth)
			p.write(")")
		}
	}
	p.write("]")
	return p.finish(a, false)
}

func (p *CSharpWriter) printUsing(e *code.Element) error {
	if err := p.printHeader(e); err != nil {
		return err
	}
	if e.Global {
		p.write("global ")
	}
	p.write("using ")
	if e.Modifiers&code.Static != 0 {
		p.write("static ")
	}
	p.write(e.Name)
	if e.Redefine != "" {
		p.write(" = " + e.Redefine)
	}
	p.write(";")
	return p.finish(e, false)
}

func (p *CSharpWriter) printNamespace(e *code.Element) error {
	if err := p.printHeader(e); err != nil {
		return err
	}
	p.write("namespace " + e.Name)
	if e.FileScoped {
		p.write(";")
		if err := p.finish(e, false); err != nil {
			return err
		}
		p.prev = e
		return p.printElements(e.Children)
	}
	if err := p.printChildren(e); err != nil {
		return err
	}
	return p.finish(e, true)
}

// printChildren writes a braced block of elements on the following lines
// and leaves the closing brace open for a trailing comment.
func (p *CSharpWriter) printChildren(e *code.Element) error {
	p.newline()
	if e.BraceComment != nil {
		p.write("{ ")
		if err := p.writeComment(e.BraceComment); err != nil {
			return err
		}
		p.newline()
		p.atStart = true
	} else {
		p.open()
	}
	p.depth++
	p.prev = nil
	err := p.printElements(e.Children)
	p.depth--
	if err != nil {
		return err
	}
	if p.inLine {
		p.newline()
	}
	p.write("}")
	return nil
}

func (p *CSharpWriter) printType(e *code.Element) error {
	kw, err := e.TypeKind.Keyword()
	if err != nil {
		return err
	}
	if err := p.printHeader(e); err != nil {
		return err
	}
	p.writeModifiers(e)
	p.write(kw + " " + e.Name)
	p.writeTypeParameters(e)
	if len(e.Implements) > 0 {
		p.write(" : " + strings.Join(e.Implements, ", "))
	}
	p.writeConstraints(e)

	if e.TypeKind == code.TypeEnum && e.Body != nil {
		block := p.writeBody(e.Body)
		return p.finish(e, block)
	}
	if err := p.printChildren(e); err != nil {
		return err
	}
	return p.finish(e, true)
}

func (p *CSharpWriter) printMember(e *code.Element) error {
	if err := p.printHeader(e); err != nil {
		return err
	}
	p.writeModifiers(e)

	switch e.Kind {
	case code.KindField:
		p.write(e.Type + " " + e.Name)
		p.writeInitializer(e)
		p.write(";")
		return p.finish(e, false)

	case code.KindEvent:
		p.write("event " + e.Type + " " + e.Name)
		if e.Body != nil {
			return p.finish(e, p.writeBody(e.Body))
		}
		p.writeInitializer(e)
		p.write(";")
		return p.finish(e, false)

	case code.KindDelegate:
		p.write("delegate " + e.Type + " " + e.Name)
		p.writeTypeParameters(e)
		p.writeParameters(e.Parameters)
		p.writeConstraints(e)
		p.write(";")
		return p.finish(e, false)

	case code.KindConstructor:
		p.write(e.Name)
		p.writeParameters(e.Parameters)
		if !e.Reference.Empty() {
			p.write(" : ")
			p.writeText(e.Reference, p.depth)
		}
		return p.finish(e, p.writeMemberBody(e))

	case code.KindProperty:
		p.write(e.Type + " " + e.Name)
		if e.IndexParameters != nil {
			p.write("[")
			p.writeText(e.IndexParameters, p.depth)
			p.write("]")
		}
		block := p.writeMemberBody(e)
		if e.Body != nil && !e.Initializer.Empty() {
			p.writeInitializer(e)
			p.write(";")
		}
		return p.finish(e, block)
	}

	switch e.Operator {
	case code.OperatorNone:
		p.write(e.Type + " " + e.Name)
		p.writeTypeParameters(e)
	case code.OperatorSymbol:
		p.write(e.Type + " operator " + e.Name)
	case code.OperatorImplicit:
		p.write("implicit operator " + e.Type)
	case code.OperatorExplicit:
		p.write("explicit operator " + e.Type)
	default:
		return code.RangeError("unknown operator kind %d", int(e.Operator))
	}
	p.writeParameters(e.Parameters)
	p.writeConstraints(e)
	return p.finish(e, p.writeMemberBody(e))
}

func (p *CSharpWriter) writeModifiers(e *code.Element) {
	if kw := e.Access.Keywords(); kw != "" {
		p.write(kw + " ")
	}
	for _, kw := range e.Modifiers.Keywords() {
		p.write(kw + " ")
	}
}

func (p *CSharpWriter) writeTypeParameters(e *code.Element) {
	if len(e.TypeParameters) == 0 {
		return
	}
	names := make([]string, len(e.TypeParameters))
	for i, tp := range e.TypeParameters {
		names[i] = tp.Name
	}
	p.write("<" + strings.Join(names, ", ") + ">")
}

// writeConstraints puts each where clause on its own line, one level deeper
// than the declaration.
func (p *CSharpWriter) writeConstraints(e *code.Element) {
	for _, tp := range e.TypeParameters {
		if len(tp.Constraints) == 0 {
			continue
		}
		p.newline()
		p.depth++
		p.write("where " + typeParameterName(tp.Name) + " : " + strings.Join(tp.Constraints, ", "))
		p.depth--
	}
}

// typeParameterName strips attributes and variance from a declared type
// parameter such as "[A] out T".
func typeParameterName(decl string) string {
	if i := strings.LastIndex(decl, "]"); i >= 0 {
		decl = decl[i+1:]
	}
	fields := strings.Fields(decl)
	if len(fields) == 0 {
		return decl
	}
	return fields[len(fields)-1]
}

func (p *CSharpWriter) writeParameters(t *code.Text) {
	p.write("(")
	p.writeText(t, p.depth)
	p.write(")")
}

func (p *CSharpWriter) writeInitializer(e *code.Element) {
	if e.Initializer.Empty() {
		return
	}
	p.write(" = ")
	p.writeText(e.Initializer, p.depth)
}

// writeMemberBody writes a block body, an expression body or a bare ';' and
// reports whether a multi-line block was written.
func (p *CSharpWriter) writeMemberBody(e *code.Element) bool {
	switch {
	case e.Body != nil:
		return p.writeBody(e.Body)
	case e.ExpressionBody != nil:
		p.write(" => ")
		p.writeText(e.ExpressionBody, p.depth)
		p.write(";")
	default:
		p.write(";")
	}
	return false
}

// writeBody writes an inline body on the declaration line, or a block body
// re-indented one level deeper on the following lines.
func (p *CSharpWriter) writeBody(t *code.Text) bool {
	if t.Inline {
		content := ""
		if len(t.Lines) > 0 {
			content = t.Lines[0].Content
		}
		if content == "" {
			p.write(" { }")
		} else {
			p.write(" { " + content + " }")
		}
		return false
	}
	p.newline()
	p.open()
	for _, l := range t.Lines {
		p.startLine(l, p.depth+1)
		p.newline()
	}
	p.write("}")
	return true
}

func (p *CSharpWriter) printRegion(e *code.Element) error {
	if !e.DirectivesEnabled || p.f.Regions.Style == config.RegionNoDirective {
		return p.printElements(e.Children)
	}

	begin, end := "#region "+e.Name, "#endregion"
	if p.f.Regions.EndRegionNameEnabled {
		end += " " + e.Name
	}
	if p.f.Regions.Style == config.RegionCommentDirective {
		begin, end = "// $(Begin) "+e.Name, "// $(End) "+e.Name
	}

	p.separate(e)
	p.line(begin)
	if len(e.Children) > 0 {
		if e.Children[0].Spacing != code.SpacingNone {
			p.blank()
		}
		p.prev = nil
		if err := p.printElements(e.Children); err != nil {
			return err
		}
		if p.inLine {
			p.newline()
		}
		if e.EndSpacing != code.SpacingNone {
			p.blank()
		}
	}
	p.line(end)
	p.prev = e
	return nil
}

// printConditional writes #if/#elif/#else/#endif at column zero with each
// branch's elements at the current depth. Blank lines inside a branch are
// only written where the source had them.
func (p *CSharpWriter) printConditional(e *code.Element) error {
	p.separate(e)
	keyword := "#if "
	for branch := e; branch != nil; branch = branch.Else {
		switch {
		case branch == e:
		case branch.Condition == "":
			keyword = "#else"
		default:
			keyword = "#elif "
		}
		p.directive(keyword + branch.Condition)
		p.prev = nil
		if len(branch.Children) > 0 && branch.Children[0].Spacing == code.SpacingBlank {
			p.atStart = false
			p.blank()
		}
		if err := p.printElements(branch.Children); err != nil {
			return err
		}
		if p.inLine {
			p.newline()
		}
		if branch.EndSpacing == code.SpacingBlank {
			p.atStart = false
			p.blank()
		}
	}
	p.directive("#endif")
	p.atStart = false
	p.prev = e
	return nil
}

func (p *CSharpWriter) directive(s string) {
	p.cur.WriteString(s)
	p.inLine = true
	p.newline()
	p.atStart = true
}

func (p *CSharpWriter) indentation(depth, extra int) string {
	n := p.f.Tabs.SpacesPerTab
	if p.f.Tabs.Style == config.TabTabs {
		return strings.Repeat("\t", depth+extra/n) + strings.Repeat(" ", extra%n)
	}
	return strings.Repeat(" ", depth*n+extra)
}

// writeText continues the current line with t. Its continuation lines are
// indented by depth plus their own relative indentation.
func (p *CSharpWriter) writeText(t *code.Text, depth int) {
	if t == nil {
		return
	}
	for i, l := range t.Lines {
		if i == 0 {
			p.write(l.Content)
			continue
		}
		p.newline()
		p.startLine(l, depth)
	}
}

// startLine begins a new output line holding l.
func (p *CSharpWriter) startLine(l code.Line, depth int) {
	p.inLine = true
	switch {
	case l.Verbatim:
		p.raw = true
		p.cur.WriteString(l.Content)
	case l.Directive:
		p.cur.WriteString(p.indentation(0, l.Indent))
		p.cur.WriteString(l.Content)
	case l.Content != "":
		p.cur.WriteString(p.indentation(depth, l.Indent))
		p.cur.WriteString(l.Content)
	}
}

func (p *CSharpWriter) write(s string) {
	if !p.inLine {
		p.cur.WriteString(p.indentation(p.depth, 0))
		p.inLine = true
	}
	p.cur.WriteString(s)
}

func (p *CSharpWriter) line(s string) {
	p.write(s)
	p.newline()
}

func (p *CSharpWriter) open() {
	p.line("{")
	p.atStart = true
}

func (p *CSharpWriter) newline() {
	s := p.cur.String()
	raw := p.raw
	p.cur.Reset()
	p.inLine, p.raw = false, false
	if !raw {
		s = strings.TrimRight(s, " \t")
	}
	if s == "" && !raw {
		if p.blankRun && p.f.LineSpacing.RemoveConsecutiveBlankLines {
			return
		}
		p.blankRun = true
	} else {
		p.blankRun = false
	}
	p.atStart = false
	p.buf.WriteString(s)
	p.buf.WriteByte('\n')
}

// blank writes a single separating empty line.
func (p *CSharpWriter) blank() {
	if p.inLine {
		p.newline()
	}
	if p.atStart || p.blankRun || p.buf.Len() == 0 {
		return
	}
	p.buf.WriteByte('\n')
	p.blankRun = true
}
