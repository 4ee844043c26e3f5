// Package parser turns C# source text into a code element tree.
//
// Declarations are parsed structurally; member bodies, initializers and
// parameter lists are kept as opaque text.
package parser

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/dhamidi/arrange/code"
)

type Option func(*Parser)

func WithFile(file string) Option {
	return func(p *Parser) {
		p.file = file
	}
}

// WithTabSize sets the column width of a tab when measuring indentation.
func WithTabSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.tabSize = n
		}
	}
}

type Parser struct {
	lex     *Lexer
	file    string
	tabSize int

	tokens []Token
	pos    int

	// stray holds comments met inside a declaration header; they end up as
	// header comments of the declaration.
	stray      []*code.Element
	declIndent int
	regions    []openRegion
}

type openRegion struct {
	name string
	tok  Token
}

type scope int

const (
	scopeRoot scope = iota
	scopeNamespace
	scopeType
)

type stopKind int

const (
	stopEOF stopKind = iota
	stopBrace
	stopEndRegion
	stopElif
	stopElse
	stopEndIf
)

// stop describes the token that ended a run of elements and how far it was
// from the last element.
type stop struct {
	kind    stopKind
	tok     Token
	arg     string
	comment bool
	spacing code.Spacing
}

type checkpoint struct {
	pos   int
	stray int
}

func newParser(src []byte, opts ...Option) *Parser {
	p := &Parser{tabSize: 4}
	for _, opt := range opts {
		opt(p)
	}
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	p.lex = NewLexer(src, p.file)
	return p
}

// Parse reads all of r and parses it. On error no elements are returned.
func Parse(r io.Reader, opts ...Option) ([]*code.Element, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(src, opts...)
}

func ParseBytes(src []byte, opts ...Option) ([]*code.Element, error) {
	return newParser(src, opts...).parse()
}

func ParseString(src string, opts ...Option) ([]*code.Element, error) {
	return ParseBytes([]byte(src), opts...)
}

func (p *Parser) parse() (elems []*code.Element, err error) {
	defer p.recover(&err)
	elems, st := p.parseElements(scopeRoot)
	if st.kind != stopEOF {
		p.unexpectedStop(st, "end of file")
	}
	return elems, nil
}

func (p *Parser) recover(errp *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*errp = b.err
	}
}

func (p *Parser) errorf(tok Token, format string, args ...any) {
	panic(bailout{newSyntaxError(tok.Span.Start, format, args...)})
}

// raw returns the n-th token from the cursor, trivia included, lexing on
// demand.
func (p *Parser) raw(n int) Token {
	for p.pos+n >= len(p.tokens) {
		if len(p.tokens) > 0 && p.tokens[len(p.tokens)-1].Kind == TokenEOF {
			return p.tokens[len(p.tokens)-1]
		}
		tok, err := p.lex.NextToken()
		if err != nil {
			panic(bailout{err})
		}
		p.tokens = append(p.tokens, tok)
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) next() Token {
	tok := p.raw(0)
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

// peekN returns the n-th significant token without consuming anything.
func (p *Parser) peekN(n int) Token {
	for i := 0; ; i++ {
		tok := p.raw(i)
		if tok.Kind == TokenEOF {
			return tok
		}
		if tok.IsTrivia() {
			continue
		}
		if n == 0 {
			return tok
		}
		n--
	}
}

func (p *Parser) peek() Token {
	return p.peekN(0)
}

// skipTrivia consumes layout and comments. Comments are kept as stray header
// comments of the declaration being parsed.
func (p *Parser) skipTrivia() {
	for {
		tok := p.raw(0)
		if !tok.IsTrivia() {
			return
		}
		if tok.IsComment() {
			p.stray = append(p.stray, p.commentElement(p.pos))
		}
		p.pos++
	}
}

// skipLayout consumes whitespace and newlines only.
func (p *Parser) skipLayout() {
	for {
		switch p.raw(0).Kind {
		case TokenWhitespace, TokenNewline:
			p.pos++
		default:
			return
		}
	}
}

func (p *Parser) advance() Token {
	p.skipTrivia()
	return p.next()
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkWord(word string) bool {
	return p.peek().Is(word)
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

// matchSameLine consumes a token of the given kind only if it follows on the
// current line.
func (p *Parser) matchSameLine(kind TokenKind) bool {
	i := 0
	if p.raw(0).Kind == TokenWhitespace {
		i = 1
	}
	if p.raw(i).Kind == kind {
		p.pos += i + 1
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind) Token {
	tok := p.peek()
	if tok.Kind != kind {
		p.errorf(tok, "Expected %s", kind)
	}
	return p.advance()
}

func (p *Parser) expectWord(word string) Token {
	tok := p.peek()
	if !tok.Is(word) {
		p.errorf(tok, "Expected %s", word)
	}
	return p.advance()
}

func (p *Parser) expectIdent() Token {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		p.errorf(tok, "Expected identifier")
	}
	return p.advance()
}

func (p *Parser) mark() checkpoint {
	return checkpoint{pos: p.pos, stray: len(p.stray)}
}

func (p *Parser) reset(cp checkpoint) {
	p.pos = cp.pos
	p.stray = p.stray[:cp.stray]
}

func (p *Parser) takeStray() []*code.Element {
	s := p.stray
	p.stray = nil
	return s
}

// parseElements parses declarations, comments, regions and conditional
// blocks until something closes the current run: end of file, a closing
// brace or a region or conditional directive that belongs to an enclosing
// construct.
func (p *Parser) parseElements(sc scope) ([]*code.Element, stop) {
	var elems, pending, lead, attrs []*code.Element
	newlines := 0
	// itemSpacing is the spacing before the first comment or attribute of
	// the element being collected.
	itemSpacing := code.SpacingDefault

	start := func(spacing code.Spacing) {
		if len(pending) == 0 && len(attrs) == 0 {
			itemSpacing = spacing
		}
	}

	flush := func() {
		elems = append(elems, pending...)
		pending = nil
	}
	dangling := func(tok Token) {
		if len(attrs) > 0 {
			p.errorf(tok, "Attributes must be followed by an element")
		}
	}

	for {
		tok := p.raw(0)
		switch tok.Kind {
		case TokenWhitespace:
			p.pos++
			continue
		case TokenNewline:
			p.pos++
			newlines++
			if newlines >= 2 && len(attrs) == 0 {
				flush()
			}
			continue
		case TokenLineComment, TokenXMLComment, TokenBlockComment:
			spacing := spacingFor(newlines)
			newlines = 0
			if begin, name, ok := regionMarker(tok); ok {
				dangling(tok)
				flush()
				p.pos++
				if begin {
					region := p.parseRegion(sc, tok, name)
					region.Spacing = spacing
					elems = append(elems, region)
					continue
				}
				return elems, stop{kind: stopEndRegion, tok: tok, arg: name, comment: true, spacing: spacing}
			}
			start(spacing)
			c := p.commentElement(p.pos)
			c.Spacing = spacing
			pending = append(pending, c)
			p.pos++
			continue
		}

		spacing := spacingFor(newlines)
		newlines = 0
		switch tok.Kind {
		case TokenEOF, TokenRBrace:
			dangling(tok)
			pending = append(pending, p.takeStray()...)
			flush()
			kind := stopEOF
			if tok.Kind == TokenRBrace {
				kind = stopBrace
			}
			return elems, stop{kind: kind, tok: tok, spacing: spacing}

		case TokenDirective:
			dangling(tok)
			flush()
			name, arg := splitDirective(tok.Literal)
			switch name {
			case "region":
				p.pos++
				region := p.parseRegion(sc, tok, arg)
				region.Spacing = spacing
				elems = append(elems, region)
				continue
			case "if":
				p.pos++
				cond := p.parseConditional(sc, arg)
				cond.Spacing = spacing
				elems = append(elems, cond)
				continue
			case "endregion":
				p.pos++
				return elems, stop{kind: stopEndRegion, tok: tok, arg: arg, spacing: spacing}
			case "elif":
				p.pos++
				return elems, stop{kind: stopElif, tok: tok, arg: arg, spacing: spacing}
			case "else":
				p.pos++
				return elems, stop{kind: stopElse, tok: tok, spacing: spacing}
			case "endif":
				p.pos++
				return elems, stop{kind: stopEndIf, tok: tok, spacing: spacing}
			}
			p.errorf(tok, "Cannot arrange files with preprocessor directives containing #%s", name)

		case TokenSemicolon:
			p.pos++
			continue

		case TokenLBracket:
			start(spacing)
			section := p.parseAttributeSection()
			if sc == scopeRoot && (section.Target == "assembly" || section.Target == "module") {
				section.Spacing = itemSpacing
				section.HeaderComments = append(pending, p.takeStray()...)
				pending = nil
				elems = append(elems, section)
				continue
			}
			if len(attrs) == 0 {
				lead, pending = pending, nil
			} else {
				section.HeaderComments, pending = pending, nil
			}
			attrs = append(attrs, section)
			continue
		}

		start(spacing)
		if len(attrs) == 0 {
			lead, pending = pending, nil
		}
		p.declIndent = p.lineIndent(p.pos)
		decls := p.parseDeclaration(sc)

		first := decls[0]
		headers := append(lead, pending...)
		first.HeaderComments = append(headers, p.takeStray()...)
		for i, d := range decls {
			if i == 0 {
				d.Spacing = itemSpacing
				d.Attributes = attrs
			} else {
				d.Spacing = code.SpacingNone
				for _, a := range attrs {
					d.Attributes = append(d.Attributes, a.Clone())
				}
			}
		}
		elems = append(elems, decls...)
		pending, lead, attrs = nil, nil, nil
	}
}

// spacingFor maps the line breaks seen before a token to its spacing. A
// token on the same line as its predecessor leaves the layout to the writer.
func spacingFor(newlines int) code.Spacing {
	switch {
	case newlines >= 2:
		return code.SpacingBlank
	case newlines == 1:
		return code.SpacingNone
	}
	return code.SpacingDefault
}

func (p *Parser) parseRegion(sc scope, open Token, name string) *code.Element {
	region := &code.Element{Kind: code.KindRegion, Name: name, DirectivesEnabled: true}
	p.regions = append(p.regions, openRegion{name: name, tok: open})

	children, st := p.parseElements(sc)
	switch st.kind {
	case stopEndRegion:
		if st.comment && st.arg != "" && st.arg != name {
			p.errorf(st.tok, "Unmatched end region directive '%s'", st.arg)
		}
	case stopEOF:
		p.missingEndRegions()
	default:
		p.errorf(st.tok, "Expected #endregion")
	}

	p.regions = p.regions[:len(p.regions)-1]
	region.Children = children
	region.EndSpacing = st.spacing
	return region
}

// missingEndRegions fails with one error per region still open.
func (p *Parser) missingEndRegions() {
	var errs []error
	for i := len(p.regions) - 1; i >= 0; i-- {
		r := p.regions[i]
		errs = append(errs, newSyntaxError(r.tok.Span.Start, "Missing end region directive for '%s'", r.name))
	}
	if len(errs) == 1 {
		panic(bailout{errs[0]})
	}
	panic(bailout{errors.Join(errs...)})
}

func (p *Parser) parseConditional(sc scope, condition string) *code.Element {
	root := &code.Element{Kind: code.KindConditionDirective, Condition: condition}
	cur := root
	sawElse := false
	for {
		children, st := p.parseElements(sc)
		cur.Children = children
		cur.EndSpacing = st.spacing
		switch st.kind {
		case stopEndIf:
			return root
		case stopElif, stopElse:
			if sawElse {
				p.errorf(st.tok, "Unexpected %s after #else", strings.Fields(st.tok.Literal)[0])
			}
			next := &code.Element{Kind: code.KindConditionDirective, Condition: st.arg}
			cur.Else = next
			cur = next
			sawElse = st.kind == stopElse
		default:
			p.unexpectedStop(st, "#endif")
		}
	}
}

// unexpectedStop reports a run of elements that ended with something other
// than what the enclosing construct expects.
func (p *Parser) unexpectedStop(st stop, expected string) {
	switch st.kind {
	case stopEndRegion:
		if st.arg != "" && st.comment {
			p.errorf(st.tok, "Unmatched end region directive '%s'", st.arg)
		}
		p.errorf(st.tok, "Unmatched end region directive")
	case stopBrace:
		if expected == "end of file" {
			p.errorf(st.tok, "Unexpected }")
		}
	case stopElif, stopElse, stopEndIf:
		if expected == "end of file" {
			p.errorf(st.tok, "Unexpected %s", strings.Fields(st.tok.Literal)[0])
		}
	}
	p.errorf(st.tok, "Expected %s", expected)
}

// splitDirective splits "#  region Name" into ("region", "Name").
func splitDirective(literal string) (name, arg string) {
	s := strings.TrimLeft(strings.TrimPrefix(literal, "#"), " \t")
	i := 0
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}

var regionMarkerPattern = regexp.MustCompile(`(?i)^//\s*\$\(\s*(begin|end)\s*\)(.*)$`)

// regionMarker recognizes the comment form of region directives:
// "// $(Begin) Name" and "// $(End) Name".
func regionMarker(tok Token) (begin bool, name string, ok bool) {
	if tok.Kind != TokenLineComment {
		return false, "", false
	}
	m := regionMarkerPattern.FindStringSubmatch(tok.Literal)
	if m == nil {
		return false, "", false
	}
	return strings.EqualFold(m[1], "begin"), strings.TrimSpace(m[2]), true
}

func (p *Parser) commentElement(idx int) *code.Element {
	tok := p.tokens[idx]
	c := &code.Element{Kind: code.KindComment}
	switch tok.Kind {
	case TokenXMLComment:
		c.CommentKind = code.CommentXMLLine
		c.Text = code.InlineText(tok.Literal[3:])
	case TokenBlockComment:
		c.CommentKind = code.CommentBlock
		c.Text = p.commentText(tok.Literal, p.lineIndent(idx))
	default:
		c.CommentKind = code.CommentLine
		c.Text = code.InlineText(tok.Literal[2:])
	}
	return c
}

// trailingComment consumes a comment that follows on the same line.
func (p *Parser) trailingComment() *code.Element {
	i := 0
	if p.raw(0).Kind == TokenWhitespace {
		i = 1
	}
	tok := p.raw(i)
	switch tok.Kind {
	case TokenLineComment, TokenXMLComment:
		if _, _, ok := regionMarker(tok); ok {
			return nil
		}
	case TokenBlockComment:
		if strings.Contains(tok.Literal, "\n") {
			return nil
		}
	default:
		return nil
	}
	p.pos += i
	c := p.commentElement(p.pos)
	p.pos++
	return c
}
