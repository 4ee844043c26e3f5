package parser

import (
	"strings"

	"github.com/dhamidi/arrange/code"
)

// parseDeclaration parses one declaration statement. Most produce a single
// element; field and event statements with several declarators produce one
// element per declarator.
func (p *Parser) parseDeclaration(sc scope) []*code.Element {
	tok := p.peek()
	switch {
	case tok.Is("using") && sc != scopeType:
		return []*code.Element{p.parseUsing(sc, false)}
	case tok.Is("global") && p.peekN(1).Is("using"):
		p.advance()
		return []*code.Element{p.parseUsing(sc, true)}
	case tok.Is("namespace"):
		if sc == scopeType {
			p.errorf(tok, "Unexpected namespace")
		}
		return []*code.Element{p.parseNamespace(sc)}
	}

	access, mods := p.parseModifiers()
	tok = p.peek()
	switch {
	case tok.Is("class"), tok.Is("struct"), tok.Is("interface"), tok.Is("enum"):
		return []*code.Element{p.parseTypeDecl(access, mods)}
	case tok.Is("delegate"):
		return []*code.Element{p.parseDelegate(access, mods)}
	case tok.Is("event"):
		return p.parseEvent(access, mods)
	case tok.Kind == TokenTilde:
		return []*code.Element{p.parseDestructor(access, mods)}
	case tok.Is("implicit"), tok.Is("explicit"):
		return []*code.Element{p.parseConversionOperator(access, mods)}
	case tok.Kind == TokenIdent && p.peekN(1).Kind == TokenLParen:
		if sc != scopeType {
			p.errorf(tok, "Unexpected %s", tok.Literal)
		}
		return []*code.Element{p.parseConstructor(access, mods)}
	}

	typ := p.parseType()
	if p.checkWord("operator") {
		return []*code.Element{p.parseOperator(access, mods, typ)}
	}
	if p.checkWord("this") {
		p.advance()
		return []*code.Element{p.parseIndexer(access, mods, typ, "this")}
	}

	name := p.parseMemberName()
	if strings.HasSuffix(name, ".this") {
		return []*code.Element{p.parseIndexer(access, mods, typ, name)}
	}
	tok = p.peek()
	switch tok.Kind {
	case TokenLParen, TokenLT:
		return []*code.Element{p.parseMethod(access, mods, typ, name)}
	case TokenLBrace, TokenArrow:
		return []*code.Element{p.parseProperty(access, mods, typ, name)}
	case TokenAssign, TokenSemicolon, TokenComma:
		return p.parseDeclarators(code.KindField, access, mods, typ, name)
	}
	p.errorf(tok, "Unexpected %s", describe(tok))
	return nil
}

func describe(tok Token) string {
	if tok.Kind == TokenEOF {
		return "end of file"
	}
	return "'" + tok.Literal + "'"
}

func (p *Parser) parseModifiers() (code.Access, code.Modifiers) {
	var access code.Access
	var mods code.Modifiers
	for {
		tok := p.peek()
		switch {
		case tok.Is("public"):
			access |= code.AccessPublic
		case tok.Is("private"):
			access |= code.AccessPrivate
		case tok.Is("protected"):
			access |= code.AccessProtected
		case tok.Is("internal"):
			access |= code.AccessInternal
		case tok.Is("ref"):
			next := p.peekN(1)
			if !next.Is("struct") && !next.Is("partial") {
				return access, mods
			}
			mods |= code.Ref
		case tok.Kind == TokenKeyword:
			m, ok := code.ModifierForKeyword(tok.Literal)
			if !ok {
				return access, mods
			}
			mods |= m
		case tok.Is("async"), tok.Is("partial"), tok.Is("required"):
			next := p.peekN(1)
			if next.Kind != TokenIdent && next.Kind != TokenKeyword {
				return access, mods
			}
			m, _ := code.ModifierForKeyword(tok.Literal)
			mods |= m
		default:
			return access, mods
		}
		p.advance()
	}
}

func (p *Parser) parseUsing(sc scope, global bool) *code.Element {
	p.advance()
	e := &code.Element{Kind: code.KindUsing, Global: global}
	if p.checkWord("static") {
		p.advance()
		e.Modifiers |= code.Static
	}
	if p.check(TokenIdent) && p.peekN(1).Kind == TokenAssign {
		e.Name = p.advance().Literal
		p.advance()
		e.Redefine = p.parseType()
	} else {
		e.Name = p.parseType()
	}
	p.expect(TokenSemicolon)
	e.Movable = !global && !(e.Redefine != "" && sc != scopeRoot)
	e.TrailingComment = p.trailingComment()
	return e
}

func (p *Parser) parseNamespace(sc scope) *code.Element {
	p.advance()
	e := &code.Element{Kind: code.KindNamespace}
	p.skipTrivia()
	start := p.pos
	p.parseQualifiedName()
	e.Name = p.spanText(start, p.pos)

	if p.check(TokenSemicolon) {
		semi := p.advance()
		if sc != scopeRoot {
			p.errorf(semi, "File-scoped namespace must be declared at the top level")
		}
		e.FileScoped = true
		e.TrailingComment = p.trailingComment()
		saved := p.takeStray()
		children, st := p.parseElements(scopeNamespace)
		if st.kind != stopEOF {
			p.unexpectedStop(st, "end of file")
		}
		e.Children = children
		p.stray = saved
		return e
	}

	p.expect(TokenLBrace)
	e.BraceComment = p.trailingComment()
	saved := p.takeStray()
	children, st := p.parseElements(scopeNamespace)
	if st.kind != stopBrace {
		p.unexpectedStop(st, "}")
	}
	p.pos++
	p.matchSameLine(TokenSemicolon)
	e.Children = children
	e.TrailingComment = p.trailingComment()
	p.stray = saved
	return e
}

var typeKinds = map[string]code.TypeKind{
	"class":     code.TypeClass,
	"struct":    code.TypeStruct,
	"interface": code.TypeInterface,
	"enum":      code.TypeEnum,
}

func (p *Parser) parseTypeDecl(access code.Access, mods code.Modifiers) *code.Element {
	kw := p.advance()
	e := &code.Element{
		Kind:      code.KindType,
		TypeKind:  typeKinds[kw.Literal],
		Access:    access,
		Modifiers: mods,
	}
	e.Name = p.expectIdent().Literal
	if p.check(TokenLT) {
		e.TypeParameters = p.parseTypeParameterList()
	}
	if p.match(TokenColon) {
		for {
			e.Implements = append(e.Implements, p.parseType())
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.parseConstraints(e)

	open := p.expect(TokenLBrace)
	if e.TypeKind == code.TypeEnum {
		start := p.pos
		end := p.skipBalanced(open)
		e.Body = p.text(start, end, true, 0)
	} else {
		e.BraceComment = p.trailingComment()
		saved := p.takeStray()
		children, st := p.parseElements(scopeType)
		if st.kind != stopBrace {
			p.unexpectedStop(st, "}")
		}
		p.pos++
		e.Children = children
		p.stray = saved
	}
	p.matchSameLine(TokenSemicolon)
	e.TrailingComment = p.trailingComment()
	return e
}

func (p *Parser) parseDelegate(access code.Access, mods code.Modifiers) *code.Element {
	p.advance()
	e := &code.Element{Kind: code.KindDelegate, Access: access, Modifiers: mods}
	e.Type = p.parseType()
	e.Name = p.expectIdent().Literal
	if p.check(TokenLT) {
		e.TypeParameters = p.parseTypeParameterList()
	}
	e.Parameters = p.parseParameters(TokenLParen)
	p.parseConstraints(e)
	p.expect(TokenSemicolon)
	e.TrailingComment = p.trailingComment()
	return e
}

func (p *Parser) parseEvent(access code.Access, mods code.Modifiers) []*code.Element {
	p.advance()
	typ := p.parseType()
	name := p.parseMemberName()
	if p.check(TokenLBrace) {
		e := &code.Element{Kind: code.KindEvent, Access: access, Modifiers: mods, Type: typ, Name: name}
		e.Body = p.parseBody()
		e.TrailingComment = p.trailingComment()
		return []*code.Element{e}
	}
	return p.parseDeclarators(code.KindEvent, access, mods, typ, name)
}

// parseDeclarators parses "a [= x], b [= y];" after the type and first name.
func (p *Parser) parseDeclarators(kind code.Kind, access code.Access, mods code.Modifiers, typ, name string) []*code.Element {
	var out []*code.Element
	for {
		e := &code.Element{Kind: kind, Access: access, Modifiers: mods, Type: typ, Name: name}
		if p.match(TokenAssign) {
			e.Initializer = p.parseExpression(true)
		}
		out = append(out, e)
		if !p.match(TokenComma) {
			break
		}
		name = p.expectIdent().Literal
	}
	p.expect(TokenSemicolon)
	out[len(out)-1].TrailingComment = p.trailingComment()
	return out
}

func (p *Parser) parseConstructor(access code.Access, mods code.Modifiers) *code.Element {
	e := &code.Element{Kind: code.KindConstructor, Access: access, Modifiers: mods}
	e.Name = p.advance().Literal
	e.Parameters = p.parseParameters(TokenLParen)
	if p.match(TokenColon) {
		tok := p.peek()
		if !tok.Is("base") && !tok.Is("this") {
			p.errorf(tok, "Expected base or this")
		}
		p.skipTrivia()
		start := p.pos
		p.advance()
		open := p.expect(TokenLParen)
		end := p.skipBalanced(open)
		e.Reference = p.text(start, end+1, false, p.declIndent)
	}
	p.parseMemberBody(e)
	return e
}

func (p *Parser) parseDestructor(access code.Access, mods code.Modifiers) *code.Element {
	p.advance()
	e := &code.Element{Kind: code.KindConstructor, Access: access, Modifiers: mods}
	e.Name = "~" + p.expectIdent().Literal
	e.Parameters = p.parseParameters(TokenLParen)
	p.parseMemberBody(e)
	return e
}

func (p *Parser) parseConversionOperator(access code.Access, mods code.Modifiers) *code.Element {
	kw := p.advance()
	e := &code.Element{Kind: code.KindMethod, Access: access, Modifiers: mods, Operator: code.OperatorImplicit}
	if kw.Literal == "explicit" {
		e.Operator = code.OperatorExplicit
	}
	p.expectWord("operator")
	e.Type = p.parseType()
	e.Name = e.Type
	e.Parameters = p.parseParameters(TokenLParen)
	p.parseMemberBody(e)
	return e
}

func (p *Parser) parseOperator(access code.Access, mods code.Modifiers, typ string) *code.Element {
	p.advance()
	e := &code.Element{Kind: code.KindMethod, Access: access, Modifiers: mods, Type: typ, Operator: code.OperatorSymbol}
	var sb strings.Builder
	for !p.check(TokenLParen) {
		tok := p.advance()
		if tok.Kind == TokenEOF || tok.Kind == TokenSemicolon || tok.Kind == TokenLBrace {
			p.errorf(tok, "Expected (")
		}
		sb.WriteString(tok.Literal)
	}
	e.Name = sb.String()
	e.Parameters = p.parseParameters(TokenLParen)
	p.parseMemberBody(e)
	return e
}

func (p *Parser) parseIndexer(access code.Access, mods code.Modifiers, typ, name string) *code.Element {
	e := &code.Element{Kind: code.KindProperty, Access: access, Modifiers: mods, Type: typ, Name: name}
	e.IndexParameters = p.parseParameters(TokenLBracket)
	p.parsePropertyBody(e)
	return e
}

func (p *Parser) parseMethod(access code.Access, mods code.Modifiers, typ, name string) *code.Element {
	e := &code.Element{Kind: code.KindMethod, Access: access, Modifiers: mods, Type: typ, Name: name}
	if p.check(TokenLT) {
		e.TypeParameters = p.parseTypeParameterList()
	}
	e.Parameters = p.parseParameters(TokenLParen)
	p.parseConstraints(e)
	p.parseMemberBody(e)
	return e
}

func (p *Parser) parseProperty(access code.Access, mods code.Modifiers, typ, name string) *code.Element {
	e := &code.Element{Kind: code.KindProperty, Access: access, Modifiers: mods, Type: typ, Name: name}
	p.parsePropertyBody(e)
	return e
}

func (p *Parser) parsePropertyBody(e *code.Element) {
	if p.match(TokenArrow) {
		e.ExpressionBody = p.parseExpression(false)
		p.expect(TokenSemicolon)
	} else {
		e.Body = p.parseBody()
		if p.match(TokenAssign) {
			e.Initializer = p.parseExpression(false)
			p.expect(TokenSemicolon)
		}
	}
	e.TrailingComment = p.trailingComment()
}

// parseMemberBody parses a block body, an expression body or a bare ';'.
func (p *Parser) parseMemberBody(e *code.Element) {
	switch {
	case p.check(TokenLBrace):
		e.Body = p.parseBody()
	case p.match(TokenArrow):
		e.ExpressionBody = p.parseExpression(false)
		p.expect(TokenSemicolon)
	default:
		p.expect(TokenSemicolon)
	}
	e.TrailingComment = p.trailingComment()
}

func (p *Parser) parseBody() *code.Text {
	open := p.expect(TokenLBrace)
	start := p.pos
	end := p.skipBalanced(open)
	return p.text(start, end, true, 0)
}

func (p *Parser) parseParameters(kind TokenKind) *code.Text {
	open := p.expect(kind)
	start := p.pos
	end := p.skipBalanced(open)
	return p.text(start, end, false, p.declIndent)
}

var closers = map[TokenKind]TokenKind{
	TokenLBrace:   TokenRBrace,
	TokenLParen:   TokenRParen,
	TokenLBracket: TokenRBracket,
}

// skipBalanced consumes raw tokens through the token closing open, which
// has already been consumed, and returns the closer's index.
func (p *Parser) skipBalanced(open Token) int {
	closer := closers[open.Kind]
	depth := 1
	for {
		tok := p.raw(0)
		switch tok.Kind {
		case TokenEOF:
			p.errorf(tok, "Expected %s", closer)
		case open.Kind:
			depth++
		case closer:
			depth--
			if depth == 0 {
				idx := p.pos
				p.pos++
				return idx
			}
		}
		p.pos++
	}
}

// parseExpression scans an initializer or expression body up to, not
// including, the ';' (or ',' when atComma) that ends it at nesting depth
// zero.
func (p *Parser) parseExpression(atComma bool) *code.Text {
	p.skipLayout()
	start := p.pos
	depth := 0
	for {
		tok := p.raw(0)
		switch tok.Kind {
		case TokenEOF:
			p.errorf(tok, "Expected ;")
		case TokenLBrace, TokenLParen, TokenLBracket:
			depth++
		case TokenRBrace, TokenRParen, TokenRBracket:
			if depth == 0 {
				p.errorf(tok, "Expected ;")
			}
			depth--
		case TokenLT:
			cp := p.mark()
			if p.scanTypeArguments() {
				p.stray = p.stray[:cp.stray]
				continue
			}
			p.reset(cp)
		case TokenSemicolon:
			if depth == 0 {
				return p.text(start, p.lastSignificant(start, p.pos), false, p.declIndent)
			}
		case TokenComma:
			if depth == 0 && atComma {
				return p.text(start, p.lastSignificant(start, p.pos), false, p.declIndent)
			}
		}
		p.pos++
	}
}

// lastSignificant returns the end of [from, to) with trailing layout removed.
func (p *Parser) lastSignificant(from, to int) int {
	for to > from {
		k := p.tokens[to-1].Kind
		if k != TokenWhitespace && k != TokenNewline {
			break
		}
		to--
	}
	return to
}
