package parser

import (
	"strings"

	"github.com/dhamidi/arrange/code"
)

// parseType consumes a type reference and returns its source text.
func (p *Parser) parseType() string {
	p.skipTrivia()
	start := p.pos
	p.parseTypeRef()
	return p.spanText(start, p.pos)
}

func (p *Parser) parseTypeRef() {
	if p.checkWord("ref") {
		p.advance()
		if p.checkWord("readonly") {
			p.advance()
		}
	}
	tok := p.peek()
	switch {
	case tok.Kind == TokenLParen:
		p.advance()
		for {
			p.parseTypeRef()
			if p.check(TokenIdent) {
				p.advance()
			}
			if !p.match(TokenComma) {
				break
			}
		}
		p.expect(TokenRParen)
	case tok.Kind == TokenKeyword && predefinedTypes[tok.Literal]:
		p.advance()
	case tok.Kind == TokenIdent:
		p.parseQualifiedName()
	default:
		p.errorf(tok, "Expected type")
	}
	for {
		switch {
		case p.check(TokenQuestion), p.check(TokenStar):
			p.advance()
		case p.check(TokenLBracket) && p.isRankSpecifier():
			p.advance()
			for p.match(TokenComma) {
			}
			p.expect(TokenRBracket)
		default:
			return
		}
	}
}

// isRankSpecifier reports whether the '[' ahead opens an array rank such as
// "[]" or "[,]" rather than an index parameter list or attribute.
func (p *Parser) isRankSpecifier() bool {
	i := 1
	for p.peekN(i).Kind == TokenComma {
		i++
	}
	return p.peekN(i).Kind == TokenRBracket
}

// parseQualifiedName parses a dotted name whose segments may carry type
// arguments, optionally with an alias qualifier ("global::System.Int32").
func (p *Parser) parseQualifiedName() {
	p.expectIdent()
	if p.match(TokenDoubleColon) {
		p.expectIdent()
	}
	if p.check(TokenLT) {
		p.parseTypeArgs()
	}
	for p.check(TokenDot) {
		p.advance()
		p.expectIdent()
		if p.check(TokenLT) {
			p.parseTypeArgs()
		}
	}
}

func (p *Parser) parseTypeArgs() {
	p.expect(TokenLT)
	for {
		// an empty argument is an unbound generic: Dictionary<,>
		if !p.check(TokenComma) && !p.check(TokenGT) {
			p.parseTypeRef()
		}
		if !p.match(TokenComma) {
			break
		}
	}
	p.expect(TokenGT)
}

// scanTypeArguments tentatively consumes a type argument list starting at
// '<'. It succeeds only if the list closes with a matching '>' and contains
// nothing but tokens that can appear inside type arguments. On failure the
// caller restores its checkpoint and treats '<' as an operator.
func (p *Parser) scanTypeArguments() bool {
	if p.advance().Kind != TokenLT {
		return false
	}
	depth := 1
	for depth > 0 {
		tok := p.advance()
		switch tok.Kind {
		case TokenLT:
			depth++
		case TokenGT:
			depth--
		case TokenIdent, TokenDot, TokenComma, TokenDoubleColon, TokenQuestion,
			TokenStar, TokenLBracket, TokenRBracket, TokenLParen, TokenRParen:
		case TokenKeyword:
			if !predefinedTypes[tok.Literal] {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// parseMemberName parses a member name, including an explicit interface
// qualifier such as "IEnumerable<T>.GetEnumerator" or "IList.this".
// Type arguments after the last segment are left for the caller: they are
// the member's type parameters.
func (p *Parser) parseMemberName() string {
	p.skipTrivia()
	start := p.pos
	for {
		if p.checkWord("this") {
			p.advance()
			break
		}
		p.expectIdent()
		if p.check(TokenLT) {
			cp := p.mark()
			if p.scanTypeArguments() && p.check(TokenDot) {
				p.advance()
				continue
			}
			p.reset(cp)
			break
		}
		if !p.check(TokenDot) {
			break
		}
		p.advance()
	}
	return p.spanText(start, p.pos)
}

func (p *Parser) parseTypeParameterList() []code.TypeParameter {
	p.expect(TokenLT)
	var params []code.TypeParameter
	for {
		p.skipTrivia()
		start := p.pos
		for p.check(TokenLBracket) {
			open := p.advance()
			p.skipBalanced(open)
		}
		if p.checkWord("in") || p.checkWord("out") {
			p.advance()
		}
		p.expectIdent()
		params = append(params, code.TypeParameter{Name: p.spanText(start, p.pos)})
		if !p.match(TokenComma) {
			break
		}
	}
	p.expect(TokenGT)
	return params
}

// typeParameterName strips attributes and variance from a declared type
// parameter.
func typeParameterName(decl string) string {
	fields := strings.Fields(decl)
	if len(fields) == 0 {
		return decl
	}
	name := fields[len(fields)-1]
	if i := strings.LastIndex(name, "]"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// parseConstraints parses any number of "where T : c1, c2" clauses.
func (p *Parser) parseConstraints(e *code.Element) {
	for p.checkWord("where") {
		p.advance()
		nameTok := p.expectIdent()
		idx := -1
		for i, tp := range e.TypeParameters {
			if typeParameterName(tp.Name) == nameTok.Literal {
				idx = i
				break
			}
		}
		if idx < 0 {
			p.errorf(nameTok, "Unknown type parameter '%s'", nameTok.Literal)
		}
		p.expect(TokenColon)

		var list []string
		for {
			tok := p.peek()
			switch {
			case tok.Kind == TokenLBrace, tok.Kind == TokenSemicolon, tok.Kind == TokenArrow,
				tok.Kind == TokenEOF, tok.Is("where"):
				p.errorf(tok, "Expected type parameter constraint")
			}
			if len(list) > 0 && list[len(list)-1] == "new()" {
				p.errorf(tok, "The new() constraint must be the last constraint specified")
			}
			var c string
			switch {
			case tok.Is("new"):
				p.advance()
				p.expect(TokenLParen)
				p.expect(TokenRParen)
				c = "new()"
			case tok.Is("class"), tok.Is("struct"), tok.Is("default"):
				p.advance()
				c = tok.Literal
				if p.match(TokenQuestion) {
					c += "?"
				}
			default:
				c = p.parseType()
			}
			list = append(list, c)
			if !p.match(TokenComma) {
				break
			}
		}
		e.TypeParameters[idx].Constraints = list
	}
}

// parseAttributeSection parses "[target: A(args), B]".
func (p *Parser) parseAttributeSection() *code.Element {
	p.declIndent = p.lineIndent(p.pos)
	p.advance()
	section := &code.Element{Kind: code.KindAttribute}
	if tok := p.peek(); (tok.Kind == TokenIdent || tok.Kind == TokenKeyword) && p.peekN(1).Kind == TokenColon {
		section.Target = tok.Literal
		p.advance()
		p.advance()
	}
	var names []string
	for !p.check(TokenRBracket) {
		a := &code.Element{Kind: code.KindAttribute}
		a.Name = p.parseType()
		if p.check(TokenLParen) {
			a.Parameters = p.parseParameters(TokenLParen)
		}
		names = append(names, a.Name)
		section.Children = append(section.Children, a)
		if !p.match(TokenComma) {
			break
		}
	}
	p.expect(TokenRBracket)
	section.Name = strings.Join(names, ", ")
	section.TrailingComment = p.trailingComment()
	return section
}
