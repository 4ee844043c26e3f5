package condition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/dhamidi/arrange/code"
)

// ParseError reports a malformed expression. It wraps ErrInvalidArgument.
type ParseError struct {
	Expr    string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid condition %q at offset %d: %s", e.Expr, e.Offset, e.Message)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidArgument
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokAttr
	tokString
	tokCompare
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

type parser struct {
	src  string
	toks []token
	pos  int
}

// Parse compiles a condition expression.
func Parse(src string) (Expression, error) {
	p := &parser{src: src}
	if err := p.scan(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return expr, nil
}

// MustParse is like Parse but panics on error. For expressions known to be
// valid, such as built-in defaults.
func MustParse(src string) Expression {
	expr, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return expr
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &ParseError{Expr: p.src, Offset: tok.offset, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) scan() error {
	s := p.src
	i := 0
	for i < len(s) {
		ch := s[i]
		start := i
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
			continue
		case strings.HasPrefix(s[i:], "$("):
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return &ParseError{Expr: s, Offset: i, Message: "unterminated attribute reference"}
			}
			p.toks = append(p.toks, token{tokAttr, strings.TrimSpace(s[i+2 : i+end]), start})
			i += end + 1
		case ch == '\'':
			var sb strings.Builder
			i++
			closed := false
			for i < len(s) {
				if s[i] == '\'' {
					if i+1 < len(s) && s[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteByte(s[i])
				i++
			}
			if !closed {
				return &ParseError{Expr: s, Offset: start, Message: "unterminated string"}
			}
			p.toks = append(p.toks, token{tokString, sb.String(), start})
		case strings.HasPrefix(s[i:], "=="), strings.HasPrefix(s[i:], "!="), strings.HasPrefix(s[i:], "=~"):
			p.toks = append(p.toks, token{tokCompare, s[i : i+2], start})
			i += 2
		case ch == ':':
			p.toks = append(p.toks, token{tokCompare, ":", start})
			i++
		case ch == '!':
			p.toks = append(p.toks, token{tokNot, "!", start})
			i++
		case ch == '(':
			p.toks = append(p.toks, token{tokLParen, "(", start})
			i++
		case ch == ')':
			p.toks = append(p.toks, token{tokRParen, ")", start})
			i++
		case isLetter(ch):
			for i < len(s) && isLetter(s[i]) {
				i++
			}
			word := s[start:i]
			switch {
			case strings.EqualFold(word, "And"):
				p.toks = append(p.toks, token{tokAnd, word, start})
			case strings.EqualFold(word, "Or"):
				p.toks = append(p.toks, token{tokOr, word, start})
			default:
				return &ParseError{Expr: s, Offset: start, Message: fmt.Sprintf("unexpected word %q", word)}
			}
		default:
			return &ParseError{Expr: s, Offset: start, Message: fmt.Sprintf("unexpected character %q", ch)}
		}
	}
	p.toks = append(p.toks, token{kind: tokEOF, offset: len(s)})
	return nil
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// parseExpr parses And/Or chains; both associate to the left with equal
// precedence.
func (p *parser) parseExpr() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.peek().kind {
		case tokAnd:
			op = OpAnd
		case tokOr:
			op = OpOr
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Expression, error) {
	switch tok := p.peek(); tok.kind {
	case tokNot:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil
	case tokLParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.advance(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected )")
		}
		return expr, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expression, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	opTok := p.advance()
	if opTok.kind != tokCompare {
		return nil, p.errorf(opTok, "expected comparison operator")
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	b := &Binary{Left: left, Right: right}
	switch opTok.text {
	case "==":
		b.Op = OpEqual
	case "!=":
		b.Op = OpNotEqual
	case ":":
		b.Op = OpContains
	case "=~":
		b.Op = OpMatches
		if lit, ok := right.(*Literal); ok {
			re, err := regexp.Compile(lit.Value)
			if err != nil {
				return nil, p.errorf(opTok, "invalid regular expression: %v", err)
			}
			b.re = re
		}
	}
	return b, nil
}

func (p *parser) parseOperand() (Expression, error) {
	tok := p.advance()
	switch tok.kind {
	case tokString:
		return &Literal{Value: tok.text}, nil
	case tokAttr:
		ref, err := ParseAttributePath(tok.text)
		if err != nil {
			return nil, p.errorf(tok, "%v", err)
		}
		return ref, nil
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of expression")
	}
	return nil, p.errorf(tok, "expected attribute or string, got %q", tok.text)
}

// attributePaths lists every attribute path that can appear in $(...).
func attributePaths() []string {
	var paths []string
	for _, name := range code.ElementAttributes() {
		paths = append(paths, name, "Element."+name, "Parent."+name)
	}
	for f := FileName; f <= FileAttributes; f++ {
		paths = append(paths, "File."+f.String())
	}
	return paths
}

// ParseAttributePath resolves "Name", "Element.Name", "Parent.Access" or
// "File.Path" to an attribute reference.
func ParseAttributePath(path string) (*AttributeRef, error) {
	scope, name := ScopeElement, path
	if i := strings.IndexByte(path, '.'); i >= 0 {
		prefix := path[:i]
		name = path[i+1:]
		switch {
		case strings.EqualFold(prefix, "Element"):
			scope = ScopeElement
		case strings.EqualFold(prefix, "Parent"):
			scope = ScopeParent
		case strings.EqualFold(prefix, "File"):
			scope = ScopeFile
		default:
			return nil, unknownAttribute(path)
		}
	}
	if scope == ScopeFile {
		for f, fname := range fileAttributeNames {
			if strings.EqualFold(fname, name) {
				return &AttributeRef{Scope: ScopeFile, File: f}, nil
			}
		}
		return nil, unknownAttribute(path)
	}
	attr, err := code.ParseElementAttribute(name)
	if err != nil || attr == code.AttrNone {
		return nil, unknownAttribute(path)
	}
	return &AttributeRef{Scope: scope, Element: attr}, nil
}

func unknownAttribute(path string) error {
	if s := Suggest(path, attributePaths()); s != "" {
		return fmt.Errorf("%w: unknown attribute %q (did you mean %q?)", ErrRange, path, s)
	}
	return fmt.Errorf("%w: unknown attribute %q", ErrRange, path)
}

// Suggest returns the candidate closest to input by edit distance, or ""
// when nothing is close enough to be a plausible typo.
func Suggest(input string, candidates []string) string {
	best, bestDistance := "", -1
	lower := strings.ToLower(input)
	for _, c := range candidates {
		d := edlib.LevenshteinDistance(lower, strings.ToLower(c))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = c, d
		}
	}
	if bestDistance < 0 || bestDistance > max(2, len(input)/3) {
		return ""
	}
	return best
}
