package parser

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int

	// lineStart is true until something other than blanks is seen on the
	// current line; only then can '#' open a directive.
	lineStart bool
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:     input,
		file:      file,
		line:      1,
		column:    1,
		lineStart: true,
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func (l *Lexer) errorf(at Position, format string, args ...any) error {
	return newSyntaxError(at, format, args...)
}

// NextToken returns the next token. Layout and comments are returned as
// tokens of their own so that callers can reproduce the source exactly.
func (l *Lexer) NextToken() (Token, error) {
	start := l.Position()
	if l.atEOF() {
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}, nil
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		l.lineStart = true
		return l.token(TokenNewline, start), nil
	case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
		return l.scanWhitespace(start), nil
	case ch == '#' && l.lineStart:
		return l.scanDirective(start), nil
	}

	l.lineStart = false
	switch {
	case ch == '/' && l.peekN(1) == '/':
		return l.scanLineComment(start), nil
	case ch == '/' && l.peekN(1) == '*':
		return l.scanBlockComment(start)
	case isIdentStart(ch):
		return l.scanIdentOrKeyword(start), nil
	case ch == '@' && isIdentStart(l.peekN(1)):
		l.advance()
		return l.scanIdentOrKeyword(start), nil
	case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber(start), nil
	case ch == '\'':
		return l.scanCharLiteral(start)
	case ch == '"' || ch == '@' || ch == '$':
		if tok, ok, err := l.scanStringLiteral(start); ok || err != nil {
			return tok, err
		}
	}
	return l.scanOperator(start)
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v' {
			l.advance()
		} else {
			break
		}
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanDirective(start Position) Token {
	for !l.atEOF() && l.peek() != '\n' {
		l.advance()
	}
	tok := l.token(TokenDirective, start)
	tok.Literal = trimRightSpace(tok.Literal)
	return tok
}

func (l *Lexer) scanLineComment(start Position) Token {
	kind := TokenLineComment
	if l.peekN(2) == '/' && l.peekN(3) != '/' {
		kind = TokenXMLComment
	}
	for !l.atEOF() && l.peek() != '\n' {
		l.advance()
	}
	tok := l.token(kind, start)
	tok.Literal = trimRightSpace(tok.Literal)
	return tok
}

func (l *Lexer) scanBlockComment(start Position) (Token, error) {
	l.advanceN(2)
	for {
		if l.atEOF() {
			return Token{}, l.errorf(start, "Unterminated block comment")
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(TokenBlockComment, start), nil
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	tok := l.token(TokenIdent, start)
	if tok.Literal[0] != '@' {
		tok.Kind = LookupKeyword(tok.Literal)
	}
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X' || l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	} else {
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		if l.peek() == '.' && isDigit(l.peekN(1)) {
			l.advance()
			for isDigit(l.peek()) || l.peek() == '_' {
				l.advance()
			}
		}
		if l.peek() == 'e' || l.peek() == 'E' {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	// type suffixes: u, l, ul, f, d, m
	for isSuffix(l.peek()) {
		l.advance()
	}
	return l.token(TokenNumber, start)
}

func (l *Lexer) scanCharLiteral(start Position) (Token, error) {
	l.advance()
	for {
		ch := l.peek()
		if l.atEOF() || ch == '\n' {
			return Token{}, l.errorf(start, "Unterminated character literal")
		}
		if ch == '\\' {
			l.advanceN(2)
			continue
		}
		l.advance()
		if ch == '\'' {
			break
		}
	}
	return l.token(TokenChar, start), nil
}

// scanStringLiteral handles every string form: regular, verbatim (@),
// interpolated ($, $@, @$) and raw (three or more quotes, optionally
// preceded by dollar signs). ok is false when the input at start is not a
// string after all.
func (l *Lexer) scanStringLiteral(start Position) (tok Token, ok bool, err error) {
	i := 0
	dollars := 0
	verbatim := false
	for {
		switch l.peekN(i) {
		case '$':
			dollars++
			i++
			continue
		case '@':
			if verbatim {
				return Token{}, false, nil
			}
			verbatim = true
			i++
			continue
		}
		break
	}
	if l.peekN(i) != '"' {
		return Token{}, false, nil
	}
	l.advanceN(i)

	quotes := 0
	for l.peekN(quotes) == '"' {
		quotes++
	}
	switch {
	case quotes >= 3 && !verbatim:
		err = l.scanRawString(start, quotes)
	case verbatim:
		l.advance()
		err = l.scanVerbatimString(start, dollars > 0)
	default:
		l.advance()
		err = l.scanRegularString(start, dollars > 0)
	}
	if err != nil {
		return Token{}, true, err
	}
	return l.token(TokenString, start), true, nil
}

func (l *Lexer) scanRegularString(start Position, interpolated bool) error {
	for {
		ch := l.peek()
		switch {
		case l.atEOF() || ch == '\n':
			return l.errorf(start, "Unterminated string literal")
		case ch == '\\':
			l.advanceN(2)
		case ch == '"':
			l.advance()
			return nil
		case interpolated && ch == '{' && l.peekN(1) == '{':
			l.advanceN(2)
		case interpolated && ch == '{':
			l.advance()
			if err := l.skipInterpolation(start); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanVerbatimString(start Position, interpolated bool) error {
	for {
		ch := l.peek()
		switch {
		case l.atEOF():
			return l.errorf(start, "Unterminated string literal")
		case ch == '"' && l.peekN(1) == '"':
			l.advanceN(2)
		case ch == '"':
			l.advance()
			return nil
		case interpolated && ch == '{' && l.peekN(1) == '{':
			l.advanceN(2)
		case interpolated && ch == '{':
			l.advance()
			if err := l.skipInterpolation(start); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanRawString(start Position, quotes int) error {
	l.advanceN(quotes)
	for {
		if l.atEOF() {
			return l.errorf(start, "Unterminated raw string literal")
		}
		if l.peek() == '"' {
			n := 0
			for l.peekN(n) == '"' {
				n++
			}
			l.advanceN(n)
			if n >= quotes {
				return nil
			}
			continue
		}
		l.advance()
	}
}

// skipInterpolation consumes an interpolation hole up to its closing brace,
// scanning nested literals so that their braces and quotes do not count.
func (l *Lexer) skipInterpolation(start Position) error {
	depth := 1
	for depth > 0 {
		if l.atEOF() {
			return l.errorf(start, "Unterminated string literal")
		}
		holeStart := l.Position()
		switch ch := l.peek(); ch {
		case '{':
			depth++
			l.advance()
		case '}':
			depth--
			l.advance()
		case '\'':
			if _, err := l.scanCharLiteral(holeStart); err != nil {
				return err
			}
		case '"', '@', '$':
			if _, ok, err := l.scanStringLiteral(holeStart); err != nil {
				return err
			} else if !ok {
				l.advance()
			}
		default:
			l.advance()
		}
	}
	return nil
}

func (l *Lexer) scanOperator(start Position) (Token, error) {
	for n := 3; n >= 1; n-- {
		if l.pos+n > len(l.input) {
			continue
		}
		if kind, ok := punctuators[string(l.input[l.pos:l.pos+n])]; ok {
			l.advanceN(n)
			return l.token(kind, start), nil
		}
	}
	ch := l.advance()
	return Token{}, l.errorf(start, "Unexpected character %q", ch)
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

func isSuffix(ch byte) bool {
	switch ch {
	case 'u', 'U', 'l', 'L', 'f', 'F', 'd', 'D', 'm', 'M':
		return true
	}
	return false
}

func trimRightSpace(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[:end]
}
