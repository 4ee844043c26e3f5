package parser

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWhitespace
	TokenNewline
	TokenLineComment
	TokenXMLComment
	TokenBlockComment
	TokenDirective

	TokenIdent
	TokenKeyword
	TokenNumber
	TokenString
	TokenChar

	// Punctuators
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLT
	TokenGT
	TokenSemicolon
	TokenComma
	TokenDot
	TokenColon
	TokenDoubleColon
	TokenAssign
	TokenArrow
	TokenQuestion
	TokenTilde
	TokenStar
	TokenOperator
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:          "EOF",
	TokenWhitespace:   "Whitespace",
	TokenNewline:      "Newline",
	TokenLineComment:  "LineComment",
	TokenXMLComment:   "XMLComment",
	TokenBlockComment: "BlockComment",
	TokenDirective:    "Directive",
	TokenIdent:        "Ident",
	TokenKeyword:      "Keyword",
	TokenNumber:       "Number",
	TokenString:       "String",
	TokenChar:         "Char",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenLBracket:     "[",
	TokenRBracket:     "]",
	TokenLT:           "<",
	TokenGT:           ">",
	TokenSemicolon:    ";",
	TokenComma:        ",",
	TokenDot:          ".",
	TokenColon:        ":",
	TokenDoubleColon:  "::",
	TokenAssign:       "=",
	TokenArrow:        "=>",
	TokenQuestion:     "?",
	TokenTilde:        "~",
	TokenStar:         "*",
	TokenOperator:     "Operator",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

// IsTrivia reports whether the token carries no syntax: layout or comments.
func (t Token) IsTrivia() bool {
	switch t.Kind {
	case TokenWhitespace, TokenNewline, TokenLineComment, TokenXMLComment, TokenBlockComment:
		return true
	}
	return false
}

func (t Token) IsComment() bool {
	switch t.Kind {
	case TokenLineComment, TokenXMLComment, TokenBlockComment:
		return true
	}
	return false
}

// Is reports whether the token is the keyword or contextual identifier word.
func (t Token) Is(word string) bool {
	return (t.Kind == TokenKeyword || t.Kind == TokenIdent) && t.Literal == word
}

// punctuators is searched longest first.
var punctuators = map[string]TokenKind{
	"??=": TokenOperator,
	"<<=": TokenOperator,
	"...": TokenOperator,
	"=>":  TokenArrow,
	"::":  TokenDoubleColon,
	"==":  TokenOperator,
	"!=":  TokenOperator,
	"<=":  TokenOperator,
	"&&":  TokenOperator,
	"||":  TokenOperator,
	"??":  TokenOperator,
	"?.":  TokenOperator,
	"++":  TokenOperator,
	"--":  TokenOperator,
	"->":  TokenOperator,
	"+=":  TokenOperator,
	"-=":  TokenOperator,
	"*=":  TokenOperator,
	"/=":  TokenOperator,
	"%=":  TokenOperator,
	"&=":  TokenOperator,
	"|=":  TokenOperator,
	"^=":  TokenOperator,
	"..":  TokenOperator,
	"{":   TokenLBrace,
	"}":   TokenRBrace,
	"(":   TokenLParen,
	")":   TokenRParen,
	"[":   TokenLBracket,
	"]":   TokenRBracket,
	"<":   TokenLT,
	">":   TokenGT,
	";":   TokenSemicolon,
	",":   TokenComma,
	".":   TokenDot,
	":":   TokenColon,
	"=":   TokenAssign,
	"?":   TokenQuestion,
	"~":   TokenTilde,
	"*":   TokenStar,
	"+":   TokenOperator,
	"-":   TokenOperator,
	"/":   TokenOperator,
	"%":   TokenOperator,
	"&":   TokenOperator,
	"|":   TokenOperator,
	"^":   TokenOperator,
	"!":   TokenOperator,
	"@":   TokenOperator,
}

var keywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true, "default": true,
	"delegate": true, "do": true, "double": true, "else": true, "enum": true,
	"event": true, "explicit": true, "extern": true, "false": true, "finally": true,
	"fixed": true, "float": true, "for": true, "foreach": true, "goto": true,
	"if": true, "implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true, "namespace": true,
	"new": true, "null": true, "object": true, "operator": true, "out": true,
	"override": true, "params": true, "private": true, "protected": true, "public": true,
	"readonly": true, "ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true, "string": true,
	"struct": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "uint": true, "ulong": true, "unchecked": true,
	"unsafe": true, "ushort": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}

// predefinedTypes are keywords that name types.
var predefinedTypes = map[string]bool{
	"bool": true, "byte": true, "char": true, "decimal": true, "double": true,
	"float": true, "int": true, "long": true, "object": true, "sbyte": true,
	"short": true, "string": true, "uint": true, "ulong": true, "ushort": true,
	"void": true,
}

func LookupKeyword(ident string) TokenKind {
	if keywords[ident] {
		return TokenKeyword
	}
	return TokenIdent
}
