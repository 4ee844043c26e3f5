package parser

import (
	"errors"
	"testing"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer([]byte(src), "")
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken: %v", err)
		}
		if tok.Kind == TokenEOF {
			return toks
		}
		if tok.Kind == TokenWhitespace || tok.Kind == TokenNewline {
			continue
		}
		toks = append(toks, tok)
	}
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []TokenKind
		lits  []string
	}{
		{
			name:  "generic closers stay single",
			input: "List<List<int>>",
			kinds: []TokenKind{TokenIdent, TokenLT, TokenIdent, TokenLT, TokenKeyword, TokenGT, TokenGT},
		},
		{
			name:  "punctuators longest match",
			input: "a => b ?? c :: d",
			kinds: []TokenKind{TokenIdent, TokenArrow, TokenIdent, TokenOperator, TokenIdent, TokenDoubleColon, TokenIdent},
		},
		{
			name:  "contextual keywords are identifiers",
			input: "partial class where",
			kinds: []TokenKind{TokenIdent, TokenKeyword, TokenIdent},
		},
		{
			name:  "verbatim identifier",
			input: "@class",
			kinds: []TokenKind{TokenIdent},
			lits:  []string{"@class"},
		},
		{
			name:  "verbatim string with quotes and braces",
			input: `@"a ""b"" {" x`,
			kinds: []TokenKind{TokenString, TokenIdent},
			lits:  []string{`@"a ""b"" {"`, "x"},
		},
		{
			name:  "interpolated string with nested literal",
			input: `$"x {a + "}"} y" z`,
			kinds: []TokenKind{TokenString, TokenIdent},
			lits:  []string{`$"x {a + "}"} y"`, "z"},
		},
		{
			name:  "raw string",
			input: "\"\"\"\n  a { \" b\n  \"\"\";",
			kinds: []TokenKind{TokenString, TokenSemicolon},
		},
		{
			name:  "char literals",
			input: `'\'' '{'`,
			kinds: []TokenKind{TokenChar, TokenChar},
		},
		{
			name:  "comments",
			input: "// a\n/// b\n//// c\n/* d */",
			kinds: []TokenKind{TokenLineComment, TokenXMLComment, TokenLineComment, TokenBlockComment},
		},
		{
			name:  "directive at line start",
			input: "  #region Fields  \nx",
			kinds: []TokenKind{TokenDirective, TokenIdent},
			lits:  []string{"#region Fields", "x"},
		},
		{
			name:  "numbers",
			input: "0x1F 1.5e3f 10UL .5m",
			kinds: []TokenKind{TokenNumber, TokenNumber, TokenNumber, TokenNumber},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexAll(t, tt.input)
			if len(toks) != len(tt.kinds) {
				t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(tt.kinds))
			}
			for i, tok := range toks {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d: got %s, want %s", i, tok.Kind, tt.kinds[i])
				}
				if tt.lits != nil && tok.Literal != tt.lits[i] {
					t.Errorf("token %d: got %q, want %q", i, tok.Literal, tt.lits[i])
				}
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer([]byte("a\n  b"), "f.cs")
	var last Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind == TokenEOF {
			break
		}
		last = tok
	}
	if last.Literal != "b" {
		t.Fatalf("last token = %q", last.Literal)
	}
	if got := last.Span.Start.String(); got != "f.cs:2:3" {
		t.Errorf("position = %s, want f.cs:2:3", got)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
	}{
		{"unterminated string", "x = \"abc\ny", 1, 5},
		{"unterminated verbatim string", "x = @\"abc\n\ny", 1, 5},
		{"unterminated char", "\n 'a", 2, 2},
		{"unterminated block comment", "/* abc", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer([]byte(tt.input), "")
			var err error
			for {
				var tok Token
				tok, err = l.NextToken()
				if err != nil || tok.Kind == TokenEOF {
					break
				}
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("got %v, want *SyntaxError", err)
			}
			if se.Line != tt.line || se.Column != tt.column {
				t.Errorf("got %d:%d, want %d:%d", se.Line, se.Column, tt.line, tt.column)
			}
		})
	}
}
