package parser

import (
	"strings"

	"github.com/dhamidi/arrange/code"
)

// width measures leading whitespace in columns.
func (p *Parser) width(ws string) int {
	col := 0
	for i := 0; i < len(ws); i++ {
		if ws[i] == '\t' {
			col += p.tabSize - col%p.tabSize
		} else {
			col++
		}
	}
	return col
}

func leadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

// lineIndent returns the indentation width of the line holding token idx.
func (p *Parser) lineIndent(idx int) int {
	j := idx
	for j > 0 && p.tokens[j-1].Kind != TokenNewline {
		j--
	}
	if j < idx && p.tokens[j].Kind == TokenWhitespace {
		return p.width(p.tokens[j].Literal)
	}
	return 0
}

// spanText joins the tokens in [from, to) into a single line, dropping
// comments and folding line breaks into a space.
func (p *Parser) spanText(from, to int) string {
	var sb strings.Builder
	afterBreak := false
	for i := from; i < to; i++ {
		tok := p.tokens[i]
		switch tok.Kind {
		case TokenNewline:
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
			afterBreak = true
		case TokenWhitespace:
			if !afterBreak {
				sb.WriteString(tok.Literal)
			}
		case TokenLineComment, TokenXMLComment, TokenBlockComment:
		default:
			afterBreak = false
			sb.WriteString(tok.Literal)
		}
	}
	return strings.TrimSpace(sb.String())
}

type rawLine struct {
	indent   int
	content  string
	verbatim bool
}

func (l rawLine) directive() bool {
	return !l.verbatim && strings.HasPrefix(strings.TrimSpace(l.content), "#")
}

// text captures the tokens in [from, to) as line-structured text.
//
// Block bodies (body=true) drop the blank remainder of the opening line and
// the indentation before the closing brace, and are measured relative to
// their least indented line, not counting preprocessor lines. Other text starts mid-line on the declaration
// and continuation lines are measured relative to base.
func (p *Parser) text(from, to int, body bool, base int) *code.Text {
	var lines []rawLine
	var cur strings.Builder
	indent, verbatim, atStart := 0, false, false

	flush := func() {
		lines = append(lines, rawLine{indent: indent, content: cur.String(), verbatim: verbatim})
		cur.Reset()
		indent, verbatim = 0, false
	}

	for i := from; i < to; i++ {
		tok := p.tokens[i]
		switch {
		case tok.Kind == TokenNewline:
			flush()
			atStart = true
		case tok.Kind == TokenWhitespace && atStart:
			indent = p.width(tok.Literal)
			atStart = false
		default:
			atStart = false
			parts := strings.Split(tok.Literal, "\n")
			cur.WriteString(parts[0])
			for _, part := range parts[1:] {
				flush()
				if tok.Kind == TokenString {
					verbatim = true
					cur.WriteString(part)
					continue
				}
				ws := leadingSpace(part)
				indent = p.width(ws)
				cur.WriteString(part[len(ws):])
			}
		}
	}
	flush()

	if len(lines) == 1 {
		return code.InlineText(strings.TrimSpace(lines[0].content))
	}

	firstKept := true
	if body && strings.TrimSpace(lines[0].content) == "" {
		lines = lines[1:]
		firstKept = false
	}
	if n := len(lines); n > 0 && !lines[n-1].verbatim && strings.TrimSpace(lines[n-1].content) == "" {
		lines = lines[:n-1]
	}

	if body {
		base = -1
		for i, l := range lines {
			if (i == 0 && firstKept) || l.verbatim || l.directive() || strings.TrimSpace(l.content) == "" {
				continue
			}
			if base < 0 || l.indent < base {
				base = l.indent
			}
		}
		if base < 0 {
			base = 0
		}
	}

	t := &code.Text{Lines: make([]code.Line, 0, len(lines))}
	for i, l := range lines {
		switch {
		case l.verbatim:
			t.Lines = append(t.Lines, code.Line{Content: l.content, Verbatim: true})
		case strings.TrimSpace(l.content) == "":
			t.Lines = append(t.Lines, code.Line{})
		case i == 0 && firstKept:
			t.Lines = append(t.Lines, code.Line{Content: strings.TrimSpace(l.content)})
		case l.directive() && l.indent < base:
			t.Lines = append(t.Lines, code.Line{
				Indent:    l.indent,
				Content:   trimRightSpace(l.content),
				Directive: true,
			})
		default:
			t.Lines = append(t.Lines, code.Line{
				Indent:  max(0, l.indent-base),
				Content: trimRightSpace(l.content),
			})
		}
	}
	return t
}

// commentText splits a block comment into lines, measuring continuation
// lines relative to the indentation of the line the comment starts on.
func (p *Parser) commentText(literal string, base int) *code.Text {
	parts := strings.Split(literal, "\n")
	if len(parts) == 1 {
		return code.InlineText(literal)
	}
	t := &code.Text{}
	for i, part := range parts {
		if i == 0 {
			t.Lines = append(t.Lines, code.Line{Content: trimRightSpace(part)})
			continue
		}
		ws := leadingSpace(part)
		rest := trimRightSpace(part[len(ws):])
		if rest == "" {
			t.Lines = append(t.Lines, code.Line{})
			continue
		}
		t.Lines = append(t.Lines, code.Line{Indent: max(0, p.width(ws)-base), Content: rest})
	}
	return t
}
