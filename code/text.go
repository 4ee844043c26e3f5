package code

import "strings"

// Line is one line of opaque source text. Indent is measured in columns
// relative to the text's base indentation. Verbatim lines continue a
// multi-line string literal and are reproduced byte for byte, ignoring Indent.
// Directive lines are preprocessor lines that sat left of the text's base
// indentation; their Indent is the absolute source column.
type Line struct {
	Indent    int
	Content   string
	Verbatim  bool
	Directive bool
}

// Text is an opaque run of source text (a body, an initializer, a parameter
// list) kept line by line so that it can be re-indented on output.
type Text struct {
	Lines  []Line
	Inline bool
}

// InlineText wraps a single-line string.
func InlineText(s string) *Text {
	return &Text{Lines: []Line{{Content: s}}, Inline: true}
}

// Empty reports whether the text has no non-blank content.
func (t *Text) Empty() bool {
	if t == nil {
		return true
	}
	for _, l := range t.Lines {
		if l.Verbatim || strings.TrimSpace(l.Content) != "" {
			return false
		}
	}
	return true
}

// String renders the text with relative indentation expanded to spaces.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for i, l := range t.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if !l.Verbatim && l.Content != "" {
			sb.WriteString(strings.Repeat(" ", l.Indent))
		}
		sb.WriteString(l.Content)
	}
	return sb.String()
}

// Flat joins the lines with single spaces, for matching against attribute
// values and references.
func (t *Text) Flat() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Lines))
	for _, l := range t.Lines {
		if s := strings.TrimSpace(l.Content); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
