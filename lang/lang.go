// Package lang maps configured language handlers to the parser and writer
// that process their files.
package lang

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhamidi/arrange/arrange"
	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/condition"
	"github.com/dhamidi/arrange/config"
	"github.com/dhamidi/arrange/csharp/parser"
	"github.com/dhamidi/arrange/format"
)

// Language is the set of capabilities needed to arrange one language.
type Language struct {
	Name  string
	Parse func(src []byte, file string, f config.Formatting) ([]*code.Element, error)
	Write func(w io.Writer, elems []*code.Element, f config.Formatting) error
}

var languages = map[string]*Language{
	"csharp": {
		Name: "CSharp",
		Parse: func(src []byte, file string, f config.Formatting) ([]*code.Element, error) {
			return parser.ParseBytes(src, parser.WithFile(file), parser.WithTabSize(f.Tabs.SpacesPerTab))
		},
		Write: func(w io.Writer, elems []*code.Element, f config.Formatting) error {
			return format.NewCSharpWriter(w, f).Write(elems)
		},
	},
}

// Names lists the supported language names.
func Names() []string {
	names := make([]string, 0, len(languages))
	for _, l := range languages {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a language by name, ignoring case.
func Lookup(name string) (*Language, error) {
	if l, ok := languages[strings.ToLower(name)]; ok {
		return l, nil
	}
	if s := condition.Suggest(name, Names()); s != "" {
		return nil, code.RangeError("unsupported language %q (did you mean %q?)", name, s)
	}
	return nil, code.RangeError("unsupported language %q", name)
}

// ErrSkipped is returned by ForFile for files no handler accepts.
var ErrSkipped = errors.New("no handler for file")

// ForFile picks the language for path from the configured handlers. Files
// with an unknown extension, or rejected by the extension's filter, yield
// ErrSkipped.
func ForFile(cfg *config.Configuration, path string) (*Language, error) {
	h, ext := cfg.HandlerFor(filepath.Ext(path))
	if h == nil {
		return nil, fmt.Errorf("%w: %s", ErrSkipped, path)
	}
	if ext.Filter != nil {
		ok, err := condition.Evaluate(ext.Filter, &condition.FileSubject{Path: path})
		if err != nil {
			return nil, fmt.Errorf("filter for .%s files: %w", ext.Name, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSkipped, path)
		}
	}
	return Lookup(h.Language)
}

// Arrange runs the whole pipeline on one source text: parse, arrange, write.
// Windows line endings in src are kept in the result.
func (l *Language) Arrange(a *arrange.Arranger, f config.Formatting, file string, src []byte) ([]byte, error) {
	elems, err := l.Parse(src, file, f)
	if err != nil {
		return nil, err
	}
	arranged, err := a.Arrange(elems)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := l.Write(&buf, arranged, f); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if bytes.Contains(src, []byte("\r\n")) {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	return out, nil
}
