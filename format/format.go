// Package format renders element trees: as C# source, as JSON, or as a
// one-line-per-declaration listing.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/config"
)

type Encoder interface {
	Encode(elems []*code.Element) error
}

// Names lists the encoders NewEncoder knows about.
func Names() []string {
	return []string{"csharp", "json", "lines"}
}

func NewEncoder(name string, w io.Writer, f config.Formatting) (Encoder, error) {
	switch name {
	case "csharp", "cs":
		return NewCSharpWriter(w, f), nil
	case "json":
		return NewTreeJSONEncoder(w), nil
	case "lines":
		return NewLineEncoder(w), nil
	}
	return nil, code.RangeError("unknown output format %q", name)
}

// Sprint renders elems as C# source.
func Sprint(elems []*code.Element, f config.Formatting) (string, error) {
	var sb strings.Builder
	if err := NewCSharpWriter(&sb, f).Write(elems); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return sb.String(), nil
}
