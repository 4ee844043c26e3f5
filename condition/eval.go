package condition

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhamidi/arrange/code"
)

// Subject is what an expression is evaluated against: an ElementSubject or
// a FileSubject.
type Subject interface {
	subject()
}

// ElementSubject is an element together with the element that contains it.
// Parent is nil for root elements.
type ElementSubject struct {
	Element *code.Element
	Parent  *code.Element
}

// FileSubject is a source file. Info may be nil when only the path is known.
type FileSubject struct {
	Path string
	Info fs.FileInfo
}

func (ElementSubject) subject() {}
func (FileSubject) subject()    {}

// Evaluate reports whether subject satisfies expr. Comparisons are case
// sensitive on the raw attribute text.
func Evaluate(expr Expression, subject Subject) (bool, error) {
	if expr == nil {
		return false, fmt.Errorf("%w: nil expression", ErrInvalidArgument)
	}
	s, err := normalize(subject)
	if err != nil {
		return false, err
	}
	return eval(expr, s)
}

// normalize checks subject for nil values and dereferences pointers.
func normalize(subject Subject) (Subject, error) {
	switch s := subject.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil subject", ErrInvalidArgument)
	case *ElementSubject:
		if s == nil {
			return nil, fmt.Errorf("%w: nil subject", ErrInvalidArgument)
		}
		return normalize(*s)
	case ElementSubject:
		if s.Element == nil {
			return nil, fmt.Errorf("%w: nil element", ErrInvalidArgument)
		}
		return s, nil
	case *FileSubject:
		if s == nil {
			return nil, fmt.Errorf("%w: nil subject", ErrInvalidArgument)
		}
		return normalize(*s)
	case FileSubject:
		if s.Path == "" {
			return nil, fmt.Errorf("%w: empty file path", ErrInvalidArgument)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unsupported subject %T", ErrInvalidArgument, subject)
}

func eval(expr Expression, s Subject) (bool, error) {
	switch e := expr.(type) {
	case *Not:
		v, err := eval(e.Operand, s)
		return !v, err
	case *Binary:
		return evalBinary(e, s)
	case nil:
		return false, fmt.Errorf("%w: nil expression", ErrInvalidArgument)
	}
	return false, fmt.Errorf("%w: %s is not a boolean expression", ErrInvalidArgument, expr)
}

func evalBinary(b *Binary, s Subject) (bool, error) {
	switch b.Op {
	case OpAnd:
		left, err := eval(b.Left, s)
		if err != nil || !left {
			return false, err
		}
		return eval(b.Right, s)
	case OpOr:
		left, err := eval(b.Left, s)
		if err != nil || left {
			return left, err
		}
		return eval(b.Right, s)
	}

	left, err := value(b.Left, s)
	if err != nil {
		return false, err
	}
	right, err := value(b.Right, s)
	if err != nil {
		return false, err
	}
	switch b.Op {
	case OpEqual:
		return left == right, nil
	case OpNotEqual:
		return left != right, nil
	case OpContains:
		return strings.Contains(left, right), nil
	case OpMatches:
		re := b.re
		if re == nil {
			if re, err = regexp.Compile(right); err != nil {
				return false, fmt.Errorf("%w: invalid regular expression %q: %v", ErrInvalidArgument, right, err)
			}
		}
		return re.MatchString(left), nil
	}
	return false, fmt.Errorf("%w: unknown operator %d", ErrRange, int(b.Op))
}

func value(expr Expression, s Subject) (string, error) {
	switch e := expr.(type) {
	case *Literal:
		return e.Value, nil
	case *AttributeRef:
		return attributeValue(e, s)
	case nil:
		return "", fmt.Errorf("%w: missing operand", ErrInvalidArgument)
	}
	return "", fmt.Errorf("%w: %s is not an operand", ErrInvalidArgument, expr)
}

func attributeValue(ref *AttributeRef, s Subject) (string, error) {
	switch subj := s.(type) {
	case ElementSubject:
		switch ref.Scope {
		case ScopeElement:
			return code.AttributeValue(subj.Element, ref.Element)
		case ScopeParent:
			return code.AttributeValue(subj.Parent, ref.Element)
		case ScopeFile:
			return "", nil
		}
	case FileSubject:
		switch ref.Scope {
		case ScopeFile:
			return fileValue(subj, ref.File)
		case ScopeElement, ScopeParent:
			return "", nil
		}
	}
	return "", fmt.Errorf("%w: unknown scope %d", ErrRange, int(ref.Scope))
}

func fileValue(f FileSubject, attr FileAttribute) (string, error) {
	switch attr {
	case FileName:
		return filepath.Base(f.Path), nil
	case FilePath:
		return f.Path, nil
	case FileExtension:
		return strings.TrimPrefix(filepath.Ext(f.Path), "."), nil
	case FileAttributes:
		return fileAttributes(f), nil
	}
	return "", fmt.Errorf("%w: unknown file attribute %d", ErrRange, int(attr))
}

// fileAttributes describes a file's mode the way conditions refer to it:
// "Normal", or a comma separated list of ReadOnly, Hidden and Directory.
func fileAttributes(f FileSubject) string {
	var attrs []string
	if f.Info != nil {
		if f.Info.Mode().Perm()&0o222 == 0 {
			attrs = append(attrs, "ReadOnly")
		}
	}
	if strings.HasPrefix(filepath.Base(f.Path), ".") {
		attrs = append(attrs, "Hidden")
	}
	if f.Info != nil && f.Info.IsDir() {
		attrs = append(attrs, "Directory")
	}
	if len(attrs) == 0 {
		return "Normal"
	}
	return strings.Join(attrs, ", ")
}
