// Package config holds the arrangement policy: which elements go where,
// how they are grouped and sorted, and how the result is formatted.
//
// Configurations are written in KDL (the primary format) or TOML and are
// treated as read-only once loaded; a single *Configuration may be shared by
// concurrent arrangements.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/condition"
)

// Configuration is a complete arrangement policy.
type Configuration struct {
	// Elements are the root level entries, in output order.
	Elements   []Entry
	Formatting Formatting
	Handlers   []Handler
}

// Entry is one node of the element configuration tree: an
// *ElementConfiguration, a *RegionConfiguration or an *ElementReference.
type Entry interface {
	entry()
}

// ElementConfiguration selects elements of one kind (or any kind, for
// code.KindNotSpecified) and says how to group, sort and nest them.
type ElementConfiguration struct {
	ID          string
	ElementType code.Kind
	FilterBy    string
	GroupBy     *GroupBy
	SortBy      *SortBy

	// Elements configures the children of matched elements.
	Elements []Entry

	// Filter is FilterBy compiled by Validate.
	Filter condition.Expression
}

// RegionConfiguration wraps the elements matched by its own entries in a
// region named Name.
type RegionConfiguration struct {
	Name              string
	DirectivesEnabled bool
	Elements          []Entry
}

// ElementReference stands for the element configuration with the given ID.
// Validate resolves it.
type ElementReference struct {
	ID         string
	Referenced *ElementConfiguration
}

func (*ElementConfiguration) entry() {}
func (*RegionConfiguration) entry()  {}
func (*ElementReference) entry()     {}

// Resolve returns the element configuration an entry stands for, following
// references. It returns nil for regions and unresolved references.
func Resolve(e Entry) *ElementConfiguration {
	switch e := e.(type) {
	case *ElementConfiguration:
		return e
	case *ElementReference:
		return e.Referenced
	}
	return nil
}

type SortDirection int

const (
	DirectionNone SortDirection = iota
	Ascending
	Descending
)

var sortDirectionNames = map[SortDirection]string{
	DirectionNone: "None",
	Ascending:     "Ascending",
	Descending:    "Descending",
}

func (d SortDirection) String() string { return enumString(d, sortDirectionNames) }

func ParseSortDirection(s string) (SortDirection, error) {
	return parseEnum("sort direction", s, sortDirectionNames)
}

// SortBy orders the elements of a slot by an attribute. InnerSortBy breaks
// ties.
type SortBy struct {
	By          code.ElementAttribute
	Direction   SortDirection
	InnerSortBy *SortBy
}

type SeparatorType int

const (
	SeparatorNewLine SeparatorType = iota
	SeparatorCustom
)

var separatorTypeNames = map[SeparatorType]string{
	SeparatorNewLine: "NewLine",
	SeparatorCustom:  "Custom",
}

func (s SeparatorType) String() string { return enumString(s, separatorTypeNames) }

func ParseSeparatorType(s string) (SeparatorType, error) {
	return parseEnum("separator type", s, separatorTypeNames)
}

// GroupBy clusters the elements of a slot by an attribute value, or by the
// first submatch of AttributeCapture applied to that value.
type GroupBy struct {
	By               code.ElementAttribute
	AttributeCapture string
	Direction        SortDirection
	SeparatorType    SeparatorType
	CustomSeparator  string
	InnerGroupBy     *GroupBy
}

type TabStyle int

const (
	TabSpaces TabStyle = iota
	TabTabs
)

var tabStyleNames = map[TabStyle]string{
	TabSpaces: "Spaces",
	TabTabs:   "Tabs",
}

func (t TabStyle) String() string { return enumString(t, tabStyleNames) }

func ParseTabStyle(s string) (TabStyle, error) {
	return parseEnum("tab style", s, tabStyleNames)
}

type RegionStyle int

const (
	RegionDirective RegionStyle = iota
	RegionCommentDirective
	RegionNoDirective
)

var regionStyleNames = map[RegionStyle]string{
	RegionDirective:        "Directive",
	RegionCommentDirective: "CommentDirective",
	RegionNoDirective:      "NoDirective",
}

func (r RegionStyle) String() string { return enumString(r, regionStyleNames) }

func ParseRegionStyle(s string) (RegionStyle, error) {
	return parseEnum("region style", s, regionStyleNames)
}

type UsingMove int

const (
	MoveNone UsingMove = iota
	MoveFile
	MoveNamespace
)

var usingMoveNames = map[UsingMove]string{
	MoveNone:      "None",
	MoveFile:      "File",
	MoveNamespace: "Namespace",
}

func (m UsingMove) String() string { return enumString(m, usingMoveNames) }

func ParseUsingMove(s string) (UsingMove, error) {
	return parseEnum("using move target", s, usingMoveNames)
}

type Formatting struct {
	Tabs            Tabs
	Regions         Regions
	ClosingComments ClosingComments
	LineSpacing     LineSpacing
	Usings          Usings
}

type Tabs struct {
	Style        TabStyle
	SpacesPerTab int
}

// Unit returns the text of one indentation level.
func (t Tabs) Unit() string {
	if t.Style == TabTabs {
		return "\t"
	}
	return strings.Repeat(" ", t.SpacesPerTab)
}

type Regions struct {
	Style                RegionStyle
	EndRegionNameEnabled bool
}

// ClosingComments annotates closing braces. Format may use $(ElementType)
// and $(Name).
type ClosingComments struct {
	Enabled bool
	Format  string
}

type LineSpacing struct {
	RemoveConsecutiveBlankLines bool
}

type Usings struct {
	MoveTo UsingMove
}

// Handler maps a language to the file extensions it processes.
type Handler struct {
	Language   string
	Extensions []Extension
}

// Extension is a file extension without the leading dot. Files are only
// processed when they satisfy FilterBy.
type Extension struct {
	Name     string
	FilterBy string

	// Filter is FilterBy compiled by Validate.
	Filter condition.Expression
}

// HandlerFor returns the handler responsible for a file extension (with or
// without the leading dot), matching case-insensitively.
func (c *Configuration) HandlerFor(ext string) (*Handler, *Extension) {
	ext = strings.TrimPrefix(ext, ".")
	for i := range c.Handlers {
		h := &c.Handlers[i]
		for j := range h.Extensions {
			if strings.EqualFold(h.Extensions[j].Name, ext) {
				return h, &h.Extensions[j]
			}
		}
	}
	return nil, nil
}

func enumString[T ~int](v T, names map[T]string) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%T(%d)", v, int(v))
}

// parseEnum matches s case-insensitively against names. Unknown values are
// range errors that suggest the closest name.
func parseEnum[T ~int](what, s string, names map[T]string) (T, error) {
	key := strings.ReplaceAll(s, "-", "")
	candidates := make([]string, 0, len(names))
	for v, name := range names {
		if strings.EqualFold(name, key) {
			return v, nil
		}
		candidates = append(candidates, name)
	}
	slices.Sort(candidates)
	if suggestion := condition.Suggest(key, candidates); suggestion != "" {
		return 0, code.RangeError("unknown %s %q (did you mean %q?)", what, s, suggestion)
	}
	return 0, code.RangeError("unknown %s %q, expected one of %s", what, s, strings.Join(candidates, ", "))
}

// parseAttribute is code.ParseElementAttribute with a suggestion.
func parseAttribute(s string) (code.ElementAttribute, error) {
	attr, err := code.ParseElementAttribute(strings.ReplaceAll(s, "-", ""))
	if err == nil && attr != code.AttrNone {
		return attr, nil
	}
	if suggestion := condition.Suggest(s, code.ElementAttributes()); suggestion != "" {
		return 0, code.RangeError("unknown element attribute %q (did you mean %q?)", s, suggestion)
	}
	return 0, code.RangeError("unknown element attribute %q", s)
}

// parseKind is code.ParseKind with a suggestion. "any" selects every kind.
func parseKind(s string) (code.Kind, error) {
	if strings.EqualFold(s, "any") {
		return code.KindNotSpecified, nil
	}
	kind, err := code.ParseKind(strings.ReplaceAll(s, "-", ""))
	if err == nil {
		return kind, nil
	}
	if suggestion := condition.Suggest(s, code.Kinds()); suggestion != "" {
		return 0, code.RangeError("unknown element type %q (did you mean %q?)", s, suggestion)
	}
	return 0, err
}
