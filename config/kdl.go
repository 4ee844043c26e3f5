package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/dhamidi/arrange/condition"
)

// ParseKDL reads a configuration document:
//
//	formatting {
//	    tabs style="spaces" spaces-per-tab=4
//	    regions style="directive" end-region-name=true
//	}
//	elements {
//	    element "field" {
//	        sort-by "access" direction="descending" {
//	            sort-by "name"
//	        }
//	    }
//	    region "Methods" {
//	        element "method"
//	    }
//	}
//
// Sections that are left out keep their defaults. The result is not
// validated.
func ParseKDL(src []byte) (*Configuration, error) {
	doc, err := kdl.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	cfg := &Configuration{Formatting: DefaultFormatting(), Handlers: DefaultHandlers()}
	for _, n := range doc.Nodes {
		switch name := nodeName(n); name {
		case "formatting":
			if err := kdlFormatting(&cfg.Formatting, n); err != nil {
				return nil, err
			}
		case "handlers":
			cfg.Handlers = nil
			for _, hn := range n.Children {
				if nodeName(hn) != "handler" {
					return nil, unknownNode(hn, "handler")
				}
				h, err := kdlHandler(hn)
				if err != nil {
					return nil, err
				}
				cfg.Handlers = append(cfg.Handlers, h)
			}
		case "elements":
			cfg.Elements, err = kdlEntries(n.Children)
			if err != nil {
				return nil, err
			}
		default:
			return nil, unknownNode(n, "formatting", "handlers", "elements")
		}
	}
	return cfg, nil
}

func kdlFormatting(f *Formatting, n *document.Node) error {
	for _, cn := range n.Children {
		var err error
		switch nodeName(cn) {
		case "tabs":
			if s, ok := propString(cn, "style"); ok {
				if f.Tabs.Style, err = ParseTabStyle(s); err != nil {
					return err
				}
			}
			if v, ok := propInt(cn, "spaces-per-tab"); ok {
				f.Tabs.SpacesPerTab = v
			}
		case "regions":
			if s, ok := propString(cn, "style"); ok {
				if f.Regions.Style, err = ParseRegionStyle(s); err != nil {
					return err
				}
			}
			if b, ok := propBool(cn, "end-region-name"); ok {
				f.Regions.EndRegionNameEnabled = b
			}
		case "closing-comments":
			if b, ok := propBool(cn, "enabled"); ok {
				f.ClosingComments.Enabled = b
			}
			if s, ok := propString(cn, "format"); ok {
				f.ClosingComments.Format = s
			}
		case "line-spacing":
			if b, ok := propBool(cn, "remove-consecutive-blank-lines"); ok {
				f.LineSpacing.RemoveConsecutiveBlankLines = b
			}
		case "usings":
			if s, ok := propString(cn, "move-to"); ok {
				if f.Usings.MoveTo, err = ParseUsingMove(s); err != nil {
					return err
				}
			}
		default:
			return unknownNode(cn, "tabs", "regions", "closing-comments", "line-spacing", "usings")
		}
	}
	return nil
}

func kdlHandler(n *document.Node) (Handler, error) {
	h := Handler{}
	h.Language, _ = firstStringArg(n)
	for _, en := range n.Children {
		if nodeName(en) != "extension" {
			return h, unknownNode(en, "extension")
		}
		ext, ok := firstStringArg(en)
		if !ok {
			return h, fmt.Errorf("extension in handler %q needs a name", h.Language)
		}
		filter, _ := propString(en, "filter")
		h.Extensions = append(h.Extensions, Extension{Name: strings.TrimPrefix(ext, "."), FilterBy: filter})
	}
	return h, nil
}

func kdlEntries(nodes []*document.Node) ([]Entry, error) {
	var entries []Entry
	for _, n := range nodes {
		switch nodeName(n) {
		case "element":
			e, err := kdlElement(n)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		case "region":
			name, _ := firstStringArg(n)
			r := &RegionConfiguration{Name: name, DirectivesEnabled: true}
			if b, ok := propBool(n, "directives"); ok {
				r.DirectivesEnabled = b
			}
			children, err := kdlEntries(n.Children)
			if err != nil {
				return nil, err
			}
			r.Elements = children
			entries = append(entries, r)
		case "element-ref":
			id, ok := firstStringArg(n)
			if !ok {
				return nil, fmt.Errorf("element-ref needs an id")
			}
			entries = append(entries, &ElementReference{ID: id})
		default:
			return nil, unknownNode(n, "element", "region", "element-ref")
		}
	}
	return entries, nil
}

func kdlElement(n *document.Node) (*ElementConfiguration, error) {
	e := &ElementConfiguration{}
	if s, ok := firstStringArg(n); ok {
		kind, err := parseKind(s)
		if err != nil {
			return nil, err
		}
		e.ElementType = kind
	}
	e.ID, _ = propString(n, "id")
	e.FilterBy, _ = propString(n, "filter")
	var rest []*document.Node
	for _, cn := range n.Children {
		var err error
		switch nodeName(cn) {
		case "sort-by":
			e.SortBy, err = kdlSortBy(cn)
		case "group-by":
			e.GroupBy, err = kdlGroupBy(cn)
		case "filter":
			e.FilterBy, _ = firstStringArg(cn)
		default:
			rest = append(rest, cn)
		}
		if err != nil {
			return nil, err
		}
	}
	children, err := kdlEntries(rest)
	if err != nil {
		return nil, err
	}
	e.Elements = children
	return e, nil
}

func kdlSortBy(n *document.Node) (*SortBy, error) {
	s := &SortBy{Direction: Ascending}
	var err error
	attr, _ := firstStringArg(n)
	if s.By, err = parseAttribute(attr); err != nil {
		return nil, err
	}
	if d, ok := propString(n, "direction"); ok {
		if s.Direction, err = ParseSortDirection(d); err != nil {
			return nil, err
		}
	}
	for _, cn := range n.Children {
		if nodeName(cn) != "sort-by" {
			return nil, unknownNode(cn, "sort-by")
		}
		if s.InnerSortBy, err = kdlSortBy(cn); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func kdlGroupBy(n *document.Node) (*GroupBy, error) {
	g := &GroupBy{Direction: Ascending}
	var err error
	attr, _ := firstStringArg(n)
	if g.By, err = parseAttribute(attr); err != nil {
		return nil, err
	}
	g.AttributeCapture, _ = propString(n, "capture")
	if d, ok := propString(n, "direction"); ok {
		if g.Direction, err = ParseSortDirection(d); err != nil {
			return nil, err
		}
	}
	if sep, ok := propString(n, "separator"); ok {
		if g.SeparatorType, err = ParseSeparatorType(sep); err != nil {
			return nil, err
		}
	}
	if custom, ok := propString(n, "custom-separator"); ok {
		g.CustomSeparator = custom
		if _, explicit := propString(n, "separator"); !explicit {
			g.SeparatorType = SeparatorCustom
		}
	}
	for _, cn := range n.Children {
		if nodeName(cn) != "group-by" {
			return nil, unknownNode(cn, "group-by")
		}
		if g.InnerGroupBy, err = kdlGroupBy(cn); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func propString(n *document.Node, key string) (string, bool) {
	if n.Properties == nil {
		return "", false
	}
	if v, ok := n.Properties[key]; ok {
		if s, ok := v.Value.(string); ok {
			return s, true
		}
	}
	return "", false
}

func propInt(n *document.Node, key string) (int, bool) {
	if n.Properties == nil {
		return 0, false
	}
	if v, ok := n.Properties[key]; ok {
		switch val := v.Value.(type) {
		case int64:
			return int(val), true
		case float64:
			return int(val), true
		}
	}
	return 0, false
}

func propBool(n *document.Node, key string) (bool, bool) {
	if n.Properties == nil {
		return false, false
	}
	if v, ok := n.Properties[key]; ok {
		if b, ok := v.Value.(bool); ok {
			return b, true
		}
	}
	return false, false
}

func unknownNode(n *document.Node, expected ...string) error {
	name := nodeName(n)
	if s := condition.Suggest(name, expected); s != "" {
		return fmt.Errorf("unknown configuration node %q (did you mean %q?)", name, s)
	}
	return fmt.Errorf("unknown configuration node %q, expected one of %s", name, strings.Join(expected, ", "))
}

// WriteKDL renders cfg in the form ParseKDL reads.
func WriteKDL(w io.Writer, cfg *Configuration) error {
	kw := &kdlWriter{w: w}
	f := cfg.Formatting
	kw.line(0, "formatting {")
	kw.line(1, "tabs style=%s spaces-per-tab=%d", quote(lowerFirst(f.Tabs.Style.String())), f.Tabs.SpacesPerTab)
	kw.line(1, "regions style=%s end-region-name=%t", quote(kebab(f.Regions.Style.String())), f.Regions.EndRegionNameEnabled)
	kw.line(1, "closing-comments enabled=%t format=%s", f.ClosingComments.Enabled, quote(f.ClosingComments.Format))
	kw.line(1, "line-spacing remove-consecutive-blank-lines=%t", f.LineSpacing.RemoveConsecutiveBlankLines)
	kw.line(1, "usings move-to=%s", quote(lowerFirst(f.Usings.MoveTo.String())))
	kw.line(0, "}")

	kw.line(0, "handlers {")
	for _, h := range cfg.Handlers {
		kw.line(1, "handler %s {", quote(h.Language))
		for _, ext := range h.Extensions {
			if ext.FilterBy != "" {
				kw.line(2, "extension %s filter=%s", quote(ext.Name), quote(ext.FilterBy))
			} else {
				kw.line(2, "extension %s", quote(ext.Name))
			}
		}
		kw.line(1, "}")
	}
	kw.line(0, "}")

	kw.line(0, "elements {")
	kw.entries(1, cfg.Elements)
	kw.line(0, "}")
	return kw.err
}

type kdlWriter struct {
	w   io.Writer
	err error
}

func (kw *kdlWriter) line(depth int, format string, args ...any) {
	if kw.err != nil {
		return
	}
	_, kw.err = fmt.Fprintf(kw.w, "%s%s\n", strings.Repeat("    ", depth), fmt.Sprintf(format, args...))
}

func (kw *kdlWriter) entries(depth int, entries []Entry) {
	for _, entry := range entries {
		switch e := entry.(type) {
		case *ElementConfiguration:
			head := "element " + quote(kindKeyword(e))
			if e.ID != "" {
				head += " id=" + quote(e.ID)
			}
			if e.FilterBy != "" {
				head += " filter=" + quote(e.FilterBy)
			}
			if e.SortBy == nil && e.GroupBy == nil && len(e.Elements) == 0 {
				kw.line(depth, "%s", head)
				continue
			}
			kw.line(depth, "%s {", head)
			if e.GroupBy != nil {
				kw.groupBy(depth+1, e.GroupBy)
			}
			if e.SortBy != nil {
				kw.sortBy(depth+1, e.SortBy)
			}
			kw.entries(depth+1, e.Elements)
			kw.line(depth, "}")
		case *RegionConfiguration:
			kw.line(depth, "region %s directives=%t {", quote(e.Name), e.DirectivesEnabled)
			kw.entries(depth+1, e.Elements)
			kw.line(depth, "}")
		case *ElementReference:
			kw.line(depth, "element-ref %s", quote(e.ID))
		}
	}
}

func (kw *kdlWriter) sortBy(depth int, s *SortBy) {
	head := fmt.Sprintf("sort-by %s direction=%s", quote(lowerFirst(s.By.String())), quote(lowerFirst(s.Direction.String())))
	if s.InnerSortBy == nil {
		kw.line(depth, "%s", head)
		return
	}
	kw.line(depth, "%s {", head)
	kw.sortBy(depth+1, s.InnerSortBy)
	kw.line(depth, "}")
}

func (kw *kdlWriter) groupBy(depth int, g *GroupBy) {
	head := fmt.Sprintf("group-by %s direction=%s", quote(lowerFirst(g.By.String())), quote(lowerFirst(g.Direction.String())))
	if g.AttributeCapture != "" {
		head += " capture=" + quote(g.AttributeCapture)
	}
	head += " separator=" + quote(kebab(g.SeparatorType.String()))
	if g.CustomSeparator != "" {
		head += " custom-separator=" + quote(g.CustomSeparator)
	}
	if g.InnerGroupBy == nil {
		kw.line(depth, "%s", head)
		return
	}
	kw.line(depth, "%s {", head)
	kw.groupBy(depth+1, g.InnerGroupBy)
	kw.line(depth, "}")
}

func kindKeyword(e *ElementConfiguration) string {
	if e.ElementType == 0 {
		return "any"
	}
	return kebab(e.ElementType.String())
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// kebab turns "CommentDirective" into "comment-directive".
func kebab(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
