package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/condition"
)

// Validate checks cfg, compiles its filters and resolves element references.
// Every problem is reported; enum values outside their declared set are
// errors wrapping code.ErrRange.
func Validate(cfg *Configuration) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil configuration", condition.ErrInvalidArgument)
	}
	v := &validator{ids: map[string]*ElementConfiguration{}}
	v.collectIDs(cfg.Elements)
	v.entries(cfg.Elements, "elements")
	v.formatting(&cfg.Formatting)
	for i := range cfg.Handlers {
		v.handler(&cfg.Handlers[i])
	}
	return errors.Join(v.errs...)
}

type validator struct {
	ids  map[string]*ElementConfiguration
	errs []error
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) collectIDs(entries []Entry) {
	for _, entry := range entries {
		switch e := entry.(type) {
		case *ElementConfiguration:
			if e.ID != "" {
				if _, dup := v.ids[e.ID]; dup {
					v.errorf("duplicate element id %q", e.ID)
				}
				v.ids[e.ID] = e
			}
			v.collectIDs(e.Elements)
		case *RegionConfiguration:
			v.collectIDs(e.Elements)
		}
	}
}

func (v *validator) entries(entries []Entry, path string) {
	for i, entry := range entries {
		switch e := entry.(type) {
		case *ElementConfiguration:
			where := fmt.Sprintf("%s[%d] (%s)", path, i, e.ElementType)
			v.element(e, where)
			v.entries(e.Elements, where)
		case *RegionConfiguration:
			where := fmt.Sprintf("%s[%d] (region %q)", path, i, e.Name)
			if e.Name == "" {
				v.errorf("%s: region needs a name", where)
			}
			v.entries(e.Elements, where)
		case *ElementReference:
			target, ok := v.ids[e.ID]
			if !ok {
				ids := make([]string, 0, len(v.ids))
				for id := range v.ids {
					ids = append(ids, id)
				}
				slices.Sort(ids)
				if s := condition.Suggest(e.ID, ids); s != "" {
					v.errorf("%s[%d]: unknown element id %q (did you mean %q?)", path, i, e.ID, s)
				} else {
					v.errorf("%s[%d]: unknown element id %q", path, i, e.ID)
				}
				continue
			}
			e.Referenced = target
		case nil:
			v.errorf("%s[%d]: empty entry", path, i)
		}
	}
}

func (v *validator) element(e *ElementConfiguration, where string) {
	if !e.ElementType.Valid() {
		v.errorf("%s: %w", where, code.RangeError("unknown element type %d", int(e.ElementType)))
	}
	if e.ElementType == code.KindGroup {
		v.errorf("%s: groups are created by arrangement and cannot be configured", where)
	}
	if e.FilterBy != "" {
		expr, err := condition.Parse(e.FilterBy)
		if err != nil {
			v.errorf("%s: %w", where, err)
		} else {
			e.Filter = expr
		}
	}
	for s := e.SortBy; s != nil; s = s.InnerSortBy {
		v.check(where, checkAttribute(s.By))
		v.check(where, checkEnum(s.Direction, sortDirectionNames, "sort direction"))
	}
	for g := e.GroupBy; g != nil; g = g.InnerGroupBy {
		v.check(where, checkAttribute(g.By))
		v.check(where, checkEnum(g.Direction, sortDirectionNames, "sort direction"))
		v.check(where, checkEnum(g.SeparatorType, separatorTypeNames, "separator type"))
		if g.AttributeCapture != "" {
			if _, err := regexp.Compile(g.AttributeCapture); err != nil {
				v.errorf("%s: invalid capture %q: %w", where, g.AttributeCapture, err)
			}
		}
	}
}

func (v *validator) formatting(f *Formatting) {
	v.check("formatting.tabs", checkEnum(f.Tabs.Style, tabStyleNames, "tab style"))
	if f.Tabs.Style == TabSpaces && f.Tabs.SpacesPerTab <= 0 {
		v.errorf("formatting.tabs: spaces-per-tab must be positive, got %d", f.Tabs.SpacesPerTab)
	}
	v.check("formatting.regions", checkEnum(f.Regions.Style, regionStyleNames, "region style"))
	v.check("formatting.usings", checkEnum(f.Usings.MoveTo, usingMoveNames, "using move target"))
}

func (v *validator) handler(h *Handler) {
	where := fmt.Sprintf("handler %q", h.Language)
	if h.Language == "" {
		v.errorf("handler needs a language")
	}
	for i := range h.Extensions {
		ext := &h.Extensions[i]
		if ext.Name == "" {
			v.errorf("%s: extension needs a name", where)
		}
		if ext.FilterBy == "" {
			continue
		}
		expr, err := condition.Parse(ext.FilterBy)
		if err != nil {
			v.errorf("%s: extension %q: %w", where, ext.Name, err)
			continue
		}
		ext.Filter = expr
	}
}

func (v *validator) check(where string, err error) {
	if err != nil {
		v.errorf("%s: %w", where, err)
	}
}

func checkAttribute(a code.ElementAttribute) error {
	if a <= code.AttrNone || a > code.AttrModifier {
		return code.RangeError("unknown element attribute %d", int(a))
	}
	return nil
}

func checkEnum[T ~int](val T, names map[T]string, what string) error {
	if _, ok := names[val]; !ok {
		return code.RangeError("unknown %s %d", what, int(val))
	}
	return nil
}
