// Package arrange reorders an element tree according to a configuration.
//
// Each level of the tree is arranged into a container: one slot per
// configuration entry, in configuration order, preceded by a default slot
// that keeps everything no entry claims (standalone comments, conditional
// blocks, regions nobody configured, filtered-out elements) in its original
// relative order.
package arrange

import (
	"errors"
	"fmt"

	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/condition"
	"github.com/dhamidi/arrange/config"
)

// ErrInvalidOperation is returned for trees the arranger cannot place, such
// as input that already contains groups.
var ErrInvalidOperation = errors.New("invalid operation")

type Arranger struct {
	cfg *config.Configuration
}

// New validates cfg and returns an arranger for it. The configuration must
// not be modified afterwards.
func New(cfg *config.Configuration) (*Arranger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil configuration", condition.ErrInvalidArgument)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return &Arranger{cfg: cfg}, nil
}

// Arrange returns an arranged copy of elements. The input is not modified.
func (a *Arranger) Arrange(elements []*code.Element) ([]*code.Element, error) {
	if err := checkTree(elements); err != nil {
		return nil, err
	}
	roots := code.CloneAll(elements)
	src := recordLayout(roots)
	roots = relocateUsings(roots, a.cfg.Formatting.Usings.MoveTo)
	out, err := a.arrangeLevel(roots, nil, a.cfg.Elements)
	if err != nil {
		return nil, err
	}
	src.reset(out, nil)
	return out, nil
}

func checkTree(elements []*code.Element) error {
	for _, e := range elements {
		if e == nil {
			return fmt.Errorf("%w: nil element", condition.ErrInvalidArgument)
		}
		if !e.Kind.Valid() {
			return code.RangeError("unknown element kind %d", int(e.Kind))
		}
		if e.Kind == code.KindGroup {
			return fmt.Errorf("%w: group %q in input", ErrInvalidOperation, e.Name)
		}
		if err := checkTree(e.Children); err != nil {
			return err
		}
		if e.Else != nil {
			if err := checkTree([]*code.Element{e.Else}); err != nil {
				return err
			}
		}
	}
	return nil
}

// slot collects the elements claimed by one configuration entry.
type slot struct {
	entry  config.Entry
	rule   *config.ElementConfiguration
	region *config.RegionConfiguration
	elems  []*code.Element
	slots  []*slot
}

func newSlots(entries []config.Entry) []*slot {
	slots := make([]*slot, 0, len(entries))
	for _, entry := range entries {
		s := &slot{entry: entry}
		switch e := entry.(type) {
		case *config.RegionConfiguration:
			s.region = e
			s.slots = newSlots(e.Elements)
		default:
			s.rule = config.Resolve(entry)
		}
		slots = append(slots, s)
	}
	return slots
}

// arrangeLevel arranges the children of parent (nil at the root).
func (a *Arranger) arrangeLevel(elems []*code.Element, parent *code.Element, entries []config.Entry) ([]*code.Element, error) {
	slots := newSlots(entries)
	var defaults []*code.Element

	for _, e := range dissolveRegions(elems, regionNames(entries)) {
		switch e.Kind {
		case code.KindConditionDirective:
			if err := a.arrangeConditional(e, parent, entries); err != nil {
				return nil, err
			}
			defaults = append(defaults, e)
			continue
		case code.KindGroup:
			return nil, fmt.Errorf("%w: group %q in input", ErrInvalidOperation, e.Name)
		}

		s, err := findSlot(slots, e, parent)
		if err != nil {
			return nil, err
		}
		if s == nil {
			if e.Kind == code.KindRegion {
				children, err := a.arrangeLevel(e.Children, parent, entries)
				if err != nil {
					return nil, err
				}
				e.Children = children
			}
			defaults = append(defaults, e)
			continue
		}
		if len(s.rule.Elements) > 0 {
			children, err := a.arrangeLevel(e.Children, e, s.rule.Elements)
			if err != nil {
				return nil, err
			}
			e.Children = children
		}
		s.elems = append(s.elems, e)
	}

	out := defaults
	for _, s := range slots {
		out = append(out, s.render()...)
	}
	return out, nil
}

// arrangeConditional arranges each branch of a conditional block on its own,
// with the rules of the enclosing level.
func (a *Arranger) arrangeConditional(e, parent *code.Element, entries []config.Entry) error {
	for branch := e; branch != nil; branch = branch.Else {
		children, err := a.arrangeLevel(branch.Children, parent, entries)
		if err != nil {
			return err
		}
		branch.Children = children
	}
	return nil
}

// findSlot returns the first slot, in configuration order, whose rule
// accepts e.
func findSlot(slots []*slot, e, parent *code.Element) (*slot, error) {
	for _, s := range slots {
		if s.region != nil {
			found, err := findSlot(s.slots, e, parent)
			if found != nil || err != nil {
				return found, err
			}
			continue
		}
		ok, err := accepts(s.rule, e, parent)
		if err != nil {
			return nil, err
		}
		if ok {
			return s, nil
		}
	}
	return nil, nil
}

func accepts(rule *config.ElementConfiguration, e, parent *code.Element) (bool, error) {
	if rule == nil {
		return false, nil
	}
	switch rule.ElementType {
	case code.KindNotSpecified:
		switch e.Kind {
		case code.KindComment, code.KindRegion, code.KindConditionDirective:
			return false, nil
		}
	case e.Kind:
	default:
		return false, nil
	}
	if rule.Filter == nil {
		return true, nil
	}
	ok, err := condition.Evaluate(rule.Filter, condition.ElementSubject{Element: e, Parent: parent})
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", rule.FilterBy, err)
	}
	return ok, nil
}

func (s *slot) render() []*code.Element {
	if s.region != nil {
		var children []*code.Element
		for _, sub := range s.slots {
			children = append(children, sub.render()...)
		}
		if len(children) == 0 {
			return nil
		}
		return []*code.Element{{
			Kind:              code.KindRegion,
			Name:              s.region.Name,
			DirectivesEnabled: s.region.DirectivesEnabled,
			Children:          children,
		}}
	}
	if len(s.elems) == 0 {
		return nil
	}
	if s.rule.GroupBy != nil {
		return group(s.elems, s.rule.GroupBy, s.rule.SortBy)
	}
	return stabilize(sortElements(s.elems, s.rule.SortBy))
}

// regionNames lists the region names configured at this level, including
// nested regions.
func regionNames(entries []config.Entry) map[string]bool {
	names := map[string]bool{}
	var collect func([]config.Entry)
	collect = func(entries []config.Entry) {
		for _, entry := range entries {
			if r, ok := entry.(*config.RegionConfiguration); ok {
				names[r.Name] = true
				collect(r.Elements)
			}
		}
	}
	collect(entries)
	return names
}

// dissolveRegions replaces source regions that the configuration recreates
// with their contents. Their comments are kept as standalone comments.
func dissolveRegions(elems []*code.Element, names map[string]bool) []*code.Element {
	if len(names) == 0 {
		return elems
	}
	out := make([]*code.Element, 0, len(elems))
	for _, e := range elems {
		if e.Kind != code.KindRegion || !names[e.Name] {
			out = append(out, e)
			continue
		}
		out = append(out, e.HeaderComments...)
		if e.TrailingComment != nil {
			out = append(out, e.TrailingComment)
		}
		out = append(out, dissolveRegions(e.Children, names)...)
	}
	return out
}
