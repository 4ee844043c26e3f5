package arrange

import (
	"regexp"

	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/config"
)

// group clusters elems into synthetic Group elements keyed by the GroupBy
// attribute. Groups appear in key order, or in order of first appearance
// when the direction is None. The innermost groups are sorted with by.
func group(elems []*code.Element, g *config.GroupBy, by *config.SortBy) []*code.Element {
	var capture *regexp.Regexp
	if g.AttributeCapture != "" {
		// Validate has compiled the pattern once already.
		capture = regexp.MustCompile(g.AttributeCapture)
	}

	var groups []*code.Element
	index := map[string]*code.Element{}
	for _, e := range elems {
		key := groupKey(e, g.By, capture)
		grp, ok := index[key]
		if !ok {
			grp = &code.Element{Kind: code.KindGroup, Name: key}
			if g.SeparatorType == config.SeparatorCustom {
				grp.Separator = g.CustomSeparator
			}
			index[key] = grp
			groups = insertGroup(groups, grp, g.Direction)
		}
		grp.Children = append(grp.Children, e)
	}

	for _, grp := range groups {
		if g.InnerGroupBy != nil {
			grp.Children = group(grp.Children, g.InnerGroupBy, by)
		} else {
			grp.Children = stabilize(sortElements(grp.Children, by))
		}
	}
	return groups
}

func groupKey(e *code.Element, attr code.ElementAttribute, capture *regexp.Regexp) string {
	value, _ := code.AttributeValue(e, attr)
	if capture == nil {
		return value
	}
	m := capture.FindStringSubmatch(value)
	switch {
	case m == nil:
		return value
	case len(m) > 1:
		return m[1]
	}
	return m[0]
}

func insertGroup(groups []*code.Element, grp *code.Element, dir config.SortDirection) []*code.Element {
	i := len(groups)
	if dir != config.DirectionNone {
		for j, other := range groups {
			c := compareText(grp.Name, other.Name)
			if dir == config.Descending {
				c = -c
			}
			if c < 0 {
				i = j
				break
			}
		}
	}
	groups = append(groups, nil)
	copy(groups[i+1:], groups[i:])
	groups[i] = grp
	return groups
}
