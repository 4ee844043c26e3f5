package arrange

import (
	"sort"
	"strings"

	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/config"
)

// sortElements inserts each element after every element it does not sort
// before, so elements with equal keys keep their relative order. Without a
// key, or with direction None, the order is unchanged.
func sortElements(elems []*code.Element, by *config.SortBy) []*code.Element {
	if by == nil || by.Direction == config.DirectionNone {
		return elems
	}
	out := make([]*code.Element, 0, len(elems))
	for _, e := range elems {
		i := sort.Search(len(out), func(i int) bool {
			return compareBy(e, out[i], by) < 0
		})
		out = append(out, nil)
		copy(out[i+1:], out[i:])
		out[i] = e
	}
	return out
}

// compareBy orders a and b by the sort chain: the outer key first, inner
// keys on ties.
func compareBy(a, b *code.Element, by *config.SortBy) int {
	for s := by; s != nil; s = s.InnerSortBy {
		if s.Direction == config.DirectionNone {
			continue
		}
		c := compareAttribute(a, b, s.By)
		if s.Direction == config.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// compareAttribute compares enumerated attributes by value and everything
// else as text, ignoring case unless that is the only difference.
func compareAttribute(a, b *code.Element, attr code.ElementAttribute) int {
	switch attr {
	case code.AttrAccess:
		return compareInt(int(a.Access), int(b.Access))
	case code.AttrModifier:
		return compareInt(int(a.Modifiers), int(b.Modifiers))
	case code.AttrElementType:
		return compareInt(int(a.Kind), int(b.Kind))
	}
	av, _ := code.AttributeValue(a, attr)
	bv, _ := code.AttributeValue(b, attr)
	return compareText(av, bv)
}

func compareText(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
