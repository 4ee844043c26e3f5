package arrange

import "github.com/dhamidi/arrange/code"

// layout remembers the source order of a tree: what preceded each element
// (its previous sibling, or the element holding it when it comes first) and
// the last child of each holder.
type layout struct {
	before map[*code.Element]*code.Element
	last   map[*code.Element]*code.Element
}

func recordLayout(elems []*code.Element) *layout {
	l := &layout{
		before: map[*code.Element]*code.Element{},
		last:   map[*code.Element]*code.Element{},
	}
	l.record(elems, nil)
	return l
}

func (l *layout) record(elems []*code.Element, holder *code.Element) {
	for i, e := range elems {
		if i == 0 {
			l.before[e] = holder
		} else {
			l.before[e] = elems[i-1]
		}
		l.record(e.Children, e)
		for b := e.Else; b != nil; b = b.Else {
			l.record(b.Children, b)
		}
	}
	if holder != nil && len(elems) > 0 {
		l.last[holder] = elems[len(elems)-1]
	}
}

// reset drops the recorded spacing of every element whose predecessor
// changed during arrangement, and the end spacing of every holder whose
// last child changed, so the writer lays them out from scratch. Elements
// that kept their place keep the source layout.
func (l *layout) reset(elems []*code.Element, holder *code.Element) {
	for i, e := range elems {
		want := holder
		if i > 0 {
			want = elems[i-1]
		}
		if before, ok := l.before[e]; !ok || before != want {
			e.Spacing = code.SpacingDefault
		}
		l.reset(e.Children, e)
		for b := e.Else; b != nil; b = b.Else {
			l.reset(b.Children, b)
		}
	}
	if holder == nil {
		return
	}
	var last *code.Element
	if len(elems) > 0 {
		last = elems[len(elems)-1]
	}
	if l.last[holder] != last {
		holder.EndSpacing = code.SpacingDefault
	}
}
