package arrange

import (
	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/config"
)

// relocateUsings moves movable using directives to the file or namespace
// scope. Duplicates, by directive text, are merged into the first
// occurrence.
func relocateUsings(roots []*code.Element, to config.UsingMove) []*code.Element {
	switch to {
	case config.MoveFile:
		var moved []*code.Element
		eachNamespace(roots, func(ns *code.Element) {
			moved = append(moved, extractUsings(ns)...)
		})
		if len(moved) == 0 {
			return roots
		}
		at := usingInsertPoint(roots)
		out := append([]*code.Element(nil), roots[:at]...)
		out = append(out, moved...)
		out = append(out, roots[at:]...)
		return dedupUsings(out)

	case config.MoveNamespace:
		var spaces []*code.Element
		eachNamespace(roots, func(ns *code.Element) {
			spaces = append(spaces, ns)
		})
		if len(spaces) != 1 {
			return roots
		}
		ns := spaces[0]
		moved, rest := takeUsings(roots)
		if len(moved) == 0 {
			return roots
		}
		ns.Children = dedupUsings(append(moved, ns.Children...))
		return rest
	}
	return roots
}

// extractUsings removes the movable usings from ns and any namespaces
// nested in it and returns them, outer namespaces first.
func extractUsings(ns *code.Element) []*code.Element {
	moved, kept := takeUsings(ns.Children)
	ns.Children = kept
	eachNamespace(kept, func(inner *code.Element) {
		moved = append(moved, extractUsings(inner)...)
	})
	return moved
}

// takeUsings splits the movable usings off elems, including those inside
// regions, and returns them with what is left. Regions stay in place even
// when they end up empty.
func takeUsings(elems []*code.Element) (moved, kept []*code.Element) {
	kept = elems[:0:0]
	for _, e := range elems {
		switch {
		case e.Kind == code.KindUsing && e.Movable:
			moved = append(moved, e)
		case e.Kind == code.KindRegion:
			m, k := takeUsings(e.Children)
			moved = append(moved, m...)
			e.Children = k
			kept = append(kept, e)
		default:
			kept = append(kept, e)
		}
	}
	return moved, kept
}

// eachNamespace calls fn for the namespaces among elems, looking through
// regions but not into the namespaces themselves.
func eachNamespace(elems []*code.Element, fn func(*code.Element)) {
	for _, e := range elems {
		switch e.Kind {
		case code.KindNamespace:
			fn(e)
		case code.KindRegion:
			eachNamespace(e.Children, fn)
		}
	}
}

// usingInsertPoint is the index after the last root using, or before the
// first namespace, or region holding one, when there is none.
func usingInsertPoint(roots []*code.Element) int {
	last := -1
	for i, e := range roots {
		if e.Kind == code.KindUsing {
			last = i
		}
	}
	if last >= 0 {
		return last + 1
	}
	for i, e := range roots {
		found := false
		eachNamespace([]*code.Element{e}, func(*code.Element) { found = true })
		if found {
			return i
		}
	}
	return len(roots)
}

func dedupUsings(elems []*code.Element) []*code.Element {
	seen := map[string]*code.Element{}
	out := elems[:0:0]
	for _, e := range elems {
		if e.Kind != code.KindUsing {
			out = append(out, e)
			continue
		}
		key := usingKey(e)
		if first, ok := seen[key]; ok {
			first.HeaderComments = append(first.HeaderComments, e.HeaderComments...)
			if e.TrailingComment != nil {
				first.HeaderComments = append(first.HeaderComments, e.TrailingComment)
			}
			continue
		}
		seen[key] = e
		out = append(out, e)
	}
	return out
}

func usingKey(e *code.Element) string {
	key := e.Name
	if e.Redefine != "" {
		key = e.Name + " = " + e.Redefine
	}
	if e.Modifiers&code.Static != 0 {
		key = "static " + key
	}
	if e.Global {
		key = "global " + key
	}
	return key
}
