package arrange

import (
	"github.com/dhamidi/arrange/code"
)

// stabilize moves static and constant fields after the sibling fields their
// initializers refer to, with as little movement as possible. Unrelated
// elements keep the sorted order. Reference cycles are left where the
// iteration guard stops them.
func stabilize(elems []*code.Element) []*code.Element {
	pred := dependencies(elems)
	if len(pred) == 0 {
		return elems
	}

	order := append([]*code.Element(nil), elems...)
	pos := map[*code.Element]int{}
	for i, e := range order {
		pos[e] = i
	}

	changed := true
	guard := len(order)*len(order) + 5
	for changed && guard > 0 {
		changed = false
		guard--
		for i := 0; i < len(order); i++ {
			e := order[i]
			last := -1
			for p := range pred[e] {
				if pos[p] > last {
					last = pos[p]
				}
			}
			from := pos[e]
			if last < from {
				continue
			}
			order = append(order[:from], order[from+1:]...)
			order = append(order[:last], append([]*code.Element{e}, order[last:]...)...)
			for j, k := range order {
				pos[k] = j
			}
			changed = true
		}
	}
	return order
}

// dependencies maps each static field with an initializer to the sibling
// fields named in that initializer.
func dependencies(elems []*code.Element) map[*code.Element]map[*code.Element]struct{} {
	fields := map[string][]*code.Element{}
	for _, e := range elems {
		if e.Kind == code.KindField && e.Name != "" {
			fields[e.Name] = append(fields[e.Name], e)
		}
	}
	if len(fields) < 2 {
		return nil
	}

	pred := map[*code.Element]map[*code.Element]struct{}{}
	for _, e := range elems {
		if e.Kind != code.KindField || !e.IsStatic() || e.Initializer.Empty() {
			continue
		}
		init := e.Initializer.String()
		for name, targets := range fields {
			if name == e.Name || !referencesName(init, name) {
				continue
			}
			for _, t := range targets {
				if pred[e] == nil {
					pred[e] = map[*code.Element]struct{}{}
				}
				pred[e][t] = struct{}{}
			}
		}
	}
	return pred
}

// referencesName reports whether name occurs in text as a whole identifier.
func referencesName(text, name string) bool {
	for i := 0; i+len(name) <= len(text); i++ {
		if text[i:i+len(name)] != name {
			continue
		}
		before := i == 0 || !isIdentByte(text[i-1])
		after := i+len(name) == len(text) || !isIdentByte(text[i+len(name)])
		if before && after {
			return true
		}
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}
