// Package preprocess holds tree filters which run before conversion:
// accepting tracked revisions and simplifying markup.
package preprocess

import (
	"github.com/beevik/etree"
)

// Action is decision a Rule makes about a single element. It is one of
// Keep, Replace, Delete or Splice.
type Action interface {
	action()
}

// Keep leaves element in place and descends into its children.
type Keep struct{}

// Replace substitutes element with Nodes, which are then filtered in turn.
type Replace struct {
	Nodes []etree.Token
}

// Delete removes element with its subtree.
type Delete struct{}

// Splice removes element but puts its children in its place.
type Splice struct{}

func (Keep) action()    {}
func (Replace) action() {}
func (Delete) action()  {}
func (Splice) action()  {}

// Rule decides what happens to an element. Rule may modify attributes and
// text of the element it is given in place and return Keep, but it must
// never return Replace for nodes it produced itself.
type Rule func(el *etree.Element) Action

// Apply filters descendants of root in place. Root itself is never removed.
// Returns number of elements changed.
func Apply(root *etree.Element, rule Rule) int {
	changed := 0
	apply(root, rule, &changed)
	return changed
}

func apply(parent *etree.Element, rule Rule, changed *int) {
	for i := 0; i < len(parent.Child); {
		el, ok := parent.Child[i].(*etree.Element)
		if !ok {
			i++
			continue
		}
		switch act := rule(el).(type) {
		case Delete:
			parent.RemoveChildAt(i)
			*changed++
		case Splice:
			parent.RemoveChildAt(i)
			moveChildren(el, parent, i)
			*changed++
		case Replace:
			parent.RemoveChildAt(i)
			for k, t := range act.Nodes {
				parent.InsertChildAt(i+k, t)
			}
			*changed++
		default:
			apply(el, rule, changed)
			i++
		}
	}
}

// moveChildren detaches all children of from and inserts them into to at
// position at keeping order.
func moveChildren(from, to *etree.Element, at int) {
	tokens := append([]etree.Token(nil), from.Child...)
	for range tokens {
		from.RemoveChildAt(0)
	}
	for k, t := range tokens {
		to.InsertChildAt(at+k, t)
	}
}

// Children detaches and returns children of el, convenient for building
// Replace actions.
func Children(el *etree.Element) []etree.Token {
	tokens := append([]etree.Token(nil), el.Child...)
	for range tokens {
		el.RemoveChildAt(0)
	}
	return tokens
}
