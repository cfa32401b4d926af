package grid

import (
	"github.com/beevik/etree"

	"wmlconv/utils/debug"
	"wmlconv/wml"
)

// FromWML extracts rows of w:tbl and builds its grid. Rows and cells wrapped
// into content controls or custom XML are looked through.
func FromWML(tbl *etree.Element) *Grid[*etree.Element] {
	var widths []int
	for _, gc := range wml.Children(wml.Child(tbl, "tblGrid"), "gridCol") {
		w, _ := wml.IntAttr(gc, "w")
		widths = append(widths, w)
	}

	var rows []Row[*etree.Element]
	for _, tr := range wrapped(tbl, "tr") {
		trPr := wml.Child(tr, "trPr")
		r := Row[*etree.Element]{Node: tr}
		r.Before, _ = wml.IntAttr(wml.Child(trPr, "gridBefore"), "val")
		r.After, _ = wml.IntAttr(wml.Child(trPr, "gridAfter"), "val")
		if on := wml.OnOff(wml.Child(trPr, "tblHeader")); on != nil {
			r.Header = *on
		}
		for _, tc := range wrapped(tr, "tc") {
			r.Cells = append(r.Cells, wmlCell(tc))
		}
		rows = append(rows, r)
	}

	g := Build(rows, len(widths))
	g.Widths = widths
	return g
}

func wmlCell(tc *etree.Element) SourceCell[*etree.Element] {
	tcPr := wml.Child(tc, "tcPr")
	sc := SourceCell[*etree.Element]{Node: tc}
	sc.ColSpan, _ = wml.IntAttr(wml.Child(tcPr, "gridSpan"), "val")
	if vm := wml.Child(tcPr, "vMerge"); vm != nil {
		if wml.Val(vm) == "restart" {
			sc.Merge = MergeRestart
		} else {
			sc.Merge = MergeContinue
		}
	}
	return sc
}

// wrapped returns w:<local> children of el, descending into w:sdt content
// and w:customXml wrappers.
func wrapped(el *etree.Element, local string) []*etree.Element {
	var res []*etree.Element
	if el == nil {
		return res
	}
	for _, c := range el.ChildElements() {
		switch {
		case wml.Is(c, local):
			res = append(res, c)
		case wml.Is(c, "sdt"):
			res = append(res, wrapped(wml.Child(c, "sdtContent"), local)...)
		case wml.Is(c, "customXml"):
			res = append(res, wrapped(c, local)...)
		}
	}
	return res
}

// Dump renders grid structure for debugging, label may be nil.
func (g *Grid[T]) Dump(label func(T) string) string {
	tw := debug.NewTreeWriter()
	tw.Fields(0, "grid", "columns", g.Columns, "rows", len(g.Rows))
	for i, r := range g.Rows {
		if r.Header {
			tw.Fields(1, "row", "index", i, "header")
		} else {
			tw.Fields(1, "row", "index", i)
		}
		for _, c := range r.Cells {
			switch c.Kind {
			case KindVisible:
				tw.Fields(2, c.Kind.String(), "col", c.Col, "span", c.ColSpan, "rows", c.RowSpan)
				if label != nil {
					tw.TextBlock(3, "content", label(c.Node))
				}
			case KindContinuation:
				tw.Fields(2, c.Kind.String(), "col", c.Col, "span", c.ColSpan, "origin", c.Origin.Row)
			default:
				tw.Fields(2, c.Kind.String(), "col", c.Col, "span", c.ColSpan)
			}
		}
	}
	for _, is := range g.Issues {
		tw.Line(1, "issue %s", is)
	}
	return tw.String()
}
