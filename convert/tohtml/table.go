package tohtml

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"

	"wmlconv/common"
	"wmlconv/css"
	"wmlconv/grid"
	"wmlconv/styles"
	"wmlconv/wml"
)

var cellAlign = map[string]string{
	"top":    "top",
	"center": "middle",
	"bottom": "bottom",
}

// tableFormat is formatting shared by all cells of a table.
type tableFormat struct {
	borders styles.Borders
	padding css.Decls
}

func (c *conversion) table(parent *etree.Element, tbl *etree.Element, story *wml.Story) {
	g := grid.FromWML(tbl)
	for _, is := range g.Issues {
		c.warns.Add(common.CodeUnsupportedTable, story.Part, "table %s", is)
	}

	tblPr := wml.Child(tbl, "tblPr")
	table := parent.CreateElement("table")
	var tf tableFormat

	tstyle := wml.Val(wml.Child(tblPr, "tblStyle"))
	if tstyle == "" {
		tstyle = c.styles.DefaultStyle(styles.KindTable)
	}
	if st, ok := c.styles.Table(tstyle); ok {
		tf.borders = st.TableBorders
		if c.s.FabricateClasses {
			name := c.class("t-" + slug.Make(tstyle))
			var d css.Decls
			borderDecls(&d, st.TableBorders)
			d.Set("border-collapse", "collapse")
			c.sheet.Add("."+name, d)
			table.CreateAttr("class", name)
		}
	}
	tf.borders.Merge(styles.ParseBorders(wml.Child(tblPr, "tblBorders")))
	tf.padding = cellMargins(wml.Child(tblPr, "tblCellMar"))

	var d css.Decls
	d.Set("border-collapse", "collapse")
	borderDecls(&d, tf.borders)
	if w := wml.Child(tblPr, "tblW"); wml.AttrValue(w, "type", "") == "dxa" {
		if n, ok := wml.IntAttr(w, "w"); ok && n > 0 {
			d.Set("width", css.TwipsToPt(n))
		}
	}
	table.CreateAttr("style", d.String())

	if len(g.Widths) > 0 {
		cg := table.CreateElement("colgroup")
		for _, w := range g.Widths {
			col := cg.CreateElement("col")
			if w > 0 {
				col.CreateAttr("style", "width:"+css.TwipsToPt(w))
			}
		}
	}

	headers := g.HeaderRows()
	var section *etree.Element
	for i, row := range g.Rows {
		switch {
		case i == 0 && headers > 0:
			section = table.CreateElement("thead")
		case i == headers:
			section = table.CreateElement("tbody")
		}
		tr := section.CreateElement("tr")
		for _, cell := range row.Cells {
			switch cell.Kind {
			case grid.KindContinuation:
			case grid.KindFiller:
				td := tr.CreateElement("td")
				if cell.ColSpan > 1 {
					td.CreateAttr("colspan", strconv.Itoa(cell.ColSpan))
				}
			case grid.KindVisible:
				tag := "td"
				if i < headers {
					tag = "th"
				}
				c.cell(tr.CreateElement(tag), cell, tf, story)
			}
		}
	}
}

func (c *conversion) cell(td *etree.Element, cell *grid.Cell[*etree.Element], tf tableFormat, story *wml.Story) {
	if cell.ColSpan > 1 {
		td.CreateAttr("colspan", strconv.Itoa(cell.ColSpan))
	}
	if cell.RowSpan > 1 {
		td.CreateAttr("rowspan", strconv.Itoa(cell.RowSpan))
	}

	tcPr := wml.Child(cell.Node, "tcPr")
	var d css.Decls
	for _, p := range tf.padding {
		d.Set(p.Property, p.Value)
	}
	for _, p := range cellMargins(wml.Child(tcPr, "tcMar")) {
		d.Set(p.Property, p.Value)
	}

	// inner table borders apply to every cell, own borders win
	b := styles.Borders{Top: tf.borders.InsideH, Bottom: tf.borders.InsideH, Left: tf.borders.InsideV, Right: tf.borders.InsideV}
	b.Merge(styles.ParseBorders(wml.Child(tcPr, "tcBorders")))
	borderDecls(&d, b)

	if fill := styles.ShadingFill(wml.Child(tcPr, "shd")); fill != "" {
		d.Set("background-color", css.HexColor(fill))
	}
	d.Set("vertical-align", cellAlign[wml.Val(wml.Child(tcPr, "vAlign"))])
	if w := wml.Child(tcPr, "tcW"); wml.AttrValue(w, "type", "") == "dxa" {
		if n, ok := wml.IntAttr(w, "w"); ok && n > 0 {
			d.Set("width", css.TwipsToPt(n))
		}
	}
	if len(d) > 0 {
		td.CreateAttr("style", d.String())
	}

	c.blocks(td, cell.Node.ChildElements(), story)
}

func cellMargins(el *etree.Element) css.Decls {
	var d css.Decls
	sides := []struct{ local, alt, prop string }{
		{"top", "", "padding-top"},
		{"left", "start", "padding-left"},
		{"bottom", "", "padding-bottom"},
		{"right", "end", "padding-right"},
	}
	for _, s := range sides {
		m := wml.Child(el, s.local)
		if m == nil && s.alt != "" {
			m = wml.Child(el, s.alt)
		}
		if m == nil {
			continue
		}
		if n, ok := wml.IntAttr(m, "w"); ok {
			d.Set(s.prop, css.TwipsToPt(n))
		}
	}
	return d
}
