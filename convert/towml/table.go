package towml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"wmlconv/common"
	"wmlconv/grid"
)

// text width of letter page with one inch margins
const textWidth = 9360

// htmlRows collects rows of table in document order, header section rows
// are flagged.
func htmlRows(tbl *html.Node) []grid.Row[*html.Node] {
	var rows []grid.Row[*html.Node]
	var walk func(n *html.Node, header bool)
	walk = func(n *html.Node, header bool) {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != html.ElementNode {
				continue
			}
			switch ch.DataAtom {
			case atom.Thead:
				walk(ch, true)
			case atom.Tbody, atom.Tfoot:
				walk(ch, false)
			case atom.Tr:
				rows = append(rows, htmlRow(ch, header))
			}
		}
	}
	walk(tbl, false)
	return rows
}

func htmlRow(tr *html.Node, header bool) grid.Row[*html.Node] {
	r := grid.Row[*html.Node]{Node: tr, Header: header}
	for ch := tr.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode || (ch.DataAtom != atom.Td && ch.DataAtom != atom.Th) {
			continue
		}
		sc := grid.SourceCell[*html.Node]{Node: ch, ColSpan: spanAttr(ch, "colspan"), RowSpan: spanAttr(ch, "rowspan")}
		r.Cells = append(r.Cells, sc)
	}
	return r
}

func spanAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	// limits taken from HTML parsing rules
	if key == "colspan" {
		return min(v, 1000)
	}
	return min(v, 65534)
}

// table emits w:tbl with rectangular grid: every row covers all columns
// through gridSpan, vertical merges get placeholder cells in covered rows.
func (b *builder) table(container *etree.Element, n *html.Node, c scope) {
	g := grid.Build(htmlRows(n), 0)
	for _, is := range g.Issues {
		b.warns.Add(common.CodeWMLUnsupportedElement, "", "table %s", is)
	}
	if len(g.Rows) == 0 || g.Columns == 0 {
		return
	}

	tbl := container.CreateElement("w:tbl")
	tblPr := tbl.CreateElement("w:tblPr")
	w := tblPr.CreateElement("w:tblW")
	w.CreateAttr("w:w", "0")
	w.CreateAttr("w:type", "auto")
	if attr(n, "border") != "" && attr(n, "border") != "0" {
		borders := tblPr.CreateElement("w:tblBorders")
		for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
			bd := borders.CreateElement("w:" + side)
			bd.CreateAttr("w:val", "single")
			bd.CreateAttr("w:sz", "4")
			bd.CreateAttr("w:space", "0")
			bd.CreateAttr("w:color", "auto")
		}
	}

	colWidth := textWidth / g.Columns
	tblGrid := tbl.CreateElement("w:tblGrid")
	for range g.Columns {
		tblGrid.CreateElement("w:gridCol").CreateAttr("w:w", strconv.Itoa(colWidth))
	}

	// cell content must not continue paragraphs outside the table
	b.flush()
	for _, row := range g.Rows {
		tr := tbl.CreateElement("w:tr")
		if row.Header {
			tr.CreateElement("w:trPr").CreateElement("w:tblHeader")
		}
		for _, cell := range row.Cells {
			tc := tr.CreateElement("w:tc")
			tcPr := tc.CreateElement("w:tcPr")
			tcW := tcPr.CreateElement("w:tcW")
			tcW.CreateAttr("w:w", strconv.Itoa(colWidth*cell.ColSpan))
			tcW.CreateAttr("w:type", "dxa")
			if cell.ColSpan > 1 {
				wval(tcPr, "w:gridSpan", strconv.Itoa(cell.ColSpan))
			}
			switch cell.Kind {
			case grid.KindVisible:
				if cell.RowSpan > 1 {
					wval(tcPr, "w:vMerge", "restart")
				}
				cc := c
				if cell.Node.DataAtom == atom.Th {
					cc.run.bold = true
				}
				cc = b.element(cell.Node, cc)
				cc.item = nil
				cc.ilvl = 0
				b.flow(tc, cell.Node, cc)
				b.flush()
			case grid.KindContinuation:
				tcPr.CreateElement("w:vMerge")
			}
			// cell must end with a paragraph, covered cells get an empty one
			if kids := tc.ChildElements(); kids[len(kids)-1].Tag != "p" {
				tc.CreateElement("w:p")
			}
		}
	}
	b.flush()
}
