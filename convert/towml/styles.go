package towml

import (
	"strconv"

	"github.com/beevik/etree"

	"wmlconv/wml"
)

// heading sizes in half-points, index is level-1
var headingSizes = [...]int{32, 28, 26, 24, 22, 22}

// minimalStyles builds styles part with every style the builder references.
func minimalStyles() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", wml.NSW)

	style := func(kind, id, name string) *etree.Element {
		s := root.CreateElement("w:style")
		s.CreateAttr("w:type", kind)
		s.CreateAttr("w:styleId", id)
		wval(s, "w:name", name)
		return s
	}

	normal := style("paragraph", "Normal", "Normal")
	normal.CreateAttr("w:default", "1")
	normal.CreateElement("w:qFormat")

	for i, sz := range headingSizes {
		lvl := strconv.Itoa(i + 1)
		h := style("paragraph", "Heading"+lvl, "heading "+lvl)
		wval(h, "w:basedOn", "Normal")
		wval(h, "w:next", "Normal")
		h.CreateElement("w:qFormat")
		pPr := h.CreateElement("w:pPr")
		pPr.CreateElement("w:keepNext")
		wval(pPr, "w:outlineLvl", strconv.Itoa(i))
		rPr := h.CreateElement("w:rPr")
		rPr.CreateElement("w:b")
		wval(rPr, "w:sz", strconv.Itoa(sz))
	}

	quote := style("paragraph", "Quote", "Quote")
	wval(quote, "w:basedOn", "Normal")
	ind := quote.CreateElement("w:pPr").CreateElement("w:ind")
	ind.CreateAttr("w:left", "720")
	ind.CreateAttr("w:right", "720")
	quote.CreateElement("w:rPr").CreateElement("w:i")

	pre := style("paragraph", "Preformatted", "HTML Preformatted")
	wval(pre, "w:basedOn", "Normal")
	fonts := pre.CreateElement("w:rPr").CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", "Courier New")
	fonts.CreateAttr("w:hAnsi", "Courier New")

	link := style("character", "Hyperlink", "Hyperlink")
	rPr := link.CreateElement("w:rPr")
	wval(rPr, "w:color", "0563C1")
	wval(rPr, "w:u", "single")

	return doc
}
