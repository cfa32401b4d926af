package towml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"wmlconv/css"
)

// runFmt is character formatting accumulated down the HTML tree.
type runFmt struct {
	bold, italic, underline, strike bool
	caps, smallCaps, rtl            bool
	vertAlign                       string
	color                           string
	shading                         string
	size                            int // half-points
	font                            string
	style                           string
}

// paraFmt is paragraph formatting of the enclosing block.
type paraFmt struct {
	style         string
	justification string
	indLeft       *int
	firstLine     *int // negative value is hanging indent
	bidi          bool
}

// tag applies formatting implied by element name.
func (f *runFmt) tag(name string) {
	switch name {
	case "b", "strong":
		f.bold = true
	case "i", "em", "cite", "dfn", "var":
		f.italic = true
	case "u", "ins":
		f.underline = true
	case "s", "strike", "del":
		f.strike = true
	case "sup":
		f.vertAlign = "superscript"
	case "sub":
		f.vertAlign = "subscript"
	}
}

// htmlFontSizes maps legacy font size attribute to half-points.
var htmlFontSizes = map[string]int{"1": 15, "2": 20, "3": 24, "4": 27, "5": 36, "6": 48, "7": 72}

// fontAttrs applies attributes of legacy font element.
func (f *runFmt) fontAttrs(attr func(string) string) {
	if c, ok := css.Color(css.Value{Raw: attr("color")}); ok {
		f.color = c
	}
	if face := fontName(attr("face")); face != "" {
		f.font = face
	}
	if sz, ok := htmlFontSizes[strings.TrimSpace(attr("size"))]; ok {
		f.size = sz
	}
}

func keyword(v css.Value) string {
	if v.Keyword != "" {
		return strings.ToLower(v.Keyword)
	}
	return strings.ToLower(strings.TrimSpace(v.Raw))
}

// fontName returns first family of font-family list without quotes.
func fontName(list string) string {
	first, _, _ := strings.Cut(list, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

// apply maps computed CSS properties onto run formatting.
func (f *runFmt) apply(props css.Properties) {
	if v, ok := props["font-weight"]; ok {
		switch kw := keyword(v); kw {
		case "bold", "bolder":
			f.bold = true
		case "normal", "lighter":
			f.bold = false
		default:
			if n, err := strconv.Atoi(kw); err == nil {
				f.bold = n >= 600
			}
		}
	}
	if v, ok := props["font-style"]; ok {
		switch keyword(v) {
		case "italic", "oblique":
			f.italic = true
		case "normal":
			f.italic = false
		}
	}
	for _, name := range []string{"text-decoration", "text-decoration-line"} {
		v, ok := props[name]
		if !ok {
			continue
		}
		for _, part := range strings.Fields(keyword(v)) {
			switch part {
			case "underline":
				f.underline = true
			case "line-through":
				f.strike = true
			case "none":
				f.underline, f.strike = false, false
			}
		}
	}
	if v, ok := props["vertical-align"]; ok {
		switch keyword(v) {
		case "super":
			f.vertAlign = "superscript"
		case "sub":
			f.vertAlign = "subscript"
		case "baseline":
			f.vertAlign = ""
		}
	}
	if v, ok := props["color"]; ok {
		if c, ok := css.Color(v); ok {
			f.color = c
		}
	}
	if v, ok := props["background-color"]; ok {
		if c, ok := css.Color(v); ok {
			f.shading = c
		}
	}
	if v, ok := props["font-size"]; ok {
		if hp, ok := css.HalfPoints(v); ok && hp > 0 {
			f.size = hp
		}
	}
	if v, ok := props["font-family"]; ok {
		if name := fontName(v.Raw); name != "" {
			f.font = name
		}
	}
	if v, ok := props["text-transform"]; ok {
		switch keyword(v) {
		case "uppercase":
			f.caps = true
		case "none":
			f.caps = false
		}
	}
	if v, ok := props["font-variant"]; ok {
		switch keyword(v) {
		case "small-caps":
			f.smallCaps = true
		case "normal":
			f.smallCaps = false
		}
	}
	if v, ok := props["direction"]; ok {
		f.rtl = keyword(v) == "rtl"
	}
}

var textAlign = map[string]string{
	"left":    "left",
	"start":   "left",
	"center":  "center",
	"right":   "right",
	"end":     "right",
	"justify": "both",
}

// apply maps computed CSS properties onto paragraph formatting.
func (f *paraFmt) apply(props css.Properties) {
	if v, ok := props["text-align"]; ok {
		if jc, ok := textAlign[keyword(v)]; ok {
			f.justification = jc
		}
	}
	if v, ok := props["margin-left"]; ok {
		if tw, ok := css.Twips(v, 0); ok {
			f.indLeft = &tw
		}
	}
	if v, ok := props["text-indent"]; ok {
		if tw, ok := css.Twips(v, 0); ok {
			f.firstLine = &tw
		}
	}
	if v, ok := props["direction"]; ok {
		f.bidi = keyword(v) == "rtl"
	}
}

func wval(parent *etree.Element, tag, val string) *etree.Element {
	el := parent.CreateElement(tag)
	if val != "" {
		el.CreateAttr("w:val", val)
	}
	return el
}

// rPr builds run properties in schema order, nil when there is nothing to set.
func (f runFmt) rPr() *etree.Element {
	rPr := etree.NewElement("w:rPr")
	if f.style != "" {
		wval(rPr, "w:rStyle", f.style)
	}
	if f.font != "" {
		fonts := rPr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", f.font)
		fonts.CreateAttr("w:hAnsi", f.font)
		fonts.CreateAttr("w:cs", f.font)
	}
	if f.bold {
		wval(rPr, "w:b", "")
	}
	if f.italic {
		wval(rPr, "w:i", "")
	}
	if f.caps {
		wval(rPr, "w:caps", "")
	}
	if f.smallCaps {
		wval(rPr, "w:smallCaps", "")
	}
	if f.strike {
		wval(rPr, "w:strike", "")
	}
	if f.color != "" {
		wval(rPr, "w:color", f.color)
	}
	if f.size > 0 {
		wval(rPr, "w:sz", strconv.Itoa(f.size))
	}
	if f.underline {
		wval(rPr, "w:u", "single")
	}
	if f.shading != "" {
		shd := wval(rPr, "w:shd", "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", f.shading)
	}
	if f.vertAlign != "" {
		wval(rPr, "w:vertAlign", f.vertAlign)
	}
	if f.rtl {
		wval(rPr, "w:rtl", "")
	}
	if len(rPr.Child) == 0 {
		return nil
	}
	return rPr
}

// pPr builds paragraph properties in schema order. numPr and border are
// optional parts supplied by the caller.
func (f paraFmt) pPr(numID, ilvl int, bottomBorder bool) *etree.Element {
	pPr := etree.NewElement("w:pPr")
	if f.style != "" {
		wval(pPr, "w:pStyle", f.style)
	}
	if numID > 0 {
		numPr := pPr.CreateElement("w:numPr")
		wval(numPr, "w:ilvl", strconv.Itoa(ilvl))
		wval(numPr, "w:numId", strconv.Itoa(numID))
	}
	if bottomBorder {
		bdr := pPr.CreateElement("w:pBdr").CreateElement("w:bottom")
		bdr.CreateAttr("w:val", "single")
		bdr.CreateAttr("w:sz", "6")
		bdr.CreateAttr("w:space", "1")
		bdr.CreateAttr("w:color", "auto")
	}
	if f.bidi {
		wval(pPr, "w:bidi", "")
	}
	if f.indLeft != nil || f.firstLine != nil {
		ind := pPr.CreateElement("w:ind")
		if f.indLeft != nil {
			ind.CreateAttr("w:left", strconv.Itoa(*f.indLeft))
		}
		if f.firstLine != nil {
			if *f.firstLine < 0 {
				ind.CreateAttr("w:hanging", strconv.Itoa(-*f.firstLine))
			} else {
				ind.CreateAttr("w:firstLine", strconv.Itoa(*f.firstLine))
			}
		}
	}
	if f.justification != "" {
		wval(pPr, "w:jc", f.justification)
	}
	if len(pPr.Child) == 0 {
		return nil
	}
	return pPr
}
