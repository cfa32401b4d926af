package towml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"wmlconv/css"
	"wmlconv/wml"
)

// deepest list level WML supports
const maxLevel = 8

// list instance registered during conversion
type listDef struct {
	format string
	ilvl   int
	start  int
}

// numberingBuilder gives every HTML list its own abstract definition and
// w:num instance, so numbering of separate lists never continues.
type numberingBuilder struct {
	defs []listDef
}

func newNumberingBuilder() *numberingBuilder {
	return &numberingBuilder{}
}

// add registers list and returns its numId.
func (nb *numberingBuilder) add(format string, ilvl, start int) int {
	nb.defs = append(nb.defs, listDef{format: format, ilvl: ilvl, start: start})
	return len(nb.defs)
}

func (nb *numberingBuilder) used() bool {
	return len(nb.defs) > 0
}

var typeFormats = map[string]string{
	"1": "decimal",
	"a": "lowerLetter",
	"A": "upperLetter",
	"i": "lowerRoman",
	"I": "upperRoman",
}

var cssListFormats = map[string]string{
	"decimal":              "decimal",
	"decimal-leading-zero": "decimalZero",
	"lower-alpha":          "lowerLetter",
	"lower-latin":          "lowerLetter",
	"upper-alpha":          "upperLetter",
	"upper-latin":          "upperLetter",
	"lower-roman":          "lowerRoman",
	"upper-roman":          "upperRoman",
	"lower-russian":        "russianLower",
	"upper-russian":        "russianUpper",
	"none":                 "none",
}

// listFormat picks numbering format of ordered list, CSS wins over type attribute.
func listFormat(typeAttr string, props css.Properties) string {
	if v, ok := props["list-style-type"]; ok {
		if f, ok := cssListFormats[keyword(v)]; ok {
			return f
		}
	}
	if f, ok := typeFormats[strings.TrimSpace(typeAttr)]; ok {
		return f
	}
	return "decimal"
}

var bullets = []string{"•", "o", "▪"}

func levelText(format string, ilvl int) string {
	switch format {
	case "bullet":
		return bullets[ilvl%len(bullets)]
	case "none":
		return ""
	}
	return "%" + strconv.Itoa(ilvl+1) + "."
}

// document builds numbering part.
func (nb *numberingBuilder) document() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:numbering")
	root.CreateAttr("xmlns:w", wml.NSW)

	for i, d := range nb.defs {
		abs := root.CreateElement("w:abstractNum")
		abs.CreateAttr("w:abstractNumId", strconv.Itoa(i))
		wval(abs, "w:multiLevelType", "hybridMultilevel")
		for lvl := 0; lvl <= maxLevel; lvl++ {
			format := d.format
			if lvl != d.ilvl && format != "bullet" {
				format = "decimal"
			}
			l := abs.CreateElement("w:lvl")
			l.CreateAttr("w:ilvl", strconv.Itoa(lvl))
			wval(l, "w:start", "1")
			wval(l, "w:numFmt", format)
			wval(l, "w:lvlText", levelText(format, lvl))
			wval(l, "w:lvlJc", "left")
			ind := l.CreateElement("w:pPr").CreateElement("w:ind")
			ind.CreateAttr("w:left", strconv.Itoa(720*(lvl+1)))
			ind.CreateAttr("w:hanging", "360")
		}
	}
	for i, d := range nb.defs {
		num := root.CreateElement("w:num")
		num.CreateAttr("w:numId", strconv.Itoa(i+1))
		wval(num, "w:abstractNumId", strconv.Itoa(i))
		if d.start != 1 && d.format != "bullet" {
			o := num.CreateElement("w:lvlOverride")
			o.CreateAttr("w:ilvl", strconv.Itoa(d.ilvl))
			wval(o, "w:startOverride", strconv.Itoa(d.start))
		}
	}
	return doc
}
