package tohtml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"

	"wmlconv/common"
	"wmlconv/styles"
	"wmlconv/wml"
)

// inlineCtx carries paragraph state through inline content.
type inlineCtx struct {
	story          *wml.Story
	pStyle         string
	pageBreakAfter bool
}

// fieldFrame is an open complex field, text is visible only in result part.
type fieldFrame struct {
	inResult bool
}

func (c *conversion) fieldHidden() bool {
	for _, f := range c.fields {
		if !f.inResult {
			return true
		}
	}
	return false
}

func (c *conversion) fieldChar(el *etree.Element) {
	switch wml.AttrValue(el, "fldCharType", "") {
	case "begin":
		c.fields = append(c.fields, fieldFrame{})
	case "separate":
		if n := len(c.fields); n > 0 {
			c.fields[n-1].inResult = true
		}
	case "end":
		if n := len(c.fields); n > 0 {
			c.fields = c.fields[:n-1]
		}
	}
}

// inlines renders paragraph level content into parent.
func (c *conversion) inlines(parent *etree.Element, els []*etree.Element, ic *inlineCtx) {
	for _, el := range els {
		switch wml.Namespace(el) {
		case wml.NSW:
		case wml.NSMC:
			if el.Tag == "AlternateContent" {
				c.inlines(parent, alternate(el), ic)
				continue
			}
			fallthrough
		default:
			c.warns.Add(common.CodeUnsupportedElement, ic.story.Part, "unsupported inline element %s skipped", el.FullTag())
			continue
		}
		switch el.Tag {
		case "r":
			c.run(parent, el, ic)
		case "hyperlink":
			c.hyperlink(parent, el, ic)
		case "fldSimple":
			c.inlines(parent, el.ChildElements(), ic)
		case "bookmarkStart":
			if a := bookmark(el); a != nil {
				parent.AddChild(a)
			}
		case "ins", "moveTo", "smartTag", "customXml":
			c.inlines(parent, el.ChildElements(), ic)
		case "sdt":
			c.inlines(parent, children(wml.Child(el, "sdtContent")), ic)
		case "pPr", "del", "moveFrom", "bookmarkEnd", "proofErr", "permStart", "permEnd",
			"commentRangeStart", "commentRangeEnd", "moveFromRangeStart", "moveFromRangeEnd",
			"moveToRangeStart", "moveToRangeEnd":
		default:
			c.warns.Add(common.CodeUnsupportedElement, ic.story.Part, "unsupported inline element w:%s skipped", el.Tag)
		}
	}
}

func (c *conversion) hyperlink(parent *etree.Element, el *etree.Element, ic *inlineCtx) {
	href := ""
	if id := wml.RelID(el, "id"); id != "" {
		rel, ok := ic.story.Rels.ByID(id)
		if ok {
			href = rel.Target
		} else {
			c.warns.Add(common.CodeRelationshipMissing, ic.story.Part, "hyperlink relationship %s not found", id)
		}
	}
	if anchor := wml.AttrValue(el, "anchor", ""); anchor != "" {
		href += "#" + anchor
	}
	if href == "" {
		c.inlines(parent, el.ChildElements(), ic)
		return
	}
	a := parent.CreateElement("a")
	a.CreateAttr("href", href)
	if tip := wml.AttrValue(el, "tooltip", ""); tip != "" {
		a.CreateAttr("title", tip)
	}
	c.inlines(a, el.ChildElements(), ic)
}

// runProps returns effective properties of a run and properties which go
// into its inline style.
func (c *conversion) runProps(r *etree.Element, pStyle string) (eff, inline styles.RunProps) {
	direct := styles.ParseRunProps(wml.Child(r, "rPr"))
	eff = c.styles.EffectiveRun(pStyle, direct)
	if c.s.FabricateClasses {
		return eff, direct
	}
	return eff, eff
}

func (c *conversion) run(parent *etree.Element, r *etree.Element, ic *inlineCtx) {
	eff, inline := c.runProps(r, ic.pStyle)
	if styles.True(eff.Vanish) {
		return
	}

	span := parent.CreateElement("span")
	if c.s.FabricateClasses && eff.Style != "" {
		if st, ok := c.styles.Character(eff.Style); ok {
			name := c.class("r-" + slug.Make(eff.Style))
			c.sheet.Add("."+name, runDecls(st.Run))
			span.CreateAttr("class", name)
		}
	}
	if decls := runDecls(inline); len(decls) > 0 {
		span.CreateAttr("style", decls.String())
	}
	if styles.True(eff.RTL) {
		span.CreateAttr("dir", "rtl")
	}

	inner := span
	switch eff.VertAlign {
	case "superscript":
		inner = inner.CreateElement("sup")
	case "subscript":
		inner = inner.CreateElement("sub")
	}
	if styles.True(eff.Strike) || styles.True(eff.DStrike) {
		inner = inner.CreateElement("s")
	}
	if styles.True(eff.Bold) {
		inner = inner.CreateElement("strong")
	}
	if styles.True(eff.Italic) {
		inner = inner.CreateElement("em")
	}
	if eff.HasUnderline() {
		inner = inner.CreateElement("u")
	}

	for _, ch := range r.ChildElements() {
		c.runChild(inner, ch, ic)
	}

	if empty(span) {
		parent.RemoveChild(span)
	}
}

// empty reports element subtree without text or leaf elements.
func empty(el *etree.Element) bool {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if t.Data != "" {
				return false
			}
		case *etree.Element:
			switch t.Tag {
			case "span", "sup", "sub", "s", "strong", "em", "u":
				if !empty(t) {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

func (c *conversion) runChild(inner *etree.Element, ch *etree.Element, ic *inlineCtx) {
	if wml.Namespace(ch) != wml.NSW {
		if wml.IsNS(ch, wml.NSMC, "AlternateContent") {
			for _, el := range alternate(ch) {
				c.runChild(inner, el, ic)
			}
			return
		}
		c.warns.Add(common.CodeUnsupportedRunChild, ic.story.Part, "unsupported run child %s skipped", ch.FullTag())
		return
	}
	if ch.Tag == "fldChar" {
		c.fieldChar(ch)
		return
	}
	if c.fieldHidden() {
		return
	}
	switch ch.Tag {
	case "t":
		inner.CreateText(ch.Text())
	case "tab", "ptab":
		inner.CreateText("\t")
	case "br":
		switch wml.AttrValue(ch, "type", "textWrapping") {
		case "page":
			ic.pageBreakAfter = true
		default:
			inner.CreateElement("br")
		}
	case "cr":
		inner.CreateElement("br")
	case "noBreakHyphen":
		inner.CreateText("\u2011")
	case "softHyphen":
		inner.CreateText("\u00ad")
	case "sym":
		if r, ok := symbol(wml.AttrValue(ch, "char", "")); ok {
			inner.CreateText(string(r))
		}
	case "drawing", "pict", "object":
		c.images(inner, ch, ic.story)
	case "footnoteReference":
		c.noteReference(inner, noteFootnote, wml.AttrValue(ch, "id", ""), ic.story)
	case "endnoteReference":
		c.noteReference(inner, noteEndnote, wml.AttrValue(ch, "id", ""), ic.story)
	case "commentReference":
		if c.s.IncludeComments {
			c.noteReference(inner, noteComment, wml.AttrValue(ch, "id", ""), ic.story)
		}
	case "instrText", "delText", "delInstrText", "lastRenderedPageBreak", "annotationRef",
		"footnoteRef", "endnoteRef", "separator", "continuationSeparator", "rPr":
	default:
		c.warns.Add(common.CodeUnsupportedRunChild, ic.story.Part, "unsupported run child w:%s skipped", ch.Tag)
	}
}

// alternate picks content of mc:AlternateContent, first choice wins over
// fallback.
func alternate(el *etree.Element) []*etree.Element {
	if choice := wml.ChildNS(el, wml.NSMC, "Choice"); choice != nil {
		return choice.ChildElements()
	}
	return children(wml.ChildNS(el, wml.NSMC, "Fallback"))
}

// symbol decodes w:sym character code, symbol fonts use private area F0xx.
func symbol(code string) (rune, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(code), 16, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	if n >= 0xF000 && n <= 0xF0FF {
		n -= 0xF000
	}
	return rune(n), true
}
