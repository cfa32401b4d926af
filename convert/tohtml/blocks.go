package tohtml

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"

	"wmlconv/common"
	"wmlconv/numbering"
	"wmlconv/styles"
	"wmlconv/wml"
)

// listState tracks open HTML lists of one block container.
type listState struct {
	stack *numbering.Stack
	// open list elements and their last items, one per depth
	lists []*etree.Element
	items []*etree.Element
}

func newListState() *listState {
	return &listState{stack: numbering.NewStack()}
}

func (ls *listState) close(n int) {
	for range n {
		ls.lists = ls.lists[:len(ls.lists)-1]
		ls.items = ls.items[:len(ls.items)-1]
	}
}

func (ls *listState) reset() {
	ls.close(ls.stack.Reset())
}

// blocks renders block level content of a container, each container owns
// its list stack.
func (c *conversion) blocks(parent *etree.Element, blocks []*etree.Element, story *wml.Story) {
	ls := newListState()
	c.blockList(parent, blocks, story, ls)
}

func (c *conversion) blockList(parent *etree.Element, blocks []*etree.Element, story *wml.Story, ls *listState) {
	for _, el := range blocks {
		if wml.Namespace(el) != wml.NSW {
			continue
		}
		switch el.Tag {
		case "p":
			c.paragraph(parent, el, story, ls)
		case "tbl":
			ls.reset()
			c.table(parent, el, story)
		case "sdt":
			c.blockList(parent, children(wml.Child(el, "sdtContent")), story, ls)
		case "customXml", "ins", "moveTo":
			c.blockList(parent, el.ChildElements(), story, ls)
		case "bookmarkStart":
			if a := bookmark(el); a != nil {
				parent.AddChild(a)
			}
		case "sectPr", "tcPr", "bookmarkEnd", "proofErr", "permStart", "permEnd",
			"commentRangeStart", "commentRangeEnd", "del", "moveFrom",
			"moveFromRangeStart", "moveFromRangeEnd", "moveToRangeStart", "moveToRangeEnd":
		default:
			c.warns.Add(common.CodeUnsupportedElement, story.Part, "unsupported block element w:%s skipped", el.Tag)
		}
	}
}

// paragraphInfo is everything paragraph rendering needs about its formatting.
type paragraphInfo struct {
	styleID string
	direct  styles.ParagraphProps
	eff     styles.ParagraphProps
	lang    string
}

func (c *conversion) paragraphInfo(p *etree.Element) paragraphInfo {
	pPr := wml.Child(p, "pPr")
	pStyle := wml.Val(wml.Child(pPr, "pStyle"))
	pi := paragraphInfo{
		styleID: c.styles.ParagraphStyle(pStyle),
		direct:  styles.ParseParagraphProps(pPr),
	}
	pi.eff = c.styles.EffectiveParagraph(pStyle, pi.direct)
	// language of the paragraph mark, otherwise of the first run
	markRun := c.styles.EffectiveRun(pStyle, styles.ParseRunProps(wml.Child(pPr, "rPr")))
	pi.lang = markRun.Lang
	if r := wml.Child(p, "r"); r != nil {
		if run := c.styles.EffectiveRun(pStyle, styles.ParseRunProps(wml.Child(r, "rPr"))); run.Lang != "" {
			pi.lang = run.Lang
		}
	}
	return pi
}

func (c *conversion) paragraph(parent *etree.Element, p *etree.Element, story *wml.Story, ls *listState) {
	pi := c.paragraphInfo(p)

	var el *etree.Element
	if item := c.listItem(parent, pi, story, ls); item != nil {
		el = item
	} else {
		ls.reset()
		if styles.True(pi.eff.PageBreakBefore) {
			c.pageBreak(parent)
		}
		tag := "p"
		if lvl := c.styles.HeadingLevel(pi.styleID); lvl > 0 {
			tag = "h" + strconv.Itoa(lvl)
		}
		el = parent.CreateElement(tag)
	}

	c.paragraphAttrs(el, pi)

	ic := &inlineCtx{story: story, pStyle: pi.styleID}
	c.inlines(el, p.ChildElements(), ic)

	if ic.pageBreakAfter {
		ls.reset()
		c.pageBreak(parent)
	}
}

func (c *conversion) pageBreak(parent *etree.Element) {
	parent.CreateElement("hr").CreateAttr("class", c.class("page-break"))
}

func (c *conversion) paragraphAttrs(el *etree.Element, pi paragraphInfo) {
	props := pi.eff
	if c.s.FabricateClasses && pi.styleID != "" {
		name := c.class("p-" + slug.Make(pi.styleID))
		if !c.sheet.Has("." + name) {
			if st, ok := c.styles.Paragraph(pi.styleID); ok {
				decls := paragraphDecls(st.Para)
				for _, d := range runDecls(st.Run) {
					decls.Set(d.Property, d.Value)
				}
				c.sheet.Add("."+name, decls)
			}
		}
		el.CreateAttr("class", name)
		props = pi.direct
	}
	if decls := paragraphDecls(props); len(decls) > 0 {
		el.CreateAttr("style", decls.String())
	}
	if styles.True(pi.eff.Bidi) {
		el.CreateAttr("dir", "rtl")
	}
}

// listItem places list paragraph into open list of the container, nil
// means paragraph is not a list item.
func (c *conversion) listItem(parent *etree.Element, pi paragraphInfo, story *wml.Story, ls *listState) *etree.Element {
	if pi.eff.NumID == nil || *pi.eff.NumID == 0 {
		return nil
	}
	numID, ilvl := *pi.eff.NumID, 0
	if pi.eff.Ilvl != nil {
		ilvl = min(max(*pi.eff.Ilvl, 0), numbering.MaxLevel)
	}
	lvl, ok := c.nums.Level(numID, ilvl)
	if !ok {
		c.warns.Add(common.CodeNumberingMissing, story.Part, "numbering %d level %d is not defined", numID, ilvl)
		return nil
	}
	if !lvl.Supported() && c.s.RestrictToSupportedNumbering {
		c.warns.Add(common.CodeNumberingUnsupported, story.Part, "numbering format %q rendered as decimal", lvl.Format)
	}

	tr := ls.stack.Enter(numID, ilvl, lvl.Start)
	ls.close(tr.Closed)
	for range tr.Opened {
		container := parent
		if n := len(ls.items); n > 0 {
			container = ls.items[n-1]
		}
		tag := "ul"
		if lvl.Ordered() {
			tag = "ol"
		}
		list := container.CreateElement(tag)
		if lvl.Ordered() {
			if t := lvl.ListType(); t != "1" {
				list.CreateAttr("type", t)
			}
			if tr.Counter != 1 {
				list.CreateAttr("start", strconv.Itoa(tr.Counter))
			}
		}
		ls.lists = append(ls.lists, list)
		ls.items = append(ls.items, nil)
	}

	li := ls.lists[len(ls.lists)-1].CreateElement("li")
	ls.items[len(ls.items)-1] = li

	fn, supported := c.markers.Lookup(pi.lang)
	if !supported && c.s.RestrictToSupportedLanguages {
		c.warns.Add(common.CodeListLangUnsupported, story.Part, "no list marker implementation for language %q", pi.lang)
	}
	formats := make([]string, ilvl+1)
	for i := range formats {
		formats[i] = "decimal"
		if l, ok := c.nums.Level(numID, i); ok {
			formats[i] = l.Format
		}
	}
	counters := ls.stack.Counters(numID, ilvl, func(level int) int {
		if l, ok := c.nums.Level(numID, level); ok {
			return l.Start
		}
		return 1
	})
	li.CreateAttr("data-marker", numbering.MarkerText(lvl.Text, counters, formats, fn))
	return li
}

func bookmark(el *etree.Element) *etree.Element {
	name := wml.AttrValue(el, "name", "")
	if name == "" || name == "_GoBack" {
		return nil
	}
	a := etree.NewElement("a")
	a.CreateAttr("id", name)
	return a
}

func children(el *etree.Element) []*etree.Element {
	if el == nil {
		return nil
	}
	return el.ChildElements()
}
