package towml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"wmlconv/common"
	"wmlconv/opc"
)

// blockTags start a new paragraph, anything else is inline content.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true,
	atom.Aside: true, atom.Figure: true, atom.Figcaption: true, atom.Address: true,
	atom.Center: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Hr: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Table: true,
	atom.Body: true, atom.Html: true, atom.Form: true, atom.Fieldset: true,
}

// skipped elements never produce content
var skipTags = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Template: true,
	atom.Noscript: true, atom.Title: true, atom.Meta: true, atom.Link: true,
	atom.Iframe: true, atom.Object: true, atom.Embed: true, atom.Canvas: true,
	atom.Button: true, atom.Input: true, atom.Select: true, atom.Textarea: true,
}

var headingStyles = map[atom.Atom]string{
	atom.H1: "Heading1", atom.H2: "Heading2", atom.H3: "Heading3",
	atom.H4: "Heading4", atom.H5: "Heading5", atom.H6: "Heading6",
}

// flow renders children of n into container, c is context of n.
func (b *builder) flow(container *etree.Element, n *html.Node, c scope) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.flowNode(container, ch, c)
	}
}

func (b *builder) flowNode(container *etree.Element, n *html.Node, c scope) {
	switch n.Type {
	case html.TextNode:
		if b.open == nil && strings.TrimSpace(n.Data) == "" && !c.pre {
			return
		}
		b.inline(b.paragraph(container, c), n, c)
	case html.ElementNode:
		switch {
		case skipTags[n.DataAtom]:
		case blockTags[n.DataAtom]:
			b.flush()
			b.block(container, n, c)
			b.flush()
		default:
			b.inline(b.paragraph(container, c), n, c)
		}
	}
}

// flush closes paragraph receiving inline content.
func (b *builder) flush() {
	b.open = nil
}

// paragraph returns open paragraph, creating one in container.
func (b *builder) paragraph(container *etree.Element, c scope) *etree.Element {
	if b.open != nil {
		return b.open
	}
	b.open = b.newParagraph(container, c, false)
	b.space = true
	return b.open
}

func (b *builder) newParagraph(container *etree.Element, c scope, border bool) *etree.Element {
	p := container.CreateElement("w:p")
	numID, ilvl := 0, 0
	if c.item != nil && !c.item.used {
		c.item.used = true
		numID, ilvl = c.item.numID, c.item.ilvl
	}
	if pPr := c.para.pPr(numID, ilvl, border); pPr != nil {
		p.AddChild(pPr)
	}
	for _, name := range b.pendingMarks {
		b.bookmark(p, name)
	}
	b.pendingMarks = nil
	return p
}

func (b *builder) bookmark(parent *etree.Element, name string) {
	id := strconv.Itoa(b.bookmarkID)
	b.bookmarkID++
	start := parent.CreateElement("w:bookmarkStart")
	start.CreateAttr("w:id", id)
	start.CreateAttr("w:name", name)
	parent.CreateElement("w:bookmarkEnd").CreateAttr("w:id", id)
}

// block renders block level element.
func (b *builder) block(container *etree.Element, n *html.Node, parent scope) {
	c := b.element(n, parent)
	if id := attr(n, "id"); id != "" {
		b.pendingMarks = append(b.pendingMarks, id)
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		c.para.style = headingStyles[n.DataAtom]
	case atom.Blockquote:
		c.para.style = "Quote"
	case atom.Pre:
		c.para.style = "Preformatted"
		c.pre = true
	case atom.Hr:
		b.newParagraph(container, c, true)
		return
	case atom.Ul, atom.Ol:
		b.list(container, n, c)
		return
	case atom.Table:
		b.table(container, n, c)
		return
	}
	b.flow(container, n, c)
	if len(b.pendingMarks) > 0 {
		// block without content still gets its bookmarks
		b.paragraph(container, c)
	}
}

// list emits items of ul or ol using a fresh numbering instance.
func (b *builder) list(container *etree.Element, n *html.Node, c scope) {
	ordered := n.DataAtom == atom.Ol
	start := 1
	if s, err := strconv.Atoi(strings.TrimSpace(attr(n, "start"))); err == nil && ordered {
		start = s
	}
	format := "bullet"
	if ordered {
		format = listFormat(attr(n, "type"), b.computed(n))
	}
	ilvl := min(c.ilvl, maxLevel)
	numID := b.lists.add(format, ilvl, start)

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode || skipTags[ch.DataAtom] {
			continue
		}
		ic := c
		ic.ilvl = ilvl + 1
		ic.item = &listItem{numID: numID, ilvl: ilvl}
		b.flush()
		if ch.DataAtom == atom.Li {
			ic = b.element(ch, ic)
			if id := attr(ch, "id"); id != "" {
				b.pendingMarks = append(b.pendingMarks, id)
			}
			b.flow(container, ch, ic)
			if !ic.item.used {
				b.paragraph(container, ic)
			}
		} else {
			b.flowNode(container, ch, ic)
		}
		b.flush()
	}
}

// inline renders inline node into target, which is paragraph or hyperlink.
func (b *builder) inline(target *etree.Element, n *html.Node, c scope) {
	switch n.Type {
	case html.TextNode:
		b.text(target, n.Data, c)
		return
	case html.ElementNode:
	default:
		return
	}
	if skipTags[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.Br:
		b.run(target, c.run).CreateElement("w:br")
		b.space = true
		return
	case atom.Img:
		b.image(target, n, c)
		return
	case atom.A:
		b.anchor(target, n, b.element(n, c))
		return
	}
	if blockTags[n.DataAtom] {
		b.warns.Add(common.CodeWMLUnsupportedElement, "", "block element <%s> inside inline content rendered inline", n.Data)
	}
	c = b.element(n, c)
	if id := attr(n, "id"); id != "" {
		b.bookmark(target, id)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.inline(target, ch, c)
	}
}

// anchor produces hyperlink for href and bookmark for id or name.
func (b *builder) anchor(target *etree.Element, n *html.Node, c scope) {
	for _, key := range []string{"id", "name"} {
		if v := attr(n, key); v != "" {
			b.bookmark(target, v)
			break
		}
	}
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			b.inline(target, ch, c)
		}
		return
	}

	link := target.CreateElement("w:hyperlink")
	if anchor, ok := strings.CutPrefix(href, "#"); ok {
		link.CreateAttr("w:anchor", anchor)
	} else {
		link.CreateAttr("r:id", b.relationship(opc.RelTypeHyperlink, href, true))
	}
	if title := attr(n, "title"); title != "" {
		link.CreateAttr("w:tooltip", title)
	}
	c.run.style = "Hyperlink"
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.inline(link, ch, c)
	}
}

// run appends run with formatting to target.
func (b *builder) run(target *etree.Element, f runFmt) *etree.Element {
	r := target.CreateElement("w:r")
	if rPr := f.rPr(); rPr != nil {
		r.AddChild(rPr)
	}
	return r
}

// text emits text with white space collapsed, preformatted text keeps it
// and turns line feeds into breaks.
func (b *builder) text(target *etree.Element, s string, c scope) {
	if c.pre {
		r := b.run(target, c.run)
		for i, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
			if i > 0 {
				r.CreateElement("w:br")
			}
			if line != "" {
				addText(r, line)
			}
		}
		return
	}

	var sb strings.Builder
	for _, ch := range s {
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' {
			if b.space {
				continue
			}
			b.space = true
			sb.WriteByte(' ')
			continue
		}
		b.space = false
		sb.WriteRune(ch)
	}
	if sb.Len() == 0 {
		return
	}
	addText(b.run(target, c.run), sb.String())
}

func addText(r *etree.Element, s string) {
	t := r.CreateElement("w:t")
	if strings.TrimSpace(s) != s || strings.Contains(s, "  ") {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(s)
}
