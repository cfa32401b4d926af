package tohtml

import (
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// toNode converts etree element into HTML node tree. CSS text of style
// elements is guarded against premature end tag.
func toNode(el *etree.Element) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     el.Tag,
		DataAtom: atom.Lookup([]byte(el.Tag)),
	}
	for _, a := range el.Attr {
		key := a.Key
		if a.Space != "" {
			key = a.Space + ":" + a.Key
		}
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: a.Value})
	}
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			n.AppendChild(toNode(t))
		case *etree.CharData:
			data := t.Data
			if n.DataAtom == atom.Style {
				data = strings.ReplaceAll(data, "</style", `<\/style`)
			}
			n.AppendChild(&html.Node{Type: html.TextNode, Data: data})
		}
	}
	return n
}

// render writes complete HTML document with doctype.
func render(w io.Writer, root *etree.Element) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(toNode(root))
	return html.Render(w, doc)
}
