// Package towml builds WordprocessingML document from HTML and CSS.
package towml

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"wmlconv/common"
	"wmlconv/css"
	"wmlconv/opc"
	"wmlconv/wml"
)

var rootNamespaces = [][2]string{
	{"xmlns:w", wml.NSW},
	{"xmlns:r", wml.NSR},
	{"xmlns:wp", wml.NSWP},
	{"xmlns:a", wml.NSA},
	{"xmlns:pic", wml.NSPIC},
	{"xmlns:asvg", wml.NSASVG},
}

// scope is formatting and structure inherited by HTML descendants.
type scope struct {
	run  runFmt
	para paraFmt
	// list item waiting for its first paragraph
	item *listItem
	ilvl int // nesting depth of the next list
	pre  bool
}

type listItem struct {
	numID int
	ilvl  int
	used  bool
}

// builder is the state of a single Convert call.
type builder struct {
	s      Settings
	sheet  *css.Stylesheet
	parser *css.Parser
	warns  *common.Warnings
	log    *zap.Logger

	// paragraph receiving inline content, nil between blocks
	open *etree.Element
	// last emitted character was white space or paragraph is empty
	space bool
	// bookmarks for the next paragraph
	pendingMarks []string

	bookmarkID int
	docPrID    int
	rels       []opc.Relationship
	media      []Media
	images     map[string]string // data hash -> relationship id
	lists      *numberingBuilder
}

// Convert parses HTML from r and produces document body with supporting parts.
func Convert(ctx context.Context, r io.Reader, settings Settings, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if r == nil {
		return nil, common.NewError(common.CodeInvalidArgument, nil, "html source is nil")
	}
	if settings.DefaultImageWidth <= 0 {
		settings.DefaultImageWidth = DefaultSettings().DefaultImageWidth
	}
	log = log.Named("towml")

	utf8, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("unable to detect html encoding: %w", err)
	}
	root, err := html.Parse(utf8)
	if err != nil {
		return nil, common.NewError(common.CodeInvalidArgument, err, "unable to parse html")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &builder{
		s:      settings,
		parser: css.NewParser(log),
		warns:  common.NewWarnings(log),
		log:    log,
		images: make(map[string]string),
		lists:  newNumberingBuilder(),
	}
	b.sheet = b.stylesheet(root)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	document := doc.CreateElement("w:document")
	for _, ns := range rootNamespaces {
		document.CreateAttr(ns[0], ns[1])
	}
	body := document.CreateElement("w:body")

	start := find(root, atom.Body)
	if start == nil {
		start = root
	}
	b.flow(body, start, b.element(start, scope{}))
	b.flush()
	sectPr(body)

	res := &Result{
		Document:      doc,
		Body:          body,
		Styles:        minimalStyles(),
		Media:         b.media,
		Relationships: b.rels,
		Warnings:      b.warns.List(),
	}
	if b.lists.used() {
		res.Numbering = b.lists.document()
	}
	log.Debug("Converted to WML",
		zap.Int("blocks", len(body.ChildElements())),
		zap.Int("media", len(b.media)),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

// sectPr appends letter sized section with one inch margins.
func sectPr(body *etree.Element) {
	s := body.CreateElement("w:sectPr")
	sz := s.CreateElement("w:pgSz")
	sz.CreateAttr("w:w", "12240")
	sz.CreateAttr("w:h", "15840")
	mar := s.CreateElement("w:pgMar")
	for _, a := range [][2]string{
		{"w:top", "1440"}, {"w:right", "1440"}, {"w:bottom", "1440"}, {"w:left", "1440"},
		{"w:header", "720"}, {"w:footer", "720"}, {"w:gutter", "0"},
	} {
		mar.CreateAttr(a[0], a[1])
	}
}

// stylesheet combines default CSS, document style elements and user CSS in
// cascade order.
func (b *builder) stylesheet(root *html.Node) *css.Stylesheet {
	sheet := b.parser.Parse([]byte(b.s.DefaultCSS), "default")
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			sheet.Append(b.parser.Parse([]byte(sb.String()), "document"))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if b.s.UserCSS != "" {
		sheet.Append(b.parser.Parse([]byte(b.s.UserCSS), "user"))
	}
	return sheet
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// computed returns CSS properties of element from style sheets and its
// style attribute.
func (b *builder) computed(n *html.Node) css.Properties {
	classes := strings.Fields(attr(n, "class"))
	return b.sheet.Computed(strings.ToLower(n.Data), classes, b.parser.ParseInline(attr(n, "style")))
}

// element derives context for children of n.
func (b *builder) element(n *html.Node, c scope) scope {
	if n.Type != html.ElementNode {
		return c
	}
	c.run.tag(n.Data)
	if n.DataAtom == atom.Font {
		c.run.fontAttrs(func(k string) string { return attr(n, k) })
	}
	props := b.computed(n)
	c.run.apply(props)
	c.para.apply(props)
	if strings.EqualFold(attr(n, "dir"), "rtl") {
		c.run.rtl = true
		c.para.bidi = true
	}
	return c
}
