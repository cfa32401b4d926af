// Package tohtml renders WordprocessingML document as HTML with generated CSS.
package tohtml

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"wmlconv/common"
	"wmlconv/css"
	"wmlconv/numbering"
	"wmlconv/opc"
	"wmlconv/preprocess"
	"wmlconv/sections"
	"wmlconv/styles"
	"wmlconv/wml"
)

// conversion is the state of a single Convert call. It is never shared.
type conversion struct {
	s       Settings
	doc     *wml.Document
	styles  *styles.Resolver
	nums    *numbering.Definitions
	markers *numbering.Markers
	sheet   *css.Sheet
	warns   *common.Warnings
	log     *zap.Logger

	// rendered header and footer parts keyed by kind and relationship id
	hfCache map[string]*etree.Element
	notes   map[noteKind]*noteTable
	fields  []fieldFrame
}

// Convert renders document in pkg. Only problems with main document part
// are fatal, everything else becomes a warning of the result.
func Convert(ctx context.Context, pkg *opc.Package, settings Settings, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if pkg == nil {
		return nil, common.NewError(common.CodeInvalidArgument, nil, "package is nil")
	}
	if settings.ClassPrefix == "" {
		settings.ClassPrefix = DefaultSettings().ClassPrefix
	}
	log = log.Named("tohtml")
	warns := common.NewWarnings(log)

	doc, err := wml.Load(ctx, pkg, warns, log)
	if err != nil {
		return nil, err
	}
	if err := preprocess.Run(doc, settings.Preprocess, log); err != nil {
		return nil, err
	}

	c := &conversion{
		s:       settings,
		doc:     doc,
		styles:  styles.NewResolver(root(doc.Styles), log),
		nums:    numbering.Parse(root(doc.Numbering)),
		markers: numbering.NewMarkers(settings.ListMarkers),
		sheet:   css.NewSheet(),
		warns:   warns,
		log:     log,
		hfCache: make(map[string]*etree.Element),
	}
	c.notes = c.loadNotes()

	htmlEl, body := c.document(pkg)
	c.body(body)
	c.noteLists(body)

	cssText := c.cssText()
	if cssText != "" {
		head := htmlEl.SelectElement("head")
		head.CreateElement("style").SetText(cssText)
	}

	var buf bytes.Buffer
	if err := render(&buf, htmlEl); err != nil {
		return nil, fmt.Errorf("unable to serialize html: %w", err)
	}

	res := &Result{
		HTML:     buf.String(),
		CSS:      cssText,
		Warnings: warns.List(),
	}
	if settings.TreeOutput {
		res.Element = htmlEl
	}
	log.Debug("Converted to HTML",
		zap.Int("bytes", buf.Len()),
		zap.Int("css_rules", c.sheet.Len()),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

func root(s *wml.Story) *etree.Element {
	if s == nil {
		return nil
	}
	return s.Root
}

func (c *conversion) class(name string) string {
	return c.s.ClassPrefix + name
}

// document creates html skeleton and returns root and body elements.
func (c *conversion) document(pkg *opc.Package) (*etree.Element, *etree.Element) {
	htmlEl := etree.NewElement("html")
	head := htmlEl.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	title := c.s.PageTitle
	if title == "" {
		title = coreTitle(pkg)
	}
	head.CreateElement("title").SetText(title)
	return htmlEl, htmlEl.CreateElement("body")
}

// coreTitle reads dc:title of core properties, empty when absent.
func coreTitle(pkg *opc.Package) string {
	rels, err := pkg.Relationships("")
	if err != nil {
		return ""
	}
	for _, rel := range rels.ByType(opc.RelTypeCoreProps) {
		doc, ok, err := pkg.PartXML(rels.TargetPart(rel))
		if err != nil || !ok {
			return ""
		}
		for _, el := range doc.Root().ChildElements() {
			if el.Tag == "title" {
				return strings.TrimSpace(el.Text())
			}
		}
	}
	return ""
}

func (c *conversion) cssText() string {
	var parts []string
	if c.s.GeneralCSS != "" {
		parts = append(parts, c.s.GeneralCSS)
	}
	if c.sheet.Len() > 0 {
		parts = append(parts, strings.TrimSuffix(c.sheet.String(), "\n"))
	}
	if c.s.AdditionalCSS != "" {
		parts = append(parts, c.s.AdditionalCSS)
	}
	return strings.Join(parts, "\n")
}

// body renders sections with their headers and footers.
func (c *conversion) body(body *etree.Element) {
	if c.s.FabricateClasses {
		para, run := c.styles.Defaults()
		decls := paragraphDecls(para)
		for _, d := range runDecls(run) {
			decls.Set(d.Property, d.Value)
		}
		if len(decls) > 0 {
			c.sheet.Add("body", decls)
		}
	}

	secs := sections.Split(c.doc.Body)
	refs, fallbacks := sections.ResolveReferences(secs)
	for _, fb := range fallbacks {
		c.warns.Add(common.CodeHeaderFooterFallback, c.doc.Main.Part,
			"section %d has no default %s, using %q reference", fb.Section+1, fb.Kind, fb.Type)
	}
	for i, sec := range secs {
		div := body.CreateElement("div")
		div.CreateAttr("class", c.class("section"))
		if h := c.headerFooter("header", refs[i].Header); h != nil {
			div.AddChild(h)
		}
		c.blocks(div, sec.Blocks, c.doc.Main)
		if f := c.headerFooter("footer", refs[i].Footer); f != nil {
			div.AddChild(f)
		}
	}
}

// headerFooter renders header or footer part once per relationship id and
// returns a fresh copy for every use.
func (c *conversion) headerFooter(kind, relID string) *etree.Element {
	if relID == "" {
		return nil
	}
	key := kind + ":" + relID
	if el, ok := c.hfCache[key]; ok {
		if el == nil {
			return nil
		}
		return el.Copy()
	}

	parts := c.doc.Headers
	if kind == "footer" {
		parts = c.doc.Footers
	}
	story, ok := parts[relID]
	if !ok {
		// dangling relationships were reported when loading
		if _, exists := c.doc.Main.Rels.ByID(relID); !exists {
			c.warns.Add(common.CodeRelationshipMissing, c.doc.Main.Part, "%s relationship %s not found", kind, relID)
		}
		c.hfCache[key] = nil
		return nil
	}

	div := etree.NewElement("div")
	div.CreateAttr("class", c.class(kind))
	c.blocks(div, story.Root.ChildElements(), story)
	c.hfCache[key] = div
	return div.Copy()
}
