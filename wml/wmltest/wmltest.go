// Package wmltest builds small in-memory word processing packages for tests.
package wmltest

import (
	"fmt"
	"maps"
	"slices"
	"testing"

	"wmlconv/opc"
)

// Namespaces declares every prefix fixtures use.
const Namespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture" ` +
	`xmlns:v="urn:schemas-microsoft-com:vml" ` +
	`xmlns:asvg="http://schemas.microsoft.com/office/drawing/2016/SVG/main" ` +
	`xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml"`

// Wrap puts content into root element with all namespaces declared.
func Wrap(root, content string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:%s %s>%s</w:%s>`, root, Namespaces, content, root)
}

// Media is binary part referenced from the main document.
type Media struct {
	Name string // relative to word/
	Data []byte
	Type string
}

// Docx describes fixture content, XML fields hold inner content of the
// corresponding root element, empty means part is absent.
type Docx struct {
	Body      string
	Styles    string
	Numbering string
	Footnotes string
	Endnotes  string
	Comments  string
	Settings  string
	// relationship id -> inner content of w:hdr / w:ftr
	Headers map[string]string
	Footers map[string]string
	// relationship id -> image
	Media map[string]Media
	// relationship id -> external URL
	Links map[string]string
	// relationship ids which point to absent parts
	Dangling map[string]string
}

type auxPart struct {
	content string
	root    string
	name    string
	relType string
	ctype   string
}

// Package assembles the fixture.
func (d Docx) Package(t testing.TB) *opc.Package {
	t.Helper()
	p := opc.New()
	p.ContentTypes().SetDefault("png", "image/png")
	p.ContentTypes().SetDefault("jpeg", "image/jpeg")
	p.ContentTypes().SetDefault("svg", "image/svg+xml")

	p.SetPart("word/document.xml", []byte(Wrap("document", "<w:body>"+d.Body+"</w:body>")), opc.ContentTypeDocument)
	root := opc.NewRelationships("")
	root.AddNew(opc.RelTypeOfficeDocument, "word/document.xml", false)
	mustRels(t, p, root)

	rels := opc.NewRelationships("word/document.xml")
	aux := []auxPart{
		{d.Styles, "styles", "styles.xml", opc.RelTypeStyles, opc.ContentTypeStyles},
		{d.Numbering, "numbering", "numbering.xml", opc.RelTypeNumbering, opc.ContentTypeNumbering},
		{d.Footnotes, "footnotes", "footnotes.xml", opc.RelTypeFootnotes, opc.ContentTypeFootnotes},
		{d.Endnotes, "endnotes", "endnotes.xml", opc.RelTypeEndnotes, opc.ContentTypeEndnotes},
		{d.Comments, "comments", "comments.xml", opc.RelTypeComments, opc.ContentTypeComments},
		{d.Settings, "settings", "settings.xml", opc.RelTypeSettings, opc.ContentTypeSettings},
	}
	for i, a := range aux {
		if a.content == "" {
			continue
		}
		p.SetPart("word/"+a.name, []byte(Wrap(a.root, a.content)), a.ctype)
		rels.Add(opc.Relationship{ID: fmt.Sprintf("rIdAux%d", i+1), Type: a.relType, Target: a.name})
	}
	for i, id := range slices.Sorted(maps.Keys(d.Headers)) {
		name := fmt.Sprintf("header%d.xml", i+1)
		p.SetPart("word/"+name, []byte(Wrap("hdr", d.Headers[id])), opc.ContentTypeHeader)
		rels.Add(opc.Relationship{ID: id, Type: opc.RelTypeHeader, Target: name})
	}
	for i, id := range slices.Sorted(maps.Keys(d.Footers)) {
		name := fmt.Sprintf("footer%d.xml", i+1)
		p.SetPart("word/"+name, []byte(Wrap("ftr", d.Footers[id])), opc.ContentTypeFooter)
		rels.Add(opc.Relationship{ID: id, Type: opc.RelTypeFooter, Target: name})
	}
	for _, id := range slices.Sorted(maps.Keys(d.Media)) {
		m := d.Media[id]
		p.SetPart("word/"+m.Name, m.Data, m.Type)
		rels.Add(opc.Relationship{ID: id, Type: opc.RelTypeImage, Target: m.Name})
	}
	for _, id := range slices.Sorted(maps.Keys(d.Links)) {
		rels.Add(opc.Relationship{ID: id, Type: opc.RelTypeHyperlink, Target: d.Links[id], External: true})
	}
	for _, id := range slices.Sorted(maps.Keys(d.Dangling)) {
		rels.Add(opc.Relationship{ID: id, Type: d.Dangling[id], Target: "absent-" + id + ".xml"})
	}
	mustRels(t, p, rels)
	return p
}

func mustRels(t testing.TB, p *opc.Package, rels *opc.Relationships) {
	t.Helper()
	if err := p.SetRelationships(rels); err != nil {
		t.Fatalf("unable to store relationships: %v", err)
	}
}

// P builds a paragraph with a single plain run.
func P(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}
