package towml

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"wmlconv/common"
	"wmlconv/opc"
)

// Package assembles document package. Without template a minimal package
// is built: document, styles, numbering when lists were produced, media.
// With template its parts are kept and only document body, numbering and
// media of the result are placed into it. Template itself is not modified,
// warnings about replaced template parts are appended to r.Warnings.
func (r *Result) Package(template *opc.Package) (*opc.Package, error) {
	if template == nil {
		return r.minimal()
	}
	return r.inject(template)
}

func (r *Result) minimal() (*opc.Package, error) {
	const main = "word/document.xml"
	pkg := opc.New()

	root := opc.NewRelationships("")
	root.AddNew(opc.RelTypeOfficeDocument, main, false)
	if err := pkg.SetRelationships(root); err != nil {
		return nil, err
	}

	rels := opc.NewRelationships(main)
	if err := pkg.SetPartXML("word/styles.xml", r.Styles, opc.ContentTypeStyles); err != nil {
		return nil, err
	}
	rels.Add(opc.Relationship{ID: "rIdStyles", Type: opc.RelTypeStyles, Target: "styles.xml"})
	if r.Numbering != nil {
		if err := pkg.SetPartXML("word/numbering.xml", r.Numbering, opc.ContentTypeNumbering); err != nil {
			return nil, err
		}
		rels.Add(opc.Relationship{ID: "rIdNumbering", Type: opc.RelTypeNumbering, Target: "numbering.xml"})
	}
	if err := r.store(pkg, main, rels); err != nil {
		return nil, err
	}
	return pkg, nil
}

// store writes document part, media and relationships of the result.
func (r *Result) store(pkg *opc.Package, main string, rels *opc.Relationships) error {
	if err := pkg.SetPartXML(main, r.Document, opc.ContentTypeDocument); err != nil {
		return err
	}
	dir := path.Dir(main)
	renamed := make(map[string]string)
	for _, m := range r.Media {
		name := freeName(pkg, dir, m.Name)
		if name != m.Name {
			renamed[m.Name] = name
		}
		pkg.SetPart(path.Join(dir, name), m.Data, m.ContentType)
	}
	for _, rel := range r.Relationships {
		if to, ok := renamed[rel.Target]; ok && !rel.External {
			rel.Target = to
		}
		rels.Add(rel)
	}
	return pkg.SetRelationships(rels)
}

// freeName keeps parts already in package intact, clashing media name gets
// a numeric suffix.
func freeName(pkg *opc.Package, dir, name string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	res := name
	for i := 1; pkg.Has(path.Join(dir, res)); i++ {
		res = stem + "-" + strconv.Itoa(i) + ext
	}
	return res
}

func (r *Result) inject(template *opc.Package) (*opc.Package, error) {
	main, err := template.MainDocument()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.Relationships(main)
	if err != nil {
		return nil, common.NewError(common.CodeInvalidDocx, err, "unable to read template relationships")
	}

	pkg := opc.New()
	for _, name := range template.Parts() {
		data, ok := template.Part(name)
		if !ok {
			return nil, fmt.Errorf("unable to read template part %q", name)
		}
		pkg.SetPart(name, data, template.ContentType(name))
	}
	warns := common.NewWarnings(nil)

	// old body content is gone, so are its images and links
	rels := opc.NewRelationships(main)
	hasStyles := false
	for _, rel := range tmpl.List() {
		switch rel.Type {
		case opc.RelTypeImage, opc.RelTypeHyperlink:
			continue
		case opc.RelTypeNumbering:
			if r.Numbering != nil {
				warns.Add(common.CodeWMLTemplatePartReplaced, tmpl.TargetPart(rel), "template numbering replaced by list definitions of the document")
				if err := pkg.SetPartXML(tmpl.TargetPart(rel), r.Numbering, opc.ContentTypeNumbering); err != nil {
					return nil, err
				}
			}
		case opc.RelTypeStyles:
			hasStyles = true
		}
		rels.Add(rel)
	}
	if r.Numbering != nil && len(rels.ByType(opc.RelTypeNumbering)) == 0 {
		name := path.Join(path.Dir(main), "numbering.xml")
		if err := pkg.SetPartXML(name, r.Numbering, opc.ContentTypeNumbering); err != nil {
			return nil, err
		}
		rels.Add(opc.Relationship{ID: rels.NextID(), Type: opc.RelTypeNumbering, Target: "numbering.xml"})
	}
	if !hasStyles {
		name := path.Join(path.Dir(main), "styles.xml")
		if err := pkg.SetPartXML(name, r.Styles, opc.ContentTypeStyles); err != nil {
			return nil, err
		}
		rels.Add(opc.Relationship{ID: rels.NextID(), Type: opc.RelTypeStyles, Target: "styles.xml"})
	}

	// template section properties survive, body content is replaced
	doc, ok, err := template.PartXML(main)
	if err != nil || !ok {
		return nil, common.NewError(common.CodeInvalidDocx, err, "template main document is unreadable")
	}
	merged := r.mergeBody(doc)
	res := *r
	res.Document = merged
	if err := res.store(pkg, main, rels); err != nil {
		return nil, err
	}
	r.Warnings = append(r.Warnings, warns.List()...)
	return pkg, nil
}

// mergeBody copies template document and puts result body content in front
// of template final section properties.
func (r *Result) mergeBody(tmpl *etree.Document) *etree.Document {
	doc := tmpl.Copy()
	var body *etree.Element
	for _, el := range doc.Root().ChildElements() {
		if el.Tag == "body" {
			body = el
		}
	}
	if body == nil {
		body = doc.Root().CreateElement(doc.Root().Space + ":body")
	}
	var sect *etree.Element
	for _, el := range body.ChildElements() {
		body.RemoveChild(el)
		if el.Tag == "sectPr" {
			sect = el
		}
	}
	for _, el := range r.Body.ChildElements() {
		if el.Tag == "sectPr" {
			if sect == nil {
				sect = el.Copy()
			}
			continue
		}
		body.AddChild(el.Copy())
	}
	if sect != nil {
		body.AddChild(sect)
	}
	// result content uses prefixes declared on its own root
	for _, a := range r.Document.Root().Attr {
		if a.Space == "xmlns" && doc.Root().SelectAttr("xmlns:"+a.Key) == nil {
			doc.Root().CreateAttr("xmlns:"+a.Key, a.Value)
		}
	}
	return doc
}
