package opc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	NSRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsOfficeRels    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	RelTypeOfficeDocument = nsOfficeRels + "officeDocument"
	RelTypeStyles         = nsOfficeRels + "styles"
	RelTypeNumbering      = nsOfficeRels + "numbering"
	RelTypeFootnotes      = nsOfficeRels + "footnotes"
	RelTypeEndnotes       = nsOfficeRels + "endnotes"
	RelTypeComments       = nsOfficeRels + "comments"
	RelTypeHeader         = nsOfficeRels + "header"
	RelTypeFooter         = nsOfficeRels + "footer"
	RelTypeImage          = nsOfficeRels + "image"
	RelTypeHyperlink      = nsOfficeRels + "hyperlink"
	RelTypeSettings       = nsOfficeRels + "settings"
	RelTypeTheme          = nsOfficeRels + "theme"
	RelTypeFontTable      = nsOfficeRels + "fontTable"
	RelTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"

	// strict conformance documents use different namespace
	nsOfficeRelsStrict = "http://purl.oclc.org/ooxml/officeDocument/relationships/"
)

// Relationship is a single entry of relationships part.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Relationships is the ordered relationships table of a single source part.
type Relationships struct {
	Source string
	list   []Relationship
	byID   map[string]int
}

// NewRelationships creates empty table for source part.
func NewRelationships(source string) *Relationships {
	return &Relationships{Source: strings.TrimPrefix(source, "/"), byID: make(map[string]int)}
}

// ParseRelationships reads relationships part content.
func ParseRelationships(source string, data []byte) (*Relationships, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	rels := NewRelationships(source)
	root := doc.Root()
	if root == nil {
		return rels, nil
	}
	for _, el := range root.ChildElements() {
		if el.Tag != "Relationship" {
			continue
		}
		id := el.SelectAttrValue("Id", "")
		if id == "" {
			continue
		}
		rels.Add(Relationship{
			ID:       id,
			Type:     strings.Replace(el.SelectAttrValue("Type", ""), nsOfficeRelsStrict, nsOfficeRels, 1),
			Target:   el.SelectAttrValue("Target", ""),
			External: strings.EqualFold(el.SelectAttrValue("TargetMode", ""), "External"),
		})
	}
	return rels, nil
}

// Relationships returns relationships of the source part, empty source
// means package level relationships. Absent relationships part is not an
// error - empty table is returned.
func (p *Package) Relationships(source string) (*Relationships, error) {
	name := relsName(source)
	data, ok := p.Part(name)
	if !ok {
		return NewRelationships(source), nil
	}
	rels, err := ParseRelationships(source, data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse relationships %q: %w", name, err)
	}
	return rels, nil
}

// SetRelationships stores relationships table as part of the package.
func (p *Package) SetRelationships(rels *Relationships) error {
	return p.SetPartXML(relsName(rels.Source), rels.Document(), ContentTypeRelationships)
}

// Add appends relationship, entry with the same id is replaced.
func (r *Relationships) Add(rel Relationship) {
	if i, ok := r.byID[rel.ID]; ok {
		r.list[i] = rel
		return
	}
	r.byID[rel.ID] = len(r.list)
	r.list = append(r.list, rel)
}

// AddNew appends relationship with newly allocated id and returns the id.
func (r *Relationships) AddNew(relType, target string, external bool) string {
	id := r.NextID()
	r.Add(Relationship{ID: id, Type: relType, Target: target, External: external})
	return id
}

// NextID returns first unused "rIdN" id.
func (r *Relationships) NextID() string {
	n := len(r.list) + 1
	for {
		id := "rId" + strconv.Itoa(n)
		if _, ok := r.byID[id]; !ok {
			return id
		}
		n++
	}
}

// ByID finds relationship.
func (r *Relationships) ByID(id string) (Relationship, bool) {
	if i, ok := r.byID[id]; ok {
		return r.list[i], true
	}
	return Relationship{}, false
}

// ByType returns all relationships of requested type in document order.
func (r *Relationships) ByType(relType string) []Relationship {
	var res []Relationship
	for _, rel := range r.list {
		if rel.Type == relType {
			res = append(res, rel)
		}
	}
	return res
}

// List returns copy of all relationships in document order.
func (r *Relationships) List() []Relationship {
	return append([]Relationship(nil), r.list...)
}

// Len returns number of relationships.
func (r *Relationships) Len() int {
	return len(r.list)
}

// TargetPart resolves internal relationship target to the part name.
func (r *Relationships) TargetPart(rel Relationship) string {
	return ResolveTarget(r.Source, rel.Target)
}

// Document builds relationships part XML.
func (r *Relationships) Document() *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", NSRelationships)
	for _, rel := range r.list {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", rel.ID)
		el.CreateAttr("Type", rel.Type)
		el.CreateAttr("Target", rel.Target)
		if rel.External {
			el.CreateAttr("TargetMode", "External")
		}
	}
	return doc
}
