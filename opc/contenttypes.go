package opc

import (
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

const (
	NSContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"

	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeXML           = "application/xml"

	wmlPrefix = "application/vnd.openxmlformats-officedocument.wordprocessingml."

	ContentTypeDocument      = wmlPrefix + "document.main+xml"
	ContentTypeDocumentMacro = "application/vnd.ms-word.document.macroEnabled.main+xml"
	ContentTypeTemplate      = wmlPrefix + "template.main+xml"
	ContentTypeStyles        = wmlPrefix + "styles+xml"
	ContentTypeNumbering     = wmlPrefix + "numbering+xml"
	ContentTypeFootnotes     = wmlPrefix + "footnotes+xml"
	ContentTypeEndnotes      = wmlPrefix + "endnotes+xml"
	ContentTypeComments      = wmlPrefix + "comments+xml"
	ContentTypeHeader        = wmlPrefix + "header+xml"
	ContentTypeFooter        = wmlPrefix + "footer+xml"
	ContentTypeSettings      = wmlPrefix + "settings+xml"

	ContentTypeWorkbook     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ContentTypePresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
)

// ContentTypes is the content types table of a package.
type ContentTypes struct {
	defaults  map[string]string // lower-cased extension -> type
	overrides map[string]string // lower-cased part name without leading slash -> type
	names     map[string]string // lower-cased part name -> name as given
}

// NewContentTypes returns table with defaults every package needs.
func NewContentTypes() *ContentTypes {
	ct := &ContentTypes{
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
		names:     make(map[string]string),
	}
	ct.SetDefault("rels", ContentTypeRelationships)
	ct.SetDefault("xml", ContentTypeXML)
	return ct
}

// ParseContentTypes reads [Content_Types].xml part.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	ct := &ContentTypes{
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
		names:     make(map[string]string),
	}
	root := doc.Root()
	if root == nil {
		return ct, nil
	}
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "Default":
			ct.SetDefault(el.SelectAttrValue("Extension", ""), el.SelectAttrValue("ContentType", ""))
		case "Override":
			ct.SetOverride(el.SelectAttrValue("PartName", ""), el.SelectAttrValue("ContentType", ""))
		}
	}
	return ct, nil
}

// SetDefault registers content type for extension.
func (ct *ContentTypes) SetDefault(ext, contentType string) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || contentType == "" {
		return
	}
	ct.defaults[ext] = contentType
}

// HasDefault reports whether extension has registered content type.
func (ct *ContentTypes) HasDefault(ext string) bool {
	_, ok := ct.defaults[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// SetOverride registers content type for a single part.
func (ct *ContentTypes) SetOverride(name, contentType string) {
	if name == "" || contentType == "" {
		return
	}
	key := normalize(name)
	ct.overrides[key] = contentType
	ct.names[key] = strings.TrimPrefix(name, "/")
}

// RemoveOverride drops override for a part.
func (ct *ContentTypes) RemoveOverride(name string) {
	key := normalize(name)
	delete(ct.overrides, key)
	delete(ct.names, key)
}

// Lookup returns content type of the part or empty string.
func (ct *ContentTypes) Lookup(name string) string {
	if t, ok := ct.overrides[normalize(name)]; ok {
		return t
	}
	ext := strings.TrimPrefix(path.Ext(name), ".")
	return ct.defaults[strings.ToLower(ext)]
}

// Document builds [Content_Types].xml with stable ordering.
func (ct *ContentTypes) Document() *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement("Types")
	root.CreateAttr("xmlns", NSContentTypes)
	for _, ext := range slices.Sorted(maps.Keys(ct.defaults)) {
		el := root.CreateElement("Default")
		el.CreateAttr("Extension", ext)
		el.CreateAttr("ContentType", ct.defaults[ext])
	}
	for _, key := range slices.Sorted(maps.Keys(ct.overrides)) {
		el := root.CreateElement("Override")
		el.CreateAttr("PartName", "/"+ct.names[key])
		el.CreateAttr("ContentType", ct.overrides[key])
	}
	return doc
}
