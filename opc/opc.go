// Package opc implements the subset of Open Packaging Conventions needed to
// read and write OOXML documents: parts, relationships and content types.
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"wmlconv/archive"
	"wmlconv/common"
)

const (
	ContentTypesName = "[Content_Types].xml"
	rootRelsName     = "_rels/.rels"
)

// Package is an opened (or being assembled) OPC package. Opened packages are
// read-only and safe for concurrent use, parts are read from the underlying
// zip on request.
type Package struct {
	files  map[string]*zip.File // lower-cased name -> zip entry
	data   map[string][]byte    // lower-cased name -> content set in memory
	names  map[string]string    // lower-cased name -> name as stored
	ctypes *ContentTypes
}

// New creates empty package.
func New() *Package {
	return &Package{
		files:  make(map[string]*zip.File),
		data:   make(map[string][]byte),
		names:  make(map[string]string),
		ctypes: NewContentTypes(),
	}
}

// Open reads package from memory.
func Open(data []byte) (*Package, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.NewError(common.CodeZipInvalid, err, "unable to open package")
	}
	return open(r)
}

// OpenFile reads package from disk. Whole file is loaded into memory so
// there is nothing to close.
func OpenFile(fname string) (*Package, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("unable to read package %q: %w", fname, err)
	}
	return Open(data)
}

func open(r *zip.Reader) (*Package, error) {
	p := New()
	err := archive.Walk(r, "", func(f *zip.File) error {
		key := normalize(f.Name)
		p.files[key] = f
		p.names[key] = strings.TrimPrefix(f.Name, "/")
		return nil
	})
	if err != nil {
		return nil, common.NewError(common.CodeZipInvalid, err, "unable to read package")
	}

	data, ok := p.Part(ContentTypesName)
	if !ok {
		// tolerate packages without content types, everything falls back to extension sniffing
		return p, nil
	}
	ct, err := ParseContentTypes(data)
	if err != nil {
		return nil, common.NewError(common.CodeXMLInvalid, err, "unable to parse %s", ContentTypesName)
	}
	p.ctypes = ct
	return p, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}

// Part returns content of the part, part names are case insensitive.
func (p *Package) Part(name string) ([]byte, bool) {
	key := normalize(name)
	if data, ok := p.data[key]; ok {
		return data, true
	}
	f, ok := p.files[key]
	if !ok {
		return nil, false
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Has reports part presence without reading it.
func (p *Package) Has(name string) bool {
	key := normalize(name)
	_, inData := p.data[key]
	_, inFiles := p.files[key]
	return inData || inFiles
}

// PartXML returns parsed XML part. Second value is false when part does not exist.
func (p *Package) PartXML(name string) (*etree.Document, bool, error) {
	data, ok := p.Part(name)
	if !ok {
		return nil, false, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, true, fmt.Errorf("unable to parse part %q: %w", name, err)
	}
	if doc.Root() == nil {
		return nil, true, fmt.Errorf("part %q has no root element", name)
	}
	return doc, true, nil
}

// Parts returns names of all parts in the package excluding content types.
func (p *Package) Parts() []string {
	res := make([]string, 0, len(p.names))
	for key, name := range p.names {
		if key == strings.ToLower(ContentTypesName) {
			continue
		}
		res = append(res, name)
	}
	slices.Sort(res)
	return res
}

// ContentType returns content type of the part: explicit override first,
// then default for part extension.
func (p *Package) ContentType(name string) string {
	return p.ctypes.Lookup(name)
}

// ContentTypes gives access to content types table.
func (p *Package) ContentTypes() *ContentTypes {
	return p.ctypes
}

// SetPart adds or replaces part. When contentType is not empty it is
// registered as override unless extension default already matches.
func (p *Package) SetPart(name string, data []byte, contentType string) {
	key := normalize(name)
	delete(p.files, key)
	p.data[key] = data
	p.names[key] = strings.TrimPrefix(name, "/")
	if contentType != "" && p.ctypes.Lookup(name) != contentType {
		p.ctypes.SetOverride(name, contentType)
	}
}

// SetPartXML serializes document and stores it as part.
func (p *Package) SetPartXML(name string, doc *etree.Document, contentType string) error {
	data, err := SerializeXML(doc)
	if err != nil {
		return fmt.Errorf("unable to serialize part %q: %w", name, err)
	}
	p.SetPart(name, data, contentType)
	return nil
}

// RemovePart removes part and its content type override.
func (p *Package) RemovePart(name string) {
	key := normalize(name)
	delete(p.files, key)
	delete(p.data, key)
	delete(p.names, key)
	p.ctypes.RemoveOverride(name)
}

// MainDocument returns name of the part targeted by the package level
// officeDocument relationship.
func (p *Package) MainDocument() (string, error) {
	rels, err := p.Relationships("")
	if err != nil {
		return "", err
	}
	for _, rel := range rels.ByType(RelTypeOfficeDocument) {
		if !rel.External {
			return rels.TargetPart(rel), nil
		}
	}
	return "", common.NewError(common.CodeInvalidDocx, nil, "package has no main document relationship")
}

// SerializeXML writes document with XML declaration expected by office applications.
func SerializeXML(doc *etree.Document) ([]byte, error) {
	if len(doc.Child) == 0 || !isProcInst(doc.Child[0]) {
		decl := etree.NewProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		doc.InsertChildAt(0, decl)
	}
	return doc.WriteToBytes()
}

func isProcInst(t etree.Token) bool {
	_, ok := t.(*etree.ProcInst)
	return ok
}

// relsName returns name of relationships part for source part, empty source
// means package itself.
func relsName(source string) string {
	source = strings.TrimPrefix(source, "/")
	if source == "" {
		return rootRelsName
	}
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// ResolveTarget resolves relationship target relative to the source part.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return strings.TrimPrefix(path.Clean(path.Join(path.Dir("/"+strings.TrimPrefix(source, "/")), target)), "/")
}
