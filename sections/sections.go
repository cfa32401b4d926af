// Package sections splits document body into sections and resolves their
// header and footer references.
package sections

import (
	"github.com/beevik/etree"

	"wmlconv/utils/debug"
	"wmlconv/wml"
)

// Section is a run of body blocks sharing one w:sectPr. Props is nil only
// for implicit trailing section.
type Section struct {
	Blocks []*etree.Element
	Props  *etree.Element
}

// Split partitions body at section boundaries. Boundary is either w:sectPr
// child of the body or w:pPr/w:sectPr of a paragraph, such paragraph belongs
// to the section it closes. Non nil body always yields at least one section.
func Split(body *etree.Element) []Section {
	if body == nil {
		return nil
	}
	var (
		res []Section
		cur Section
	)
	for _, el := range body.ChildElements() {
		if wml.Is(el, "sectPr") {
			cur.Props = el
			res = append(res, cur)
			cur = Section{}
			continue
		}
		cur.Blocks = append(cur.Blocks, el)
		if wml.Is(el, "p") {
			if sp := wml.Child(wml.Child(el, "pPr"), "sectPr"); sp != nil {
				cur.Props = sp
				res = append(res, cur)
				cur = Section{}
			}
		}
	}
	if len(cur.Blocks) > 0 || len(res) == 0 {
		res = append(res, cur)
	}
	return res
}

// Reference type preference, most wanted first.
var preference = []string{"default", "first", "even"}

// Refs are header and footer relationship ids effective for a section.
type Refs struct {
	Header string
	Footer string
	// true when id was taken from preceding section
	HeaderInherited bool
	FooterInherited bool
}

// Fallback records section where non default reference had to be used.
type Fallback struct {
	Section int
	Kind    string // "header" or "footer"
	Type    string
}

// ResolveReferences picks one header and one footer per section. When a
// section has no references of a kind it inherits resolved id of the
// preceding section.
func ResolveReferences(secs []Section) ([]Refs, []Fallback) {
	refs := make([]Refs, len(secs))
	var fallbacks []Fallback
	var prev Refs
	for i, s := range secs {
		r := Refs{}
		var typ string
		if r.Header, typ = pick(s.Props, "headerReference"); r.Header == "" {
			r.Header, r.HeaderInherited = prev.Header, prev.Header != ""
		} else if typ != "default" {
			fallbacks = append(fallbacks, Fallback{Section: i, Kind: "header", Type: typ})
		}
		if r.Footer, typ = pick(s.Props, "footerReference"); r.Footer == "" {
			r.Footer, r.FooterInherited = prev.Footer, prev.Footer != ""
		} else if typ != "default" {
			fallbacks = append(fallbacks, Fallback{Section: i, Kind: "footer", Type: typ})
		}
		refs[i] = r
		prev = r
	}
	return refs, fallbacks
}

func pick(sectPr *etree.Element, local string) (string, string) {
	found := make(map[string]string)
	for _, ref := range wml.Children(sectPr, local) {
		typ := wml.AttrValue(ref, "type", "default")
		if _, ok := found[typ]; !ok {
			found[typ] = wml.RelID(ref, "id")
		}
	}
	for _, typ := range preference {
		if id := found[typ]; id != "" {
			return id, typ
		}
	}
	return "", ""
}

// Dump renders sections for debugging.
func Dump(secs []Section, refs []Refs) string {
	tw := debug.NewTreeWriter()
	for i, s := range secs {
		tw.Fields(0, "section", "index", i, "blocks", len(s.Blocks), "explicit", s.Props != nil)
		if i < len(refs) {
			tw.TextBlock(1, "header", refs[i].Header)
			tw.TextBlock(1, "footer", refs[i].Footer)
		}
		for _, b := range s.Blocks {
			tw.TextBlock(1, b.Tag, wml.Text(b))
		}
	}
	return tw.String()
}
