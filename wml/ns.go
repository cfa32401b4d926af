// Package wml provides WordprocessingML vocabulary helpers over etree and
// loads document with all auxiliary parts it references.
package wml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	NSW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSR       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSWP      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NSA       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSPIC     = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	NSV       = "urn:schemas-microsoft-com:vml"
	NSO       = "urn:schemas-microsoft-com:office:office"
	NSMC      = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	NSW14     = "http://schemas.microsoft.com/office/word/2010/wordml"
	NSASVG    = "http://schemas.microsoft.com/office/drawing/2016/SVG/main"
	NSXML     = "http://www.w3.org/XML/1998/namespace"
	nsStrict  = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	nsRStrict = "http://purl.oclc.org/ooxml/officeDocument/relationships"
)

// well known prefixes, used when fragment carries no declarations
var knownPrefixes = map[string]string{
	"w":    NSW,
	"r":    NSR,
	"wp":   NSWP,
	"a":    NSA,
	"pic":  NSPIC,
	"v":    NSV,
	"o":    NSO,
	"mc":   NSMC,
	"w14":  NSW14,
	"asvg": NSASVG,
	"xml":  NSXML,
}

func canonical(uri string) string {
	switch uri {
	case nsStrict:
		return NSW
	case nsRStrict:
		return NSR
	}
	return uri
}

// Namespace returns namespace URI of the element.
func Namespace(el *etree.Element) string {
	if uri := el.NamespaceURI(); uri != "" {
		return canonical(uri)
	}
	return knownPrefixes[el.Space]
}

// IsNS reports whether element has requested namespace and local name.
func IsNS(el *etree.Element, ns, local string) bool {
	return el != nil && el.Tag == local && Namespace(el) == ns
}

// Is reports whether element is w:<local>.
func Is(el *etree.Element, local string) bool {
	return IsNS(el, NSW, local)
}

func attrNamespace(a *etree.Attr) string {
	if a.Space == "" {
		return ""
	}
	if uri := a.NamespaceURI(); uri != "" {
		return canonical(uri)
	}
	return knownPrefixes[a.Space]
}

// AttrNS returns value of namespaced attribute.
func AttrNS(el *etree.Element, ns, local string) (string, bool) {
	if el == nil {
		return "", false
	}
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Key == local && attrNamespace(a) == ns {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns value of w:<local> attribute. Unqualified attribute with the
// same name is accepted as well since some producers omit prefix.
func Attr(el *etree.Element, local string) (string, bool) {
	if v, ok := AttrNS(el, NSW, local); ok {
		return v, true
	}
	if el == nil {
		return "", false
	}
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == local {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns w:<local> attribute or default.
func AttrValue(el *etree.Element, local, def string) string {
	if v, ok := Attr(el, local); ok {
		return v
	}
	return def
}

// Val returns w:val attribute.
func Val(el *etree.Element) string {
	return AttrValue(el, "val", "")
}

// IntAttr parses integer w:<local> attribute.
func IntAttr(el *etree.Element, local string) (int, bool) {
	v, ok := Attr(el, local)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		// some producers write fractional twips
		f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if ferr != nil {
			return 0, false
		}
		n = int(f)
	}
	return n, true
}

// RelID returns r:id (or r:embed and friends when local is given) attribute.
func RelID(el *etree.Element, local string) string {
	v, _ := AttrNS(el, NSR, local)
	return v
}

// Child returns first w:<local> child element.
func Child(el *etree.Element, local string) *etree.Element {
	return ChildNS(el, NSW, local)
}

// ChildNS returns first child element with namespace and local name.
func ChildNS(el *etree.Element, ns, local string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if IsNS(c, ns, local) {
			return c
		}
	}
	return nil
}

// Children returns all w:<local> child elements.
func Children(el *etree.Element, local string) []*etree.Element {
	if el == nil {
		return nil
	}
	var res []*etree.Element
	for _, c := range el.ChildElements() {
		if Is(c, local) {
			res = append(res, c)
		}
	}
	return res
}

// Descendants returns all descendants with namespace and local name in
// document order.
func Descendants(el *etree.Element, ns, local string) []*etree.Element {
	var res []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if IsNS(c, ns, local) {
				res = append(res, c)
			}
			walk(c)
		}
	}
	if el != nil {
		walk(el)
	}
	return res
}

// OnOff interprets ST_OnOff toggle element: absent element gives nil,
// element without value is on.
func OnOff(el *etree.Element) *bool {
	if el == nil {
		return nil
	}
	v := true
	switch strings.ToLower(Val(el)) {
	case "0", "false", "off", "none":
		v = false
	}
	return &v
}

// Text returns concatenated w:t content of the subtree.
func Text(el *etree.Element) string {
	var sb strings.Builder
	for _, t := range Descendants(el, NSW, "t") {
		sb.WriteString(t.Text())
	}
	return sb.String()
}
