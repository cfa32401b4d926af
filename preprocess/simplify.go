package preprocess

import (
	"strings"

	"github.com/beevik/etree"

	"wmlconv/wml"
)

// SimplifySettings selects markup simplifications.
type SimplifySettings struct {
	RemoveComments              bool
	RemoveContentControls       bool
	RemoveSmartTags             bool
	RemoveRsidInfo              bool
	RemoveLastRenderedPageBreak bool
	RemoveBookmarks             bool
	RemoveGoBackBookmark        bool
	RemoveSoftHyphens           bool
	RemoveProofErrors           bool
	ReplaceTabsWithSpaces       bool
}

const (
	goBackBookmark = "_GoBack"
	softHyphen     = '\u00ad'
)

// Simplify removes markup which carries no content according to settings.
// Returns number of elements changed.
func Simplify(root *etree.Element, s SimplifySettings) int {
	var goBack map[string]bool
	if s.RemoveGoBackBookmark && !s.RemoveBookmarks {
		goBack = goBackIDs(root)
	}
	if s.RemoveRsidInfo {
		stripRsid(root)
	}
	return Apply(root, func(el *etree.Element) Action {
		if s.RemoveRsidInfo {
			stripRsid(el)
		}
		if wml.Namespace(el) != wml.NSW {
			return Keep{}
		}
		switch el.Tag {
		case "smartTag", "customXml":
			if s.RemoveSmartTags {
				return unwrapWithProps(el, "smartTagPr", "customXmlPr")
			}
		case "sdt":
			if s.RemoveContentControls {
				content := wml.Child(el, "sdtContent")
				if content == nil {
					return Delete{}
				}
				return Replace{Nodes: Children(content)}
			}
		case "lastRenderedPageBreak":
			if s.RemoveLastRenderedPageBreak {
				return Delete{}
			}
		case "commentRangeStart", "commentRangeEnd", "commentReference":
			if s.RemoveComments {
				return Delete{}
			}
		case "bookmarkStart", "bookmarkEnd":
			if s.RemoveBookmarks {
				return Delete{}
			}
			if goBack[wml.AttrValue(el, "id", "")] {
				return Delete{}
			}
		case "proofErr", "noProof":
			if s.RemoveProofErrors {
				return Delete{}
			}
		case "tab":
			// tab stop definitions live in w:tabs and stay
			if s.ReplaceTabsWithSpaces && wml.Is(el.Parent(), "r") {
				t := etree.NewElement("t")
				t.Space = el.Space
				t.CreateAttr("xml:space", "preserve")
				t.SetText(" ")
				return Replace{Nodes: []etree.Token{t}}
			}
		case "t":
			if s.RemoveSoftHyphens && strings.ContainsRune(el.Text(), softHyphen) {
				el.SetText(strings.ReplaceAll(el.Text(), string(softHyphen), ""))
			}
		case "softHyphen":
			if s.RemoveSoftHyphens {
				return Delete{}
			}
		}
		return Keep{}
	})
}

// unwrapWithProps splices element dropping its property child first.
func unwrapWithProps(el *etree.Element, props ...string) Action {
	for _, name := range props {
		if p := wml.Child(el, name); p != nil {
			el.RemoveChild(p)
		}
	}
	return Splice{}
}

func goBackIDs(root *etree.Element) map[string]bool {
	ids := make(map[string]bool)
	for _, bm := range wml.Descendants(root, wml.NSW, "bookmarkStart") {
		if wml.AttrValue(bm, "name", "") == goBackBookmark {
			ids[wml.AttrValue(bm, "id", "")] = true
		}
	}
	return ids
}

func stripRsid(el *etree.Element) {
	for i := len(el.Attr) - 1; i >= 0; i-- {
		if strings.HasPrefix(el.Attr[i].Key, "rsid") {
			el.RemoveAttr(el.Attr[i].FullKey())
		}
	}
}
