package preprocess

import (
	"github.com/beevik/etree"

	"wmlconv/wml"
)

var (
	// accepted insertions keep their content
	revisionSplice = map[string]bool{
		"ins":    true,
		"moveTo": true,
	}
	// rejected content and bookkeeping markers
	revisionDelete = map[string]bool{
		"del":                    true,
		"moveFrom":               true,
		"delText":                true,
		"delInstrText":           true,
		"moveFromRangeStart":     true,
		"moveFromRangeEnd":       true,
		"moveToRangeStart":       true,
		"moveToRangeEnd":         true,
		"pPrChange":              true,
		"rPrChange":              true,
		"sectPrChange":           true,
		"tblPrChange":            true,
		"tblPrExChange":          true,
		"trPrChange":             true,
		"tcPrChange":             true,
		"tblGridChange":          true,
		"numberingChange":        true,
		"cellIns":                true,
		"cellMerge":              true,
		"customXmlInsRangeStart": true,
		"customXmlInsRangeEnd":   true,
		"customXmlDelRangeStart": true,
		"customXmlDelRangeEnd":   true,
	}
)

// acceptRule removes rejected content and unwraps accepted insertions.
func acceptRule(el *etree.Element) Action {
	if wml.Namespace(el) != wml.NSW {
		return Keep{}
	}
	switch {
	case revisionSplice[el.Tag]:
		// w:ins inside run properties only marks inserted paragraph mark
		if isPropertyMarker(el) {
			return Delete{}
		}
		return Splice{}
	case revisionDelete[el.Tag]:
		return Delete{}
	case el.Tag == "tc" && wml.Child(wml.Child(el, "tcPr"), "cellDel") != nil:
		return Delete{}
	case el.Tag == "tr" && wml.Child(wml.Child(el, "trPr"), "del") != nil:
		return Delete{}
	}
	return Keep{}
}

func isPropertyMarker(el *etree.Element) bool {
	p := el.Parent()
	return p != nil && (wml.Is(p, "rPr") || wml.Is(p, "trPr"))
}

// AcceptRevisions accepts all tracked changes in the subtree. Returns number
// of elements changed.
func AcceptRevisions(root *etree.Element) int {
	return Apply(root, acceptRule)
}

// HasTrackedRevisions reports whether subtree carries tracked changes.
func HasTrackedRevisions(root *etree.Element) bool {
	if root == nil {
		return false
	}
	for _, el := range root.ChildElements() {
		if wml.Namespace(el) == wml.NSW && (revisionSplice[el.Tag] || revisionDelete[el.Tag]) {
			return true
		}
		if HasTrackedRevisions(el) {
			return true
		}
	}
	return false
}
