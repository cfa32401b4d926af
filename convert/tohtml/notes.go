package tohtml

import (
	"github.com/beevik/etree"

	"wmlconv/common"
	"wmlconv/wml"
)

type noteKind int

const (
	noteFootnote noteKind = iota
	noteEndnote
	noteComment
)

// names of note kind: element in its part, singular and plural for HTML ids
// and classes
var noteNames = [...]struct{ element, one, many string }{
	noteFootnote: {"footnote", "footnote", "footnotes"},
	noteEndnote:  {"endnote", "endnote", "endnotes"},
	noteComment:  {"comment", "comment", "comments"},
}

// noteTable indexes notes of one part and remembers which were referenced.
type noteTable struct {
	story *wml.Story
	byID  map[string]*etree.Element
	order []string
	seen  map[string]bool
}

func newNoteTable(story *wml.Story, element string) *noteTable {
	t := &noteTable{story: story, byID: make(map[string]*etree.Element), seen: make(map[string]bool)}
	if story == nil {
		return t
	}
	for _, el := range wml.Children(story.Root, element) {
		switch wml.AttrValue(el, "type", "normal") {
		case "separator", "continuationSeparator", "continuationNotice":
			continue
		}
		if id := wml.AttrValue(el, "id", ""); id != "" {
			t.byID[id] = el
		}
	}
	return t
}

func (c *conversion) loadNotes() map[noteKind]*noteTable {
	return map[noteKind]*noteTable{
		noteFootnote: newNoteTable(c.doc.Footnotes, noteNames[noteFootnote].element),
		noteEndnote:  newNoteTable(c.doc.Endnotes, noteNames[noteEndnote].element),
		noteComment:  newNoteTable(c.doc.Comments, noteNames[noteComment].element),
	}
}

// noteReference emits superscript link to the note, missing note is shown
// as bracketed id.
func (c *conversion) noteReference(parent *etree.Element, kind noteKind, id string, story *wml.Story) {
	t := c.notes[kind]
	names := noteNames[kind]
	if _, ok := t.byID[id]; !ok {
		c.warns.Add(common.CodeNoteMissing, story.Part, "%s %q not found", names.one, id)
		parent.CreateText("[" + id + "]")
		return
	}
	if !t.seen[id] {
		t.seen[id] = true
		t.order = append(t.order, id)
	}
	a := parent.CreateElement("sup").CreateElement("a")
	a.CreateAttr("href", "#"+c.class(names.one+"-"+id))
	a.CreateAttr("id", c.class(names.one+"-ref-"+id))
	a.SetText(id)
}

// noteLists appends lists of referenced notes in reference order.
func (c *conversion) noteLists(body *etree.Element) {
	for _, kind := range []noteKind{noteFootnote, noteEndnote, noteComment} {
		t := c.notes[kind]
		if len(t.order) == 0 {
			continue
		}
		names := noteNames[kind]
		ol := body.CreateElement("ol")
		ol.CreateAttr("class", c.class(names.many))
		// notes may reference further notes, order grows while rendering
		for i := 0; i < len(t.order); i++ {
			id := t.order[i]
			li := ol.CreateElement("li")
			li.CreateAttr("id", c.class(names.one+"-"+id))
			li.CreateAttr("value", id)
			c.blocks(li, t.byID[id].ChildElements(), t.story)
		}
	}
}
