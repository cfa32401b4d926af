// Package numbering resolves WML list definitions and tracks list counters
// during a single render pass.
package numbering

import (
	"strconv"

	"github.com/beevik/etree"

	"wmlconv/wml"
)

// Level is resolved list level definition.
type Level struct {
	Format        string // w:numFmt value, "decimal" when absent
	Text          string // w:lvlText template, %1..%9 refer to level counters
	Start         int
	Justification string
	// paragraph properties of the level (indents), may be nil
	PPr *etree.Element
	RPr *etree.Element
}

var orderedTypes = map[string]string{
	"decimal":     "1",
	"decimalZero": "1",
	"lowerLetter": "a",
	"upperLetter": "A",
	"lowerRoman":  "i",
	"upperRoman":  "I",
}

// Ordered reports whether level renders as ordered list.
func (l Level) Ordered() bool {
	return l.Format != "bullet" && l.Format != "none"
}

// ListType returns HTML type attribute for ordered list, "1" for formats
// without direct equivalent.
func (l Level) ListType() string {
	if t, ok := orderedTypes[l.Format]; ok {
		return t
	}
	return "1"
}

// Supported reports whether format has exact rendering.
func (l Level) Supported() bool {
	if !l.Ordered() {
		return true
	}
	if _, ok := orderedTypes[l.Format]; ok {
		return true
	}
	return extraFormats[l.Format]
}

type override struct {
	start *int
	lvl   *etree.Element
}

type num struct {
	abstractID string
	overrides  map[int]override
}

// Definitions hold w:abstractNum and w:num of numbering part.
type Definitions struct {
	abstract   map[string]map[int]*etree.Element
	styleLinks map[string]string // numStyleLink target -> abstract id defining it
	numLinks   map[string]string // abstract id -> numStyleLink
	nums       map[int]num
}

// Parse indexes w:numbering element, nil root gives empty definitions.
func Parse(root *etree.Element) *Definitions {
	d := &Definitions{
		abstract:   make(map[string]map[int]*etree.Element),
		styleLinks: make(map[string]string),
		numLinks:   make(map[string]string),
		nums:       make(map[int]num),
	}
	if root == nil {
		return d
	}
	for _, an := range wml.Children(root, "abstractNum") {
		id := wml.AttrValue(an, "abstractNumId", "")
		levels := make(map[int]*etree.Element)
		for _, lvl := range wml.Children(an, "lvl") {
			n, ok := wml.IntAttr(lvl, "ilvl")
			if !ok {
				continue
			}
			levels[n] = lvl
		}
		d.abstract[id] = levels
		if link := wml.Val(wml.Child(an, "styleLink")); link != "" {
			d.styleLinks[link] = id
		}
		if link := wml.Val(wml.Child(an, "numStyleLink")); link != "" {
			d.numLinks[id] = link
		}
	}
	for _, n := range wml.Children(root, "num") {
		id, ok := wml.IntAttr(n, "numId")
		if !ok {
			continue
		}
		rec := num{abstractID: wml.Val(wml.Child(n, "abstractNumId")), overrides: make(map[int]override)}
		for _, lo := range wml.Children(n, "lvlOverride") {
			ilvl, ok := wml.IntAttr(lo, "ilvl")
			if !ok {
				continue
			}
			var ov override
			if so := wml.Child(lo, "startOverride"); so != nil {
				if v, ok := wml.IntAttr(so, "val"); ok {
					ov.start = &v
				}
			}
			ov.lvl = wml.Child(lo, "lvl")
			rec.overrides[ilvl] = ov
		}
		d.nums[id] = rec
	}
	return d
}

// Has reports whether numbering instance exists.
func (d *Definitions) Has(numID int) bool {
	_, ok := d.nums[numID]
	return ok
}

// Level resolves numId and level through abstract definition applying
// instance overrides. Levels beyond MaxLevel do not exist.
func (d *Definitions) Level(numID, ilvl int) (Level, bool) {
	if ilvl < 0 || ilvl > MaxLevel {
		return Level{}, false
	}
	n, ok := d.nums[numID]
	if !ok {
		return Level{}, false
	}
	ov := n.overrides[ilvl]

	lvl := ov.lvl
	if lvl == nil {
		lvl = d.abstractLevel(n.abstractID, ilvl)
	}
	if lvl == nil && ov.start == nil {
		return Level{}, false
	}

	res := Level{
		Format:        "decimal",
		Start:         1,
		Justification: "left",
	}
	if lvl != nil {
		if f := wml.Val(wml.Child(lvl, "numFmt")); f != "" {
			res.Format = f
		}
		if t := wml.Child(lvl, "lvlText"); t != nil {
			res.Text = wml.Val(t)
		} else {
			res.Text = "%" + strconv.Itoa(ilvl+1) + "."
		}
		if s, ok := wml.IntAttr(wml.Child(lvl, "start"), "val"); ok {
			res.Start = s
		}
		if j := wml.Val(wml.Child(lvl, "lvlJc")); j != "" {
			res.Justification = j
		}
		res.PPr = wml.Child(lvl, "pPr")
		res.RPr = wml.Child(lvl, "rPr")
	}
	if ov.start != nil {
		res.Start = *ov.start
	}
	return res, true
}

// abstractLevel follows numStyleLink once to the abstract definition which
// owns the linked style.
func (d *Definitions) abstractLevel(abstractID string, ilvl int) *etree.Element {
	if lvl := d.abstract[abstractID][ilvl]; lvl != nil {
		return lvl
	}
	if link, ok := d.numLinks[abstractID]; ok {
		if target, ok := d.styleLinks[link]; ok && target != abstractID {
			return d.abstract[target][ilvl]
		}
	}
	return nil
}
