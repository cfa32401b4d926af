package styles

import (
	"strings"

	"github.com/beevik/etree"

	"wmlconv/wml"
)

// Border is a single side of paragraph, table or cell border.
type Border struct {
	Style string // w:val, "nil" and "none" mean no border
	Size  int    // eighths of a point
	Color string
	Space int // points
}

// Visible reports whether border should be drawn.
func (b *Border) Visible() bool {
	return b != nil && b.Style != "" && b.Style != "nil" && b.Style != "none"
}

// Borders keeps sides separately so styles can override single side.
type Borders struct {
	Top, Left, Bottom, Right, Between *Border
	InsideH, InsideV                  *Border
}

// Merge overrides sides set in o.
func (b *Borders) Merge(o Borders) {
	over(&b.Top, o.Top)
	over(&b.Left, o.Left)
	over(&b.Bottom, o.Bottom)
	over(&b.Right, o.Right)
	over(&b.Between, o.Between)
	over(&b.InsideH, o.InsideH)
	over(&b.InsideV, o.InsideV)
}

// IsZero reports whether no side is set.
func (b Borders) IsZero() bool {
	return b.Top == nil && b.Left == nil && b.Bottom == nil && b.Right == nil &&
		b.Between == nil && b.InsideH == nil && b.InsideV == nil
}

// ParagraphProps are formatting values of w:pPr. Nil pointer or empty string
// means property is not set on this layer.
type ParagraphProps struct {
	Justification string
	SpacingBefore *int // twips
	SpacingAfter  *int
	Line          *int // 240th of line for "auto", twips otherwise
	LineRule      string
	IndLeft       *int
	IndRight      *int
	IndFirstLine  *int
	IndHanging    *int
	NumID         *int
	Ilvl          *int
	Bidi          *bool
	OutlineLevel  *int
	Shading       string
	Borders       Borders

	KeepNext        *bool
	PageBreakBefore *bool
}

// Merge applies properties set in o on top of p.
func (p *ParagraphProps) Merge(o ParagraphProps) {
	overStr(&p.Justification, o.Justification)
	over(&p.SpacingBefore, o.SpacingBefore)
	over(&p.SpacingAfter, o.SpacingAfter)
	if o.Line != nil {
		p.Line, p.LineRule = o.Line, o.LineRule
	}
	over(&p.IndLeft, o.IndLeft)
	over(&p.IndRight, o.IndRight)
	// first line and hanging are mutually exclusive
	if o.IndFirstLine != nil {
		p.IndFirstLine, p.IndHanging = o.IndFirstLine, nil
	}
	if o.IndHanging != nil {
		p.IndHanging, p.IndFirstLine = o.IndHanging, nil
	}
	over(&p.NumID, o.NumID)
	over(&p.Ilvl, o.Ilvl)
	over(&p.Bidi, o.Bidi)
	over(&p.OutlineLevel, o.OutlineLevel)
	overStr(&p.Shading, o.Shading)
	p.Borders.Merge(o.Borders)
	over(&p.KeepNext, o.KeepNext)
	over(&p.PageBreakBefore, o.PageBreakBefore)
}

// RunProps are formatting values of w:rPr.
type RunProps struct {
	Bold      *bool
	Italic    *bool
	Underline string // w:u/@w:val, "none" switches underline off
	Strike    *bool
	DStrike   *bool
	VertAlign string // superscript, subscript or baseline
	Color     string
	Size      *int // half-points
	Font      string
	Highlight string
	Shading   string
	Caps      *bool
	SmallCaps *bool
	RTL       *bool
	Vanish    *bool
	Lang      string
	Style     string // w:rStyle
}

// Merge applies properties set in o on top of r.
func (r *RunProps) Merge(o RunProps) {
	over(&r.Bold, o.Bold)
	over(&r.Italic, o.Italic)
	overStr(&r.Underline, o.Underline)
	over(&r.Strike, o.Strike)
	over(&r.DStrike, o.DStrike)
	overStr(&r.VertAlign, o.VertAlign)
	overStr(&r.Color, o.Color)
	over(&r.Size, o.Size)
	overStr(&r.Font, o.Font)
	overStr(&r.Highlight, o.Highlight)
	overStr(&r.Shading, o.Shading)
	over(&r.Caps, o.Caps)
	over(&r.SmallCaps, o.SmallCaps)
	over(&r.RTL, o.RTL)
	over(&r.Vanish, o.Vanish)
	overStr(&r.Lang, o.Lang)
	overStr(&r.Style, o.Style)
}

// HasUnderline reports whether underline is on.
func (r RunProps) HasUnderline() bool {
	return r.Underline != "" && r.Underline != "none"
}

// True dereferences optional toggle.
func True(b *bool) bool {
	return b != nil && *b
}

func over[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func overStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func intAttr(el *etree.Element, local string) *int {
	if el == nil {
		return nil
	}
	if n, ok := wml.IntAttr(el, local); ok {
		return &n
	}
	return nil
}

// ParseParagraphProps reads w:pPr element, nil yields empty set.
func ParseParagraphProps(pPr *etree.Element) ParagraphProps {
	var p ParagraphProps
	if pPr == nil {
		return p
	}
	for _, c := range pPr.ChildElements() {
		if wml.Namespace(c) != wml.NSW {
			continue
		}
		switch c.Tag {
		case "jc":
			p.Justification = wml.Val(c)
		case "spacing":
			p.SpacingBefore = intAttr(c, "before")
			p.SpacingAfter = intAttr(c, "after")
			if p.Line = intAttr(c, "line"); p.Line != nil {
				p.LineRule = wml.AttrValue(c, "lineRule", "auto")
			}
		case "ind":
			p.IndLeft = intAttr(c, "left")
			if p.IndLeft == nil {
				p.IndLeft = intAttr(c, "start")
			}
			p.IndRight = intAttr(c, "right")
			if p.IndRight == nil {
				p.IndRight = intAttr(c, "end")
			}
			p.IndFirstLine = intAttr(c, "firstLine")
			p.IndHanging = intAttr(c, "hanging")
		case "numPr":
			p.NumID = intAttr(wml.Child(c, "numId"), "val")
			p.Ilvl = intAttr(wml.Child(c, "ilvl"), "val")
		case "bidi":
			p.Bidi = wml.OnOff(c)
		case "outlineLvl":
			p.OutlineLevel = intAttr(c, "val")
		case "shd":
			p.Shading = shadingFill(c)
		case "pBdr":
			p.Borders = ParseBorders(c)
		case "keepNext":
			p.KeepNext = wml.OnOff(c)
		case "pageBreakBefore":
			p.PageBreakBefore = wml.OnOff(c)
		}
	}
	return p
}

// ParseRunProps reads w:rPr element, nil yields empty set.
func ParseRunProps(rPr *etree.Element) RunProps {
	var r RunProps
	if rPr == nil {
		return r
	}
	for _, c := range rPr.ChildElements() {
		if wml.Namespace(c) != wml.NSW {
			continue
		}
		switch c.Tag {
		case "b":
			r.Bold = wml.OnOff(c)
		case "i":
			r.Italic = wml.OnOff(c)
		case "u":
			r.Underline = wml.AttrValue(c, "val", "single")
		case "strike":
			r.Strike = wml.OnOff(c)
		case "dstrike":
			r.DStrike = wml.OnOff(c)
		case "vertAlign":
			r.VertAlign = wml.Val(c)
		case "color":
			r.Color = wml.Val(c)
		case "sz":
			r.Size = intAttr(c, "val")
		case "rFonts":
			for _, a := range []string{"ascii", "hAnsi", "cs", "eastAsia"} {
				if v, ok := wml.Attr(c, a); ok && v != "" {
					r.Font = v
					break
				}
			}
		case "highlight":
			r.Highlight = wml.Val(c)
		case "shd":
			r.Shading = shadingFill(c)
		case "caps":
			r.Caps = wml.OnOff(c)
		case "smallCaps":
			r.SmallCaps = wml.OnOff(c)
		case "rtl":
			r.RTL = wml.OnOff(c)
		case "vanish":
			r.Vanish = wml.OnOff(c)
		case "lang":
			r.Lang = wml.Val(c)
			if r.Lang == "" {
				r.Lang = wml.AttrValue(c, "bidi", "")
			}
		case "rStyle":
			r.Style = wml.Val(c)
		}
	}
	return r
}

// ParseBorders reads pBdr, tblBorders or tcBorders element.
func ParseBorders(el *etree.Element) Borders {
	var b Borders
	if el == nil {
		return b
	}
	for _, c := range el.ChildElements() {
		if wml.Namespace(c) != wml.NSW {
			continue
		}
		bd := &Border{Style: wml.Val(c), Color: wml.AttrValue(c, "color", "")}
		if n := intAttr(c, "sz"); n != nil {
			bd.Size = *n
		}
		if n := intAttr(c, "space"); n != nil {
			bd.Space = *n
		}
		switch c.Tag {
		case "top":
			b.Top = bd
		case "left", "start":
			b.Left = bd
		case "bottom":
			b.Bottom = bd
		case "right", "end":
			b.Right = bd
		case "between":
			b.Between = bd
		case "insideH":
			b.InsideH = bd
		case "insideV":
			b.InsideV = bd
		}
	}
	return b
}

// shadingFill returns fill color of w:shd, "auto" and clear patterns
// without fill give empty string.
func shadingFill(el *etree.Element) string {
	fill := wml.AttrValue(el, "fill", "")
	if fill == "" || strings.EqualFold(fill, "auto") {
		return ""
	}
	return fill
}

// ShadingFill is exported form of shading parser for table cells.
func ShadingFill(shd *etree.Element) string {
	if shd == nil {
		return ""
	}
	return shadingFill(shd)
}
