package tohtml

import (
	"fmt"
	"strconv"

	"wmlconv/css"
	"wmlconv/styles"
)

var justification = map[string]string{
	"left":       "left",
	"start":      "left",
	"center":     "center",
	"right":      "right",
	"end":        "right",
	"both":       "justify",
	"distribute": "justify",
}

func paragraphDecls(p styles.ParagraphProps) css.Decls {
	var d css.Decls
	d.Set("text-align", justification[p.Justification])
	if p.SpacingBefore != nil {
		d.Set("margin-top", css.TwipsToPt(*p.SpacingBefore))
	}
	if p.SpacingAfter != nil {
		d.Set("margin-bottom", css.TwipsToPt(*p.SpacingAfter))
	}
	if p.Line != nil && *p.Line > 0 {
		switch p.LineRule {
		case "exact", "atLeast":
			d.Set("line-height", css.TwipsToPt(*p.Line))
		default:
			d.Set("line-height", strconv.FormatFloat(float64(*p.Line)/240, 'f', -1, 64))
		}
	}
	if p.IndLeft != nil {
		d.Set("margin-left", css.TwipsToPt(*p.IndLeft))
	}
	if p.IndRight != nil {
		d.Set("margin-right", css.TwipsToPt(*p.IndRight))
	}
	switch {
	case p.IndFirstLine != nil:
		d.Set("text-indent", css.TwipsToPt(*p.IndFirstLine))
	case p.IndHanging != nil:
		d.Set("text-indent", css.TwipsToPt(-*p.IndHanging))
	}
	if c := css.HexColor(p.Shading); c != "" {
		d.Set("background-color", c)
	}
	borderDecls(&d, p.Borders)
	return d
}

func runDecls(r styles.RunProps) css.Decls {
	var d css.Decls
	if c := css.HexColor(r.Color); c != "" {
		d.Set("color", c)
	}
	if r.Size != nil && *r.Size > 0 {
		d.Set("font-size", css.FormatPt(float64(*r.Size)/2))
	}
	if r.Font != "" {
		d.Set("font-family", fontFamily(r.Font))
	}
	if c, ok := css.HighlightColor(r.Highlight); ok {
		d.Set("background-color", c)
	} else if c := css.HexColor(r.Shading); c != "" {
		d.Set("background-color", c)
	}
	if styles.True(r.Caps) {
		d.Set("text-transform", "uppercase")
	}
	if styles.True(r.SmallCaps) {
		d.Set("font-variant", "small-caps")
	}
	return d
}

func fontFamily(name string) string {
	return strconv.Quote(name)
}

var borderStyles = map[string]string{
	"single":                 "solid",
	"thick":                  "solid",
	"double":                 "double",
	"triple":                 "double",
	"dotted":                 "dotted",
	"dashed":                 "dashed",
	"dashSmallGap":           "dashed",
	"dotDash":                "dashed",
	"dotDotDash":             "dotted",
	"wave":                   "solid",
	"threeDEmboss":           "ridge",
	"threeDEngrave":          "groove",
	"outset":                 "outset",
	"inset":                  "inset",
	"thinThickSmallGap":      "double",
	"thickThinSmallGap":      "double",
	"thinThickThinSmallGap":  "double",
	"thinThickMediumGap":     "double",
	"thickThinMediumGap":     "double",
	"thinThickThinMediumGap": "double",
}

// default border width in eighths of a point
const defaultBorderSize = 4

func borderValue(b *styles.Border) string {
	if b == nil {
		return ""
	}
	if !b.Visible() {
		return "none"
	}
	style, ok := borderStyles[b.Style]
	if !ok {
		style = "solid"
	}
	size := b.Size
	if size <= 0 {
		size = defaultBorderSize
	}
	color := css.HexColor(b.Color)
	if color == "" {
		color = "#000000"
	}
	return fmt.Sprintf("%s %s %s", css.FormatPt(float64(size)/8), style, color)
}

func borderDecls(d *css.Decls, b styles.Borders) {
	d.Set("border-top", borderValue(b.Top))
	d.Set("border-right", borderValue(b.Right))
	d.Set("border-bottom", borderValue(b.Bottom))
	d.Set("border-left", borderValue(b.Left))
}
