package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Base font size used to resolve relative units.
const basePt = 12.0

// Points converts length value to points. Percentages are resolved
// against base when it is non-zero.
func Points(v Value, base float64) (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	switch v.Unit {
	case "pt":
		return v.Value, true
	case "", "px":
		return v.Value * 0.75, true
	case "in":
		return v.Value * 72, true
	case "cm":
		return v.Value * 72 / 2.54, true
	case "mm":
		return v.Value * 72 / 25.4, true
	case "pc":
		return v.Value * 12, true
	case "em", "rem":
		if base == 0 {
			base = basePt
		}
		return v.Value * base, true
	case "%":
		if base == 0 {
			return 0, false
		}
		return v.Value * base / 100, true
	}
	return 0, false
}

// Twips converts length value to twentieths of a point.
func Twips(v Value, base float64) (int, bool) {
	pt, ok := Points(v, base)
	if !ok {
		return 0, false
	}
	return int(math.Round(pt * 20)), true
}

// HalfPoints converts font size value to half-points.
func HalfPoints(v Value) (int, bool) {
	if v.IsKeyword() {
		if pt, ok := fontSizeKeywords[v.Keyword]; ok {
			return int(pt * 2), true
		}
		return 0, false
	}
	pt, ok := Points(v, basePt)
	if !ok {
		return 0, false
	}
	return int(math.Round(pt * 2)), true
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 7,
	"x-small":  7.5,
	"small":    10,
	"medium":   12,
	"large":    13.5,
	"x-large":  18,
	"xx-large": 24,
}

// FormatPt renders points value with minimal precision: "12pt", "10.5pt".
func FormatPt(pt float64) string {
	return strconv.FormatFloat(math.Round(pt*100)/100, 'f', -1, 64) + "pt"
}

// TwipsToPt renders twips as points.
func TwipsToPt(twips int) string {
	return FormatPt(float64(twips) / 20)
}

// Color normalizes CSS color to six digit uppercase hex without "#", as
// used by WML attributes.
func Color(v Value) (string, bool) {
	s := strings.TrimSpace(strings.ToLower(v.Raw))
	if s == "" {
		s = strings.ToLower(v.Keyword)
	}
	if strings.HasPrefix(s, "#") {
		h := s[1:]
		if len(h) == 3 {
			h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		}
		if len(h) != 6 {
			return "", false
		}
		if _, err := strconv.ParseUint(h, 16, 32); err != nil {
			return "", false
		}
		return strings.ToUpper(h), true
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		args := s[strings.IndexByte(s, '(')+1:]
		args = strings.TrimSuffix(args, ")")
		parts := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
		if len(parts) < 3 {
			return "", false
		}
		var rgb [3]int
		for i := range 3 {
			p := parts[i]
			var f float64
			var err error
			if strings.HasSuffix(p, "%") {
				f, err = strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
				f = f * 255 / 100
			} else {
				f, err = strconv.ParseFloat(p, 64)
			}
			if err != nil {
				return "", false
			}
			rgb[i] = min(max(int(math.Round(f)), 0), 255)
		}
		return fmt.Sprintf("%02X%02X%02X", rgb[0], rgb[1], rgb[2]), true
	}
	if hex, ok := namedColors[s]; ok {
		return hex, true
	}
	return "", false
}

// HexColor renders WML color value for CSS, "auto" yields empty string.
func HexColor(val string) string {
	if val == "" || strings.EqualFold(val, "auto") {
		return ""
	}
	if len(val) == 6 {
		if _, err := strconv.ParseUint(val, 16, 32); err == nil {
			return "#" + strings.ToUpper(val)
		}
	}
	return ""
}

var namedColors = map[string]string{
	"black":   "000000",
	"white":   "FFFFFF",
	"red":     "FF0000",
	"green":   "008000",
	"lime":    "00FF00",
	"blue":    "0000FF",
	"yellow":  "FFFF00",
	"cyan":    "00FFFF",
	"aqua":    "00FFFF",
	"magenta": "FF00FF",
	"fuchsia": "FF00FF",
	"gray":    "808080",
	"grey":    "808080",
	"silver":  "C0C0C0",
	"maroon":  "800000",
	"olive":   "808000",
	"navy":    "000080",
	"purple":  "800080",
	"teal":    "008080",
	"orange":  "FFA500",
}

// highlight names of WML mapped to CSS colors
var highlightColors = map[string]string{
	"black":       "#000000",
	"blue":        "#0000FF",
	"cyan":        "#00FFFF",
	"green":       "#00FF00",
	"magenta":     "#FF00FF",
	"red":         "#FF0000",
	"yellow":      "#FFFF00",
	"white":       "#FFFFFF",
	"darkBlue":    "#000080",
	"darkCyan":    "#008080",
	"darkGreen":   "#008000",
	"darkMagenta": "#800080",
	"darkRed":     "#800000",
	"darkYellow":  "#808000",
	"darkGray":    "#808080",
	"lightGray":   "#C0C0C0",
}

// HighlightColor maps WML highlight name to CSS color.
func HighlightColor(name string) (string, bool) {
	c, ok := highlightColors[name]
	return c, ok
}
