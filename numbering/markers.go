package numbering

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// MarkerFunc formats counter n of a level with given w:numFmt. Level text is
// passed for implementations which need the whole template.
type MarkerFunc func(levelText string, n int, format string) string

// formats beyond HTML list types which still have exact rendering
var extraFormats = map[string]bool{
	"ordinal":      true,
	"russianLower": true,
	"russianUpper": true,
}

var (
	latinLetters   = []rune("abcdefghijklmnopqrstuvwxyz")
	russianLetters = []rune("абвгдежзиклмнопрстуфхцчшщэюя")
)

// FormatNumber renders counter in one of the common formats, unknown formats
// fall back to decimal.
func FormatNumber(n int, format string) string {
	switch format {
	case "none":
		return ""
	case "decimalZero":
		return fmt.Sprintf("%02d", n)
	case "lowerLetter":
		return letters(n, latinLetters)
	case "upperLetter":
		return strings.ToUpper(letters(n, latinLetters))
	case "russianLower":
		return letters(n, russianLetters)
	case "russianUpper":
		return strings.ToUpper(letters(n, russianLetters))
	case "lowerRoman":
		return strings.ToLower(roman(n))
	case "upperRoman":
		return roman(n)
	case "ordinal":
		return strconv.Itoa(n) + ordinalSuffix(n)
	}
	return strconv.Itoa(n)
}

// letters repeats the letter as Word does: a..z, aa..zz.
func letters(n int, alphabet []rune) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	count := len(alphabet)
	return strings.Repeat(string(alphabet[(n-1)%count]), (n-1)/count+1)
}

func roman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	values := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range values {
		for n >= v {
			sb.WriteString(symbols[i])
			n -= v
		}
	}
	return sb.String()
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func englishMarker(_ string, n int, format string) string {
	return FormatNumber(n, format)
}

func russianMarker(_ string, n int, format string) string {
	switch format {
	case "lowerLetter":
		return FormatNumber(n, "russianLower")
	case "upperLetter":
		return FormatNumber(n, "russianUpper")
	}
	return FormatNumber(n, format)
}

// MarkerText expands %1..%9 placeholders of level text with counters of
// corresponding levels.
func MarkerText(levelText string, counters []int, formats []string, fn MarkerFunc) string {
	if fn == nil {
		fn = englishMarker
	}
	var sb strings.Builder
	for i := 0; i < len(levelText); i++ {
		ch := levelText[i]
		if ch == '%' && i+1 < len(levelText) && levelText[i+1] >= '1' && levelText[i+1] <= '9' {
			lvl := int(levelText[i+1] - '1')
			i++
			if lvl < len(counters) {
				format := "decimal"
				if lvl < len(formats) {
					format = formats[lvl]
				}
				sb.WriteString(fn(levelText, counters[lvl], format))
			}
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}

// Markers selects marker implementation by document language.
type Markers struct {
	funcs   []MarkerFunc
	tags    []language.Tag
	matcher language.Matcher
}

// NewMarkers combines built in implementations (English, Russian) with
// custom ones keyed by BCP 47 tag. Custom ones win. Invalid tags are ignored.
func NewMarkers(custom map[string]MarkerFunc) *Markers {
	m := &Markers{}
	add := func(tag language.Tag, fn MarkerFunc) {
		for i, t := range m.tags {
			if t == tag {
				m.funcs[i] = fn
				return
			}
		}
		m.tags = append(m.tags, tag)
		m.funcs = append(m.funcs, fn)
	}
	add(language.English, englishMarker)
	add(language.Russian, russianMarker)
	for key, fn := range custom {
		tag, err := language.Parse(key)
		if err != nil || fn == nil {
			continue
		}
		add(tag, fn)
	}
	m.matcher = language.NewMatcher(m.tags)
	return m
}

// Lookup returns implementation for language, empty language gets English.
// False is returned when nothing matched and English fallback is used.
func (m *Markers) Lookup(lang string) (MarkerFunc, bool) {
	if lang == "" {
		return m.funcs[0], true
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return m.funcs[0], false
	}
	_, idx, conf := m.matcher.Match(tag)
	if conf == language.No {
		return m.funcs[0], false
	}
	return m.funcs[idx], true
}
