package css

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw       string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value     float64 // Numeric value if applicable
	Unit      string  // Unit if applicable: "em", "px", "%", "pt", etc.
	Keyword   string  // Keyword if applicable: "bold", "italic", "center", etc.
	Important bool
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Properties maps property name to its value.
type Properties map[string]Value

// Selector represents a simple selector: element, class or element.class.
type Selector struct {
	Raw     string
	Element string
	Class   string
}

// IsSimple returns true if selector could be parsed.
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.Class != ""
}

// Specificity orders simple selectors: class beats element.
func (s Selector) Specificity() int {
	n := 0
	if s.Class != "" {
		n += 10
	}
	if s.Element != "" && s.Element != "*" {
		n++
	}
	return n
}

// Matches reports whether selector applies to element with given classes.
func (s Selector) Matches(element string, classes []string) bool {
	if !s.IsSimple() {
		return false
	}
	if s.Element != "" && s.Element != "*" && !strings.EqualFold(s.Element, element) {
		return false
	}
	if s.Class != "" && !slices.Contains(classes, s.Class) {
		return false
	}
	return true
}

// Rule represents a single CSS rule (selector + properties).
type Rule struct {
	Selector   Selector
	Properties Properties
	order      int
}

// Stylesheet represents a parsed CSS stylesheet. Only rules with simple
// selectors which apply to screen media are kept.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string
}

// Append adds rules of other stylesheets after own rules, so they win on
// equal specificity.
func (s *Stylesheet) Append(others ...*Stylesheet) {
	for _, o := range others {
		if o == nil {
			continue
		}
		for _, r := range o.Rules {
			r.order = len(s.Rules)
			s.Rules = append(s.Rules, r)
		}
		s.Warnings = append(s.Warnings, o.Warnings...)
	}
}

// Computed returns properties for element with classes: matching rules
// are applied by specificity then source order, inline declarations win
// unless rule value is important.
func (s *Stylesheet) Computed(element string, classes []string, inline Properties) Properties {
	var matched []Rule
	if s != nil {
		for _, r := range s.Rules {
			if r.Selector.Matches(element, classes) {
				matched = append(matched, r)
			}
		}
	}
	slices.SortStableFunc(matched, func(a, b Rule) int {
		if d := a.Selector.Specificity() - b.Selector.Specificity(); d != 0 {
			return d
		}
		return a.order - b.order
	})

	res := make(Properties)
	important := make(map[string]bool)
	for _, r := range matched {
		for name, v := range r.Properties {
			if important[name] && !v.Important {
				continue
			}
			res[name] = v
			important[name] = v.Important
		}
	}
	for name, v := range inline {
		if important[name] && !v.Important {
			continue
		}
		res[name] = v
	}
	return res
}

// Decl is a single output declaration.
type Decl struct {
	Property string
	Value    string
}

// Decls is an ordered declaration list used for generated CSS and inline
// style attributes.
type Decls []Decl

// Set adds declaration or replaces value of existing one keeping position.
func (d *Decls) Set(property, value string) {
	if value == "" {
		return
	}
	for i := range *d {
		if (*d)[i].Property == property {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, Decl{Property: property, Value: value})
}

// Get returns value of declaration.
func (d Decls) Get(property string) (string, bool) {
	for _, decl := range d {
		if decl.Property == property {
			return decl.Value, true
		}
	}
	return "", false
}

// String renders declarations for style attribute: "a:b;c:d".
func (d Decls) String() string {
	var sb strings.Builder
	for i, decl := range d {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(decl.Property)
		sb.WriteByte(':')
		sb.WriteString(decl.Value)
	}
	return sb.String()
}

// Sheet accumulates generated rules. Adding the same selector twice keeps
// the first definition, so class synthesis is idempotent.
type Sheet struct {
	selectors []string
	rules     map[string]Decls
}

// NewSheet creates empty sheet.
func NewSheet() *Sheet {
	return &Sheet{rules: make(map[string]Decls)}
}

// Add registers rule, returns false if selector was already defined.
func (s *Sheet) Add(selector string, decls Decls) bool {
	if _, ok := s.rules[selector]; ok {
		return false
	}
	s.selectors = append(s.selectors, selector)
	s.rules[selector] = slices.Clone(decls)
	return true
}

// Has reports whether selector is defined.
func (s *Sheet) Has(selector string) bool {
	_, ok := s.rules[selector]
	return ok
}

// Len returns number of rules.
func (s *Sheet) Len() int {
	return len(s.selectors)
}

// WriteTo writes rules in definition order, implementing io.WriterTo.
func (s *Sheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, sel := range s.selectors {
		n, err := writeRule(w, sel, s.rules[sel])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns CSS text of the sheet.
func (s *Sheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeRule(w io.Writer, selector string, decls Decls) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s{", selector)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range decls {
		n, err = fmt.Fprintf(w, "%s:%s;", d.Property, d.Value)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}
