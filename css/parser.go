package css

import (
	"bytes"
	"maps"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if parser.Err() != nil && parser.Err().Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(parser.Err()))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			if atRule == "@media" {
				query := tokensToString(parser.Values())
				rules := p.parseMediaBlockRules(parser, sheet)
				if screenMedia(query) {
					p.log.Debug("Parsed @media block", zap.String("query", query), zap.Int("rules", len(rules)))
					sheet.Append(&Stylesheet{Rules: rules})
				} else {
					p.log.Debug("Skipping @media block", zap.String("query", query))
				}
				continue
			}
			p.skipAtRuleBlock(parser)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			selectors := p.parseSelectors(data, parser.Values())
			props := p.parseDeclarations(parser)
			sheet.Append(&Stylesheet{Rules: p.makeRules(selectors, props, sheet)})
		}
	}
}

// ParseInline parses content of style attribute.
func (p *Parser) ParseInline(style string) Properties {
	props := make(Properties)
	if strings.TrimSpace(style) == "" {
		return props
	}
	input := parse.NewInputString(style)
	parser := css.NewParser(input, true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return props
		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				props[strings.ToLower(string(data))] = p.parsePropertyValue(values)
			}
		}
	}
}

func (p *Parser) makeRules(selectors []string, props Properties, sheet *Stylesheet) []Rule {
	var rules []Rule
	for _, selStr := range selectors {
		sel := p.parseSelector(selStr, sheet)
		if !sel.IsSimple() {
			continue
		}
		rules = append(rules, Rule{Selector: sel, Properties: maps.Clone(props)})
	}
	return rules
}

// screenMedia reports whether media query applies to on-screen rendering.
func screenMedia(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for q := range strings.SplitSeq(query, ",") {
		fields := strings.Fields(q)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "only" && len(fields) > 1 {
			fields = fields[1:]
		}
		switch fields[0] {
		case "all", "screen":
			return true
		}
		if strings.HasPrefix(fields[0], "(") {
			return true
		}
	}
	return false
}

func tokensToString(tokens []css.Token) string {
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(rawParts, ""))
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	// Split by comma for grouped selectors
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser) Properties {
	props := make(Properties)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return props

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) > 0 {
				props[strings.ToLower(string(data))] = p.parsePropertyValue(values)
			}

		case css.CustomPropertyGrammar:
			continue
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func (p *Parser) parsePropertyValue(tokens []css.Token) Value {
	var important bool
	tokens, important = stripImportant(tokens)
	if len(tokens) == 0 {
		return Value{Important: important}
	}

	raw := tokensToString(tokens)
	val := Value{Raw: raw, Important: important}

	// Handle single token cases
	if len(tokens) == 1 || (len(tokens) == 2 && tokens[1].TokenType == css.WhitespaceToken) {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		case css.HashToken:
			// Color value
			val.Keyword = string(t.Data)
		}
		return val
	}

	// Functions and multi-value properties keep raw value as keyword
	val.Keyword = raw
	return val
}

// stripImportant removes trailing "!important" and whitespace.
func stripImportant(tokens []css.Token) ([]css.Token, bool) {
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end >= 2 && tokens[end-1].TokenType == css.IdentToken &&
		strings.EqualFold(string(tokens[end-1].Data), "important") {
		i := end - 2
		for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
			i--
		}
		if i >= 0 && tokens[i].TokenType == css.DelimToken && string(tokens[i].Data) == "!" {
			end = i
			for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
				end--
			}
			return tokens[:end], true
		}
	}
	return tokens[:end], false
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	// Find where number ends
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// parseSelector parses a single selector string into a Selector. Anything
// beyond element, class or element.class is reported and ignored.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	switch {
	case strings.ContainsAny(selStr, "+~>"):
		sheet.Warnings = append(sheet.Warnings, "unsupported combinator selector: "+selStr)
		p.log.Debug("Skipping combinator selector", zap.String("selector", selStr))
		return sel
	case strings.Contains(selStr, "["):
		sheet.Warnings = append(sheet.Warnings, "unsupported attribute selector: "+selStr)
		p.log.Debug("Skipping attribute selector", zap.String("selector", selStr))
		return sel
	case strings.ContainsAny(selStr, " \t\n"):
		sheet.Warnings = append(sheet.Warnings, "unsupported descendant selector: "+selStr)
		p.log.Debug("Skipping descendant selector", zap.String("selector", selStr))
		return sel
	case strings.Contains(selStr, ":"):
		sheet.Warnings = append(sheet.Warnings, "unsupported pseudo selector: "+selStr)
		p.log.Debug("Skipping pseudo selector", zap.String("selector", selStr))
		return sel
	case strings.HasPrefix(selStr, "#"), strings.Count(selStr, ".") > 1:
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
		p.log.Debug("Skipping selector", zap.String("selector", selStr))
		return sel
	}

	if element, class, found := strings.Cut(selStr, "."); found {
		sel.Element = strings.ToLower(element)
		sel.Class = class
	} else {
		sel.Element = strings.ToLower(selStr)
	}
	return sel
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseMediaBlockRules parses rules inside an @media block and returns them.
func (p *Parser) parseMediaBlockRules(parser *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules

		case css.BeginAtRuleGrammar:
			p.skipAtRuleBlock(parser)

		case css.BeginRulesetGrammar:
			selectors := p.parseSelectors(data, parser.Values())
			props := p.parseDeclarations(parser)
			rules = append(rules, p.makeRules(selectors, props, sheet)...)
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
