// Package styles resolves WML style inheritance into effective formatting.
package styles

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"wmlconv/wml"
)

// Kind is w:type of the style.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindCharacter Kind = "character"
	KindTable     Kind = "table"
	KindNumbering Kind = "numbering"
)

// Record is a single w:style definition as found in styles part.
type Record struct {
	ID      string
	Name    string
	Kind    Kind
	BasedOn string
	Default bool
	PPr     *etree.Element
	RPr     *etree.Element
	TblPr   *etree.Element
}

// Resolved is style with basedOn chain merged.
type Resolved struct {
	ID   string
	Name string
	Kind Kind
	Para ParagraphProps
	Run  RunProps
	// tblBorders of table styles
	TableBorders Borders
	// basedOn chain, most specific first
	Chain []string
}

type key struct {
	kind Kind
	id   string
}

type defaults struct {
	para ParagraphProps
	run  RunProps
}

// Resolver owns style records of one document and caches resolution
// results. It is not safe for concurrent use, every conversion builds its own.
type Resolver struct {
	records  map[key]*Record
	defStyle map[Kind]string
	docDef   defaults
	cache    map[key]*Resolved
	log      *zap.Logger
}

// NewResolver indexes w:styles element. Nil root gives resolver without
// styles which resolves nothing.
func NewResolver(root *etree.Element, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		records:  make(map[key]*Record),
		defStyle: make(map[Kind]string),
		cache:    make(map[key]*Resolved),
		log:      log.Named("styles"),
	}
	if root == nil {
		return r
	}

	if dd := wml.Child(root, "docDefaults"); dd != nil {
		r.docDef.para = ParseParagraphProps(wml.Child(wml.Child(dd, "pPrDefault"), "pPr"))
		r.docDef.run = ParseRunProps(wml.Child(wml.Child(dd, "rPrDefault"), "rPr"))
	}

	for _, s := range wml.Children(root, "style") {
		rec := &Record{
			ID:      wml.AttrValue(s, "styleId", ""),
			Kind:    Kind(wml.AttrValue(s, "type", string(KindParagraph))),
			Name:    wml.Val(wml.Child(s, "name")),
			BasedOn: wml.Val(wml.Child(s, "basedOn")),
			PPr:     wml.Child(s, "pPr"),
			RPr:     wml.Child(s, "rPr"),
			TblPr:   wml.Child(s, "tblPr"),
		}
		if rec.ID == "" {
			continue
		}
		if v := wml.AttrValue(s, "default", ""); v == "1" || v == "true" || v == "on" {
			rec.Default = true
			if _, ok := r.defStyle[rec.Kind]; !ok {
				r.defStyle[rec.Kind] = rec.ID
			}
		}
		k := key{rec.Kind, rec.ID}
		if _, ok := r.records[k]; ok {
			r.log.Debug("Duplicate style definition ignored", zap.String("id", rec.ID))
			continue
		}
		r.records[k] = rec
	}
	r.log.Debug("Styles indexed", zap.Int("count", len(r.records)))
	return r
}

// Record returns raw style record.
func (r *Resolver) Record(kind Kind, id string) (*Record, bool) {
	rec, ok := r.records[key{kind, id}]
	return rec, ok
}

// Defaults returns document defaults (w:docDefaults).
func (r *Resolver) Defaults() (ParagraphProps, RunProps) {
	return r.docDef.para, r.docDef.run
}

// DefaultParagraph returns id of the paragraph style marked as default.
func (r *Resolver) DefaultParagraph() string {
	return r.defStyle[KindParagraph]
}

// DefaultStyle returns id of default style of given kind.
func (r *Resolver) DefaultStyle(kind Kind) string {
	return r.defStyle[kind]
}

// Paragraph resolves paragraph style.
func (r *Resolver) Paragraph(id string) (*Resolved, bool) {
	return r.Resolve(KindParagraph, id)
}

// Character resolves character style.
func (r *Resolver) Character(id string) (*Resolved, bool) {
	return r.Resolve(KindCharacter, id)
}

// Resolve walks basedOn chain of the style and merges properties from the
// least specific ancestor to the style itself. Cycles terminate the walk,
// collected prefix is used. Unknown id gives false. Results, including
// absence, are cached.
func (r *Resolver) Resolve(kind Kind, id string) (*Resolved, bool) {
	k := key{kind, id}
	if res, ok := r.cache[k]; ok {
		return res, res != nil
	}

	var chain []*Record
	visited := make(map[string]bool)
	for cur := id; cur != ""; {
		if visited[cur] {
			r.log.Debug("Style inheritance cycle", zap.String("id", id), zap.String("at", cur))
			break
		}
		visited[cur] = true
		rec, ok := r.records[key{kind, cur}]
		if !ok {
			break
		}
		chain = append(chain, rec)
		cur = rec.BasedOn
	}
	if len(chain) == 0 {
		r.cache[k] = nil
		return nil, false
	}

	res := &Resolved{ID: id, Name: chain[0].Name, Kind: kind}
	for i := len(chain) - 1; i >= 0; i-- {
		res.Para.Merge(ParseParagraphProps(chain[i].PPr))
		res.Run.Merge(ParseRunProps(chain[i].RPr))
		if chain[i].TblPr != nil {
			res.TableBorders.Merge(ParseBorders(wml.Child(chain[i].TblPr, "tblBorders")))
		}
	}
	for _, rec := range chain {
		res.Chain = append(res.Chain, rec.ID)
	}
	r.cache[k] = res
	return res, true
}

// Table returns resolved table style.
func (r *Resolver) Table(id string) (*Resolved, bool) {
	return r.Resolve(KindTable, id)
}

// ParagraphStyle returns style id which applies to paragraph with given
// w:pStyle value, falling back to default paragraph style.
func (r *Resolver) ParagraphStyle(pStyle string) string {
	if pStyle != "" {
		if _, ok := r.records[key{KindParagraph, pStyle}]; ok {
			return pStyle
		}
	}
	return r.DefaultParagraph()
}

// EffectiveParagraph merges document defaults, paragraph style and direct
// formatting.
func (r *Resolver) EffectiveParagraph(pStyle string, direct ParagraphProps) ParagraphProps {
	eff := r.docDef.para
	if st, ok := r.Paragraph(r.ParagraphStyle(pStyle)); ok {
		eff.Merge(st.Para)
	}
	eff.Merge(direct)
	return eff
}

// EffectiveRun merges document defaults, paragraph style run properties,
// character style and direct formatting.
func (r *Resolver) EffectiveRun(pStyle string, direct RunProps) RunProps {
	eff := r.docDef.run
	if st, ok := r.Paragraph(r.ParagraphStyle(pStyle)); ok {
		eff.Merge(st.Run)
	}
	if direct.Style != "" {
		if st, ok := r.Character(direct.Style); ok {
			eff.Merge(st.Run)
		}
	}
	eff.Merge(direct)
	return eff
}

var (
	reHeadingID   = regexp.MustCompile(`(?i)^heading\s*([1-6])$`)
	reHeadingName = regexp.MustCompile(`(?i)^heading ([1-6])$`)
)

// HeadingLevel returns 1..6 when paragraph style denotes a heading, 0
// otherwise. Style id, style name and outline level are checked in this order.
func (r *Resolver) HeadingLevel(id string) int {
	if id == "" {
		return 0
	}
	if m := reHeadingID.FindStringSubmatch(id); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	st, ok := r.Paragraph(id)
	if !ok {
		return 0
	}
	if m := reHeadingName.FindStringSubmatch(strings.TrimSpace(st.Name)); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if lvl := st.Para.OutlineLevel; lvl != nil && *lvl >= 0 && *lvl <= 5 {
		return *lvl + 1
	}
	return 0
}
